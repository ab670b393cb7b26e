package main

import "medsupply/backend/cmd/console/commands"

func main() {
	commands.Execute()
}
