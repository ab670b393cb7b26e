package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"medsupply/backend/internal/domain"
)

var (
	// Client flags
	clientName    string
	clientPhone   string
	clientEmail   string
	clientAddress string

	// Edit flags
	editClientName    string
	editClientPhone   string
	editClientEmail   string
	editClientAddress string
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage client records",
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClientsList("")
	},
}

var clientsSearchCmd = &cobra.Command{
	Use:   "search <name-prefix>",
	Short: "Search clients by name prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClientsList(args[0])
	},
}

var clientsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a client",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClientsAdd()
	},
}

var clientsRemoveCmd = &cobra.Command{
	Use:   "rm <client-id>",
	Short: "Delete a client (their sales are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClientsRemove(args[0])
	},
}

var clientsShowCmd = &cobra.Command{
	Use:   "show <client-id>",
	Short: "Show one client's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClientsShow(args[0])
	},
}

var clientsEditCmd = &cobra.Command{
	Use:   "edit <client-id>",
	Short: "Edit a client's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClientsEdit(cmd, args[0])
	},
}

var clientsHistoryCmd = &cobra.Command{
	Use:   "history <client-id>",
	Short: "Show a client's purchase history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClientsHistory(args[0])
	},
}

func init() {
	rootCmd.AddCommand(clientsCmd)
	clientsCmd.AddCommand(clientsListCmd, clientsSearchCmd, clientsAddCmd, clientsShowCmd, clientsEditCmd, clientsRemoveCmd, clientsHistoryCmd)

	clientsAddCmd.Flags().StringVar(&clientName, "name", "", "Client name (required)")
	clientsAddCmd.Flags().StringVar(&clientPhone, "phone", "", "Phone number")
	clientsAddCmd.Flags().StringVar(&clientEmail, "email", "", "Email address")
	clientsAddCmd.Flags().StringVar(&clientAddress, "address", "", "Postal address")
	_ = clientsAddCmd.MarkFlagRequired("name")

	clientsEditCmd.Flags().StringVar(&editClientName, "name", "", "Client name")
	clientsEditCmd.Flags().StringVar(&editClientPhone, "phone", "", "Phone number")
	clientsEditCmd.Flags().StringVar(&editClientEmail, "email", "", "Email address")
	clientsEditCmd.Flags().StringVar(&editClientAddress, "address", "", "Postal address")
}

func runClientsList(term string) error {
	ctx := context.Background()
	ws, _, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if term != "" {
		ws.Clients.Search(ctx, term)
	}
	if err := storeError(ws.Clients.Err()); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPHONE\tEMAIL\tADDRESS")
	for _, c := range ws.Clients.Clients() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Phone, c.Email, c.Address)
	}
	return w.Flush()
}

func runClientsAdd() error {
	ctx := context.Background()
	ws, _, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ws.Clients.Add(ctx, domain.Client{
		Name:    clientName,
		Phone:   clientPhone,
		Email:   clientEmail,
		Address: clientAddress,
	})
	if err := storeError(ws.Clients.Err()); err != nil {
		return err
	}
	fmt.Printf("client %q added\n", clientName)
	return nil
}

func runClientsShow(id string) error {
	ctx := context.Background()
	ws, _, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ws.ClientDetail.Select(id)
	client, ok := ws.Clients.Get(ws.ClientDetail.ID())
	if !ok {
		return fmt.Errorf("client %s not found", id)
	}

	fmt.Printf("Name:    %s\n", client.Name)
	fmt.Printf("Phone:   %s\n", client.Phone)
	fmt.Printf("Email:   %s\n", client.Email)
	fmt.Printf("Address: %s\n", client.Address)
	return nil
}

func runClientsEdit(cmd *cobra.Command, id string) error {
	ctx := context.Background()
	ws, _, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ws.ClientDetail.Select(id)
	if _, ok := ws.Clients.Get(id); !ok {
		return fmt.Errorf("client %s not found", id)
	}
	if !ws.ClientDetail.StartEdit() {
		return fmt.Errorf("client %s cannot be edited right now", id)
	}

	var patch domain.ClientUpdateRequest
	if cmd.Flags().Changed("name") {
		patch.Name = &editClientName
	}
	if cmd.Flags().Changed("phone") {
		patch.Phone = &editClientPhone
	}
	if cmd.Flags().Changed("email") {
		patch.Email = &editClientEmail
	}
	if cmd.Flags().Changed("address") {
		patch.Address = &editClientAddress
	}

	ws.Clients.Update(ctx, id, patch)
	ws.ClientDetail.FinishEdit()
	if err := storeError(ws.Clients.Err()); err != nil {
		return err
	}

	updated, _ := ws.Clients.Get(id)
	fmt.Printf("client %q updated\n", updated.Name)
	return nil
}

func runClientsRemove(id string) error {
	ctx := context.Background()
	ws, _, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ws.Clients.Delete(ctx, id)
	if err := storeError(ws.Clients.Err()); err != nil {
		return err
	}
	fmt.Println("client deleted")
	return nil
}

func runClientsHistory(id string) error {
	ctx := context.Background()
	ws, _, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	sales, err := ws.Sales.ClientHistory(ctx, id)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tINVOICE\tITEMS\tTOTAL")
	for _, sale := range sales {
		fmt.Fprintf(w, "%s\t%s\t%d\t$%s\n", sale.Date.Format("2006-01-02"), sale.InvoiceNumber, len(sale.Items), sale.Total.StringFixed(2))
	}
	return w.Flush()
}
