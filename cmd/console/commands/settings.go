package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Settings flags
	settingsName    string
	settingsAddress string
	settingsPhone   string
	settingsEmail   string
	settingsLogo    string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or update company settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the company settings printed on invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSettingsShow()
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update company settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSettingsSet(cmd)
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)

	settingsSetCmd.Flags().StringVar(&settingsName, "name", "", "Company name")
	settingsSetCmd.Flags().StringVar(&settingsAddress, "address", "", "Company address")
	settingsSetCmd.Flags().StringVar(&settingsPhone, "phone", "", "Company phone")
	settingsSetCmd.Flags().StringVar(&settingsEmail, "email", "", "Company email")
	settingsSetCmd.Flags().StringVar(&settingsLogo, "logo", "", "Path to a logo image to upload")
}

func runSettingsShow() error {
	ctx := context.Background()
	ws, _, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := storeError(ws.Settings.Err()); err != nil {
		return err
	}
	settings, ok := ws.Settings.Settings()
	if !ok {
		return fmt.Errorf("settings not loaded")
	}

	fmt.Printf("Name:    %s\n", settings.Name)
	fmt.Printf("Address: %s\n", settings.Address)
	fmt.Printf("Phone:   %s\n", settings.Phone)
	fmt.Printf("Email:   %s\n", settings.Email)
	fmt.Printf("Logo:    %s\n", settings.LogoURL)
	return nil
}

func runSettingsSet(cmd *cobra.Command) error {
	ctx := context.Background()
	ws, _, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	settings, ok := ws.Settings.Settings()
	if !ok {
		return storeError(ws.Settings.Err())
	}

	if cmd.Flags().Changed("name") {
		settings.Name = settingsName
	}
	if cmd.Flags().Changed("address") {
		settings.Address = settingsAddress
	}
	if cmd.Flags().Changed("phone") {
		settings.Phone = settingsPhone
	}
	if cmd.Flags().Changed("email") {
		settings.Email = settingsEmail
	}
	if settingsLogo != "" {
		file, err := os.Open(settingsLogo)
		if err != nil {
			return err
		}
		url, err := ws.Settings.UploadLogo(ctx, file)
		file.Close()
		if err != nil {
			return err
		}
		settings.LogoURL = url
	}

	ws.Settings.Update(ctx, settings)
	if err := storeError(ws.Settings.Err()); err != nil {
		return err
	}
	fmt.Println("settings saved")
	return nil
}
