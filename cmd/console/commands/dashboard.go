package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show business metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard() error {
	ctx := context.Background()
	_, svc, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	metrics, err := svc.Dashboard(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Total revenue:       $%s\n", metrics.TotalRevenue.StringFixed(2))
	fmt.Printf("Sales (last 30d):    %d\n", metrics.RecentSales)
	fmt.Printf("Active clients (90d): %d\n", metrics.ActiveClients)
	fmt.Printf("Low-stock products:  %d\n", metrics.LowStockProducts)
	fmt.Printf("Clients: %d  Products: %d  Sales: %d\n", metrics.ClientCount, metrics.ProductCount, metrics.SaleCount)
	return nil
}
