package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	// Sale flags
	saleClientID string
	saleItems    []string
)

var salesCmd = &cobra.Command{
	Use:   "sales",
	Short: "Record and list sales",
}

var salesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sales, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSalesList()
	},
}

var salesNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Record a sale",
	Long: `Record a sale for a client. Each --item takes product-id=quantity and
snapshots the product's current price; stock is decremented when the sale
is submitted.

Example:
  medsupply sales new --client CLIENT_ID --item PRODUCT_ID=5 --item OTHER_ID=2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSalesNew()
	},
}

func init() {
	rootCmd.AddCommand(salesCmd)
	salesCmd.AddCommand(salesListCmd, salesNewCmd)

	salesNewCmd.Flags().StringVar(&saleClientID, "client", "", "Client ID (required)")
	salesNewCmd.Flags().StringArrayVar(&saleItems, "item", nil, "Sale line as product-id=quantity (repeatable)")
	_ = salesNewCmd.MarkFlagRequired("client")
}

func runSalesList() error {
	ctx := context.Background()
	ws, _, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := storeError(ws.Sales.Err()); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tINVOICE\tCLIENT\tTOTAL")
	for _, sale := range ws.Sales.Sales() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t$%s\n", sale.ID, sale.Date.Format("2006-01-02"), sale.InvoiceNumber, sale.ClientName, sale.Total.StringFixed(2))
	}
	return w.Flush()
}

func runSalesNew() error {
	ctx := context.Background()
	ws, _, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ws.Builder.SelectClient(saleClientID)
	for _, spec := range saleItems {
		productID, qtyStr, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("invalid --item %q, want product-id=quantity", spec)
		}
		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			return fmt.Errorf("invalid quantity in --item %q: %w", spec, err)
		}
		if !ws.Builder.AddLine(productID, qty) {
			return fmt.Errorf("rejected line %s: unknown product or not enough stock for quantity %d", productID, qty)
		}
	}

	total := ws.Builder.Total()
	id, err := ws.SubmitSale(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("sale %s recorded, total $%s\n", id, total.StringFixed(2))
	return nil
}
