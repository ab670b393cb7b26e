package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var invoiceOut string

var invoiceCmd = &cobra.Command{
	Use:   "invoice <sale-id>",
	Short: "Render a sale's invoice PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInvoice(args[0])
	},
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.Flags().StringVarP(&invoiceOut, "out", "o", "", "Output path (defaults to invoice-<number>.pdf)")
}

func runInvoice(saleID string) error {
	ctx := context.Background()
	_, svc, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	pdf, filename, err := svc.InvoicePDF(ctx, saleID)
	if err != nil {
		return err
	}

	out := invoiceOut
	if out == "" {
		out = filename
	}
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", out, len(pdf))
	return nil
}
