package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"medsupply/backend/internal/domain"
)

var (
	// Product flags
	productCode        string
	productName        string
	productDescription string
	productPrice       string
	productQuantity    int

	// Edit flags
	editProductCode        string
	editProductName        string
	editProductDescription string
	editProductPrice       string
	editProductQuantity    int
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage the product inventory",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all products with stock levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProductsList("")
	},
}

var productsSearchCmd = &cobra.Command{
	Use:   "search <name-prefix>",
	Short: "Search products by name prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProductsList(args[0])
	},
}

var productsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a product",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProductsAdd()
	},
}

var productsShowCmd = &cobra.Command{
	Use:   "show <product-id>",
	Short: "Show one product's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProductsShow(args[0])
	},
}

var productsEditCmd = &cobra.Command{
	Use:   "edit <product-id>",
	Short: "Edit a product's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProductsEdit(cmd, args[0])
	},
}

var productsRemoveCmd = &cobra.Command{
	Use:   "rm <product-id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProductsRemove(args[0])
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsListCmd, productsSearchCmd, productsAddCmd, productsShowCmd, productsEditCmd, productsRemoveCmd)

	productsAddCmd.Flags().StringVar(&productCode, "code", "", "Product code (required)")
	productsAddCmd.Flags().StringVar(&productName, "name", "", "Product name (required)")
	productsAddCmd.Flags().StringVar(&productDescription, "desc", "", "Description")
	productsAddCmd.Flags().StringVar(&productPrice, "price", "0", "Unit price, e.g. 12.50")
	productsAddCmd.Flags().IntVar(&productQuantity, "qty", 0, "Initial stock quantity")
	_ = productsAddCmd.MarkFlagRequired("code")
	_ = productsAddCmd.MarkFlagRequired("name")

	productsEditCmd.Flags().StringVar(&editProductCode, "code", "", "Product code")
	productsEditCmd.Flags().StringVar(&editProductName, "name", "", "Product name")
	productsEditCmd.Flags().StringVar(&editProductDescription, "desc", "", "Description")
	productsEditCmd.Flags().StringVar(&editProductPrice, "price", "", "Unit price, e.g. 12.50")
	productsEditCmd.Flags().IntVar(&editProductQuantity, "qty", 0, "Stock quantity")
}

func runProductsList(term string) error {
	ctx := context.Background()
	ws, _, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if term != "" {
		ws.Inventory.Search(ctx, term)
	}
	if err := storeError(ws.Inventory.Err()); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tPRICE\tSTOCK")
	for _, p := range ws.Inventory.Products() {
		fmt.Fprintf(w, "%s\t%s\t%s\t$%s\t%d\n", p.ID, p.Code, p.Name, p.Price.StringFixed(2), p.Quantity)
	}
	return w.Flush()
}

func runProductsAdd() error {
	price, err := decimal.NewFromString(productPrice)
	if err != nil {
		return fmt.Errorf("invalid --price %q: %w", productPrice, err)
	}

	ctx := context.Background()
	ws, _, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ws.Inventory.Add(ctx, domain.Product{
		Code:        productCode,
		Name:        productName,
		Description: productDescription,
		Price:       price,
		Quantity:    productQuantity,
	})
	if err := storeError(ws.Inventory.Err()); err != nil {
		return err
	}
	fmt.Printf("product %q added\n", productName)
	return nil
}

func runProductsShow(id string) error {
	ctx := context.Background()
	ws, _, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ws.ProductDetail.Select(id)
	product, ok := ws.Inventory.Get(ws.ProductDetail.ID())
	if !ok {
		return fmt.Errorf("product %s not found", id)
	}

	fmt.Printf("Code:        %s\n", product.Code)
	fmt.Printf("Name:        %s\n", product.Name)
	fmt.Printf("Description: %s\n", product.Description)
	fmt.Printf("Price:       $%s\n", product.Price.StringFixed(2))
	fmt.Printf("Stock:       %d\n", product.Quantity)
	return nil
}

func runProductsEdit(cmd *cobra.Command, id string) error {
	ctx := context.Background()
	ws, _, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ws.ProductDetail.Select(id)
	if _, ok := ws.Inventory.Get(id); !ok {
		return fmt.Errorf("product %s not found", id)
	}
	if !ws.ProductDetail.StartEdit() {
		return fmt.Errorf("product %s cannot be edited right now", id)
	}

	var patch domain.ProductUpdateRequest
	if cmd.Flags().Changed("code") {
		patch.Code = &editProductCode
	}
	if cmd.Flags().Changed("name") {
		patch.Name = &editProductName
	}
	if cmd.Flags().Changed("desc") {
		patch.Description = &editProductDescription
	}
	if cmd.Flags().Changed("price") {
		price, err := decimal.NewFromString(editProductPrice)
		if err != nil {
			return fmt.Errorf("invalid --price %q: %w", editProductPrice, err)
		}
		patch.Price = &price
	}
	if cmd.Flags().Changed("qty") {
		patch.Quantity = &editProductQuantity
	}

	ws.Inventory.Update(ctx, id, patch)
	ws.ProductDetail.FinishEdit()
	if err := storeError(ws.Inventory.Err()); err != nil {
		return err
	}

	updated, _ := ws.Inventory.Get(id)
	fmt.Printf("product %q updated\n", updated.Name)
	return nil
}

func runProductsRemove(id string) error {
	ctx := context.Background()
	ws, _, cleanup, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ws.Inventory.Delete(ctx, id)
	if err := storeError(ws.Inventory.Err()); err != nil {
		return err
	}
	fmt.Println("product deleted")
	return nil
}
