package console

import (
	"github.com/shopspring/decimal"

	"medsupply/backend/internal/domain"
)

// SaleBuilder accumulates the sale in progress on the new-sale panel. It
// models a single operator's form and is not safe for concurrent use.
//
// Lines snapshot the product's price at the moment they are added, so a
// later price edit does not change a sale already being drafted.
type SaleBuilder struct {
	inventory *InventoryStore
	clientID  string
	items     []domain.SaleItem
}

func NewSaleBuilder(inventory *InventoryStore) *SaleBuilder {
	return &SaleBuilder{inventory: inventory}
}

func (b *SaleBuilder) SelectClient(id string) {
	b.clientID = id
}

func (b *SaleBuilder) ClientID() string {
	return b.clientID
}

// AddLine appends a line for the product, validating the quantity against
// the stock level from the inventory cache's last fetch. Invalid requests
// are rejected without touching the draft; the return value says whether
// the line was added.
func (b *SaleBuilder) AddLine(productID string, quantity int) bool {
	product, ok := b.inventory.Get(productID)
	if !ok {
		return false
	}
	if quantity <= 0 || quantity > product.Quantity {
		return false
	}

	b.items = append(b.items, domain.SaleItem{
		ProductID:    product.ID,
		Quantity:     quantity,
		PricePerUnit: product.Price,
	})
	return true
}

// RemoveLine drops the line at index; out-of-range indexes are ignored.
func (b *SaleBuilder) RemoveLine(index int) {
	if index < 0 || index >= len(b.items) {
		return
	}
	b.items = append(b.items[:index], b.items[index+1:]...)
}

func (b *SaleBuilder) Items() []domain.SaleItem {
	out := make([]domain.SaleItem, len(b.items))
	copy(out, b.items)
	return out
}

// Total is recomputed from the lines on every call rather than kept as
// running state.
func (b *SaleBuilder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.items {
		total = total.Add(item.PricePerUnit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (b *SaleBuilder) CanSubmit() bool {
	return b.clientID != "" && len(b.items) > 0
}

func (b *SaleBuilder) Request() domain.SaleCreateRequest {
	return domain.SaleCreateRequest{
		ClientID: b.clientID,
		Items:    b.Items(),
		Total:    b.Total(),
	}
}

func (b *SaleBuilder) Reset() {
	b.clientID = ""
	b.items = nil
}
