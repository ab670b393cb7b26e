package console

import (
	"context"
	"errors"

	"medsupply/backend/internal/service"
)

// ErrIncompleteSale rejects submission before the draft has a client and
// at least one line.
var ErrIncompleteSale = errors.New("select a client and add at least one item")

// Workspace wires one session's stores together: a cache per collection,
// the sale builder, and the detail panels.
type Workspace struct {
	Clients   *ClientStore
	Inventory *InventoryStore
	Sales     *SalesStore
	Settings  *SettingsStore
	Builder   *SaleBuilder

	ClientDetail  DetailView
	ProductDetail DetailView
}

func NewWorkspace(svc *service.Service) *Workspace {
	inventory := NewInventoryStore(svc)
	return &Workspace{
		Clients:   NewClientStore(svc),
		Inventory: inventory,
		Sales:     NewSalesStore(svc),
		Settings:  NewSettingsStore(svc),
		Builder:   NewSaleBuilder(inventory),
	}
}

// Load primes every cache; called once when the session opens.
func (w *Workspace) Load(ctx context.Context) {
	w.Clients.FetchAll(ctx)
	w.Inventory.FetchAll(ctx)
	w.Sales.FetchAll(ctx)
	w.Settings.Fetch(ctx)
}

// SubmitSale persists the draft, resets the builder, and refreshes the
// inventory cache so the decremented stock is visible immediately.
func (w *Workspace) SubmitSale(ctx context.Context) (string, error) {
	if !w.Builder.CanSubmit() {
		return "", ErrIncompleteSale
	}

	id, err := w.Sales.Add(ctx, w.Builder.Request())
	if err != nil {
		return "", err
	}

	w.Builder.Reset()
	w.Inventory.FetchAll(ctx)
	return id, nil
}
