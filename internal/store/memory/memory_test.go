package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"medsupply/backend/internal/domain"
	"medsupply/backend/internal/store"
)

func TestClientLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateClient(ctx, domain.Client{Name: "Alice Hart", Phone: "555-0101"})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected assigned client ID")
	}

	newPhone := "555-9999"
	if err := s.UpdateClient(ctx, created.ID, domain.ClientUpdateRequest{Phone: &newPhone}); err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	got, err := s.GetClient(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got.Phone != newPhone {
		t.Fatalf("phone = %q, want %q", got.Phone, newPhone)
	}
	if got.Name != "Alice Hart" {
		t.Fatalf("partial update touched name: %q", got.Name)
	}

	if err := s.DeleteClient(ctx, created.ID); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}
	if _, err := s.GetClient(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteClient(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestSearchClientsByNamePrefix(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, name := range []string{"Riverside Clinic", "River Oaks Practice", "Summit Care"} {
		if _, err := s.CreateClient(ctx, domain.Client{Name: name}); err != nil {
			t.Fatalf("CreateClient %q: %v", name, err)
		}
	}

	matches, err := s.SearchClientsByName(ctx, "River")
	if err != nil {
		t.Fatalf("SearchClientsByName: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 prefix matches, got %d", len(matches))
	}
	// Prefix search, not substring: "Care" should not match "Summit Care".
	matches, err = s.SearchClientsByName(ctx, "Care")
	if err != nil {
		t.Fatalf("SearchClientsByName: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("substring matched, expected none: %v", matches)
	}

	all, err := s.SearchClientsByName(ctx, "")
	if err != nil {
		t.Fatalf("SearchClientsByName empty: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("empty prefix should list all, got %d", len(all))
	}
}

func TestProductValidation(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateProduct(ctx, domain.Product{Code: "X-1"}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("nameless product accepted: %v", err)
	}
	if _, err := s.CreateProduct(ctx, domain.Product{Code: "X-1", Name: "Gauze", Price: decimal.NewFromInt(-1)}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("negative price accepted: %v", err)
	}

	created, err := s.CreateProduct(ctx, domain.Product{Code: "X-1", Name: "Gauze", Price: decimal.NewFromInt(5), Quantity: 10})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	// Stock may legitimately go negative through the sale workflow; the
	// store does not police quantity patches.
	negative := -3
	if err := s.UpdateProduct(ctx, created.ID, domain.ProductUpdateRequest{Quantity: &negative}); err != nil {
		t.Fatalf("UpdateProduct negative quantity: %v", err)
	}
	got, err := s.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.Quantity != -3 {
		t.Fatalf("quantity = %d, want -3", got.Quantity)
	}
}

func TestSalesAreCopied(t *testing.T) {
	s := New()
	ctx := context.Background()

	sale := domain.Sale{
		ClientID: "c1",
		Items:    []domain.SaleItem{{ProductID: "p1", Quantity: 2, PricePerUnit: decimal.NewFromInt(4)}},
		Total:    decimal.NewFromInt(8),
	}
	created, err := s.CreateSale(ctx, sale)
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if created.Date.IsZero() {
		t.Fatalf("expected CreateSale to stamp a date")
	}

	created.Items[0].Quantity = 999
	stored, err := s.GetSale(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if stored.Items[0].Quantity != 2 {
		t.Fatalf("caller mutation leaked into the store: quantity = %d", stored.Items[0].Quantity)
	}
}

func TestListSalesNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, date := range []time.Time{old, recent} {
		_, err := s.CreateSale(ctx, domain.Sale{
			ClientID: "c1",
			Date:     date,
			Items:    []domain.SaleItem{{ProductID: "p1", Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("CreateSale: %v", err)
		}
	}

	sales, err := s.ListSales(ctx)
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if len(sales) != 2 || !sales[0].Date.Equal(recent) {
		t.Fatalf("expected newest sale first, got %+v", sales)
	}

	byClient, err := s.ListSalesByClient(ctx, "c1")
	if err != nil {
		t.Fatalf("ListSalesByClient: %v", err)
	}
	if len(byClient) != 2 {
		t.Fatalf("expected 2 sales for client, got %d", len(byClient))
	}
	if other, _ := s.ListSalesByClient(ctx, "nobody"); len(other) != 0 {
		t.Fatalf("expected no sales for unknown client, got %d", len(other))
	}
}

func TestSettingsSingleton(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetSettings(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first write, got %v", err)
	}

	want := domain.DefaultCompanySettings()
	if err := s.PutSettings(ctx, want); err != nil {
		t.Fatalf("PutSettings: %v", err)
	}
	got, err := s.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if *got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

func TestCreateUserConflict(t *testing.T) {
	s := New()
	ctx := context.Background()

	user := domain.UserAccount{Email: "Owner@Example.com", PasswordHash: "x"}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := s.CreateUser(ctx, domain.UserAccount{Email: "owner@example.com"}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}

	got, err := s.GetUserByEmail(ctx, "OWNER@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.Email != "owner@example.com" {
		t.Fatalf("email not normalized: %q", got.Email)
	}
}

func TestNewSeededCatalog(t *testing.T) {
	s := NewSeeded()
	products, err := s.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 5 {
		t.Fatalf("expected 5 seeded products, got %d", len(products))
	}
	for _, p := range products {
		if p.ID == "" || p.Code == "" || p.Quantity <= 0 {
			t.Fatalf("seeded product incomplete: %+v", p)
		}
	}
}
