package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"medsupply/backend/internal/domain"
	"medsupply/backend/internal/store"
)

// Store is an in-memory repository used for development and tests. All
// methods return copies so callers can never mutate internal state.
type Store struct {
	mu       sync.RWMutex
	clients  map[string]domain.Client
	products map[string]domain.Product
	sales    map[string]domain.Sale
	settings *domain.CompanySettings
	users    map[string]domain.UserAccount
}

func New() *Store {
	return &Store{
		clients:  make(map[string]domain.Client),
		products: make(map[string]domain.Product),
		sales:    make(map[string]domain.Sale),
		users:    make(map[string]domain.UserAccount),
	}
}

// NewSeeded returns a store preloaded with a small medical-supply catalog
// for demo mode.
func NewSeeded() *Store {
	s := New()
	seed := []domain.Product{
		{Code: "MS-GAUZE-01", Name: "Sterile Gauze Pads 4x4", Description: "Box of 100 sterile gauze pads", Price: decimal.NewFromFloat(12.50), Quantity: 50},
		{Code: "MS-GLOVE-01", Name: "Nitrile Exam Gloves M", Description: "Box of 200 powder-free gloves", Price: decimal.NewFromFloat(18.90), Quantity: 120},
		{Code: "MS-SYR-05", Name: "Syringe 5ml Luer Lock", Description: "Pack of 100 single-use syringes", Price: decimal.NewFromFloat(24.00), Quantity: 80},
		{Code: "MS-THERM-01", Name: "Digital Thermometer", Description: "Clinical digital thermometer", Price: decimal.NewFromFloat(9.75), Quantity: 35},
		{Code: "MS-BAND-02", Name: "Elastic Bandage 10cm", Description: "Reusable elastic bandage roll", Price: decimal.NewFromFloat(4.20), Quantity: 200},
	}
	for _, p := range seed {
		p.ID = uuid.NewString()
		s.products[p.ID] = p
	}
	return s
}

func (s *Store) ListClients(_ context.Context) ([]domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]domain.Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	sortByName(clients, func(c domain.Client) string { return c.Name })
	return clients, nil
}

func (s *Store) GetClient(_ context.Context, id string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, exists := s.clients[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := client
	return &copied, nil
}

func (s *Store) CreateClient(_ context.Context, client domain.Client) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client.Name == "" {
		return nil, store.ErrInvalidInput
	}
	client.ID = uuid.NewString()
	s.clients[client.ID] = client
	created := client
	return &created, nil
}

func (s *Store) UpdateClient(_ context.Context, id string, patch domain.ClientUpdateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, exists := s.clients[id]
	if !exists {
		return store.ErrNotFound
	}
	if patch.Name != nil {
		client.Name = *patch.Name
	}
	if patch.Phone != nil {
		client.Phone = *patch.Phone
	}
	if patch.Email != nil {
		client.Email = *patch.Email
	}
	if patch.Address != nil {
		client.Address = *patch.Address
	}
	s.clients[id] = client
	return nil
}

func (s *Store) DeleteClient(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[id]; !exists {
		return store.ErrNotFound
	}
	// Sales referencing this client are left untouched; listings fall back
	// to a placeholder name.
	delete(s.clients, id)
	return nil
}

func (s *Store) SearchClientsByName(ctx context.Context, prefix string) ([]domain.Client, error) {
	if prefix == "" {
		return s.ListClients(ctx)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]domain.Client, 0, 8)
	for _, c := range s.clients {
		if strings.HasPrefix(c.Name, prefix) {
			matches = append(matches, c)
		}
	}
	sortByName(matches, func(c domain.Client) string { return c.Name })
	return matches, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sortByName(products, func(p domain.Product) string { return p.Name })
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := product
	return &copied, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.Code == "" {
		return nil, store.ErrInvalidInput
	}
	if product.Price.IsNegative() || product.Quantity < 0 {
		return nil, store.ErrInvalidInput
	}
	product.ID = uuid.NewString()
	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, id string, patch domain.ProductUpdateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[id]
	if !exists {
		return store.ErrNotFound
	}
	if patch.Code != nil {
		product.Code = *patch.Code
	}
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return store.ErrInvalidInput
		}
		product.Price = *patch.Price
	}
	if patch.Quantity != nil {
		product.Quantity = *patch.Quantity
	}
	s.products[id] = product
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) SearchProductsByName(ctx context.Context, prefix string) ([]domain.Product, error) {
	if prefix == "" {
		return s.ListProducts(ctx)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]domain.Product, 0, 8)
	for _, p := range s.products {
		if strings.HasPrefix(p.Name, prefix) {
			matches = append(matches, p)
		}
	}
	sortByName(matches, func(p domain.Product) string { return p.Name })
	return matches, nil
}

func (s *Store) ListSales(_ context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		sales = append(sales, copySale(sale))
	}
	sortSalesNewestFirst(sales)
	return sales, nil
}

func (s *Store) GetSale(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, exists := s.sales[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := copySale(sale)
	return &copied, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.ClientID == "" || len(sale.Items) == 0 {
		return nil, store.ErrInvalidInput
	}
	sale.ID = uuid.NewString()
	if sale.Date.IsZero() {
		sale.Date = time.Now().UTC()
	}
	s.sales[sale.ID] = copySale(sale)
	created := copySale(sale)
	return &created, nil
}

func (s *Store) ListSalesByClient(_ context.Context, clientID string) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, 8)
	for _, sale := range s.sales {
		if sale.ClientID == clientID {
			sales = append(sales, copySale(sale))
		}
	}
	sortSalesNewestFirst(sales)
	return sales, nil
}

func (s *Store) GetSettings(_ context.Context) (*domain.CompanySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return nil, store.ErrNotFound
	}
	copied := *s.settings
	return &copied, nil
}

func (s *Store) PutSettings(_ context.Context, settings domain.CompanySettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := settings
	s.settings = &copied
	return nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" {
		return store.ErrInvalidInput
	}
	if _, exists := s.users[email]; exists {
		return store.ErrConflict
	}
	user.Email = email
	s.users[email] = user
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[strings.ToLower(strings.TrimSpace(email))]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func copySale(sale domain.Sale) domain.Sale {
	copied := sale
	copied.Items = make([]domain.SaleItem, len(sale.Items))
	copy(copied.Items, sale.Items)
	return copied
}

func sortByName[T any](items []T, name func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		return name(items[i]) < name(items[j])
	})
}

func sortSalesNewestFirst(sales []domain.Sale) {
	sort.Slice(sales, func(i, j int) bool {
		if sales[i].Date.Equal(sales[j].Date) {
			return sales[i].ID > sales[j].ID
		}
		return sales[i].Date.After(sales[j].Date)
	})
}
