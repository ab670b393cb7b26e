package console

import (
	"context"
	"sync"

	"medsupply/backend/internal/domain"
	"medsupply/backend/internal/service"
)

const (
	msgFetchSales = "Failed to fetch sales"
	msgAddSale    = "Failed to add sale"
)

// SalesStore caches the sale listing, already joined with client names.
// Unlike the other stores, Add returns the error as well: the new-sale
// panel has to know whether submission went through before it clears the
// form.
type SalesStore struct {
	svc           *service.Service
	refreshPolicy RefreshPolicy

	mu      sync.Mutex
	sales   []domain.SaleRecord
	loading bool
	err     string
}

func NewSalesStore(svc *service.Service) *SalesStore {
	return &SalesStore{svc: svc, refreshPolicy: FullRefetch{}}
}

// UseRefreshPolicy swaps the after-write cache strategy. Not safe to call
// concurrently with writes; set it when the session is built.
func (s *SalesStore) UseRefreshPolicy(policy RefreshPolicy) {
	s.refreshPolicy = policy
}

func (s *SalesStore) FetchAll(ctx context.Context) {
	s.begin()
	s.refresh(ctx)
}

// Add runs the sale transaction workflow and returns the new sale's ID.
func (s *SalesStore) Add(ctx context.Context, req domain.SaleCreateRequest) (string, error) {
	s.begin()
	id, err := s.svc.CreateSale(ctx, req)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.err = msgAddSale
		s.mu.Unlock()
		return "", err
	}

	s.reconcile(ctx)
	return id, nil
}

func (s *SalesStore) reconcile(ctx context.Context) {
	s.refreshPolicy.AfterWrite(ctx, s.refresh)
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

func (s *SalesStore) refresh(ctx context.Context) {
	sales, err := s.svc.ListSales(ctx)
	s.publish(sales, err)
}

// ClientHistory lists a single client's purchases for the detail panel.
// It queries the backend directly and leaves the cache alone.
func (s *SalesStore) ClientHistory(ctx context.Context, clientID string) ([]domain.Sale, error) {
	return s.svc.ClientSales(ctx, clientID)
}

func (s *SalesStore) Sales() []domain.SaleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SaleRecord, len(s.sales))
	copy(out, s.sales)
	return out
}

func (s *SalesStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *SalesStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *SalesStore) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *SalesStore) publish(sales []domain.SaleRecord, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = msgFetchSales
		return
	}
	s.sales = sales
}
