package console

import (
	"context"
	"strings"
	"sync"

	"medsupply/backend/internal/domain"
	"medsupply/backend/internal/service"
)

const (
	msgFetchProducts  = "Failed to fetch products"
	msgSearchProducts = "Failed to search products"
	msgAddProduct     = "Failed to add product"
	msgUpdateProduct  = "Failed to update product"
	msgDeleteProduct  = "Failed to delete product"
)

// InventoryStore caches the product collection. The sale builder validates
// requested quantities against this cache, so stock checks are only as
// fresh as the last fetch.
type InventoryStore struct {
	svc           *service.Service
	refreshPolicy RefreshPolicy

	mu       sync.Mutex
	products []domain.Product
	loading  bool
	err      string
}

func NewInventoryStore(svc *service.Service) *InventoryStore {
	return &InventoryStore{svc: svc, refreshPolicy: FullRefetch{}}
}

// UseRefreshPolicy swaps the after-write cache strategy. Not safe to call
// concurrently with writes; set it when the session is built.
func (s *InventoryStore) UseRefreshPolicy(policy RefreshPolicy) {
	s.refreshPolicy = policy
}

func (s *InventoryStore) FetchAll(ctx context.Context) {
	s.begin()
	products, err := s.svc.ListProducts(ctx)
	s.publish(products, err, msgFetchProducts)
}

func (s *InventoryStore) Search(ctx context.Context, term string) {
	if strings.TrimSpace(term) == "" {
		s.FetchAll(ctx)
		return
	}
	s.begin()
	products, err := s.svc.SearchProducts(ctx, term)
	s.publish(products, err, msgSearchProducts)
}

func (s *InventoryStore) Add(ctx context.Context, product domain.Product) {
	s.begin()
	if _, err := s.svc.CreateProduct(ctx, product); err != nil {
		s.fail(msgAddProduct)
		return
	}
	s.reconcile(ctx)
}

func (s *InventoryStore) Update(ctx context.Context, id string, patch domain.ProductUpdateRequest) {
	s.begin()
	if err := s.svc.UpdateProduct(ctx, id, patch); err != nil {
		s.fail(msgUpdateProduct)
		return
	}
	s.reconcile(ctx)
}

func (s *InventoryStore) Delete(ctx context.Context, id string) {
	s.begin()
	if err := s.svc.DeleteProduct(ctx, id); err != nil {
		s.fail(msgDeleteProduct)
		return
	}
	s.reconcile(ctx)
}

func (s *InventoryStore) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Get looks a product up in the cache only; it never hits the backend.
func (s *InventoryStore) Get(id string) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (s *InventoryStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *InventoryStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *InventoryStore) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *InventoryStore) fail(msg string) {
	s.mu.Lock()
	s.loading = false
	s.err = msg
	s.mu.Unlock()
}

func (s *InventoryStore) reconcile(ctx context.Context) {
	s.refreshPolicy.AfterWrite(ctx, s.refresh)
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

func (s *InventoryStore) refresh(ctx context.Context) {
	products, err := s.svc.ListProducts(ctx)
	s.publish(products, err, msgFetchProducts)
}

func (s *InventoryStore) publish(products []domain.Product, err error, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = msg
		return
	}
	s.products = products
}
