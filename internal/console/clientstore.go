package console

import (
	"context"
	"strings"
	"sync"

	"medsupply/backend/internal/domain"
	"medsupply/backend/internal/service"
)

const (
	msgFetchClients  = "Failed to fetch clients"
	msgSearchClients = "Failed to search clients"
	msgAddClient     = "Failed to add client"
	msgUpdateClient  = "Failed to update client"
	msgDeleteClient  = "Failed to delete client"
)

// ClientStore caches the client collection for the console session.
type ClientStore struct {
	svc           *service.Service
	refreshPolicy RefreshPolicy

	mu      sync.Mutex
	clients []domain.Client
	loading bool
	err     string
}

func NewClientStore(svc *service.Service) *ClientStore {
	return &ClientStore{svc: svc, refreshPolicy: FullRefetch{}}
}

// UseRefreshPolicy swaps the after-write cache strategy. Not safe to call
// concurrently with writes; set it when the session is built.
func (s *ClientStore) UseRefreshPolicy(policy RefreshPolicy) {
	s.refreshPolicy = policy
}

// FetchAll replaces the cache with the backend collection.
func (s *ClientStore) FetchAll(ctx context.Context) {
	s.begin()
	clients, err := s.svc.ListClients(ctx)
	s.publish(clients, err, msgFetchClients)
}

// Search narrows the cache to name-prefix matches. An empty term restores
// the full collection.
func (s *ClientStore) Search(ctx context.Context, term string) {
	if strings.TrimSpace(term) == "" {
		s.FetchAll(ctx)
		return
	}
	s.begin()
	clients, err := s.svc.SearchClients(ctx, term)
	s.publish(clients, err, msgSearchClients)
}

func (s *ClientStore) Add(ctx context.Context, client domain.Client) {
	s.begin()
	if _, err := s.svc.CreateClient(ctx, client); err != nil {
		s.fail(msgAddClient)
		return
	}
	s.reconcile(ctx)
}

func (s *ClientStore) Update(ctx context.Context, id string, patch domain.ClientUpdateRequest) {
	s.begin()
	if err := s.svc.UpdateClient(ctx, id, patch); err != nil {
		s.fail(msgUpdateClient)
		return
	}
	s.reconcile(ctx)
}

func (s *ClientStore) Delete(ctx context.Context, id string) {
	s.begin()
	if err := s.svc.DeleteClient(ctx, id); err != nil {
		s.fail(msgDeleteClient)
		return
	}
	s.reconcile(ctx)
}

// Clients returns a copy of the cached collection.
func (s *ClientStore) Clients() []domain.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Client, len(s.clients))
	copy(out, s.clients)
	return out
}

// Get looks a client up in the cache only; it never hits the backend.
func (s *ClientStore) Get(id string) (domain.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Client{}, false
}

func (s *ClientStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *ClientStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *ClientStore) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *ClientStore) fail(msg string) {
	s.mu.Lock()
	s.loading = false
	s.err = msg
	s.mu.Unlock()
}

func (s *ClientStore) reconcile(ctx context.Context) {
	s.refreshPolicy.AfterWrite(ctx, s.refresh)
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

func (s *ClientStore) refresh(ctx context.Context) {
	clients, err := s.svc.ListClients(ctx)
	s.publish(clients, err, msgFetchClients)
}

func (s *ClientStore) publish(clients []domain.Client, err error, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = msg
		return
	}
	s.clients = clients
}
