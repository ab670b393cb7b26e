package console

import (
	"context"
	"io"
	"sync"

	"medsupply/backend/internal/domain"
	"medsupply/backend/internal/service"
)

const (
	msgFetchSettings  = "Failed to fetch settings"
	msgUpdateSettings = "Failed to update settings"
	msgUploadLogo     = "Failed to upload logo"
)

// SettingsStore caches the company-settings singleton.
type SettingsStore struct {
	svc           *service.Service
	refreshPolicy RefreshPolicy

	mu       sync.Mutex
	settings domain.CompanySettings
	loaded   bool
	loading  bool
	err      string
}

func NewSettingsStore(svc *service.Service) *SettingsStore {
	return &SettingsStore{svc: svc, refreshPolicy: FullRefetch{}}
}

// UseRefreshPolicy swaps the after-write cache strategy. Not safe to call
// concurrently with writes; set it when the session is built.
func (s *SettingsStore) UseRefreshPolicy(policy RefreshPolicy) {
	s.refreshPolicy = policy
}

func (s *SettingsStore) Fetch(ctx context.Context) {
	s.begin()
	settings, err := s.svc.GetSettings(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = msgFetchSettings
		return
	}
	s.settings = *settings
	s.loaded = true
}

// Update saves the whole settings document and refetches it.
func (s *SettingsStore) Update(ctx context.Context, settings domain.CompanySettings) {
	s.begin()
	if err := s.svc.UpdateSettings(ctx, settings); err != nil {
		s.mu.Lock()
		s.loading = false
		s.err = msgUpdateSettings
		s.mu.Unlock()
		return
	}

	s.refreshPolicy.AfterWrite(ctx, s.Fetch)
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

// UploadLogo stores the image and returns its URL. The URL is not saved
// until the caller submits it through Update.
func (s *SettingsStore) UploadLogo(ctx context.Context, r io.Reader) (string, error) {
	url, err := s.svc.UploadLogo(ctx, r)
	if err != nil {
		s.mu.Lock()
		s.err = msgUploadLogo
		s.mu.Unlock()
		return "", err
	}
	return url, nil
}

// Settings returns the cached document; ok is false before the first
// successful fetch.
func (s *SettingsStore) Settings() (domain.CompanySettings, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, s.loaded
}

func (s *SettingsStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *SettingsStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *SettingsStore) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}
