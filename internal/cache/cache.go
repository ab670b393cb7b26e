package cache

import (
	"context"
	"time"

	"medsupply/backend/internal/domain"
)

// SettingsCache sits in front of the company-settings singleton, which is
// read on every invoice render. The write path always invalidates; reads
// fall through to the repository on a miss.
type SettingsCache interface {
	Get(ctx context.Context) (*domain.CompanySettings, bool, error)
	Set(ctx context.Context, settings *domain.CompanySettings, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type NoopSettingsCache struct{}

func (NoopSettingsCache) Get(_ context.Context) (*domain.CompanySettings, bool, error) {
	return nil, false, nil
}

func (NoopSettingsCache) Set(_ context.Context, _ *domain.CompanySettings, _ time.Duration) error {
	return nil
}

func (NoopSettingsCache) Invalidate(_ context.Context) error {
	return nil
}
