package cache

import (
	"context"
	"time"
)

// SaleListCache caches rendered sale-list pages so newly created sales become
// visible without re-querying the database on every poll. The submission
// gateway's post-commit hook calls Invalidate so fresh sales appear without a
// manual reload.
type SaleListCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	// Invalidate drops every cached sale-list page.
	Invalidate(ctx context.Context) error
}

// NoopSaleListCache disables caching; every lookup misses.
type NoopSaleListCache struct{}

func (NoopSaleListCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopSaleListCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

func (NoopSaleListCache) Invalidate(_ context.Context) error {
	return nil
}
