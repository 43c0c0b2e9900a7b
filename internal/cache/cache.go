package cache

import (
	"context"
	"time"

	"jokersolar/backend/internal/domain"
)

type TopSellersCache interface {
	Get(ctx context.Context, key string) ([]domain.TopSellingItem, bool, error)
	Set(ctx context.Context, key string, value []domain.TopSellingItem, ttl time.Duration) error
}

type NoopTopSellersCache struct{}

func (NoopTopSellersCache) Get(_ context.Context, _ string) ([]domain.TopSellingItem, bool, error) {
	return nil, false, nil
}

func (NoopTopSellersCache) Set(_ context.Context, _ string, _ []domain.TopSellingItem, _ time.Duration) error {
	return nil
}
