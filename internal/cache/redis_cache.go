package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"jokersolar/backend/internal/domain"
)

type RedisTopSellersCache struct {
	client *redis.Client
}

func NewRedisTopSellersCache(addr string, password string, db int) *RedisTopSellersCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisTopSellersCache{client: client}
}

func (c *RedisTopSellersCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisTopSellersCache) Close() error {
	return c.client.Close()
}

func (c *RedisTopSellersCache) Get(ctx context.Context, key string) ([]domain.TopSellingItem, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []domain.TopSellingItem
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (c *RedisTopSellersCache) Set(ctx context.Context, key string, value []domain.TopSellingItem, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}
