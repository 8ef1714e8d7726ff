package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nimbusmart/catalog/internal/domain"
)

const keyPrefix = "catalog:products:"

// Cache keys for the curated list endpoints.
const (
	KeyTop    = keyPrefix + "top"
	KeyRecent = keyPrefix + "new"
	KeyAll    = keyPrefix + "all"
)

// ProductListCache is a Redis cache-aside for the hot, read-mostly product
// list endpoints (top-rated, newest, capped catalog). Entries are invalidated
// on every product or review write.
type ProductListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductListCache creates a new Redis-backed product list cache.
func NewProductListCache(client *redis.Client, ttl time.Duration) *ProductListCache {
	return &ProductListCache{
		client: client,
		ttl:    ttl,
	}
}

// GetList retrieves a cached product list. A cache miss returns (nil, false, nil).
func (c *ProductListCache) GetList(ctx context.Context, key string) ([]domain.Product, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached products: %w", err)
	}

	return products, true, nil
}

// SetList stores a product list under the given key with the configured TTL.
func (c *ProductListCache) SetList(ctx context.Context, key string, products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal products: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// Invalidate drops all cached product lists. Called after any product or
// review write so readers never see stale aggregates.
func (c *ProductListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, KeyTop, KeyRecent, KeyAll).Err(); err != nil {
		return fmt.Errorf("redis del product lists: %w", err)
	}
	return nil
}
