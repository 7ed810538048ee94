package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.Cache = (*Cache)(nil)

const cachePrefix = "cache:"

// Cache implements driven.Cache using Redis with per-key TTL.
type Cache struct {
	client *redis.Client
}

// NewCache creates a new Redis-backed cache
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get retrieves a cached value. Returns domain.ErrNotFound on miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, cachePrefix+key).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache key: %w", err)
	}
	return data, nil
}

// Set stores a value with a TTL
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, cachePrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key: %w", err)
	}
	return nil
}

// Delete removes a cached value. Missing keys are a no-op.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, cachePrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache key: %w", err)
	}
	return nil
}

// Ping checks if the cache backend is healthy
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
