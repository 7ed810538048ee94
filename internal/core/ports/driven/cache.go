package driven

import (
	"context"
	"time"
)

// Cache is a TTL key-value cache for serialized responses (Redis)
type Cache interface {
	// Get retrieves a cached value. Returns domain.ErrNotFound on miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a cached value. Missing keys are a no-op.
	Delete(ctx context.Context, key string) error

	// Ping checks if the cache backend is healthy
	Ping(ctx context.Context) error
}

// RateLimiter enforces fixed-window request budgets (Redis)
type RateLimiter interface {
	// Allow counts one request against the key's current window and
	// reports whether it stays within limit. remaining is how many
	// requests the window has left after this one.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, remaining int, err error)

	// Reset clears the key's current window
	Reset(ctx context.Context, key string) error
}
