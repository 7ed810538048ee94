package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
)

// Ensure mocks implement their ports
var (
	_ driven.Cache       = (*MockCache)(nil)
	_ driven.RateLimiter = (*MockRateLimiter)(nil)
)

// MockCache is an in-memory Cache for testing. TTLs are recorded but
// entries never expire on their own.
type MockCache struct {
	mu     sync.RWMutex
	values map[string][]byte
	ttls   map[string]time.Duration
}

// NewMockCache creates a new MockCache
func NewMockCache() *MockCache {
	return &MockCache{
		values: make(map[string][]byte),
		ttls:   make(map[string]time.Duration),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return value, nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	delete(m.ttls, key)
	return nil
}

func (m *MockCache) Ping(ctx context.Context) error {
	return nil
}

// TTL reports the TTL a key was stored with (for testing)
func (m *MockCache) TTL(key string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ttls[key]
}

// MockRateLimiter is an in-memory RateLimiter for testing. Windows
// never roll over on their own.
type MockRateLimiter struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMockRateLimiter creates a new MockRateLimiter
func NewMockRateLimiter() *MockRateLimiter {
	return &MockRateLimiter{counts: make(map[string]int)}
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	count := m.counts[key]
	if count > limit {
		return false, 0, nil
	}
	return true, limit - count, nil
}

func (m *MockRateLimiter) Reset(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.counts, key)
	return nil
}
