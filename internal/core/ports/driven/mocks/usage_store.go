package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
)

// Ensure MockUsageStore implements UsageStore
var _ driven.UsageStore = (*MockUsageStore)(nil)

// MockUsageStore is a mock implementation of UsageStore for testing
type MockUsageStore struct {
	mu   sync.RWMutex
	logs []*domain.UsageLog
}

// NewMockUsageStore creates a new MockUsageStore
func NewMockUsageStore() *MockUsageStore {
	return &MockUsageStore{}
}

func (m *MockUsageStore) Save(ctx context.Context, log *domain.UsageLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockUsageStore) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.UsageLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.UsageLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].UserID == userID {
			result = append(result, m.logs[i])
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (m *MockUsageStore) TokensSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, log := range m.logs {
		if log.UserID == userID && log.CreatedAt.After(since) {
			total += int64(log.TokensUsed)
		}
	}
	return total, nil
}

// Logs returns all recorded entries (for testing)
func (m *MockUsageStore) Logs() []*domain.UsageLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.UsageLog, len(m.logs))
	copy(result, m.logs)
	return result
}
