package mocks

import (
	"context"
	"sync"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
)

// Ensure MockPageStore implements PageStore
var _ driven.PageStore = (*MockPageStore)(nil)

// MockPageStore is a mock implementation of PageStore for testing
type MockPageStore struct {
	mu     sync.RWMutex
	pages  map[string]*domain.PageIndex
	chunks map[string][]*domain.PageChunk

	// GetPageErr, when set, is returned by GetPage instead of a lookup
	GetPageErr error
}

// NewMockPageStore creates a new MockPageStore
func NewMockPageStore() *MockPageStore {
	return &MockPageStore{
		pages:  make(map[string]*domain.PageIndex),
		chunks: make(map[string][]*domain.PageChunk),
	}
}

func (m *MockPageStore) SavePage(ctx context.Context, page *domain.PageIndex) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[page.ID] = page
	return nil
}

func (m *MockPageStore) GetPage(ctx context.Context, id string) (*domain.PageIndex, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetPageErr != nil {
		return nil, m.GetPageErr
	}
	page, ok := m.pages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return page, nil
}

func (m *MockPageStore) GetPageByURL(ctx context.Context, userID, url string) (*domain.PageIndex, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, page := range m.pages {
		if page.UserID == userID && page.URL == url {
			return page, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPageStore) ListPages(ctx context.Context, userID string) ([]*domain.PageIndex, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.PageIndex
	for _, page := range m.pages {
		if page.UserID == userID {
			result = append(result, page)
		}
	}
	return result, nil
}

func (m *MockPageStore) DeletePage(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pages[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.pages, id)
	delete(m.chunks, id)
	return nil
}

func (m *MockPageStore) SaveChunks(ctx context.Context, pageID string, chunks []*domain.PageChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[pageID] = chunks
	return nil
}

func (m *MockPageStore) ListChunks(ctx context.Context, pageID string) ([]*domain.PageChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.PageChunk, len(m.chunks[pageID]))
	copy(result, m.chunks[pageID])
	return result, nil
}

func (m *MockPageStore) SetChunkVectorID(ctx context.Context, chunkID, vectorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chunks := range m.chunks {
		for _, c := range chunks {
			if c.ID == chunkID {
				c.VectorID = vectorID
				return nil
			}
		}
	}
	return domain.ErrNotFound
}
