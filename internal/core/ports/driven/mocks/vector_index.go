package mocks

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
)

// Ensure MockVectorIndex implements VectorIndex
var _ driven.VectorIndex = (*MockVectorIndex)(nil)

type mockPoint struct {
	id     string
	userID string
	pageID string
	chunk  domain.TextChunk
	vector []float32
	seq    int
}

// MockVectorIndex is an in-memory VectorIndex for testing. Search
// scores by dot product, which is enough to order deterministic mock
// vectors.
type MockVectorIndex struct {
	mu     sync.RWMutex
	points map[string]*mockPoint
	seq    int

	// Err, when set, is returned by every call
	Err error
}

// NewMockVectorIndex creates a new MockVectorIndex
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{points: make(map[string]*mockPoint)}
}

func (m *MockVectorIndex) Upsert(ctx context.Context, chunks []domain.TextChunk, vectors [][]float32, userID, pageID string) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("%w: %d chunks, %d vectors", domain.ErrInvalidInput, len(chunks), len(vectors))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		sum := md5.Sum([]byte(userID + ":" + pageID + ":" + chunk.ID))
		id := hex.EncodeToString(sum[:])
		m.seq++
		m.points[id] = &mockPoint{
			id:     id,
			userID: userID,
			pageID: pageID,
			chunk:  chunk,
			vector: vectors[i],
			seq:    m.seq,
		}
		ids[i] = id
	}
	return ids, nil
}

func (m *MockVectorIndex) Search(ctx context.Context, queryVector []float32, filter domain.RetrievalFilter, limit int) ([]domain.RetrievalHit, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	type scored struct {
		point *mockPoint
		score float64
	}
	var candidates []scored
	for _, p := range m.points {
		if p.userID != filter.UserID {
			continue
		}
		if filter.PageID != "" && p.pageID != filter.PageID {
			continue
		}
		var dot float64
		for i := 0; i < len(queryVector) && i < len(p.vector); i++ {
			dot += float64(queryVector[i]) * float64(p.vector[i])
		}
		candidates = append(candidates, scored{point: p, score: dot})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].point.seq > candidates[j].point.seq
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	hits := make([]domain.RetrievalHit, len(candidates))
	for i, c := range candidates {
		hits[i] = domain.RetrievalHit{
			ChunkID:  c.point.chunk.ID,
			Text:     c.point.chunk.Text,
			Score:    c.score,
			Start:    c.point.chunk.Start,
			End:      c.point.chunk.End,
			Selector: c.point.chunk.Selector,
		}
	}
	return hits, nil
}

func (m *MockVectorIndex) DeleteByPage(ctx context.Context, userID, pageID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.points {
		if p.userID == userID && p.pageID == pageID {
			delete(m.points, id)
		}
	}
	return nil
}

func (m *MockVectorIndex) DeleteByUser(ctx context.Context, userID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.points {
		if p.userID == userID {
			delete(m.points, id)
		}
	}
	return nil
}

func (m *MockVectorIndex) Ping(ctx context.Context) error { return m.Err }

// Count reports how many points are stored (for testing)
func (m *MockVectorIndex) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points)
}
