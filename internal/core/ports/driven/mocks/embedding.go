package mocks

import (
	"context"
	"crypto/md5"
	"sync"

	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
)

// Ensure MockEmbeddingService implements EmbeddingService
var _ driven.EmbeddingService = (*MockEmbeddingService)(nil)

// MockEmbeddingService produces deterministic fake embeddings derived
// from the text, so equal texts embed equally.
type MockEmbeddingService struct {
	mu        sync.Mutex
	dims      int
	callCount int

	// Err, when set, is returned by every embedding call
	Err error
}

// NewMockEmbeddingService creates a new MockEmbeddingService
func NewMockEmbeddingService(dims int) *MockEmbeddingService {
	if dims <= 0 {
		dims = 8
	}
	return &MockEmbeddingService{dims: dims}
}

func (m *MockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = m.vector(text)
	}
	return result, nil
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.vector(query), nil
}

func (m *MockEmbeddingService) vector(text string) []float32 {
	sum := md5.Sum([]byte(text))
	v := make([]float32, m.dims)
	for i := range v {
		v[i] = float32(sum[i%len(sum)]) / 255
	}
	return v
}

func (m *MockEmbeddingService) Dimensions() int { return m.dims }

func (m *MockEmbeddingService) Model() string { return "mock-embedder" }

func (m *MockEmbeddingService) HealthCheck(ctx context.Context) error { return m.Err }

func (m *MockEmbeddingService) Close() error { return nil }

// CallCount reports how many embedding calls were made (for testing)
func (m *MockEmbeddingService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
