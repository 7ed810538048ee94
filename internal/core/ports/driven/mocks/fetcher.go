package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
)

// Ensure MockPageFetcher implements PageFetcher
var _ driven.PageFetcher = (*MockPageFetcher)(nil)

// MockPageFetcher serves canned pages by URL for testing
type MockPageFetcher struct {
	mu    sync.RWMutex
	pages map[string]string
	calls []string

	// Err, when set, is returned by every Fetch
	Err error
}

// NewMockPageFetcher creates a new MockPageFetcher
func NewMockPageFetcher() *MockPageFetcher {
	return &MockPageFetcher{pages: make(map[string]string)}
}

// AddPage registers canned markup for a URL
func (m *MockPageFetcher) AddPage(url, html string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[url] = html
}

func (m *MockPageFetcher) Fetch(ctx context.Context, url string) (*driven.FetchedPage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	html, ok := m.pages[url]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFetchFailed, url)
	}
	return &driven.FetchedPage{URL: url, FinalURL: url, HTML: html, StatusCode: 200}, nil
}

// Calls returns the fetched URLs in call order (for testing)
func (m *MockPageFetcher) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]string, len(m.calls))
	copy(result, m.calls)
	return result
}
