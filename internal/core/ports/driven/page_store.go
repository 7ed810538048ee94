package driven

import (
	"context"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
)

// PageStore handles indexed page and chunk persistence (PostgreSQL)
type PageStore interface {
	// SavePage creates or updates a page record
	SavePage(ctx context.Context, page *domain.PageIndex) error

	// GetPage retrieves a page by ID
	GetPage(ctx context.Context, id string) (*domain.PageIndex, error)

	// GetPageByURL retrieves a user's page record for a URL
	GetPageByURL(ctx context.Context, userID, url string) (*domain.PageIndex, error)

	// ListPages lists a user's pages, most recently indexed first
	ListPages(ctx context.Context, userID string) ([]*domain.PageIndex, error)

	// DeletePage deletes a page and its chunks
	DeletePage(ctx context.Context, id string) error

	// SaveChunks replaces the stored chunks of a page
	SaveChunks(ctx context.Context, pageID string, chunks []*domain.PageChunk) error

	// ListChunks lists a page's chunks in index order
	ListChunks(ctx context.Context, pageID string) ([]*domain.PageChunk, error)

	// SetChunkVectorID records the vector point backing a chunk
	SetChunkVectorID(ctx context.Context, chunkID, vectorID string) error
}
