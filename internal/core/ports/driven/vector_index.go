package driven

import (
	"context"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
)

// VectorIndex stores chunk embeddings and answers similarity queries
// (PostgreSQL with pgvector)
type VectorIndex interface {
	// Upsert stores one vector per chunk, scoped to a user and page.
	// Re-upserting a chunk replaces its previous point. Returns the
	// point IDs in chunk order.
	Upsert(ctx context.Context, chunks []domain.TextChunk, vectors [][]float32, userID, pageID string) ([]string, error)

	// Search returns the closest chunks to the query vector within the
	// filter scope, best first. Score is similarity, higher is closer;
	// equal scores are broken by most recent insertion.
	Search(ctx context.Context, queryVector []float32, filter domain.RetrievalFilter, limit int) ([]domain.RetrievalHit, error)

	// DeleteByPage removes all points of one page. Deleting nothing is
	// a no-op.
	DeleteByPage(ctx context.Context, userID, pageID string) error

	// DeleteByUser removes all points of one user
	DeleteByUser(ctx context.Context, userID string) error

	// Ping checks if the index backend is healthy
	Ping(ctx context.Context) error
}
