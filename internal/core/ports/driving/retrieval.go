package driving

import (
	"context"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
)

// EmbedRequest asks to embed and index standalone text.
type EmbedRequest struct {
	DocID string `json:"doc_id"`
	Text  string `json:"text"`
}

// EmbedResponse reports the indexed points.
type EmbedResponse struct {
	DocID      string   `json:"doc_id"`
	ChunkCount int      `json:"chunk_count"`
	VectorIDs  []string `json:"vector_ids"`
}

// SearchRequest asks for the chunks closest to a query.
type SearchRequest struct {
	Query  string `json:"query"`
	PageID string `json:"page_id,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// RetrievalService embeds chunks and answers similarity queries
type RetrievalService interface {
	// IndexPage embeds a stored page's chunks and upserts them into the
	// vector index. Used by the background worker.
	IndexPage(ctx context.Context, userID, pageID string) error

	// Embed chunks, embeds and indexes standalone text under a document ID
	Embed(ctx context.Context, userID string, req EmbedRequest) (*EmbedResponse, error)

	// Search returns the user's chunks closest to the query text
	Search(ctx context.Context, userID string, req SearchRequest) ([]domain.RetrievalHit, error)

	// DeletePage removes a page's points from the vector index along
	// with its stored record, if one exists
	DeletePage(ctx context.Context, userID, pageID string) error

	// DeleteUserData removes all of a user's points
	DeleteUserData(ctx context.Context, userID string) error
}
