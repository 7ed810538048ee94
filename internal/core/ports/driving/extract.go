package driving

import (
	"context"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
)

// ExtractRequest asks for readable content from one page. HTML may
// carry pre-fetched markup; when empty the page is fetched from URL.
type ExtractRequest struct {
	URL     string `json:"url"`
	HTML    string `json:"html,omitempty"`
	Persist bool   `json:"persist,omitempty"`
}

// ExtractService runs the content extraction pipeline
type ExtractService interface {
	// Extract fetches (if needed), gates on sensitive fields, reduces,
	// normalizes, redacts, chunks and summarizes page structure.
	// Persist additionally stores the page and queues it for indexing.
	Extract(ctx context.Context, userID string, req ExtractRequest) (*domain.ExtractionResult, error)
}
