package driving

import (
	"context"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
)

// Multi-page comparison bounds.
const (
	MinCompareURLs = 2
	MaxCompareURLs = 5
)

// QARequest asks a question about one page.
type QARequest struct {
	URL      string `json:"url"`
	HTML     string `json:"html,omitempty"`
	Question string `json:"question"`
	ChatID   string `json:"chat_id,omitempty"`
}

// QAResponse is a grounded model answer plus its citations.
type QAResponse struct {
	Answer     string                   `json:"answer"`
	Sources    []domain.SourceReference `json:"sources"`
	TokensUsed int                      `json:"tokens_used"`
}

// CompareRequest asks a question across several pages.
type CompareRequest struct {
	URLs     []string `json:"urls"`
	Question string   `json:"question"`
}

// CompareResponse is a model answer over a combined multi-page context.
type CompareResponse struct {
	Answer     string `json:"answer"`
	PageCount  int    `json:"page_count"`
	TokensUsed int    `json:"tokens_used"`
}

// AnswerService answers questions grounded in page content
type AnswerService interface {
	// Answer answers a question about one page, optionally carrying
	// chat history and appending the turn to chat memory.
	Answer(ctx context.Context, userID string, req QARequest) (*QAResponse, error)

	// Compare answers a question across 2 to 5 pages, fetched
	// concurrently and assembled in request order.
	Compare(ctx context.Context, userID string, req CompareRequest) (*CompareResponse, error)
}
