package driving

import (
	"context"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
)

// SummarizeRequest asks for a model summary of one page.
type SummarizeRequest struct {
	URL    string `json:"url"`
	HTML   string `json:"html,omitempty"`
	Style  string `json:"style,omitempty"`
	ChatID string `json:"chat_id,omitempty"`
}

// SummarizeResponse is a model summary plus its citations.
type SummarizeResponse struct {
	URL        string                   `json:"url"`
	Title      string                   `json:"title"`
	Summary    string                   `json:"summary"`
	Style      string                   `json:"style"`
	Sources    []domain.SourceReference `json:"sources"`
	TokensUsed int                      `json:"tokens_used"`
	Cached     bool                     `json:"cached"`
}

// SummarizeService produces cached, rate-limited page summaries
type SummarizeService interface {
	// Summarize extracts the page and asks the model for a summary in
	// the requested style. Identical requests are served from cache.
	Summarize(ctx context.Context, userID string, req SummarizeRequest) (*SummarizeResponse, error)
}
