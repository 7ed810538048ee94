package driven

import (
	"context"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
)

// Summary styles accepted by LLMService.Summarize.
const (
	StyleShort  = "short"
	StyleLong   = "long"
	StyleBullet = "bullet"
)

// LLMResult is a model completion plus its token cost.
type LLMResult struct {
	Text       string
	TokensUsed int
}

// LLMService provides large language model completions over page content
type LLMService interface {
	// Summarize generates a summary of the given content in the
	// requested style (short, long or bullet)
	Summarize(ctx context.Context, content, style string) (*LLMResult, error)

	// Answer answers a question grounded in the given page content.
	// history carries prior chat turns, oldest first.
	Answer(ctx context.Context, question, content string, history []*domain.Message) (*LLMResult, error)

	// Compare answers a question over a combined multi-page context
	Compare(ctx context.Context, question, combinedContext string, pageCount int) (*LLMResult, error)

	// WithAPIKey returns a service bound to a caller-supplied API key.
	// An empty key returns the receiver unchanged.
	WithAPIKey(key string) LLMService

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}
