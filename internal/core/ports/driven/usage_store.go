package driven

import (
	"context"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
)

// UsageStore records metered collaborator calls (PostgreSQL)
type UsageStore interface {
	// Save appends a usage record
	Save(ctx context.Context, log *domain.UsageLog) error

	// ListByUser lists a user's most recent usage records
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.UsageLog, error)

	// TokensSince sums the tokens a user consumed since the cutoff
	TokensSince(ctx context.Context, userID string, since time.Time) (int64, error)
}
