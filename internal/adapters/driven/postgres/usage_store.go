package postgres

import (
	"context"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.UsageStore = (*UsageStore)(nil)

// UsageStore implements driven.UsageStore using PostgreSQL
type UsageStore struct {
	db *DB
}

// NewUsageStore creates a new UsageStore
func NewUsageStore(db *DB) *UsageStore {
	return &UsageStore{db: db}
}

// Save appends a usage record
func (s *UsageStore) Save(ctx context.Context, log *domain.UsageLog) error {
	query := `
		INSERT INTO usage_logs (id, user_id, endpoint, kind, tokens_used, duration_ms, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		log.ID, log.UserID, log.Endpoint, log.Kind,
		log.TokensUsed, log.DurationMS, log.Success, log.CreatedAt)
	return err
}

// ListByUser lists a user's most recent usage records
func (s *UsageStore) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.UsageLog, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, user_id, endpoint, kind, tokens_used, duration_ms, success, created_at
		FROM usage_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.UsageLog
	for rows.Next() {
		var log domain.UsageLog
		if err := rows.Scan(&log.ID, &log.UserID, &log.Endpoint, &log.Kind,
			&log.TokensUsed, &log.DurationMS, &log.Success, &log.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &log)
	}
	return logs, rows.Err()
}

// TokensSince sums the tokens a user consumed since the cutoff
func (s *UsageStore) TokensSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(tokens_used), 0) FROM usage_logs WHERE user_id = $1 AND created_at >= $2`,
		userID, since).Scan(&total)
	return total, err
}
