// Package vectorindex implements similarity search over pgvector.
// Chunk embeddings live in the page_vectors table next to the rest of
// the PostgreSQL data, so index writes and page records share one
// backend.
package vectorindex

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/pagesense-labs/pagesense-core/internal/adapters/driven/postgres"
	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*PgVectorIndex)(nil)

// PgVectorIndex implements driven.VectorIndex on PostgreSQL with the
// pgvector extension.
type PgVectorIndex struct {
	db *postgres.DB
}

// NewPgVectorIndex creates a new pgvector-backed index
func NewPgVectorIndex(db *postgres.DB) *PgVectorIndex {
	return &PgVectorIndex{db: db}
}

// pointID derives a stable point identity so re-indexing a chunk
// replaces its previous vector.
func pointID(userID, pageID, chunkID string) string {
	sum := md5.Sum([]byte(userID + ":" + pageID + ":" + chunkID))
	return hex.EncodeToString(sum[:])
}

// Upsert stores one vector per chunk, scoped to a user and page.
// Returns the point IDs in chunk order.
func (idx *PgVectorIndex) Upsert(ctx context.Context, chunks []domain.TextChunk, vectors [][]float32, userID, pageID string) ([]string, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunk/vector count mismatch: %d != %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	query := `
		INSERT INTO page_vectors (id, user_id, page_id, chunk_id, chunk_text, start_char, end_char, selector, embedding, indexed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			chunk_text = EXCLUDED.chunk_text,
			start_char = EXCLUDED.start_char,
			end_char = EXCLUDED.end_char,
			selector = EXCLUDED.selector,
			embedding = EXCLUDED.embedding,
			indexed_at = EXCLUDED.indexed_at
	`

	ids := make([]string, len(chunks))
	now := time.Now()

	for i, chunk := range chunks {
		id := pointID(userID, pageID, chunk.ID)
		ids[i] = id

		_, err := idx.db.ExecContext(ctx, query,
			id, userID, pageID, chunk.ID, chunk.Text,
			chunk.Start, chunk.End, chunk.Selector,
			pgvector.NewVector(vectors[i]), now)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert vector for chunk %s: %w", chunk.ID, err)
		}
	}

	return ids, nil
}

// Search returns the closest chunks to the query vector within the
// filter scope, best first. Score is cosine similarity; ties go to the
// most recently indexed point.
func (idx *PgVectorIndex) Search(ctx context.Context, queryVector []float32, filter domain.RetrievalFilter, limit int) ([]domain.RetrievalHit, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT chunk_id, chunk_text, start_char, end_char, selector,
		       1 - (embedding <=> $1) AS score
		FROM page_vectors
		WHERE user_id = $2
	`
	args := []interface{}{pgvector.NewVector(queryVector), filter.UserID}

	if filter.PageID != "" {
		query += ` AND page_id = $3`
		args = append(args, filter.PageID)
	}

	query += fmt.Sprintf(` ORDER BY score DESC, indexed_at DESC LIMIT %d`, limit)

	rows, err := idx.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var hits []domain.RetrievalHit
	for rows.Next() {
		var hit domain.RetrievalHit
		if err := rows.Scan(&hit.ChunkID, &hit.Text, &hit.Start, &hit.End, &hit.Selector, &hit.Score); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// DeleteByPage removes all points of one page. Deleting nothing is a no-op.
func (idx *PgVectorIndex) DeleteByPage(ctx context.Context, userID, pageID string) error {
	_, err := idx.db.ExecContext(ctx,
		`DELETE FROM page_vectors WHERE user_id = $1 AND page_id = $2`, userID, pageID)
	return err
}

// DeleteByUser removes all points of one user
func (idx *PgVectorIndex) DeleteByUser(ctx context.Context, userID string) error {
	_, err := idx.db.ExecContext(ctx, `DELETE FROM page_vectors WHERE user_id = $1`, userID)
	return err
}

// Ping checks if the index backend is healthy
func (idx *PgVectorIndex) Ping(ctx context.Context) error {
	return idx.db.Ping(ctx)
}
