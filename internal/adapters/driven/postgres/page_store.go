package postgres

import (
	"context"
	"database/sql"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PageStore = (*PageStore)(nil)

// PageStore implements driven.PageStore using PostgreSQL
type PageStore struct {
	db *DB
}

// NewPageStore creates a new PageStore
func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

// SavePage creates or updates a page record
func (s *PageStore) SavePage(ctx context.Context, page *domain.PageIndex) error {
	query := `
		INSERT INTO pages (id, user_id, url, title, content_hash, chunk_count, indexed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content_hash = EXCLUDED.content_hash,
			chunk_count = EXCLUDED.chunk_count,
			indexed_at = EXCLUDED.indexed_at
	`
	_, err := s.db.ExecContext(ctx, query,
		page.ID, page.UserID, page.URL, page.Title, page.ContentHash, page.ChunkCount, page.IndexedAt)
	return err
}

// GetPage retrieves a page by ID
func (s *PageStore) GetPage(ctx context.Context, id string) (*domain.PageIndex, error) {
	query := `
		SELECT id, user_id, url, title, content_hash, chunk_count, indexed_at
		FROM pages
		WHERE id = $1
	`
	return scanPage(s.db.QueryRowContext(ctx, query, id))
}

// GetPageByURL retrieves a user's page record for a URL
func (s *PageStore) GetPageByURL(ctx context.Context, userID, url string) (*domain.PageIndex, error) {
	query := `
		SELECT id, user_id, url, title, content_hash, chunk_count, indexed_at
		FROM pages
		WHERE user_id = $1 AND url = $2
	`
	return scanPage(s.db.QueryRowContext(ctx, query, userID, url))
}

func scanPage(row *sql.Row) (*domain.PageIndex, error) {
	var page domain.PageIndex
	err := row.Scan(
		&page.ID, &page.UserID, &page.URL, &page.Title,
		&page.ContentHash, &page.ChunkCount, &page.IndexedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ListPages lists a user's pages, most recently indexed first
func (s *PageStore) ListPages(ctx context.Context, userID string) ([]*domain.PageIndex, error) {
	query := `
		SELECT id, user_id, url, title, content_hash, chunk_count, indexed_at
		FROM pages
		WHERE user_id = $1
		ORDER BY indexed_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*domain.PageIndex
	for rows.Next() {
		var page domain.PageIndex
		if err := rows.Scan(&page.ID, &page.UserID, &page.URL, &page.Title,
			&page.ContentHash, &page.ChunkCount, &page.IndexedAt); err != nil {
			return nil, err
		}
		pages = append(pages, &page)
	}
	return pages, rows.Err()
}

// DeletePage deletes a page. Chunks go with it via the foreign key.
func (s *PageStore) DeletePage(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveChunks replaces the stored chunks of a page
func (s *PageStore) SaveChunks(ctx context.Context, pageID string, chunks []*domain.PageChunk) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM page_chunks WHERE page_id = $1`, pageID); err != nil {
			return err
		}

		query := `
			INSERT INTO page_chunks (id, page_id, chunk_id, chunk_text, chunk_index, start_char, end_char, vector_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		for _, chunk := range chunks {
			var vectorID sql.NullString
			if chunk.VectorID != "" {
				vectorID = sql.NullString{String: chunk.VectorID, Valid: true}
			}
			if _, err := tx.ExecContext(ctx, query,
				chunk.ID, pageID, chunk.ChunkID, chunk.Text,
				chunk.Index, chunk.Start, chunk.End, vectorID); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListChunks lists a page's chunks in index order
func (s *PageStore) ListChunks(ctx context.Context, pageID string) ([]*domain.PageChunk, error) {
	query := `
		SELECT id, page_id, chunk_id, chunk_text, chunk_index, start_char, end_char, vector_id
		FROM page_chunks
		WHERE page_id = $1
		ORDER BY chunk_index
	`
	rows, err := s.db.QueryContext(ctx, query, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.PageChunk
	for rows.Next() {
		var chunk domain.PageChunk
		var vectorID sql.NullString
		if err := rows.Scan(&chunk.ID, &chunk.PageID, &chunk.ChunkID, &chunk.Text,
			&chunk.Index, &chunk.Start, &chunk.End, &vectorID); err != nil {
			return nil, err
		}
		chunk.VectorID = vectorID.String
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}

// SetChunkVectorID records the vector point backing a chunk
func (s *PageStore) SetChunkVectorID(ctx context.Context, chunkID, vectorID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE page_chunks SET vector_id = $1 WHERE id = $2`, vectorID, chunkID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
