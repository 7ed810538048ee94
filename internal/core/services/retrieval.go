package services

import (
	"context"
	"errors"
	"strings"

	"github.com/pagesense-labs/pagesense-core/internal/chunker"
	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driving"
)

// defaultSearchLimit is the hit count when the caller does not ask for
// a specific one.
const defaultSearchLimit = 5

// Ensure retrievalService implements RetrievalService
var _ driving.RetrievalService = (*retrievalService)(nil)

// retrievalService implements the RetrievalService interface
type retrievalService struct {
	embedder    driven.EmbeddingService
	vectorIndex driven.VectorIndex
	pageStore   driven.PageStore
	chunkCfg    chunker.Config
}

// NewRetrievalService creates a new RetrievalService
func NewRetrievalService(
	embedder driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
	pageStore driven.PageStore,
) driving.RetrievalService {
	return &retrievalService{
		embedder:    embedder,
		vectorIndex: vectorIndex,
		pageStore:   pageStore,
		chunkCfg:    chunker.DefaultConfig(),
	}
}

// IndexPage embeds a stored page's chunks and upserts them into the
// vector index
func (s *retrievalService) IndexPage(ctx context.Context, userID, pageID string) error {
	page, err := s.pageStore.GetPage(ctx, pageID)
	if err != nil {
		return err
	}
	if page.UserID != userID {
		return domain.ErrForbidden
	}

	stored, err := s.pageStore.ListChunks(ctx, pageID)
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return nil
	}

	chunks := make([]domain.TextChunk, len(stored))
	texts := make([]string, len(stored))
	for i, c := range stored {
		chunks[i] = domain.TextChunk{
			ID:    c.ChunkID,
			Text:  c.Text,
			Index: c.Index,
			Start: c.Start,
			End:   c.End,
		}
		texts[i] = c.Text
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}

	vectorIDs, err := s.vectorIndex.Upsert(ctx, chunks, vectors, userID, pageID)
	if err != nil {
		return err
	}

	for i, c := range stored {
		if err := s.pageStore.SetChunkVectorID(ctx, c.ID, vectorIDs[i]); err != nil {
			return err
		}
	}
	return nil
}

// Embed chunks, embeds and indexes standalone text under a document ID
func (s *retrievalService) Embed(ctx context.Context, userID string, req driving.EmbedRequest) (*driving.EmbedResponse, error) {
	docID := strings.TrimSpace(req.DocID)
	if docID == "" || strings.TrimSpace(req.Text) == "" {
		return nil, domain.ErrInvalidInput
	}

	chunks, err := chunker.Split(req.Text, docID, s.chunkCfg)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &driving.EmbedResponse{DocID: docID}, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	vectorIDs, err := s.vectorIndex.Upsert(ctx, chunks, vectors, userID, docID)
	if err != nil {
		return nil, err
	}

	return &driving.EmbedResponse{
		DocID:      docID,
		ChunkCount: len(chunks),
		VectorIDs:  vectorIDs,
	}, nil
}

// Search returns the user's chunks closest to the query text
func (s *retrievalService) Search(ctx context.Context, userID string, req driving.SearchRequest) ([]domain.RetrievalHit, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.ErrInvalidInput
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	filter := domain.RetrievalFilter{UserID: userID, PageID: req.PageID}
	return s.vectorIndex.Search(ctx, vector, filter, limit)
}

// DeletePage removes a page's points from the vector index and, when a
// stored record exists, the page and its chunks
func (s *retrievalService) DeletePage(ctx context.Context, userID, pageID string) error {
	if pageID == "" {
		return domain.ErrInvalidInput
	}

	page, err := s.pageStore.GetPage(ctx, pageID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// Standalone document indexed via Embed, vectors only.
	case err != nil:
		return err
	case page.UserID != userID:
		return domain.ErrForbidden
	}

	if err := s.vectorIndex.DeleteByPage(ctx, userID, pageID); err != nil {
		return err
	}
	if page != nil {
		return s.pageStore.DeletePage(ctx, pageID)
	}
	return nil
}

// DeleteUserData removes all of a user's points
func (s *retrievalService) DeleteUserData(ctx context.Context, userID string) error {
	return s.vectorIndex.DeleteByUser(ctx, userID)
}
