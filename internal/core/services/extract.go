package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/assembler"
	"github.com/pagesense-labs/pagesense-core/internal/chunker"
	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driving"
	"github.com/pagesense-labs/pagesense-core/internal/extract"
)

// Ensure extractService implements ExtractService
var _ driving.ExtractService = (*extractService)(nil)

// extractService implements the ExtractService interface
type extractService struct {
	fetcher   driven.PageFetcher
	pageStore driven.PageStore
	taskQueue driven.TaskQueue
	chunkCfg  chunker.Config
}

// NewExtractService creates a new ExtractService. pageStore and
// taskQueue may be nil when persistence is not wired.
func NewExtractService(
	fetcher driven.PageFetcher,
	pageStore driven.PageStore,
	taskQueue driven.TaskQueue,
) driving.ExtractService {
	return &extractService{
		fetcher:   fetcher,
		pageStore: pageStore,
		taskQueue: taskQueue,
		chunkCfg:  chunker.DefaultConfig(),
	}
}

// Extract runs the content extraction pipeline for one page
func (s *extractService) Extract(ctx context.Context, userID string, req driving.ExtractRequest) (*domain.ExtractionResult, error) {
	if req.URL == "" {
		return nil, domain.ErrInvalidInput
	}

	html := req.HTML
	if html == "" {
		page, err := s.fetcher.Fetch(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		html = page.HTML
	}

	result, err := s.runPipeline(html, req.URL)
	if err != nil {
		return nil, err
	}

	if req.Persist && s.pageStore != nil {
		if err := s.persist(ctx, userID, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// runPipeline gates, reduces, normalizes, redacts, chunks and
// summarizes page structure. Pure apart from the chunk config.
func (s *extractService) runPipeline(html, url string) (*domain.ExtractionResult, error) {
	// Sensitive-field gate runs against the raw markup, before any
	// text leaves the pipeline.
	if kinds := extract.Detect(html); len(kinds) > 0 {
		return nil, &domain.SensitiveContentError{Kinds: kinds}
	}

	title, content := extract.Reduce(html, url)
	text := extract.Redact(extract.Normalize(content))

	chunks, err := chunker.Split(text, url, s.chunkCfg)
	if err != nil {
		return nil, err
	}

	return &domain.ExtractionResult{
		URL:      url,
		Title:    title,
		Text:     text,
		Chunks:   chunks,
		Metadata: extract.Metadata(content, url),
	}, nil
}

// persist stores the page record and its chunks, then queues the page
// for background embedding
func (s *extractService) persist(ctx context.Context, userID string, result *domain.ExtractionResult) error {
	sum := md5.Sum([]byte(result.Text))
	contentHash := hex.EncodeToString(sum[:])

	page, err := s.pageStore.GetPageByURL(ctx, userID, result.URL)
	if err != nil {
		page = &domain.PageIndex{
			ID:     generateID(),
			UserID: userID,
			URL:    result.URL,
		}
	} else if page.ContentHash == contentHash {
		// Unchanged since the last visit, nothing to re-index.
		return nil
	}

	page.Title = result.Title
	page.ContentHash = contentHash
	page.ChunkCount = len(result.Chunks)
	page.IndexedAt = time.Now()
	if err := s.pageStore.SavePage(ctx, page); err != nil {
		return fmt.Errorf("save page: %w", err)
	}

	stored := make([]*domain.PageChunk, len(result.Chunks))
	for i, c := range result.Chunks {
		stored[i] = &domain.PageChunk{
			ID:      generateID(),
			PageID:  page.ID,
			ChunkID: c.ID,
			Text:    c.Text,
			Index:   c.Index,
			Start:   c.Start,
			End:     c.End,
		}
	}
	if err := s.pageStore.SaveChunks(ctx, page.ID, stored); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	if s.taskQueue != nil {
		task := domain.NewIndexPageTask(userID, page.ID)
		if err := s.taskQueue.Enqueue(ctx, task); err != nil {
			// Indexing is best-effort; the extraction itself succeeded.
			slog.Warn("failed to queue page for indexing", "page_id", page.ID, "error", err)
		}
	}
	return nil
}

// extractForPrompt is shared by the summarize and answer services:
// extract a page and assemble its chunks under the context budget.
func extractForPrompt(ctx context.Context, svc driving.ExtractService, userID, url, html string, maxChars int) (*domain.ExtractionResult, string, error) {
	result, err := svc.Extract(ctx, userID, driving.ExtractRequest{URL: url, HTML: html})
	if err != nil {
		return nil, "", err
	}
	return result, assembler.Assemble(result.Chunks, maxChars), nil
}
