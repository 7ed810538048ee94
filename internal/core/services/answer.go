package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/assembler"
	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driving"
)

// historyLimit is how many trailing chat messages are handed to the
// model as conversation history.
const historyLimit = 10

// Ensure answerService implements AnswerService
var _ driving.AnswerService = (*answerService)(nil)

// answerService implements the AnswerService interface
type answerService struct {
	extract    driving.ExtractService
	chats      driving.ChatService
	llm        driven.LLMService
	limiter    driven.RateLimiter
	userStore  driven.UserStore
	usageStore driven.UsageStore
}

// NewAnswerService creates a new AnswerService
func NewAnswerService(
	extract driving.ExtractService,
	chats driving.ChatService,
	llm driven.LLMService,
	limiter driven.RateLimiter,
	userStore driven.UserStore,
	usageStore driven.UsageStore,
) driving.AnswerService {
	return &answerService{
		extract:    extract,
		chats:      chats,
		llm:        llm,
		limiter:    limiter,
		userStore:  userStore,
		usageStore: usageStore,
	}
}

// Answer answers a question about one page
func (s *answerService) Answer(ctx context.Context, userID string, req driving.QARequest) (*driving.QAResponse, error) {
	question := strings.TrimSpace(req.Question)
	if req.URL == "" || question == "" {
		return nil, domain.ErrInvalidInput
	}

	if err := checkRateLimit(ctx, s.limiter, "qa", userID); err != nil {
		return nil, err
	}

	result, content, err := extractForPrompt(ctx, s.extract, userID, req.URL, req.HTML, contextBudget)
	if err != nil {
		return nil, err
	}

	var history []*domain.Message
	if req.ChatID != "" {
		msgs, err := s.chats.Messages(ctx, userID, req.ChatID)
		if err != nil {
			return nil, err
		}
		if len(msgs) > historyLimit {
			msgs = msgs[len(msgs)-historyLimit:]
		}
		history = msgs
	}

	started := time.Now()
	llmResult, err := s.llm.WithAPIKey(userAPIKey(ctx, s.userStore, userID)).Answer(ctx, question, content, history)
	recordUsage(ctx, s.usageStore, userID, "qa", "", llmResult, started, err)
	if err != nil {
		return nil, err
	}

	if req.ChatID != "" {
		appendTurn(ctx, s.chats, userID, req.ChatID, question, llmResult.Text)
	}

	return &driving.QAResponse{
		Answer:     llmResult.Text,
		Sources:    assembler.Sources(result.Chunks, sourceCount),
		TokensUsed: llmResult.TokensUsed,
	}, nil
}

// Compare answers a question across several pages. Pages are fetched
// and extracted concurrently but assembled in request order.
func (s *answerService) Compare(ctx context.Context, userID string, req driving.CompareRequest) (*driving.CompareResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(req.URLs) < driving.MinCompareURLs || len(req.URLs) > driving.MaxCompareURLs {
		return nil, domain.ErrInvalidInput
	}

	if err := checkRateLimit(ctx, s.limiter, "qa", userID); err != nil {
		return nil, err
	}

	groups := make([][]domain.TextChunk, len(req.URLs))
	errs := make([]error, len(req.URLs))
	var wg sync.WaitGroup
	for i, url := range req.URLs {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			result, err := s.extract.Extract(ctx, userID, driving.ExtractRequest{URL: url})
			if err != nil {
				errs[i] = err
				return
			}
			groups[i] = result.Chunks
		}(i, url)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	combined := assembler.AssembleSources(groups, req.URLs, assembler.DefaultPerSourceCap, contextBudget)

	started := time.Now()
	llmResult, err := s.llm.WithAPIKey(userAPIKey(ctx, s.userStore, userID)).Compare(ctx, question, combined, len(req.URLs))
	recordUsage(ctx, s.usageStore, userID, "qa_compare", "", llmResult, started, err)
	if err != nil {
		return nil, err
	}

	return &driving.CompareResponse{
		Answer:     llmResult.Text,
		PageCount:  len(req.URLs),
		TokensUsed: llmResult.TokensUsed,
	}, nil
}
