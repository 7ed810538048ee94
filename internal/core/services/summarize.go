package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/assembler"
	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driving"
)

// Request budgets shared by the LLM-backed services.
const (
	// contextBudget bounds the assembled page context in characters
	contextBudget = 8000
	// sourceCount is how many leading chunks are cited back
	sourceCount = 3
	// rateLimitPerMinute bounds LLM-backed calls per user
	rateLimitPerMinute = 60
	// summaryCacheTTL is how long summaries are served from cache
	summaryCacheTTL = 24 * time.Hour
)

// Ensure summarizeService implements SummarizeService
var _ driving.SummarizeService = (*summarizeService)(nil)

// summarizeService implements the SummarizeService interface
type summarizeService struct {
	extract    driving.ExtractService
	chats      driving.ChatService
	llm        driven.LLMService
	cache      driven.Cache
	limiter    driven.RateLimiter
	userStore  driven.UserStore
	usageStore driven.UsageStore
}

// NewSummarizeService creates a new SummarizeService
func NewSummarizeService(
	extract driving.ExtractService,
	chats driving.ChatService,
	llm driven.LLMService,
	cache driven.Cache,
	limiter driven.RateLimiter,
	userStore driven.UserStore,
	usageStore driven.UsageStore,
) driving.SummarizeService {
	return &summarizeService{
		extract:    extract,
		chats:      chats,
		llm:        llm,
		cache:      cache,
		limiter:    limiter,
		userStore:  userStore,
		usageStore: usageStore,
	}
}

// Summarize extracts the page and asks the model for a summary
func (s *summarizeService) Summarize(ctx context.Context, userID string, req driving.SummarizeRequest) (*driving.SummarizeResponse, error) {
	if req.URL == "" {
		return nil, domain.ErrInvalidInput
	}
	style := req.Style
	if style == "" {
		style = driven.StyleShort
	}
	switch style {
	case driven.StyleShort, driven.StyleLong, driven.StyleBullet:
	default:
		return nil, domain.ErrInvalidInput
	}

	if err := checkRateLimit(ctx, s.limiter, "summarize", userID); err != nil {
		return nil, err
	}

	result, content, err := extractForPrompt(ctx, s.extract, userID, req.URL, req.HTML, contextBudget)
	if err != nil {
		return nil, err
	}

	cacheKey := summaryCacheKey(userID, result.Text, style)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		var resp driving.SummarizeResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			resp.Cached = true
			return &resp, nil
		}
	}

	started := time.Now()
	llmResult, err := s.llm.WithAPIKey(userAPIKey(ctx, s.userStore, userID)).Summarize(ctx, content, style)
	recordUsage(ctx, s.usageStore, userID, "summarize", style, llmResult, started, err)
	if err != nil {
		return nil, err
	}

	resp := &driving.SummarizeResponse{
		URL:        req.URL,
		Title:      result.Title,
		Summary:    llmResult.Text,
		Style:      style,
		Sources:    assembler.Sources(result.Chunks, sourceCount),
		TokensUsed: llmResult.TokensUsed,
	}

	if data, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(ctx, cacheKey, data, summaryCacheTTL); err != nil {
			slog.Warn("failed to cache summary", "error", err)
		}
	}

	if req.ChatID != "" {
		appendTurn(ctx, s.chats, userID, req.ChatID,
			"Summarize this page: "+req.URL, llmResult.Text)
	}
	return resp, nil
}

// summaryCacheKey keys a summary on the user, the extracted text and
// the requested style
func summaryCacheKey(userID, text, style string) string {
	content := md5.Sum([]byte(text))
	key := md5.Sum([]byte(userID + ":" + hex.EncodeToString(content[:]) + ":" + style))
	return "summary:" + hex.EncodeToString(key[:])
}

// Helpers shared by the LLM-backed services

func checkRateLimit(ctx context.Context, limiter driven.RateLimiter, endpoint, userID string) error {
	if limiter == nil {
		return nil
	}
	allowed, _, err := limiter.Allow(ctx, "ratelimit:"+endpoint+":"+userID, rateLimitPerMinute, time.Minute)
	if err != nil {
		// A broken limiter backend must not take the API down.
		slog.Warn("rate limiter unavailable", "error", err)
		return nil
	}
	if !allowed {
		return domain.ErrRateLimited
	}
	return nil
}

// userAPIKey loads the user's own LLM key, empty when unset
func userAPIKey(ctx context.Context, users driven.UserStore, userID string) string {
	if users == nil {
		return ""
	}
	user, err := users.Get(ctx, userID)
	if err != nil {
		return ""
	}
	return user.LLMAPIKey
}

// recordUsage writes one usage log entry, success or not
func recordUsage(ctx context.Context, usage driven.UsageStore, userID, endpoint, kind string, result *driven.LLMResult, started time.Time, callErr error) {
	if usage == nil {
		return
	}
	log := &domain.UsageLog{
		ID:         generateID(),
		UserID:     userID,
		Endpoint:   endpoint,
		Kind:       kind,
		DurationMS: time.Since(started).Milliseconds(),
		Success:    callErr == nil,
		CreatedAt:  time.Now(),
	}
	if result != nil {
		log.TokensUsed = result.TokensUsed
	}
	if err := usage.Save(ctx, log); err != nil {
		slog.Warn("failed to record usage", "endpoint", endpoint, "error", err)
	}
}

// appendTurn adds a question/answer pair to chat memory, best-effort
func appendTurn(ctx context.Context, chats driving.ChatService, userID, chatID, question, answer string) {
	if chats == nil {
		return
	}
	if _, err := chats.AppendMessage(ctx, userID, chatID, domain.RoleUser, question); err != nil {
		slog.Warn("failed to append chat turn", "chat_id", chatID, "error", err)
		return
	}
	if _, err := chats.AppendMessage(ctx, userID, chatID, domain.RoleAssistant, answer); err != nil {
		slog.Warn("failed to append chat turn", "chat_id", chatID, "error", err)
	}
}
