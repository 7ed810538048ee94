package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
)

// Ensure GroqLLM implements LLMService
var _ driven.LLMService = (*GroqLLM)(nil)

const (
	// DefaultGroqBaseURL is Groq's OpenAI-compatible endpoint
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

	// DefaultGroqModel is used when no model is configured
	DefaultGroqModel = "llama-3.3-70b-versatile"

	defaultMaxTokens   = 1024
	defaultTemperature = 0.0
)

// Summary system prompts per style
var summaryPrompts = map[string]string{
	driven.StyleShort: "You are a concise summarization assistant. Create brief, " +
		"accurate summaries in 2-3 sentences that capture the main points.",
	driven.StyleLong: "You are a detailed summarization assistant. Create comprehensive " +
		"summaries that cover all key points, important details, and main arguments.",
	driven.StyleBullet: "You are a bullet-point summarization assistant. Create clear, " +
		"organized bullet-point summaries that highlight key information.",
}

const qaSystemPrompt = "You are a helpful AI assistant that answers questions based on provided content. " +
	"Always base your answers on the given content. If the content doesn't contain " +
	"enough information to answer the question, say so clearly. " +
	"Provide specific references when possible."

const compareSystemPrompt = "You are an AI assistant that analyzes and compares multiple web pages. " +
	"Provide clear, factual comparisons with specific references to each page. " +
	"When highlighting differences or similarities, cite which page each point comes from."

// GroqLLM implements LLMService against Groq's OpenAI-compatible chat API
type GroqLLM struct {
	client  openai.Client
	baseURL string
	model   string
}

// NewGroqLLM creates a new Groq-backed LLM service
func NewGroqLLM(apiKey, model, baseURL string) (*GroqLLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Groq API key is required")
	}
	if model == "" {
		model = DefaultGroqModel
	}
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}

	return &GroqLLM{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		),
		baseURL: baseURL,
		model:   model,
	}, nil
}

// WithAPIKey returns a service bound to a caller-supplied API key.
// An empty key returns the receiver unchanged.
func (g *GroqLLM) WithAPIKey(key string) driven.LLMService {
	if key == "" {
		return g
	}
	return &GroqLLM{
		client: openai.NewClient(
			option.WithAPIKey(key),
			option.WithBaseURL(g.baseURL),
		),
		baseURL: g.baseURL,
		model:   g.model,
	}
}

// Summarize generates a summary of the given content in the requested style
func (g *GroqLLM) Summarize(ctx context.Context, content, style string) (*driven.LLMResult, error) {
	systemPrompt, ok := summaryPrompts[style]
	if !ok {
		systemPrompt = summaryPrompts[driven.StyleShort]
	}

	return g.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage("Please summarize the following content:\n\n" + content),
	}, defaultMaxTokens)
}

// Answer answers a question grounded in the given page content.
// history carries prior chat turns, oldest first.
func (g *GroqLLM) Answer(ctx context.Context, question, content string, history []*domain.Message) (*driven.LLMResult, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(qaSystemPrompt),
	}

	for _, msg := range history {
		switch msg.Role {
		case domain.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	userMessage := fmt.Sprintf(
		"Content to reference:\n\n%s\n\nQuestion: %s\n\n"+
			"Please answer the question based on the content provided. "+
			"Include specific references to support your answer.",
		content, question)
	messages = append(messages, openai.UserMessage(userMessage))

	return g.complete(ctx, messages, defaultMaxTokens)
}

// Compare answers a question over a combined multi-page context
func (g *GroqLLM) Compare(ctx context.Context, question, combinedContext string, pageCount int) (*driven.LLMResult, error) {
	userPrompt := fmt.Sprintf(
		"I have %d pages to analyze:\n\n%s\n\nQuestion: %s\n\n"+
			"Please analyze and compare these pages to answer the question.",
		pageCount, combinedContext, question)

	// Comparisons get a longer completion budget
	maxTokens := defaultMaxTokens * 2
	if maxTokens > 2048 {
		maxTokens = 2048
	}

	return g.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(compareSystemPrompt),
		openai.UserMessage(userPrompt),
	}, maxTokens)
}

func (g *GroqLLM) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, maxTokens int) (*driven.LLMResult, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(g.model),
		Messages:    messages,
		Temperature: openai.Float(defaultTemperature),
		MaxTokens:   openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLLMUnavailable, err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: no completion choices returned", domain.ErrLLMUnavailable)
	}

	return &driven.LLMResult{
		Text:       completion.Choices[0].Message.Content,
		TokensUsed: int(completion.Usage.TotalTokens),
	}, nil
}

// Model returns the model name being used
func (g *GroqLLM) Model() string {
	return g.model
}

// Ping verifies the LLM service is available
func (g *GroqLLM) Ping(ctx context.Context) error {
	_, err := g.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage("ping"),
	}, 1)
	return err
}

// Close releases resources held by the LLM service
func (g *GroqLLM) Close() error {
	return nil
}
