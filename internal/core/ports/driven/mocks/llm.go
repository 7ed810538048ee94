package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
)

// Ensure MockLLMService implements LLMService
var _ driven.LLMService = (*MockLLMService)(nil)

// MockLLMService is a canned-response LLM for testing
type MockLLMService struct {
	mu sync.Mutex

	// SummarizeFn, AnswerFn and CompareFn override the canned responses
	SummarizeFn func(content, style string) (*driven.LLMResult, error)
	AnswerFn    func(question, content string, history []*domain.Message) (*driven.LLMResult, error)
	CompareFn   func(question, combined string, pageCount int) (*driven.LLMResult, error)

	// Err, when set, is returned by every call
	Err error

	summarizeCalls int
	answerCalls    int
	compareCalls   int
	lastAPIKey     string
}

// NewMockLLMService creates a new MockLLMService
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{}
}

func (m *MockLLMService) Summarize(ctx context.Context, content, style string) (*driven.LLMResult, error) {
	m.mu.Lock()
	m.summarizeCalls++
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.SummarizeFn != nil {
		return m.SummarizeFn(content, style)
	}
	return &driven.LLMResult{Text: fmt.Sprintf("summary(%s)", style), TokensUsed: 10}, nil
}

func (m *MockLLMService) Answer(ctx context.Context, question, content string, history []*domain.Message) (*driven.LLMResult, error) {
	m.mu.Lock()
	m.answerCalls++
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.AnswerFn != nil {
		return m.AnswerFn(question, content, history)
	}
	return &driven.LLMResult{Text: "answer: " + question, TokensUsed: 10}, nil
}

func (m *MockLLMService) Compare(ctx context.Context, question, combinedContext string, pageCount int) (*driven.LLMResult, error) {
	m.mu.Lock()
	m.compareCalls++
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.CompareFn != nil {
		return m.CompareFn(question, combinedContext, pageCount)
	}
	return &driven.LLMResult{Text: fmt.Sprintf("comparison over %d pages", pageCount), TokensUsed: 10}, nil
}

func (m *MockLLMService) WithAPIKey(key string) driven.LLMService {
	m.mu.Lock()
	m.lastAPIKey = key
	m.mu.Unlock()
	return m
}

func (m *MockLLMService) Model() string { return "mock-llm" }

func (m *MockLLMService) Ping(ctx context.Context) error { return m.Err }

func (m *MockLLMService) Close() error { return nil }

// Call counters (for testing)

func (m *MockLLMService) SummarizeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summarizeCalls
}

func (m *MockLLMService) AnswerCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.answerCalls
}

func (m *MockLLMService) CompareCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.compareCalls
}

// LastAPIKey reports the key passed to WithAPIKey (for testing)
func (m *MockLLMService) LastAPIKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAPIKey
}
