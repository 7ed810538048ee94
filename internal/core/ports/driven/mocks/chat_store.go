package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
)

// Ensure MockChatStore implements ChatStore
var _ driven.ChatStore = (*MockChatStore)(nil)

// MockChatStore is a mock implementation of ChatStore for testing
type MockChatStore struct {
	mu       sync.RWMutex
	chats    map[string]*domain.Chat
	messages map[string][]*domain.Message
}

// NewMockChatStore creates a new MockChatStore
func NewMockChatStore() *MockChatStore {
	return &MockChatStore{
		chats:    make(map[string]*domain.Chat),
		messages: make(map[string][]*domain.Message),
	}
}

func (m *MockChatStore) SaveChat(ctx context.Context, chat *domain.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats[chat.ID] = chat
	return nil
}

func (m *MockChatStore) GetChat(ctx context.Context, id string) (*domain.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chat, ok := m.chats[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return chat, nil
}

func (m *MockChatStore) ListChats(ctx context.Context, userID string) ([]*domain.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Chat
	for _, chat := range m.chats {
		if chat.UserID == userID {
			result = append(result, chat)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (m *MockChatStore) CountChats(ctx context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, chat := range m.chats {
		if chat.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *MockChatStore) DeleteChat(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chats[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.chats, id)
	delete(m.messages, id)
	return nil
}

func (m *MockChatStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chats[msg.ChatID]; !ok {
		return domain.ErrNotFound
	}
	m.messages[msg.ChatID] = append(m.messages[msg.ChatID], msg)
	return nil
}

func (m *MockChatStore) ListMessages(ctx context.Context, chatID string, limit int) ([]*domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.messages[chatID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	result := make([]*domain.Message, len(msgs))
	copy(result, msgs)
	return result, nil
}

func (m *MockChatStore) CountMessages(ctx context.Context, chatID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages[chatID]), nil
}

func (m *MockChatStore) DeleteOldestMessages(ctx context.Context, chatID string, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages[chatID]
	if n >= len(msgs) {
		m.messages[chatID] = nil
		return nil
	}
	m.messages[chatID] = msgs[n:]
	return nil
}

func (m *MockChatStore) ListIdleChats(ctx context.Context, cutoff time.Time) ([]*domain.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Chat
	for _, chat := range m.chats {
		if chat.UpdatedAt.Before(cutoff) {
			result = append(result, chat)
		}
	}
	return result, nil
}
