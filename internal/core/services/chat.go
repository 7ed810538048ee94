package services

import (
	"context"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driving"
)

// Ensure chatService implements ChatService
var _ driving.ChatService = (*chatService)(nil)

// chatService implements the ChatService interface
type chatService struct {
	chatStore driven.ChatStore
}

// NewChatService creates a new ChatService
func NewChatService(chatStore driven.ChatStore) driving.ChatService {
	return &chatService{chatStore: chatStore}
}

// Create opens a chat, enforcing the per-user chat limit
func (s *chatService) Create(ctx context.Context, userID string, req domain.CreateChatRequest) (*domain.Chat, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}

	count, err := s.chatStore.CountChats(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= domain.MaxChatsPerUser {
		return nil, domain.ErrChatLimitReached
	}

	now := time.Now()
	chat := &domain.Chat{
		ID:        generateID(),
		UserID:    userID,
		Title:     req.Title,
		PageURL:   req.PageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.chatStore.SaveChat(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// Get retrieves one of the user's chats
func (s *chatService) Get(ctx context.Context, userID, chatID string) (*domain.Chat, error) {
	return s.ownedChat(ctx, userID, chatID)
}

// List lists the user's chats, most recently updated first
func (s *chatService) List(ctx context.Context, userID string) ([]*domain.Chat, error) {
	return s.chatStore.ListChats(ctx, userID)
}

// Delete removes a chat and its messages
func (s *chatService) Delete(ctx context.Context, userID, chatID string) error {
	if _, err := s.ownedChat(ctx, userID, chatID); err != nil {
		return err
	}
	return s.chatStore.DeleteChat(ctx, chatID)
}

// Messages lists a chat's messages in creation order
func (s *chatService) Messages(ctx context.Context, userID, chatID string) ([]*domain.Message, error) {
	if _, err := s.ownedChat(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return s.chatStore.ListMessages(ctx, chatID, 0)
}

// AppendMessage adds a turn to a chat, dropping the oldest messages
// once the per-chat cap is reached
func (s *chatService) AppendMessage(ctx context.Context, userID, chatID, role, content string) (*domain.Message, error) {
	if role != domain.RoleUser && role != domain.RoleAssistant {
		return nil, domain.ErrInvalidInput
	}
	chat, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	count, err := s.chatStore.CountMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if count >= domain.MaxMessagesPerChat {
		if err := s.chatStore.DeleteOldestMessages(ctx, chatID, count-domain.MaxMessagesPerChat+1); err != nil {
			return nil, err
		}
	}

	msg := &domain.Message{
		ID:        generateID(),
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.chatStore.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	chat.UpdatedAt = time.Now()
	if err := s.chatStore.SaveChat(ctx, chat); err != nil {
		return nil, err
	}
	return msg, nil
}

// PruneIdle deletes chats idle longer than idleFor
func (s *chatService) PruneIdle(ctx context.Context, idleFor time.Duration) (int, error) {
	idle, err := s.chatStore.ListIdleChats(ctx, time.Now().Add(-idleFor))
	if err != nil {
		return 0, err
	}
	pruned := 0
	for _, chat := range idle {
		if err := s.chatStore.DeleteChat(ctx, chat.ID); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

// ownedChat loads a chat and checks it belongs to the user
func (s *chatService) ownedChat(ctx context.Context, userID, chatID string) (*domain.Chat, error) {
	if userID == "" || chatID == "" {
		return nil, domain.ErrInvalidInput
	}
	chat, err := s.chatStore.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return chat, nil
}
