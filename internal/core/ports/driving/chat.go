package driving

import (
	"context"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
)

// ChatService manages short-lived chat memory
type ChatService interface {
	// Create opens a chat, enforcing the per-user chat limit
	Create(ctx context.Context, userID string, req domain.CreateChatRequest) (*domain.Chat, error)

	// Get retrieves one of the user's chats
	Get(ctx context.Context, userID, chatID string) (*domain.Chat, error)

	// List lists the user's chats, most recently updated first
	List(ctx context.Context, userID string) ([]*domain.Chat, error)

	// Delete removes a chat and its messages
	Delete(ctx context.Context, userID, chatID string) error

	// Messages lists a chat's messages in creation order
	Messages(ctx context.Context, userID, chatID string) ([]*domain.Message, error)

	// AppendMessage adds a turn to a chat, dropping the oldest messages
	// once the per-chat cap is reached
	AppendMessage(ctx context.Context, userID, chatID, role, content string) (*domain.Message, error)

	// PruneIdle deletes chats idle longer than idleFor and reports how
	// many were removed. Used by the retention worker.
	PruneIdle(ctx context.Context, idleFor time.Duration) (int, error)
}
