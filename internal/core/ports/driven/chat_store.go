package driven

import (
	"context"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
)

// ChatStore handles chat and message persistence (PostgreSQL)
type ChatStore interface {
	// SaveChat creates or updates a chat
	SaveChat(ctx context.Context, chat *domain.Chat) error

	// GetChat retrieves a chat by ID
	GetChat(ctx context.Context, id string) (*domain.Chat, error)

	// ListChats lists a user's chats, most recently updated first
	ListChats(ctx context.Context, userID string) ([]*domain.Chat, error)

	// CountChats counts a user's chats
	CountChats(ctx context.Context, userID string) (int, error)

	// DeleteChat deletes a chat and its messages
	DeleteChat(ctx context.Context, id string) error

	// AppendMessage adds a message to a chat
	AppendMessage(ctx context.Context, msg *domain.Message) error

	// ListMessages lists a chat's messages in creation order.
	// limit <= 0 means all messages.
	ListMessages(ctx context.Context, chatID string, limit int) ([]*domain.Message, error)

	// CountMessages counts a chat's messages
	CountMessages(ctx context.Context, chatID string) (int, error)

	// DeleteOldestMessages removes the n oldest messages of a chat
	DeleteOldestMessages(ctx context.Context, chatID string, n int) error

	// ListIdleChats lists chats not updated since the cutoff
	ListIdleChats(ctx context.Context, cutoff time.Time) ([]*domain.Chat, error)
}
