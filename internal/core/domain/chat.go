package domain

import "time"

// Chat limits. A user keeps at most MaxChatsPerUser chats, each holding at
// most MaxMessagesPerChat messages; older messages are dropped first.
const (
	MaxChatsPerUser    = 3
	MaxMessagesPerChat = 50
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chat is a short-lived conversation bound to one user.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title,omitempty"`
	PageURL   string    `json:"page_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one turn in a chat.
type Message struct {
	ID        string         `json:"id"`
	ChatID    string         `json:"chat_id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Extra     map[string]any `json:"extra,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// CreateChatRequest is the payload for opening a chat.
type CreateChatRequest struct {
	Title   string `json:"title,omitempty"`
	PageURL string `json:"page_url,omitempty"`
}
