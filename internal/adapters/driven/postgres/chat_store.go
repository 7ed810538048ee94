package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChatStore = (*ChatStore)(nil)

// ChatStore implements driven.ChatStore using PostgreSQL
type ChatStore struct {
	db *DB
}

// NewChatStore creates a new ChatStore
func NewChatStore(db *DB) *ChatStore {
	return &ChatStore{db: db}
}

// SaveChat creates or updates a chat
func (s *ChatStore) SaveChat(ctx context.Context, chat *domain.Chat) error {
	query := `
		INSERT INTO chats (id, user_id, title, page_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			page_url = EXCLUDED.page_url,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		chat.ID, chat.UserID, chat.Title, chat.PageURL, chat.CreatedAt, chat.UpdatedAt)
	return err
}

// GetChat retrieves a chat by ID
func (s *ChatStore) GetChat(ctx context.Context, id string) (*domain.Chat, error) {
	query := `
		SELECT id, user_id, title, page_url, created_at, updated_at
		FROM chats
		WHERE id = $1
	`
	var chat domain.Chat
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&chat.ID, &chat.UserID, &chat.Title, &chat.PageURL, &chat.CreatedAt, &chat.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListChats lists a user's chats, most recently updated first
func (s *ChatStore) ListChats(ctx context.Context, userID string) ([]*domain.Chat, error) {
	query := `
		SELECT id, user_id, title, page_url, created_at, updated_at
		FROM chats
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*domain.Chat
	for rows.Next() {
		var chat domain.Chat
		if err := rows.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.PageURL, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, &chat)
	}
	return chats, rows.Err()
}

// CountChats counts a user's chats
func (s *ChatStore) CountChats(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chats WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// DeleteChat deletes a chat and its messages
func (s *ChatStore) DeleteChat(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendMessage adds a message to a chat
func (s *ChatStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	var extra []byte
	if msg.Extra != nil {
		data, err := json.Marshal(msg.Extra)
		if err != nil {
			return err
		}
		extra = data
	}

	query := `
		INSERT INTO messages (id, chat_id, role, content, extra, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.ChatID, msg.Role, msg.Content, extra, msg.CreatedAt)
	return err
}

// ListMessages lists a chat's messages in creation order.
// limit <= 0 means all messages.
func (s *ChatStore) ListMessages(ctx context.Context, chatID string, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, chat_id, role, content, extra, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		var msg domain.Message
		var extra []byte
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &extra, &msg.CreatedAt); err != nil {
			return nil, err
		}
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &msg.Extra); err != nil {
				return nil, err
			}
		}
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Trailing messages win when a limit is set.
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// CountMessages counts a chat's messages
func (s *ChatStore) CountMessages(ctx context.Context, chatID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE chat_id = $1`, chatID).Scan(&count)
	return count, err
}

// DeleteOldestMessages removes the n oldest messages of a chat
func (s *ChatStore) DeleteOldestMessages(ctx context.Context, chatID string, n int) error {
	query := `
		DELETE FROM messages
		WHERE id IN (
			SELECT id FROM messages
			WHERE chat_id = $1
			ORDER BY created_at, id
			LIMIT $2
		)
	`
	_, err := s.db.ExecContext(ctx, query, chatID, n)
	return err
}

// ListIdleChats lists chats not updated since the cutoff
func (s *ChatStore) ListIdleChats(ctx context.Context, cutoff time.Time) ([]*domain.Chat, error) {
	query := `
		SELECT id, user_id, title, page_url, created_at, updated_at
		FROM chats
		WHERE updated_at < $1
	`
	rows, err := s.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*domain.Chat
	for rows.Next() {
		var chat domain.Chat
		if err := rows.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.PageURL, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, &chat)
	}
	return chats, rows.Err()
}
