package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

// setupTestSessionStore creates a test Redis client and SessionStore
func setupTestSessionStore(t *testing.T) (*SessionStore, *miniredis.Miniredis, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewSessionStore(client)

	return store, mr, func() {
		client.Close()
		mr.Close()
	}
}

// createTestSession creates a test session with default values
func createTestSession(userID string) *domain.Session {
	return &domain.Session{
		ID:           "session-123",
		UserID:       userID,
		Token:        "token-abc",
		RefreshToken: "refresh-xyz",
		ExpiresAt:    time.Now().Add(24 * time.Hour),
		CreatedAt:    time.Now(),
		LastSeenAt:   time.Now(),
		UserAgent:    "Mozilla/5.0",
		IP:           "192.168.1.1",
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("user-1")

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error saving session: %v", err)
	}

	retrieved, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("failed to retrieve saved session: %v", err)
	}

	if retrieved.ID != session.ID {
		t.Errorf("expected ID %s, got %s", session.ID, retrieved.ID)
	}
	if retrieved.UserID != session.UserID {
		t.Errorf("expected UserID %s, got %s", session.UserID, retrieved.UserID)
	}
	// Token values must survive the round trip even though the domain
	// type hides them from JSON
	if retrieved.Token != session.Token {
		t.Errorf("expected Token %s, got %s", session.Token, retrieved.Token)
	}
	if retrieved.RefreshToken != session.RefreshToken {
		t.Errorf("expected RefreshToken %s, got %s", session.RefreshToken, retrieved.RefreshToken)
	}
}

func TestSessionStore_Save_ExpiredSession(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("user-1")
	session.ExpiresAt = time.Now().Add(-1 * time.Hour)

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Session should not be saved since it's already expired
	if _, err := store.Get(ctx, session.ID); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound for expired session, got %v", err)
	}
}

func TestSessionStore_Save_CreatesIndexes(t *testing.T) {
	store, mr, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("user-1")

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !mr.Exists(sessionTokenPrefix + session.Token) {
		t.Error("expected token index to exist")
	}
	if !mr.Exists(sessionRefreshPrefix + session.RefreshToken) {
		t.Error("expected refresh token index to exist")
	}
	if !mr.Exists(sessionUserPrefix + session.UserID) {
		t.Error("expected user session set to exist")
	}
}

func TestSessionStore_GetByToken(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("user-1")

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	retrieved, err := store.GetByToken(ctx, session.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retrieved.ID != session.ID {
		t.Errorf("expected ID %s, got %s", session.ID, retrieved.ID)
	}

	if _, err := store.GetByToken(ctx, "nonexistent-token"); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionStore_GetByRefreshToken(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("user-1")

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	retrieved, err := store.GetByRefreshToken(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retrieved.ID != session.ID {
		t.Errorf("expected ID %s, got %s", session.ID, retrieved.ID)
	}

	if _, err := store.GetByRefreshToken(ctx, "nonexistent-refresh"); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionStore_Delete_RemovesIndexes(t *testing.T) {
	store, mr, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("user-1")

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Delete(ctx, session.ID); err != nil {
		t.Fatalf("unexpected error deleting session: %v", err)
	}

	if _, err := store.Get(ctx, session.ID); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound after deletion, got %v", err)
	}
	if mr.Exists(sessionTokenPrefix + session.Token) {
		t.Error("expected token index to be removed")
	}
	if mr.Exists(sessionRefreshPrefix + session.RefreshToken) {
		t.Error("expected refresh token index to be removed")
	}
}

func TestSessionStore_Delete_NotFound(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()

	// Deleting a non-existent session should not error
	if err := store.Delete(ctx, "nonexistent-session"); err != nil {
		t.Errorf("unexpected error deleting non-existent session: %v", err)
	}
}

func TestSessionStore_DeleteByToken(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("user-1")

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.DeleteByToken(ctx, session.Token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.Get(ctx, session.ID); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionStore_DeleteByUser(t *testing.T) {
	store, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()

	session1 := createTestSession("user-1")
	session1.ID = "session-1"
	session1.Token = "token-1"
	session1.RefreshToken = "refresh-1"

	session2 := createTestSession("user-1")
	session2.ID = "session-2"
	session2.Token = "token-2"
	session2.RefreshToken = "refresh-2"

	other := createTestSession("user-2")
	other.ID = "session-3"
	other.Token = "token-3"
	other.RefreshToken = "refresh-3"

	for _, s := range []*domain.Session{session1, session2, other} {
		if err := store.Save(ctx, s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := store.DeleteByUser(ctx, "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.Get(ctx, session1.ID); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound for session1, got %v", err)
	}
	if _, err := store.Get(ctx, session2.ID); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound for session2, got %v", err)
	}

	// Other users' sessions are untouched
	if _, err := store.Get(ctx, other.ID); err != nil {
		t.Errorf("expected user-2 session to survive, got %v", err)
	}
}

func TestSessionStore_ListByUser_CleansUpExpiredIDs(t *testing.T) {
	store, mr, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()

	session1 := createTestSession("user-1")
	session1.ID = "session-1"
	session1.Token = "token-1"
	session1.RefreshToken = "refresh-1"

	session2 := createTestSession("user-1")
	session2.ID = "session-2"
	session2.Token = "token-2"
	session2.RefreshToken = "refresh-2"

	if err := store.Save(ctx, session1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Save(ctx, session2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Simulate TTL expiration of session2
	mr.Del(sessionPrefix + session2.ID)

	sessions, err := store.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].ID != session1.ID {
		t.Errorf("expected session1, got %s", sessions[0].ID)
	}
}

func TestSessionStore_TTLExpiration(t *testing.T) {
	store, mr, cleanup := setupTestSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	session := createTestSession("user-1")
	session.ExpiresAt = time.Now().Add(2 * time.Second)

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.Get(ctx, session.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(3 * time.Second)

	if _, err := store.Get(ctx, session.ID); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound for expired session, got %v", err)
	}
}
