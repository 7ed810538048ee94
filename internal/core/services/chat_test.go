package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven/mocks"
)

func TestChatLimit(t *testing.T) {
	svc := NewChatService(mocks.NewMockChatStore())
	ctx := context.Background()

	for i := 0; i < domain.MaxChatsPerUser; i++ {
		if _, err := svc.Create(ctx, "u1", domain.CreateChatRequest{Title: fmt.Sprintf("chat %d", i)}); err != nil {
			t.Fatalf("Create() #%d error = %v", i, err)
		}
	}
	if _, err := svc.Create(ctx, "u1", domain.CreateChatRequest{}); !errors.Is(err, domain.ErrChatLimitReached) {
		t.Errorf("Create() over limit error = %v, want ErrChatLimitReached", err)
	}

	// Another user is unaffected.
	if _, err := svc.Create(ctx, "u2", domain.CreateChatRequest{}); err != nil {
		t.Errorf("Create() for second user error = %v", err)
	}
}

func TestMessageCapDropsOldest(t *testing.T) {
	svc := NewChatService(mocks.NewMockChatStore())
	ctx := context.Background()

	chat, err := svc.Create(ctx, "u1", domain.CreateChatRequest{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for i := 0; i < domain.MaxMessagesPerChat+5; i++ {
		if _, err := svc.AppendMessage(ctx, "u1", chat.ID, domain.RoleUser, fmt.Sprintf("msg %d", i)); err != nil {
			t.Fatalf("AppendMessage() #%d error = %v", i, err)
		}
	}

	msgs, err := svc.Messages(ctx, "u1", chat.ID)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(msgs) != domain.MaxMessagesPerChat {
		t.Fatalf("message count = %d, want %d", len(msgs), domain.MaxMessagesPerChat)
	}
	if msgs[0].Content != "msg 5" {
		t.Errorf("oldest surviving message = %q, want %q", msgs[0].Content, "msg 5")
	}
	if msgs[len(msgs)-1].Content != fmt.Sprintf("msg %d", domain.MaxMessagesPerChat+4) {
		t.Errorf("newest message = %q", msgs[len(msgs)-1].Content)
	}
}

func TestChatOwnership(t *testing.T) {
	svc := NewChatService(mocks.NewMockChatStore())
	ctx := context.Background()

	chat, err := svc.Create(ctx, "u1", domain.CreateChatRequest{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.Get(ctx, "u2", chat.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Get() as other user error = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, "u2", chat.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Delete() as other user error = %v, want ErrForbidden", err)
	}
	if _, err := svc.AppendMessage(ctx, "u2", chat.ID, domain.RoleUser, "hi"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("AppendMessage() as other user error = %v, want ErrForbidden", err)
	}
}

func TestAppendMessageRejectsUnknownRole(t *testing.T) {
	svc := NewChatService(mocks.NewMockChatStore())
	ctx := context.Background()

	chat, _ := svc.Create(ctx, "u1", domain.CreateChatRequest{})
	if _, err := svc.AppendMessage(ctx, "u1", chat.ID, "system", "x"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("AppendMessage() error = %v, want ErrInvalidInput", err)
	}
}

func TestPruneIdle(t *testing.T) {
	store := mocks.NewMockChatStore()
	svc := NewChatService(store)
	ctx := context.Background()

	old := &domain.Chat{
		ID:        "old",
		UserID:    "u1",
		CreatedAt: time.Now().Add(-48 * time.Hour),
		UpdatedAt: time.Now().Add(-48 * time.Hour),
	}
	if err := store.SaveChat(ctx, old); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, "u1", domain.CreateChatRequest{Title: "fresh"}); err != nil {
		t.Fatal(err)
	}

	pruned, err := svc.PruneIdle(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneIdle() error = %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}
	if _, err := store.GetChat(ctx, "old"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("idle chat still present, error = %v", err)
	}
}
