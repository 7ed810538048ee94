package redis

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

func TestCache_SetAndGet(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewCache(client)
	ctx := context.Background()

	value := []byte(`{"summary":"short text"}`)
	if err := cache.Set(ctx, "summary:abc", value, time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := cache.Get(ctx, "summary:abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("got %q, want %q", got, value)
	}
}

func TestCache_Get_Miss(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewCache(client)
	ctx := context.Background()

	if _, err := cache.Get(ctx, "missing"); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()
	if err := cache.Set(ctx, "summary:abc", []byte("v"), 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(3 * time.Second)

	if _, err := cache.Get(ctx, "summary:abc"); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestCache_Delete(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "summary:abc", []byte("v"), time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cache.Delete(ctx, "summary:abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.Get(ctx, "summary:abc"); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting a missing key is a no-op
	if err := cache.Delete(ctx, "summary:abc"); err != nil {
		t.Errorf("unexpected error deleting missing key: %v", err)
	}
}
