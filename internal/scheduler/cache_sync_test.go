package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/statuswall/internal/cache"
	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
)

type stubRemote struct {
	entries map[string]domain.CacheEntry
	err     error
}

func (s stubRemote) GetAll(context.Context) (map[string]domain.CacheEntry, error) {
	return s.entries, s.err
}

func TestCacheSyncer_Sync(t *testing.T) {
	mem := cache.NewMemory()
	remote := stubRemote{entries: map[string]domain.CacheEntry{
		"GitHub": {Status: domain.StatusDegraded, CachedAt: time.Now()},
		"Stripe": {Status: domain.StatusOperational, CachedAt: time.Now()},
	}}

	if err := NewCacheSyncer(remote, mem, logger.NewNop()).Sync(context.Background()); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if mem.Count() != 2 {
		t.Errorf("expected 2 warmed entries, got %d", mem.Count())
	}
}

func TestCacheSyncer_Errors(t *testing.T) {
	mem := cache.NewMemory()
	err := NewCacheSyncer(stubRemote{err: errors.New("down")}, mem, logger.NewNop()).Sync(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	if err := NewCacheSyncer(stubRemote{}, mem, logger.NewNop()).Sync(context.Background()); err != nil {
		t.Fatalf("empty remote should not fail: %v", err)
	}
}
