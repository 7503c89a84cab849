package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/statuswall/internal/cache"
	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
)

type staticCatalog []domain.ServiceConfig

func (s staticCatalog) Services() []domain.ServiceConfig { return s }

func TestCachePruner_Prune(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemory()
	old := time.Now().Add(-90 * 24 * time.Hour)
	for _, name := range []string{"GitHub", "Stripe", "Removed"} {
		if err := mem.Put(ctx, name, domain.CacheEntry{Status: domain.StatusOperational, CachedAt: old}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	catalog := staticCatalog{{Name: "GitHub"}, {Name: "Stripe"}, {Name: "NotCachedYet"}}
	cp := NewCachePruner(mem, catalog, logger.NewNop(), time.Hour)

	deleted, err := cp.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 pruned entry, got %d", deleted)
	}

	names, _ := mem.Names(ctx)
	if len(names) != 2 || names[0] != "GitHub" || names[1] != "Stripe" {
		t.Errorf("unexpected remaining entries %v", names)
	}

	// old entries of configured services are never evicted
	deleted, err = cp.Prune(ctx)
	if err != nil || deleted != 0 {
		t.Errorf("second prune = (%d, %v), want (0, nil)", deleted, err)
	}
}

func TestCachePruner_SkipsWithoutCatalog(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemory()
	_ = mem.Put(ctx, "GitHub", domain.CacheEntry{Status: domain.StatusDown})

	cp := NewCachePruner(mem, staticCatalog(nil), logger.NewNop(), 0)
	deleted, err := cp.Prune(ctx)
	if err != nil || deleted != 0 {
		t.Fatalf("Prune() = (%d, %v), want (0, nil)", deleted, err)
	}
	if mem.Count() != 1 {
		t.Error("entries must survive until a catalog is known")
	}
	if cp.interval != DefaultPruneInterval {
		t.Errorf("interval = %v, want default", cp.interval)
	}
}

func TestCachePruner_StopTwice(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cp := NewCachePruner(cache.NewMemory(), staticCatalog(nil), logger.NewNop(), time.Hour)
	if err := cp.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cp.Stop()
	cp.Stop()
}
