package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
)

// DefaultPruneInterval is how often orphaned cache entries are removed.
const DefaultPruneInterval = 24 * time.Hour

// PrunableCache is the part of a cache the pruner needs.
type PrunableCache interface {
	Names(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, names ...string) error
}

// ServiceLister exposes the current catalog.
type ServiceLister interface {
	Services() []domain.ServiceConfig
}

// CachePruner removes cached statuses of services that left the catalog.
// Entries of configured services are never touched.
type CachePruner struct {
	cache    PrunableCache
	catalog  ServiceLister
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCachePruner creates a new pruner
func NewCachePruner(
	c PrunableCache,
	catalog ServiceLister,
	log logger.Logger,
	interval time.Duration,
) *CachePruner {
	if interval <= 0 {
		interval = DefaultPruneInterval
	}

	return &CachePruner{
		cache:    c,
		catalog:  catalog,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic prune process
func (cp *CachePruner) Start(ctx context.Context) error {
	if _, err := cp.Prune(ctx); err != nil {
		cp.logger.Warn("initial cache prune failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(cp.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := cp.Prune(ctx); err != nil {
					cp.logger.Error("cache prune failed",
						logger.Error(err))
				}
			case <-cp.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the pruner. It is safe to call more than once.
func (cp *CachePruner) Stop() {
	cp.stopOnce.Do(func() { close(cp.stopCh) })
}

// Prune deletes entries whose service is not in the catalog and returns
// how many were removed. Nothing is pruned before a catalog is known.
func (cp *CachePruner) Prune(ctx context.Context) (int, error) {
	services := cp.catalog.Services()
	if services == nil {
		cp.logger.Debug("no catalog loaded yet, skipping cache prune")
		return 0, nil
	}

	keep := make(map[string]struct{}, len(services))
	for _, s := range services {
		keep[s.Name] = struct{}{}
	}

	names, err := cp.cache.Names(ctx)
	if err != nil && len(names) == 0 {
		return 0, fmt.Errorf("failed to list cached statuses: %w", err)
	}

	var orphans []string
	for _, n := range names {
		if _, ok := keep[n]; !ok {
			orphans = append(orphans, n)
		}
	}

	if len(orphans) == 0 {
		cp.logger.Debug("no cached statuses to prune")
		return 0, nil
	}

	if err := cp.cache.Delete(ctx, orphans...); err != nil {
		return 0, fmt.Errorf("failed to delete cached statuses: %w", err)
	}

	cp.logger.Info("pruned cached statuses of removed services",
		logger.Int("count", len(orphans)),
		logger.String("names", fmt.Sprint(orphans)))

	return len(orphans), nil
}
