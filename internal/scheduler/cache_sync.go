package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
)

// RemoteStatuses is a shared cache that can be read in bulk.
type RemoteStatuses interface {
	GetAll(ctx context.Context) (map[string]domain.CacheEntry, error)
}

// LocalStatuses is the in-process tier being warmed.
type LocalStatuses interface {
	Load(entries map[string]domain.CacheEntry) int
}

// CacheSyncer warms the memory cache from Redis on startup, so a restart
// during an outage still shows last-known statuses.
type CacheSyncer struct {
	remote RemoteStatuses
	local  LocalStatuses
	logger logger.Logger
}

// NewCacheSyncer creates a new syncer
func NewCacheSyncer(
	remote RemoteStatuses,
	local LocalStatuses,
	log logger.Logger,
) *CacheSyncer {
	return &CacheSyncer{
		remote: remote,
		local:  local,
		logger: log,
	}
}

// Sync loads every cached status from Redis into memory.
func (cs *CacheSyncer) Sync(ctx context.Context) error {
	cs.logger.Info("syncing cached statuses from redis to memory")

	entries, err := cs.remote.GetAll(ctx)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		cs.logger.Info("no cached statuses found in redis")
		return nil
	}

	loaded := cs.local.Load(entries)

	cs.logger.Info("synced cached statuses from redis",
		logger.Int("count", len(entries)),
		logger.Int("loaded", loaded))

	return nil
}
