// Package cache holds the last-known-good status of each service.
//
// Entries are keyed by service name, written only after a successful
// structured lookup and never expire. A missing entry is a miss, not an
// error.
package cache

import (
	"context"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
)

// Store is implemented by every cache backend.
type Store interface {
	Get(ctx context.Context, name string) (domain.CacheEntry, bool, error)
	Put(ctx context.Context, name string, entry domain.CacheEntry) error
	Delete(ctx context.Context, names ...string) error
	Names(ctx context.Context) ([]string, error)
}
