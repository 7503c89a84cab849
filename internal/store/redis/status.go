package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
)

// Store persists last-known-good statuses in Redis. Entries carry no TTL:
// they are only replaced by a newer successful lookup or pruned when the
// service leaves the catalog.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Put stores the entry and registers the name in the all-names set.
func (s *Store) Put(ctx context.Context, name string, entry domain.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, StatusKey(name), data, 0)
		p.SAdd(ctx, AllStatusesKey(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save status: %w", err)
	}
	return nil
}

// Get returns the cached entry. A missing key is a miss, not an error.
func (s *Store) Get(ctx context.Context, name string) (domain.CacheEntry, bool, error) {
	data, err := s.client.Get(ctx, StatusKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.CacheEntry{}, false, nil
		}
		return domain.CacheEntry{}, false, fmt.Errorf("failed to get status: %w", err)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return entry, true, nil
}

// Delete removes entries and their names from the all-names set.
func (s *Store) Delete(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}

	keys := make([]string, len(names))
	members := make([]any, len(names))
	for i, n := range names {
		keys[i] = StatusKey(n)
		members[i] = n
	}

	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, keys...)
		p.SRem(ctx, AllStatusesKey(), members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete statuses: %w", err)
	}
	return nil
}

// Names returns the cached service names, sorted.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, AllStatusesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get status names: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// GetAll retrieves every cached entry in one round trip. Names whose entry
// is missing or unreadable are skipped.
func (s *Store) GetAll(ctx context.Context) (map[string]domain.CacheEntry, error) {
	names, err := s.Names(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return map[string]domain.CacheEntry{}, nil
	}

	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = StatusKey(n)
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get statuses: %w", err)
	}

	out := make(map[string]domain.CacheEntry, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var entry domain.CacheEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		out[names[i]] = entry
	}
	return out, nil
}
