package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
)

// Memory is an in-process Store. It is the only backend when Redis is not
// configured, and the front tier otherwise.
type Memory struct {
	mu        sync.RWMutex
	entries   map[string]domain.CacheEntry
	lastWrite time.Time
}

// NewMemory creates an empty memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]domain.CacheEntry),
	}
}

func (m *Memory) Get(_ context.Context, name string) (domain.CacheEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[name]
	return e, ok, nil
}

func (m *Memory) Put(_ context.Context, name string, entry domain.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[name] = entry
	m.lastWrite = time.Now()
	return nil
}

func (m *Memory) Delete(_ context.Context, names ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range names {
		delete(m.entries, n)
	}
	return nil
}

// Names returns the cached service names, sorted.
func (m *Memory) Names(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.entries))
	for n := range m.entries {
		names = append(names, n)
	}
	slices.Sort(names)
	return names, nil
}

// Load merges entries into the cache. An entry already present is kept
// when it is at least as recent as the incoming one.
func (m *Memory) Load(entries map[string]domain.CacheEntry) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for name, e := range entries {
		if cur, ok := m.entries[name]; ok && !cur.CachedAt.Before(e.CachedAt) {
			continue
		}
		m.entries[name] = e
		loaded++
	}
	return loaded
}

// Count returns the number of cached services.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// LastWrite returns the time of the latest Put.
func (m *Memory) LastWrite() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastWrite
}
