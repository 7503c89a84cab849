package cache

import (
	"context"
	"errors"
	"slices"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
)

// Tiered keeps a Memory tier in front of a shared remote Store.
// The remote is the source of truth when it answers: several instances
// can share it, and the newest entry wins. Writes go to both tiers, so a
// remote outage degrades to memory only.
type Tiered struct {
	local  *Memory
	remote Store
}

// NewTiered returns a tiered cache. A nil remote behaves like local alone.
func NewTiered(local *Memory, remote Store) *Tiered {
	return &Tiered{local: local, remote: remote}
}

// Local exposes the memory tier.
func (t *Tiered) Local() *Memory {
	return t.local
}

// Get returns the most recent of the two tiers. When the remote fails, a
// memory hit is still served; only a double miss reports the remote error.
func (t *Tiered) Get(ctx context.Context, name string) (domain.CacheEntry, bool, error) {
	local, localOK, _ := t.local.Get(ctx, name)
	if t.remote == nil {
		return local, localOK, nil
	}

	remote, remoteOK, err := t.remote.Get(ctx, name)
	switch {
	case err != nil:
		if localOK {
			return local, true, nil
		}
		return domain.CacheEntry{}, false, err
	case !remoteOK:
		return local, localOK, nil
	case localOK && local.CachedAt.After(remote.CachedAt):
		return local, true, nil
	}

	t.local.Load(map[string]domain.CacheEntry{name: remote})
	return remote, true, nil
}

// Put always updates memory and reports remote failures.
func (t *Tiered) Put(ctx context.Context, name string, entry domain.CacheEntry) error {
	_ = t.local.Put(ctx, name, entry)
	if t.remote == nil {
		return nil
	}
	return t.remote.Put(ctx, name, entry)
}

func (t *Tiered) Delete(ctx context.Context, names ...string) error {
	_ = t.local.Delete(ctx, names...)
	if t.remote == nil {
		return nil
	}
	return t.remote.Delete(ctx, names...)
}

// Names returns the union of both tiers, sorted. Remote failures still
// return the memory names alongside the error.
func (t *Tiered) Names(ctx context.Context) ([]string, error) {
	names, _ := t.local.Names(ctx)
	if t.remote == nil {
		return names, nil
	}

	remote, err := t.remote.Names(ctx)
	for _, n := range remote {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	if err != nil {
		return names, errors.Join(errors.New("remote cache unavailable"), err)
	}
	return names, nil
}
