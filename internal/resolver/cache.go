package resolver

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/forgelight/crucible/internal/domain"
)

// CacheSchemaVersion is the current version of the cache schema
// Increment this when the cached data structure changes to auto-invalidate old entries
const CacheSchemaVersion = "1.0"

// cachedSnapshotEntry wraps a snapshot with version metadata for cache invalidation
type cachedSnapshotEntry struct {
	Version  string               `json:"version"`
	Snapshot *domain.ItemSnapshot `json:"snapshot"`
	CachedAt time.Time            `json:"cached_at"`
}

// snapshotCache provides an in-memory LRU cache for item snapshot lookups
// with time-based expiration and version-based invalidation to prevent stale data.
type snapshotCache struct {
	lru *expirable.LRU[string, *cachedSnapshotEntry]
}

func newSnapshotCache(size int, ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		lru: expirable.NewLRU[string, *cachedSnapshotEntry](size, nil, ttl),
	}
}

// Get retrieves a snapshot from the cache.
// Returns (nil, false) if not in cache, expired, or version mismatch.
func (c *snapshotCache) Get(ref string) (*domain.ItemSnapshot, bool) {
	entry, found := c.lru.Get(ref)
	if !found {
		return nil, false
	}

	if entry.Version != CacheSchemaVersion {
		c.lru.Remove(ref)
		return nil, false
	}

	return entry.Snapshot, true
}

// Set stores a snapshot in the cache with current schema version.
func (c *snapshotCache) Set(ref string, snap *domain.ItemSnapshot) {
	entry := &cachedSnapshotEntry{
		Version:  CacheSchemaVersion,
		Snapshot: snap,
		CachedAt: time.Now(),
	}
	c.lru.Add(ref, entry)
}

// Invalidate removes a snapshot from the cache.
func (c *snapshotCache) Invalidate(ref string) {
	c.lru.Remove(ref)
}

// Clear removes all entries from the cache.
func (c *snapshotCache) Clear() {
	c.lru.Purge()
}
