package source

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache keeps fetched values with a time to live. A value past its TTL is stale but still
// returned by Get, so that callers can fall back to it when a refresh fails. Stale values are
// dropped for good once their retention is over.
type Cache struct {
	items     *cache.Cache
	retention time.Duration
	now       func() time.Time
}

type entry struct {
	value   any
	staleAt time.Time
}

// NewCache returns an empty cache keeping stale values for retention. A zero retention keeps
// them until overwritten.
func NewCache(retention time.Duration) *Cache {
	cleanup := retention
	if cleanup <= 0 {
		cleanup = time.Hour
	}
	return &Cache{
		items:     cache.New(cache.NoExpiration, cleanup),
		retention: retention,
		now:       time.Now,
	}
}

// Get returns the value stored under key, stale or not.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	return v.(entry).value, true
}

// Set stores value under key, fresh for ttl.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	expiration := cache.NoExpiration
	if c.retention > 0 {
		expiration = ttl + c.retention
	}
	c.items.Set(key, entry{value: value, staleAt: c.now().Add(ttl)}, expiration)
}

// IsStale reports whether key must be refreshed: it is missing or past its TTL.
func (c *Cache) IsStale(key string) bool {
	v, ok := c.items.Get(key)
	if !ok {
		return true
	}
	return !c.now().Before(v.(entry).staleAt)
}

// Delete removes key.
func (c *Cache) Delete(key string) { c.items.Delete(key) }

// Len returns the number of values held, stale ones included.
func (c *Cache) Len() int { return c.items.ItemCount() }
