package cache

import (
	"sync"
	"time"
)

// Cache is a small in-memory read cache keyed by fetch identifier. Entries
// expire after a TTL and can be explicitly marked stale by writers; a stale or
// expired entry is treated as a miss so the next read refetches.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

type entry struct {
	value   any
	expires time.Time
	stale   bool
}

// New creates a cache with the given entry TTL.
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Get returns the cached value for key, or false on miss, expiry or staleness.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.stale || c.now().After(e.expires) {
		return nil, false
	}
	return e.value, true
}

// Set stores a fresh value for key.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:   value,
		expires: c.now().Add(c.ttl),
	}
}

// Invalidate marks the given keys stale. Unknown keys are ignored.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		if e, ok := c.entries[key]; ok {
			e.stale = true
			c.entries[key] = e
		}
	}
}

// Flush drops all entries.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}
