package server

import (
	"sync"
	"time"

	"github.com/mj1618/ui-inspector/internal/gather"
)

// cacheKey identifies a capture by its screen point.
type cacheKey struct {
	X, Y int
}

// cacheEntry holds a captured tree with its timestamp.
type cacheEntry struct {
	result    gather.Result
	timestamp time.Time
}

// TreeCache provides a TTL-based cache for captures, keyed by point.
type TreeCache struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewTreeCache creates a new cache. A ttl of 0 disables caching.
func NewTreeCache(ttl time.Duration) *TreeCache {
	return &TreeCache{
		entries: make(map[cacheKey]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Capture returns the cached capture at x,y if within TTL, otherwise calls
// read and caches its result. The second result reports a cache hit.
func (c *TreeCache) Capture(x, y int, read func() (gather.Result, error)) (gather.Result, bool, error) {
	if c.ttl == 0 {
		res, err := read()
		return res, false, err
	}

	key := cacheKey{X: x, Y: y}
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.timestamp) < c.ttl {
		c.mu.Unlock()
		return entry.result, true, nil
	}
	c.mu.Unlock()

	res, err := read()
	if err != nil {
		return res, false, err
	}

	c.mu.Lock()
	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.timestamp) >= c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{result: res, timestamp: now}
	c.mu.Unlock()

	return res, false, nil
}

// InvalidateAll clears the entire cache.
func (c *TreeCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]cacheEntry)
}

// Len is the number of cached captures, expired or not.
func (c *TreeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
