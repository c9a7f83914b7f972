// ABOUTME: Bounded cache of rendered swarm charts, one slot per swarm and image format.
// ABOUTME: A slot is reused while its DOT text is unchanged and fresh; DOT output itself is never stored.
package render

import (
	"context"
	"crypto/sha256"
	"sync"
	"time"
)

// Func is the signature of a rendering function the cache wraps.
type Func func(ctx context.Context, dotText, format string) ([]byte, error)

// DefaultMaxEntries bounds a cache created with a non-positive size.
const DefaultMaxEntries = 256

type slot struct {
	swarmID string
	format  string
}

type chartEntry struct {
	sum      [sha256.Size]byte
	data     []byte
	storedAt time.Time
}

// Cache holds rendered charts keyed by swarm id and format. Expired entries
// are swept on every insert and the oldest entry is evicted at capacity, so
// memory stays bounded for the life of a server. Safe for concurrent use.
type Cache struct {
	render  Func
	ttl     time.Duration
	max     int
	mu      sync.Mutex
	entries map[slot]*chartEntry
}

// NewCache wraps fn; a nil fn means Render.
func NewCache(fn Func, ttl time.Duration, maxEntries int) *Cache {
	if fn == nil {
		fn = Render
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		render:  fn,
		ttl:     ttl,
		max:     maxEntries,
		entries: make(map[slot]*chartEntry),
	}
}

// Render returns the chart of swarmID in format. A stored image is returned
// when it was rendered from the same DOT text within the TTL. Errors and
// "dot" output are not stored.
func (c *Cache) Render(ctx context.Context, swarmID, dotText, format string) ([]byte, error) {
	if format == "dot" {
		return c.render(ctx, dotText, format)
	}

	key := slot{swarmID: swarmID, format: format}
	sum := sha256.Sum256([]byte(dotText))

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.sum == sum && time.Since(e.storedAt) < c.ttl {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()

	data, err := c.render(ctx, dotText, format)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	c.sweepLocked(now)
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.max {
		c.evictOldestLocked()
	}
	c.entries[key] = &chartEntry{sum: sum, data: data, storedAt: now}
	return data, nil
}

// Invalidate drops every stored image of swarmID.
func (c *Cache) Invalidate(swarmID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.swarmID == swarmID {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of stored images.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) sweepLocked(now time.Time) {
	for key, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, key)
		}
	}
}

func (c *Cache) evictOldestLocked() {
	var (
		oldest slot
		at     time.Time
		found  bool
	)
	for key, e := range c.entries {
		if !found || e.storedAt.Before(at) {
			oldest, at, found = key, e.storedAt, true
		}
	}
	if found {
		delete(c.entries, oldest)
	}
}
