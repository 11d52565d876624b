// Package cache provides a small process-local TTL cache used for the
// ports catalog and company name lookups.
package cache

import (
	"sync"
	"time"
)

// TTL caches a single value for a fixed duration. Get reloads through
// the loader once the entry expires; concurrent callers share one load.
type TTL[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	value   V
	expires time.Time
	loaded  bool
}

// NewTTL creates a cache with the given lifetime. now is pluggable for
// tests; pass nil for time.Now.
func NewTTL[V any](ttl time.Duration, now func() time.Time) *TTL[V] {
	if now == nil {
		now = time.Now
	}
	return &TTL[V]{ttl: ttl, now: now}
}

// Get returns the cached value, loading it if missing or expired. A
// loader error is returned without caching; the stale value, if any,
// is discarded.
func (c *TTL[V]) Get(load func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded && c.now().Before(c.expires) {
		return c.value, nil
	}

	v, err := load()
	if err != nil {
		var zero V
		c.loaded = false
		return zero, err
	}

	c.value = v
	c.expires = c.now().Add(c.ttl)
	c.loaded = true
	return v, nil
}

// Invalidate drops the cached value so the next Get reloads.
func (c *TTL[V]) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}
