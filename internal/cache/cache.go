// Package cache provides a small in-process TTL cache for reference data
// that changes rarely but is read on every page of the builder UI.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// TTL is a concurrency-safe expiring cache. A zero ttl disables caching
// entirely, which tests and one-off CLI invocations rely on.
type TTL[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry[V]
	now     func() time.Time
}

func NewTTL[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// Get returns the cached value for key if present and unexpired.
func (c *TTL[V]) Get(key string) (V, bool) {
	var zero V
	if c.ttl <= 0 {
		return zero, false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expires) {
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for the cache's TTL.
func (c *TTL[V]) Set(key string, value V) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops one key.
func (c *TTL[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}
