// Package cache provides a small in-process TTL cache for store reads.
package cache

import (
	"sync"
	"time"
)

// Config holds cache settings.
type Config struct {
	// DefaultTTL is how long entries stay valid.
	DefaultTTL time.Duration
	// MaxItems caps the cache size; 0 means unbounded.
	MaxItems int
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a mutex-guarded TTL map.
type Cache struct {
	config  Config
	mu      sync.RWMutex
	entries map[string]entry
	closed  bool
}

// New creates a cache with the given config.
func New(config Config) *Cache {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = time.Minute
	}
	return &Cache{
		config:  config,
		entries: make(map[string]entry),
	}
}

// Get returns the cached value for key, or false when absent or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.config.MaxItems > 0 && len(c.entries) >= c.config.MaxItems {
		// Evict expired entries first; if still full, drop the write.
		now := time.Now()
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		if len(c.entries) >= c.config.MaxItems {
			return
		}
	}
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(c.config.DefaultTTL)}
}

// Delete removes key from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Close drops all entries and rejects further writes.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.entries = make(map[string]entry)
}
