// Package cache provides CacheRepository implementations used as a
// read-through layer in front of the nutrition backend.
package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// MemoryCache is an in-process cache with TTL expiry. Suited to a single
// instance; use the Redis cache when running more than one.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	done    chan struct{}
	once    sync.Once
}

// NewMemoryCache creates a memory cache and starts its janitor goroutine.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}
	go c.janitor()
	return c
}

// Get returns the cached value, or nil when absent or expired.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || entry.expired() {
		return nil, nil
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

// Set stores a value. A zero ttl means no expiry.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Exists reports whether a live entry is present.
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	return ok && !entry.expired(), nil
}

// Close stops the janitor goroutine.
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

// janitor evicts expired entries once a minute.
func (c *MemoryCache) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			for key, entry := range c.entries {
				if entry.expired() {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
