// SPDX-License-Identifier: MIT

// Package cache provides a TTL cache used to memoize geolocation lookups.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a byte-value cache with per-entry expiration. Implementations
// must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return is false if the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Close() error
}

type entry struct {
	value      []byte
	expiration time.Time
}

func (e *entry) expired() bool {
	return time.Now().After(e.expiration)
}

// memoryCache is an in-memory Cache with background cleanup.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	stop    chan struct{}
	once    sync.Once
}

// NewMemory creates an in-memory cache. cleanupInterval determines how often
// expired entries are removed; zero disables the janitor (entries still
// expire lazily on Get).
func NewMemory(cleanupInterval time.Duration) Cache {
	c := &memoryCache{
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	}
	return c
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || e.expired() {
		return nil, false
	}
	return e.value, true
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{value: value, expiration: time.Now().Add(ttl)}
}

func (c *memoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *memoryCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			for k, e := range c.entries {
				if e.expired() {
					delete(c.entries, k)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}
