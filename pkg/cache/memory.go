package cache

import (
	"context"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemoryEntries bounds a [MemoryCache] created with a non-positive size.
const DefaultMemoryEntries = 4096

// MemoryMaxTTL caps how long any entry stays in a [MemoryCache], including
// entries stored without a TTL.
const MemoryMaxTTL = TTLCost

// MemoryCache is a bounded in-process cache. Least recently used entries are
// evicted once the size limit is reached and nothing outlives MemoryMaxTTL.
type MemoryCache struct {
	lru *expirable.LRU[string, memoryEntry]
}

// memoryEntry carries its own deadline for TTLs shorter than MemoryMaxTTL.
type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache creates an LRU cache holding at most size entries.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	return &MemoryCache{lru: expirable.NewLRU[string, memoryEntry](size, nil, MemoryMaxTTL)}, nil
}

// Get returns a copy of the stored value.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.lru.Remove(key)
		return nil, false, nil
	}
	return slices.Clone(e.data), true, nil
}

// Set stores a copy of data.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := memoryEntry{data: slices.Clone(data)}
	if ttl > 0 && ttl < MemoryMaxTTL {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.lru.Add(key, e)
	return nil
}

// Delete removes a value.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len returns the number of stored entries.
func (c *MemoryCache) Len() int { return c.lru.Len() }

// Close purges all entries.
func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
