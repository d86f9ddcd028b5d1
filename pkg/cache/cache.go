// Package cache provides the key/value storage backends behind netscore's
// HTTP response cache and dependency cost records.
//
// All backends implement [Cache], which stores opaque bytes with an
// optional TTL:
//
//   - [FileCache]: one JSON file per key under a directory (CLI default)
//   - [MemoryCache]: bounded in-process LRU
//   - [RedisCache]: shared store for multi-instance servers
//   - [NullCache]: stores nothing (caching disabled)
//
// Keys are built by a [Keyer] so that every backend sees the same layout.
// Implementations must be safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry type.
const (
	TTLHTTP = 24 * time.Hour     // registry and GitHub API responses
	TTLCost = 7 * 24 * time.Hour // completed cost records
)

// Cache stores byte values under string keys.
type Cache interface {
	// Get returns the value for key. hit is false on a miss or expiry;
	// err is reserved for backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey returns the key for a cached API response.
	HTTPKey(namespace, key string) string
	// CostKey returns the key for a package's cost record.
	CostKey(packageID string) string
	// IndexKey returns the key mapping a package ID to its name@version.
	IndexKey(packageID string) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key layout.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// CostKey returns "cost:<packageID>".
func (DefaultKeyer) CostKey(packageID string) string {
	return "cost:" + packageID
}

// IndexKey returns "pkg:<packageID>".
func (DefaultKeyer) IndexKey(packageID string) string {
	return "pkg:" + packageID
}

// ScopedKeyer wraps a Keyer with a prefix, giving tenants or environments
// separate namespaces in a shared backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
// A nil inner keyer means [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// CostKey generates a prefixed key for cost records.
func (k *ScopedKeyer) CostKey(packageID string) string {
	return k.prefix + k.inner.CostKey(packageID)
}

// IndexKey generates a prefixed key for package index entries.
func (k *ScopedKeyer) IndexKey(packageID string) string {
	return k.prefix + k.inner.IndexKey(packageID)
}

// KeyerFor returns the default keyer, scoped by prefix when it is not
// empty.
func KeyerFor(prefix string) Keyer {
	if prefix == "" {
		return NewDefaultKeyer()
	}
	return NewScopedKeyer(nil, prefix)
}
