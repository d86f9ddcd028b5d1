package cost

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/netscore/pkg/cache"
	"github.com/matzehuels/netscore/pkg/observability"
)

// Store persists cost records keyed by package ID.
type Store interface {
	// Get returns the record for id. ok is false when none is stored.
	Get(ctx context.Context, id ID) (rec *Record, ok bool, err error)
	// Put stores rec under rec.ID, replacing any previous record.
	Put(ctx context.Context, rec *Record) error
	// Reset deletes the record for id.
	Reset(ctx context.Context, id ID) error
}

// CacheStore is a Store on top of any cache backend. Records are stored
// as JSON under Keyer.CostKey.
type CacheStore struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCacheStore stores records in c. Completed records expire after ttl;
// pending and failed records expire after a shorter interval so that they
// are retried.
func NewCacheStore(c cache.Cache, ttl time.Duration) *CacheStore {
	return &CacheStore{cache: c, keyer: cache.NewDefaultKeyer(), ttl: ttl}
}

// WithKeyer sets the key layout, e.g. one scoped by [cache.KeyerFor].
func (s *CacheStore) WithKeyer(k cache.Keyer) *CacheStore {
	s.keyer = k
	return s
}

// transientTTL bounds how long pending and failed records are kept.
const transientTTL = time.Hour

func (s *CacheStore) key(id ID) string { return s.keyer.CostKey(id.String()) }

// Get returns the stored record for id. Undecodable entries are treated as
// misses.
func (s *CacheStore) Get(ctx context.Context, id ID) (*Record, bool, error) {
	data, hit, err := s.cache.Get(ctx, s.key(id))
	if err != nil {
		return nil, false, err
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "cost")
		return nil, false, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		observability.Cache().OnCacheMiss(ctx, "cost")
		return nil, false, nil
	}
	observability.Cache().OnCacheHit(ctx, "cost")
	return &rec, true, nil
}

// Put stores rec.
func (s *CacheStore) Put(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ttl := s.ttl
	if rec.Status != StatusCompleted && (ttl == 0 || ttl > transientTTL) {
		ttl = transientTTL
	}
	if err := s.cache.Set(ctx, s.key(rec.ID), data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, "cost", len(data))
	return nil
}

// Reset deletes the record for id.
func (s *CacheStore) Reset(ctx context.Context, id ID) error {
	return s.cache.Delete(ctx, s.key(id))
}
