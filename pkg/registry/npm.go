package registry

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/netscore/pkg/cache"
	"github.com/matzehuels/netscore/pkg/integrations/npm"
)

// DefaultIndexEntries bounds the in-memory ID index of an [NPMStore].
const DefaultIndexEntries = 50_000

// NPMStore serves package metadata from the npm registry.
//
// IDs are one-way, so Lookup needs an index from ID to name@version.
// Versions indexes every version it lists in a bounded in-memory LRU, and
// Lookup persists the entries it serves to the cache so that IDs stay
// resolvable across processes sharing that cache.
type NPMStore struct {
	client *npm.Client
	cache  cache.Cache
	keyer  cache.Keyer
	index  *lru.Cache[ID, indexEntry]
}

type indexEntry struct {
	name, version string
	persisted     bool
}

// NewNPMStore creates a store backed by client that persists its ID index
// in c. A nil cache keeps the index in memory only.
func NewNPMStore(client *npm.Client, c cache.Cache) *NPMStore {
	if c == nil {
		c = cache.NewNullCache()
	}
	index, _ := lru.New[ID, indexEntry](DefaultIndexEntries)
	return &NPMStore{client: client, cache: c, keyer: cache.NewDefaultKeyer(), index: index}
}

// WithKeyer sets the key layout of persisted index entries.
func (s *NPMStore) WithKeyer(k cache.Keyer) *NPMStore {
	s.keyer = k
	return s
}

// Lookup returns the package with the given ID.
func (s *NPMStore) Lookup(ctx context.Context, id ID) (*Package, error) {
	e, ok := s.resolveID(ctx, id)
	if !ok {
		return nil, fmt.Errorf("%w: package %s", ErrNotFound, id)
	}

	info, err := s.client.FetchPackage(ctx, e.name, false)
	if err != nil {
		return nil, err
	}
	v, ok := info.Versions[e.version]
	if !ok {
		return nil, fmt.Errorf("%w: package %s@%s", ErrNotFound, e.name, e.version)
	}
	if !e.persisted {
		s.persist(ctx, id, e)
	}

	repo := v.Repository
	if repo == "" {
		repo = info.Repository
	}
	return &Package{
		ID:           id,
		Name:         info.Name,
		Version:      v.Version,
		Dependencies: v.Dependencies,
		Repository:   repo,
		UnpackedSize: v.UnpackedSize,
	}, nil
}

// Versions lists the published versions of name and indexes their IDs.
func (s *NPMStore) Versions(ctx context.Context, name string) ([]string, error) {
	info, err := s.client.FetchPackage(ctx, name, false)
	if err != nil {
		return nil, err
	}
	versions := info.VersionList()
	for _, v := range versions {
		id := NewID(info.Name, v)
		if !s.index.Contains(id) {
			s.index.Add(id, indexEntry{name: info.Name, version: v})
		}
	}
	return versions, nil
}

// resolveID finds name@version for id in memory, then in the cache.
func (s *NPMStore) resolveID(ctx context.Context, id ID) (indexEntry, bool) {
	if e, ok := s.index.Get(id); ok {
		return e, true
	}
	data, hit, err := s.cache.Get(ctx, s.keyer.IndexKey(id.String()))
	if err != nil || !hit {
		return indexEntry{}, false
	}
	at := strings.LastIndex(string(data), "@")
	if at <= 0 {
		return indexEntry{}, false
	}
	e := indexEntry{name: string(data[:at]), version: string(data[at+1:]), persisted: true}
	if NewID(e.name, e.version) != id {
		return indexEntry{}, false
	}
	s.index.Add(id, e)
	return e, true
}

// persist records id in the cache. An ID always names the same version,
// so entries never expire.
func (s *NPMStore) persist(ctx context.Context, id ID, e indexEntry) {
	if err := s.cache.Set(ctx, s.keyer.IndexKey(id.String()), []byte(e.name+"@"+e.version), 0); err != nil {
		return
	}
	e.persisted = true
	s.index.Add(id, e)
}
