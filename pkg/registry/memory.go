package registry

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/netscore/pkg/version"
)

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[ID]*Package
	byName map[string]map[string]ID
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[ID]*Package),
		byName: make(map[string]map[string]ID),
	}
}

// Add registers pkg, replacing any previous entry for the same
// name@version, and returns its ID. pkg.ID is ignored and recomputed.
func (s *MemoryStore) Add(pkg Package) ID {
	pkg.ID = NewID(pkg.Name, pkg.Version)
	pkg.Dependencies = maps.Clone(pkg.Dependencies)
	name := canonicalName(pkg.Name)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[pkg.ID] = &pkg
	if s.byName[name] == nil {
		s.byName[name] = make(map[string]ID)
	}
	s.byName[name][pkg.Version] = pkg.ID
	return pkg.ID
}

// Lookup returns a copy of the package with the given ID.
func (s *MemoryStore) Lookup(_ context.Context, id ID) (*Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pkg, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: package %s", ErrNotFound, id)
	}
	cp := *pkg
	cp.Dependencies = maps.Clone(pkg.Dependencies)
	return &cp, nil
}

// Versions lists the registered versions of name in ascending order.
func (s *MemoryStore) Versions(_ context.Context, name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions, ok := s.byName[canonicalName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: package %s", ErrNotFound, name)
	}
	var vs []string
	for v := range versions {
		vs = append(vs, v)
	}
	slices.SortFunc(vs, version.Compare)
	return vs, nil
}

// Len returns the number of registered package versions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
