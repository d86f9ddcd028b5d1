package registry

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/netscore/pkg/cache"
)

// ErrNotFound is returned by stores for unknown IDs and names.
var ErrNotFound = cache.ErrNotFound

// ID identifies one published version of a package.
type ID = uuid.UUID

// namespace scopes package IDs so they never collide with other
// name-based UUIDs.
var namespace = uuid.MustParse("8a4f3d2e-6c1b-5e7a-9f0d-3b2c1a4e5d6f")

// NewID returns the deterministic ID for name@version.
func NewID(name, version string) ID {
	return uuid.NewSHA1(namespace, []byte(canonicalName(name)+"@"+strings.TrimSpace(version)))
}

// ParseID parses the string form of an ID.
func ParseID(s string) (ID, error) {
	return uuid.Parse(s)
}

func canonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Package is one published version with its declared runtime dependencies.
type Package struct {
	ID           ID                `json:"id"`
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Repository   string            `json:"repository,omitempty"`

	// UnpackedSize is the install size in bytes; 0 when unknown.
	UnpackedSize int64 `json:"unpacked_size,omitempty"`
}

// Store provides package metadata.
type Store interface {
	// Lookup returns the package with the given ID, or ErrNotFound.
	Lookup(ctx context.Context, id ID) (*Package, error)
	// Versions lists the published versions of name, or ErrNotFound.
	Versions(ctx context.Context, name string) ([]string, error)
}
