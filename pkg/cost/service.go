package cost

import (
	"context"
	"errors"
	"slices"

	nserrors "github.com/matzehuels/netscore/pkg/errors"
	"github.com/matzehuels/netscore/pkg/registry"
)

// Service is the entry point used by the CLI and HTTP adapter. It checks
// that a package exists before handing it to the Aggregator.
type Service struct {
	packages registry.Store
	agg      *Aggregator
}

// NewService creates a Service over agg, validating IDs against packages.
func NewService(packages registry.Store, agg *Aggregator) *Service {
	return &Service{packages: packages, agg: agg}
}

// Cost returns the cost entries for id. Unknown IDs fail with
// PACKAGE_NOT_FOUND; a package that cannot be sized fails with COST_FAILED.
// IDs with a completed record are served without asking the registry.
func (s *Service) Cost(ctx context.Context, id ID, includeDependencies bool) (map[ID]Entry, error) {
	if !s.agg.Known(ctx, id) {
		if _, err := s.packages.Lookup(ctx, id); err != nil {
			return nil, lookupError(err, id.String())
		}
	}
	return s.agg.Cost(ctx, id, includeDependencies)
}

// CostOf is Cost addressed by name and exact version.
func (s *Service) CostOf(ctx context.Context, name, version string, includeDependencies bool) (ID, map[ID]Entry, error) {
	if err := nserrors.ValidateNpmPackageName(name); err != nil {
		return ID{}, nil, err
	}
	if err := nserrors.ValidateVersion(version); err != nil {
		return ID{}, nil, err
	}

	versions, err := s.packages.Versions(ctx, name)
	if err != nil {
		return ID{}, nil, lookupError(err, name)
	}
	if !slices.Contains(versions, version) {
		return ID{}, nil, nserrors.New(nserrors.ErrCodePackageNotFound, "%s has no published version %s", name, version)
	}

	id := NewID(name, version)
	entries, err := s.Cost(ctx, id, includeDependencies)
	return id, entries, err
}

func lookupError(err error, what string) error {
	if errors.Is(err, registry.ErrNotFound) {
		return nserrors.Wrap(nserrors.ErrCodePackageNotFound, err, "unknown package %s", what)
	}
	return nserrors.Wrap(nserrors.ErrCodeNetwork, err, "look up package %s", what)
}
