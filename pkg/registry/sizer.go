package registry

import (
	"context"

	"github.com/matzehuels/netscore/pkg/errors"
)

// Sizer measures the standalone install size of a package in bytes.
type Sizer interface {
	Size(ctx context.Context, pkg *Package) (int64, error)
}

// SizerFunc adapts a function to the Sizer interface.
type SizerFunc func(ctx context.Context, pkg *Package) (int64, error)

// Size calls f(ctx, pkg).
func (f SizerFunc) Size(ctx context.Context, pkg *Package) (int64, error) { return f(ctx, pkg) }

// DeclaredSizer reports the unpacked size recorded by the registry.
type DeclaredSizer struct{}

// Size returns pkg.UnpackedSize, failing when the registry recorded none.
func (DeclaredSizer) Size(_ context.Context, pkg *Package) (int64, error) {
	if pkg.UnpackedSize <= 0 {
		return 0, errors.New(errors.ErrCodeSizingFailed, "no unpacked size recorded for %s@%s", pkg.Name, pkg.Version)
	}
	return pkg.UnpackedSize, nil
}
