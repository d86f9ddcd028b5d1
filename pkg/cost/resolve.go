package cost

import (
	"context"
	"fmt"

	"github.com/matzehuels/netscore/pkg/registry"
	"github.com/matzehuels/netscore/pkg/version"
)

// Resolution is the outcome of resolving one declared dependency: either
// [Resolved] or [Unresolved].
type Resolution interface {
	resolution()
}

// Resolved is a dependency matched to a concrete published version.
type Resolved struct {
	Name       string
	Constraint string
	Version    string
	ID         ID
}

// Unresolved is a dependency no published version satisfies, or whose
// versions could not be listed.
type Unresolved struct {
	Name       string
	Constraint string
	Reason     error
}

func (Resolved) resolution()   {}
func (Unresolved) resolution() {}

// Resolve picks the greatest published version of name satisfying
// constraint.
func Resolve(ctx context.Context, packages registry.Store, name, constraint string) Resolution {
	versions, err := packages.Versions(ctx, name)
	if err != nil {
		return Unresolved{Name: name, Constraint: constraint, Reason: err}
	}
	v, ok := version.Select(versions, constraint)
	if !ok {
		return Unresolved{
			Name:       name,
			Constraint: constraint,
			Reason:     fmt.Errorf("no version of %s satisfies %q", name, constraint),
		}
	}
	return Resolved{Name: name, Constraint: constraint, Version: v, ID: NewID(name, v)}
}
