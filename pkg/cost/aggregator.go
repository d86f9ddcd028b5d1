package cost

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	nserrors "github.com/matzehuels/netscore/pkg/errors"
	"github.com/matzehuels/netscore/pkg/observability"
	"github.com/matzehuels/netscore/pkg/registry"
)

// Aggregator computes and memoizes dependency costs. It is safe for
// concurrent use: distinct packages are computed in parallel and
// concurrent requests for the same package share one computation.
type Aggregator struct {
	packages registry.Store
	sizer    registry.Sizer
	store    Store
	logger   *log.Logger
	group    singleflight.Group
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAggregator creates an Aggregator reading metadata from packages,
// measuring with sizer and memoizing in store.
func NewAggregator(packages registry.Store, sizer registry.Sizer, store Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		packages: packages,
		sizer:    sizer,
		store:    store,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// TotalCost returns the completed cost record for id, computing it if
// needed.
//
// If ctx is canceled the call returns ctx.Err() but the computation keeps
// running and still stores its result.
func (a *Aggregator) TotalCost(ctx context.Context, id ID) (*Record, error) {
	return a.totalCost(ctx, Ref{ID: id})
}

func (a *Aggregator) totalCost(ctx context.Context, ref Ref) (*Record, error) {
	if rec, ok := a.completed(ctx, ref.ID); ok {
		return rec, nil
	}

	ch := a.group.DoChan(ref.ID.String(), func() (any, error) {
		return a.compute(context.WithoutCancel(ctx), ref)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Record).clone(), nil
	}
}

// Closure returns an entry for id and every package in its dependency
// closure.
func (a *Aggregator) Closure(ctx context.Context, id ID) (map[ID]Entry, error) {
	root, err := a.TotalCost(ctx, id)
	if err != nil {
		return nil, err
	}

	out := map[ID]Entry{id: root.Entry()}
	stack := slices.Clone(root.Resolved)
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := out[next.ID]; seen {
			continue
		}
		rec, ok, err := a.store.Get(ctx, next.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Evicted between computation and read; recompute it.
			if rec, err = a.totalCost(ctx, next); err != nil {
				out[next.ID] = Entry{Failed: true}
				continue
			}
		}
		out[next.ID] = rec.Entry()
		stack = append(stack, rec.Resolved...)
	}
	return out, nil
}

// Cost returns the entry for id alone, or with includeDependencies the
// entries of its whole closure.
func (a *Aggregator) Cost(ctx context.Context, id ID, includeDependencies bool) (map[ID]Entry, error) {
	if includeDependencies {
		return a.Closure(ctx, id)
	}
	rec, err := a.TotalCost(ctx, id)
	if err != nil {
		return nil, err
	}
	return map[ID]Entry{id: rec.Entry()}, nil
}

// Known reports whether a completed record for id is stored.
func (a *Aggregator) Known(ctx context.Context, id ID) bool {
	_, ok := a.completed(ctx, id)
	return ok
}

func (a *Aggregator) completed(ctx context.Context, id ID) (*Record, bool) {
	rec, ok, err := a.store.Get(ctx, id)
	if err != nil {
		a.logger.Warn("cost store read failed", "id", id, "err", err)
		return nil, false
	}
	if !ok || rec.Status != StatusCompleted {
		return nil, false
	}
	return rec, true
}

func (a *Aggregator) compute(ctx context.Context, ref Ref) (rec *Record, err error) {
	start := time.Now()
	t := &traversal{agg: a, nodes: make(map[ID]*node), resolutions: make(map[string]Resolution)}
	defer func() {
		observability.Cost().OnCostComplete(ctx, ref.ID.String(), len(t.nodes), time.Since(start), err)
	}()

	if rec, ok := a.completed(ctx, ref.ID); ok {
		return rec, nil
	}

	pkg, err := a.lookup(ctx, ref)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, nserrors.Wrap(nserrors.ErrCodePackageNotFound, err, "unknown package id %s", ref.ID)
		}
		return nil, nserrors.Wrap(nserrors.ErrCodeCostFailed, err, "look up package %s", ref.Label())
	}

	root := t.expand(ctx, pkg)
	t.finish(ctx)

	if root.rec.Status == StatusFailed {
		return nil, nserrors.Wrap(nserrors.ErrCodeCostFailed, root.err, "cost of %s", root.rec.Label())
	}
	a.logger.Debug("cost computed",
		"package", root.rec.Label(),
		"total", root.rec.TotalCost.String(),
		"closure", len(t.nodes),
		"elapsed", time.Since(start))
	return root.rec, nil
}

// lookup fetches the package behind ref. Stores that only know IDs of
// listed names get the name listed first when the plain lookup misses.
func (a *Aggregator) lookup(ctx context.Context, ref Ref) (*registry.Package, error) {
	pkg, err := a.packages.Lookup(ctx, ref.ID)
	if err == nil || ref.Name == "" || !errors.Is(err, registry.ErrNotFound) {
		return pkg, err
	}
	if _, verr := a.packages.Versions(ctx, ref.Name); verr != nil {
		return nil, err
	}
	return a.packages.Lookup(ctx, ref.ID)
}

// node is one package reached by a traversal.
type node struct {
	rec   *Record
	fresh bool // computed by this traversal, not read from the store
	err   error
}

// traversal is the state of one top-level computation. It is not shared
// between goroutines.
type traversal struct {
	agg         *Aggregator
	nodes       map[ID]*node
	order       []ID
	resolutions map[string]Resolution
}

// visit adds ref and its closure to the traversal.
func (t *traversal) visit(ctx context.Context, ref Ref) {
	if _, seen := t.nodes[ref.ID]; seen {
		return
	}

	if rec, ok := t.agg.completed(ctx, ref.ID); ok {
		t.add(&node{rec: rec})
		for _, dep := range rec.Resolved {
			t.visit(ctx, dep)
		}
		return
	}

	pkg, err := t.agg.lookup(ctx, ref)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		// The edge names a version the registry no longer has. Nothing
		// is stored so that the next traversal tries again.
		t.agg.logger.Warn("dependency gone", "package", ref.Label(), "err", err)
		t.add(&node{rec: &Record{ID: ref.ID, Name: ref.Name, Version: ref.Version}, err: err})
	case err != nil:
		t.agg.logger.Warn("dependency lookup failed", "package", ref.Label(), "err", err)
		t.fail(ctx, &node{rec: &Record{ID: ref.ID, Name: ref.Name, Version: ref.Version}, fresh: true}, err)
	default:
		t.expand(ctx, pkg)
	}
}

// expand sizes a package that has no completed record and visits its
// dependencies.
func (t *traversal) expand(ctx context.Context, pkg *registry.Package) *node {
	n := &node{
		fresh: true,
		rec: &Record{
			ID:           pkg.ID,
			Name:         pkg.Name,
			Version:      pkg.Version,
			Dependencies: maps.Clone(pkg.Dependencies),
			Status:       StatusPending,
		},
	}
	t.add(n)
	t.put(ctx, n.rec)

	if size, err := t.agg.sizer.Size(ctx, pkg); err != nil {
		t.agg.logger.Warn("sizing failed", "package", n.rec.Label(), "err", err)
		n.err = err
	} else {
		n.rec.StandaloneCost = sizeToCost(size)
	}

	var names []string
	for name := range pkg.Dependencies {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		constraint := pkg.Dependencies[name]
		switch r := t.resolve(ctx, name, constraint).(type) {
		case Resolved:
			ref := Ref{ID: r.ID, Name: r.Name, Version: r.Version}
			n.rec.Resolved = append(n.rec.Resolved, ref)
			t.visit(ctx, ref)
		case Unresolved:
			t.agg.logger.Warn("dependency unresolved",
				"package", n.rec.Label(),
				"dependency", r.Name,
				"constraint", r.Constraint,
				"err", r.Reason)
			observability.Cost().OnDependencyUnresolved(ctx, r.Name, r.Constraint)
		}
	}
	return n
}

func (t *traversal) resolve(ctx context.Context, name, constraint string) Resolution {
	key := name + "\x00" + constraint
	if r, ok := t.resolutions[key]; ok {
		return r
	}
	r := Resolve(ctx, t.agg.packages, name, constraint)
	t.resolutions[key] = r
	return r
}

func (t *traversal) add(n *node) {
	t.nodes[n.rec.ID] = n
	t.order = append(t.order, n.rec.ID)
}

func (t *traversal) fail(ctx context.Context, n *node, err error) {
	n.err = err
	if _, seen := t.nodes[n.rec.ID]; !seen {
		t.add(n)
	}
	n.rec.Status = StatusFailed
	n.rec.Error = err.Error()
	n.rec.UpdatedAt = time.Now()
	t.put(ctx, n.rec)
}

// finish computes totals for every fresh node and stores the results.
// A node's total is the sum of standalone costs over the nodes reachable
// from it; failed nodes add nothing.
func (t *traversal) finish(ctx context.Context) {
	for _, id := range t.order {
		n := t.nodes[id]
		if !n.fresh || n.rec.Status == StatusFailed {
			continue
		}
		if n.err != nil {
			t.fail(ctx, n, n.err)
			continue
		}
		n.rec.TotalCost = t.reachableCost(id)
		n.rec.Status = StatusCompleted
		n.rec.Error = ""
		n.rec.UpdatedAt = time.Now()
		t.put(ctx, n.rec)
	}
}

func (t *traversal) reachableCost(from ID) decimal.Decimal {
	seen := map[ID]bool{from: true}
	stack := []ID{from}
	total := decimal.Zero
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes[id]
		if n == nil {
			continue
		}
		if n.err == nil && n.rec.Status != StatusFailed {
			total = total.Add(n.rec.StandaloneCost)
		}
		for _, dep := range n.rec.Resolved {
			if !seen[dep.ID] {
				seen[dep.ID] = true
				stack = append(stack, dep.ID)
			}
		}
	}
	return total
}

func (t *traversal) put(ctx context.Context, rec *Record) {
	if err := t.agg.store.Put(ctx, rec); err != nil {
		t.agg.logger.Warn("cost store write failed", "package", rec.Label(), "err", err)
	}
}
