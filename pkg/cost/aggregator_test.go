package cost

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/netscore/pkg/cache"
	"github.com/matzehuels/netscore/pkg/errors"
	"github.com/matzehuels/netscore/pkg/observability"
	"github.com/matzehuels/netscore/pkg/registry"
)

// countingStore wraps a MemoryStore and counts metadata calls.
type countingStore struct {
	*registry.MemoryStore
	lookups  atomic.Int64
	versions atomic.Int64
}

func (s *countingStore) Lookup(ctx context.Context, id ID) (*registry.Package, error) {
	s.lookups.Add(1)
	return s.MemoryStore.Lookup(ctx, id)
}

func (s *countingStore) Versions(ctx context.Context, name string) ([]string, error) {
	s.versions.Add(1)
	return s.MemoryStore.Versions(ctx, name)
}

// countingSizer sizes from UnpackedSize and counts calls per package.
type countingSizer struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
	delay time.Duration
}

func newCountingSizer() *countingSizer {
	return &countingSizer{calls: map[string]int{}, fail: map[string]bool{}}
}

func (s *countingSizer) Size(ctx context.Context, pkg *registry.Package) (int64, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	s.calls[pkg.Name]++
	fail := s.fail[pkg.Name]
	s.mu.Unlock()
	if fail {
		return 0, errors.New(errors.ErrCodeSizingFailed, "cannot size %s", pkg.Name)
	}
	return pkg.UnpackedSize, nil
}

func (s *countingSizer) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

type fixture struct {
	packages *countingStore
	sizer    *countingSizer
	store    *CacheStore
	agg      *Aggregator
}

// pkgDef is name, version, size in MB, then dependency name/constraint pairs.
type pkgDef struct {
	name, version string
	mb            int64
	deps          map[string]string
}

func newFixture(t *testing.T, pkgs ...pkgDef) *fixture {
	t.Helper()
	mem := registry.NewMemoryStore()
	for _, p := range pkgs {
		mem.Add(registry.Package{Name: p.name, Version: p.version, UnpackedSize: p.mb * 1_000_000, Dependencies: p.deps})
	}
	c, err := cache.NewMemoryCache(1024)
	require.NoError(t, err)

	f := &fixture{
		packages: &countingStore{MemoryStore: mem},
		sizer:    newCountingSizer(),
		store:    NewCacheStore(c, cache.TTLCost),
	}
	quiet := log.New(io.Discard)
	quiet.SetLevel(log.FatalLevel)
	f.agg = NewAggregator(f.packages, f.sizer, f.store, WithLogger(quiet))
	return f
}

func mb(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestTotalCostSingle(t *testing.T) {
	f := newFixture(t, pkgDef{name: "a", version: "1.0.0", mb: 3})

	rec, err := f.agg.TotalCost(context.Background(), NewID("a", "1.0.0"))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.True(t, rec.StandaloneCost.Equal(mb(3)))
	assert.True(t, rec.TotalCost.Equal(mb(3)))
}

func TestTotalCostIdempotent(t *testing.T) {
	f := newFixture(t,
		pkgDef{name: "a", version: "1.0.0", mb: 1, deps: map[string]string{"b": "^1.0.0"}},
		pkgDef{name: "b", version: "1.2.0", mb: 2},
	)
	ctx := context.Background()
	id := NewID("a", "1.0.0")

	first, err := f.agg.TotalCost(ctx, id)
	require.NoError(t, err)

	lookups, versions, sizes := f.packages.lookups.Load(), f.packages.versions.Load(), f.sizer.total()
	second, err := f.agg.TotalCost(ctx, id)
	require.NoError(t, err)

	assert.True(t, first.TotalCost.Equal(second.TotalCost))
	assert.Equal(t, lookups, f.packages.lookups.Load(), "no metadata lookups on second call")
	assert.Equal(t, versions, f.packages.versions.Load(), "no version listings on second call")
	assert.Equal(t, sizes, f.sizer.total(), "no sizing on second call")
}

func TestTotalCostCycle(t *testing.T) {
	f := newFixture(t,
		pkgDef{name: "a", version: "1.0.0", mb: 1, deps: map[string]string{"b": "1.0.0"}},
		pkgDef{name: "b", version: "1.0.0", mb: 2, deps: map[string]string{"c": "1.0.0"}},
		pkgDef{name: "c", version: "1.0.0", mb: 4, deps: map[string]string{"a": "1.0.0"}},
	)

	done := make(chan struct{})
	var rec *Record
	var err error
	go func() {
		defer close(done)
		rec, err = f.agg.TotalCost(context.Background(), NewID("a", "1.0.0"))
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("cyclic graph did not terminate")
	}

	require.NoError(t, err)
	assert.True(t, rec.TotalCost.Equal(mb(7)), "got %s", rec.TotalCost)
	assert.Equal(t, 1, f.sizer.calls["a"])
	assert.Equal(t, 1, f.sizer.calls["b"])
	assert.Equal(t, 1, f.sizer.calls["c"])
}

func TestTotalCostDiamond(t *testing.T) {
	f := newFixture(t,
		pkgDef{name: "a", version: "1.0.0", mb: 1, deps: map[string]string{"b": "^1.0.0", "c": "^1.0.0"}},
		pkgDef{name: "b", version: "1.0.0", mb: 2, deps: map[string]string{"d": "~2.0.0"}},
		pkgDef{name: "c", version: "1.0.0", mb: 4, deps: map[string]string{"d": "~2.0.0"}},
		pkgDef{name: "d", version: "2.0.5", mb: 8},
	)
	ctx := context.Background()

	rec, err := f.agg.TotalCost(ctx, NewID("a", "1.0.0"))
	require.NoError(t, err)
	assert.True(t, rec.TotalCost.Equal(mb(15)), "d counted once, got %s", rec.TotalCost)
	assert.Equal(t, 1, f.sizer.calls["d"])

	b, ok, err := f.store.Get(ctx, NewID("b", "1.0.0"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, b.Status)
	assert.True(t, b.TotalCost.Equal(mb(10)), "dependency totals are stored, got %s", b.TotalCost)
}

func TestCompletedDependencyNotRecomputed(t *testing.T) {
	f := newFixture(t,
		pkgDef{name: "a", version: "1.0.0", mb: 1, deps: map[string]string{"b": "1.0.0"}},
		pkgDef{name: "b", version: "1.0.0", mb: 2, deps: map[string]string{"c": "1.0.0"}},
		pkgDef{name: "c", version: "1.0.0", mb: 4},
	)
	ctx := context.Background()

	_, err := f.agg.TotalCost(ctx, NewID("b", "1.0.0"))
	require.NoError(t, err)
	versions := f.packages.versions.Load()

	rec, err := f.agg.TotalCost(ctx, NewID("a", "1.0.0"))
	require.NoError(t, err)
	assert.True(t, rec.TotalCost.Equal(mb(7)))
	assert.Equal(t, 1, f.sizer.calls["b"])
	assert.Equal(t, 1, f.sizer.calls["c"])
	assert.Equal(t, versions+1, f.packages.versions.Load(), "only a's own dependency is resolved")
}

func TestUnresolvedDependencySkipped(t *testing.T) {
	f := newFixture(t,
		pkgDef{name: "a", version: "1.0.0", mb: 1, deps: map[string]string{"b": "^9.0.0", "ghost": "1.0.0"}},
		pkgDef{name: "b", version: "1.0.0", mb: 2},
	)

	var unresolved []string
	observability.SetCostHooks(&recordingCostHooks{onUnresolved: func(name string) { unresolved = append(unresolved, name) }})
	defer observability.Reset()

	rec, err := f.agg.TotalCost(context.Background(), NewID("a", "1.0.0"))
	require.NoError(t, err)
	assert.True(t, rec.TotalCost.Equal(mb(1)))
	assert.Empty(t, rec.Resolved)
	assert.ElementsMatch(t, []string{"b", "ghost"}, unresolved)
}

func TestSizingFailure(t *testing.T) {
	f := newFixture(t,
		pkgDef{name: "a", version: "1.0.0", mb: 1, deps: map[string]string{"b": "1.0.0", "c": "1.0.0"}},
		pkgDef{name: "b", version: "1.0.0", mb: 2},
		pkgDef{name: "c", version: "1.0.0", mb: 4},
	)
	f.sizer.fail["b"] = true
	ctx := context.Background()

	rec, err := f.agg.TotalCost(ctx, NewID("a", "1.0.0"))
	require.NoError(t, err, "a failed dependency does not fail its dependents")
	assert.True(t, rec.TotalCost.Equal(mb(5)), "got %s", rec.TotalCost)

	b, ok, err := f.store.Get(ctx, NewID("b", "1.0.0"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, b.Status)
	assert.NotEmpty(t, b.Error)

	c, _, _ := f.store.Get(ctx, NewID("c", "1.0.0"))
	assert.Equal(t, StatusCompleted, c.Status, "siblings are unaffected")

	_, err = f.agg.TotalCost(ctx, NewID("b", "1.0.0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCostFailed))
	assert.Equal(t, 2, f.sizer.calls["b"], "failed records are recomputed")
}

func TestUnknownRoot(t *testing.T) {
	f := newFixture(t)
	_, err := f.agg.TotalCost(context.Background(), NewID("nope", "1.0.0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodePackageNotFound))
}

func TestConcurrentSameID(t *testing.T) {
	f := newFixture(t,
		pkgDef{name: "a", version: "1.0.0", mb: 1, deps: map[string]string{"b": "1.0.0"}},
		pkgDef{name: "b", version: "1.0.0", mb: 2},
	)
	f.sizer.delay = 20 * time.Millisecond
	id := NewID("a", "1.0.0")

	var wg sync.WaitGroup
	results := make([]*Record, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := f.agg.TotalCost(context.Background(), id)
			if err == nil {
				results[i] = rec
			}
		}(i)
	}
	wg.Wait()

	for i, rec := range results {
		require.NotNil(t, rec, "call %d failed", i)
		assert.True(t, rec.TotalCost.Equal(mb(3)))
	}
	assert.Equal(t, 1, f.sizer.calls["a"])
	assert.Equal(t, 1, f.sizer.calls["b"])
}

func TestCanceledCallerStillCaches(t *testing.T) {
	f := newFixture(t, pkgDef{name: "a", version: "1.0.0", mb: 1})
	f.sizer.delay = 50 * time.Millisecond
	id := NewID("a", "1.0.0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.agg.TotalCost(ctx, id)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Eventually(t, func() bool {
		rec, ok, _ := f.store.Get(context.Background(), id)
		return ok && rec.Status == StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCostClosure(t *testing.T) {
	f := newFixture(t,
		pkgDef{name: "a", version: "1.0.0", mb: 1, deps: map[string]string{"b": "1.0.0", "c": "1.0.0"}},
		pkgDef{name: "b", version: "1.0.0", mb: 2, deps: map[string]string{"c": "1.0.0"}},
		pkgDef{name: "c", version: "1.0.0", mb: 4},
	)
	ctx := context.Background()
	a, b, c := NewID("a", "1.0.0"), NewID("b", "1.0.0"), NewID("c", "1.0.0")

	single, err := f.agg.Cost(ctx, a, false)
	require.NoError(t, err)
	assert.Equal(t, map[ID]Entry{a: {StandaloneCost: 1, TotalCost: 7}}, single)

	all, err := f.agg.Cost(ctx, a, true)
	require.NoError(t, err)
	assert.Equal(t, map[ID]Entry{
		a: {StandaloneCost: 1, TotalCost: 7},
		b: {StandaloneCost: 2, TotalCost: 6},
		c: {StandaloneCost: 4, TotalCost: 4},
	}, all)
}

type recordingCostHooks struct {
	observability.NoopCostHooks
	mu           sync.Mutex
	onUnresolved func(name string)
}

func (h *recordingCostHooks) OnDependencyUnresolved(_ context.Context, name, _ string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onUnresolved(name)
}
