// Package cost computes the transitive install cost of a package.
//
// The standalone cost of a package version is its unpacked size in
// megabytes. Its total cost adds the standalone cost of every package in
// its dependency closure, each counted once no matter how many paths reach
// it:
//
//	agg := cost.NewAggregator(packages, registry.DeclaredSizer{}, cost.NewCacheStore(c, cache.TTLCost))
//	rec, err := agg.TotalCost(ctx, cost.NewID("express", "4.18.2"))
//
// # Traversal
//
// [Aggregator.TotalCost] walks the dependency graph depth first. Each
// declared dependency constraint is resolved against the published
// versions of that name (see pkg/version). A visited set scoped to one
// traversal breaks cycles and deduplicates shared dependencies.
//
// Results are memoized in a [Store]. A completed record is returned
// without any further work, and completed dependencies are expanded from
// their stored edges without metadata or sizing calls. Concurrent requests
// for the same package share one computation.
//
// # Failures
//
// A dependency whose constraint matches no published version is skipped
// with a warning. A package that cannot be sized is recorded as
// [StatusFailed] and contributes nothing to its dependents; the error
// surfaces only when that package is the one requested.
//
// [Service] adds the caller-side checks: unknown package IDs are rejected
// with PACKAGE_NOT_FOUND before any aggregation starts.
package cost
