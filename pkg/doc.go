// Package pkg provides the core libraries for netscore.
//
// # Overview
//
// netscore answers two questions about open-source packages: how
// trustworthy is the repository behind it (a weighted "net score" over
// several quality metrics) and how much does installing a given version
// cost once every transitive dependency is counted.
//
// # Architecture
//
// Scoring:
//
//	repository or npm URL
//	         ↓
//	    [score] Resolver (URL → owner/repo)
//	         ↓
//	    [score/metrics] scorers, run concurrently by the [score] Engine
//	         ↓
//	    [score] Record (net score, per-metric values and latencies)
//
// Costing:
//
//	package id
//	         ↓
//	    [registry] Store (metadata and declared dependencies)
//	         ↓
//	    [version] constraint matching (caret, tilde, ranges)
//	         ↓
//	    [cost] Aggregator (memoized, cycle-safe closure sums)
//
// # Quick Start
//
//	cfg, _ := config.Load("")
//	runner, err := pipeline.New(ctx, cfg, nil)
//	if err != nil {
//	    return err
//	}
//	defer runner.Close(ctx)
//
//	rec := runner.Scores.Score(ctx, "https://github.com/expressjs/express")
//	fmt.Println(rec.NetScore)
//
//	_, entries, _ := runner.Costs.CostOf(ctx, "express", "4.18.2", true)
//
// # Main Packages
//
// ## Domain Logic
//
// [score] - The net score engine, the latency-measuring scorer invoker and
// the URL resolver. [score/metrics] holds the standard metrics.
//
// [cost] - Dependency cost records, their store and the aggregator that
// computes standalone and transitive costs.
//
// [registry] - Package identity and metadata: npm-backed, MongoDB-backed and
// in-memory stores.
//
// [version] - npm-style version constraint matching.
//
// ## Infrastructure
//
// [cache] - File, in-memory LRU, Redis and null cache backends shared by API
// clients and cost records.
//
// [integrations] - Cached HTTP clients for the npm registry and the GitHub API.
//
// [pipeline] - Wires every component from a [config] so the CLI and the HTTP
// server behave the same.
//
// [errors] - Coded errors, validation helpers and HTTP status mapping.
//
// [observability] - Hooks for metric, score, cost and cache events.
//
// # Testing
//
//	go test ./...                        # All tests
//	go test ./pkg/cost/...               # Specific package
//	go test -tags integration ./pkg/...  # Include live API tests
//
// [score]: https://pkg.go.dev/github.com/matzehuels/netscore/pkg/score
// [score/metrics]: https://pkg.go.dev/github.com/matzehuels/netscore/pkg/score/metrics
// [cost]: https://pkg.go.dev/github.com/matzehuels/netscore/pkg/cost
// [registry]: https://pkg.go.dev/github.com/matzehuels/netscore/pkg/registry
// [version]: https://pkg.go.dev/github.com/matzehuels/netscore/pkg/version
// [cache]: https://pkg.go.dev/github.com/matzehuels/netscore/pkg/cache
// [integrations]: https://pkg.go.dev/github.com/matzehuels/netscore/pkg/integrations
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/netscore/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/netscore/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/netscore/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/netscore/pkg/observability
package pkg
