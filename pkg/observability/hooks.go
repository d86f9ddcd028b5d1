// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module emit events through the registered hooks; the
// defaults are no-ops. A binary that wants Prometheus counters or traces
// registers its own implementations once at startup:
//
//	func main() {
//	    observability.SetScoreHooks(&myScoreHooks{})
//	    observability.SetCostHooks(&myCostHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Score().OnMetricComplete(ctx, "BusFactor", 0.7, elapsed, nil)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Score Hooks
// =============================================================================

// ScoreHooks receives events from the NetScore engine.
type ScoreHooks interface {
	// OnMetricComplete fires once per scorer invocation. err is the scorer's
	// failure, already absorbed into a zero value.
	OnMetricComplete(ctx context.Context, metric string, value float64, latency time.Duration, err error)

	// OnScoreComplete fires once per scored URL. err is non-nil when the
	// repository could not be resolved.
	OnScoreComplete(ctx context.Context, url string, netScore float64, latency time.Duration, err error)
}

// =============================================================================
// Cost Hooks
// =============================================================================

// CostHooks receives events from the dependency cost aggregator.
type CostHooks interface {
	// OnCostComplete fires when a top-level cost computation finishes.
	// nodes is the number of packages visited by the traversal.
	OnCostComplete(ctx context.Context, packageID string, nodes int, duration time.Duration, err error)

	// OnDependencyUnresolved fires when a declared dependency matches no
	// known version.
	OnDependencyUnresolved(ctx context.Context, name, constraint string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from outgoing registry and GitHub requests.
type HTTPHooks interface {
	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopScoreHooks is a no-op implementation of ScoreHooks.
type NoopScoreHooks struct{}

func (NoopScoreHooks) OnMetricComplete(context.Context, string, float64, time.Duration, error) {}
func (NoopScoreHooks) OnScoreComplete(context.Context, string, float64, time.Duration, error)  {}

// NoopCostHooks is a no-op implementation of CostHooks.
type NoopCostHooks struct{}

func (NoopCostHooks) OnCostComplete(context.Context, string, int, time.Duration, error) {}
func (NoopCostHooks) OnDependencyUnresolved(context.Context, string, string)            {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	scoreHooks ScoreHooks = NoopScoreHooks{}
	costHooks  CostHooks  = NoopCostHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetScoreHooks registers custom score hooks. Nil is ignored.
func SetScoreHooks(h ScoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		scoreHooks = h
	}
}

// SetCostHooks registers custom cost hooks. Nil is ignored.
func SetCostHooks(h CostHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		costHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Score returns the registered score hooks.
func Score() ScoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return scoreHooks
}

// Cost returns the registered cost hooks.
func Cost() CostHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return costHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	scoreHooks = NoopScoreHooks{}
	costHooks = NoopCostHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
