package score

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netscore/pkg/observability"
)

// Engine computes net scores. Its metric set and weights are fixed at
// construction. It is safe for concurrent use.
type Engine struct {
	resolver Resolver
	scorers  map[string]Scorer
	weights  Weights
	logger   *log.Logger
	timeout  time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithScorerTimeout bounds each scorer's run time. A scorer that exceeds
// it scores 0. Zero, the default, means no limit.
func WithScorerTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// NewEngine creates an Engine. Every weighted metric needs a scorer;
// scorers for metrics without a weight are ignored.
func NewEngine(resolver Resolver, scorers []Scorer, weights Weights, opts ...Option) (*Engine, error) {
	if resolver == nil {
		return nil, fmt.Errorf("score: nil resolver")
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}

	byName := make(map[string]Scorer, len(scorers))
	for _, s := range scorers {
		byName[s.Name()] = s
	}
	for _, w := range weights {
		if _, ok := byName[w.Metric]; !ok {
			return nil, fmt.Errorf("score: no scorer for metric %s", w.Metric)
		}
	}

	e := &Engine{
		resolver: resolver,
		scorers:  byName,
		weights:  weights,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Metrics returns the metric names in declared order.
func (e *Engine) Metrics() []string { return e.weights.Metrics() }

// Score rates the repository behind url. It never fails: unresolvable
// URLs produce an all-zero record and failing scorers score 0.
func (e *Engine) Score(ctx context.Context, url string) Record {
	start := time.Now()
	rec := Record{URL: url, Metrics: make([]MetricScore, len(e.weights))}
	for i, w := range e.weights {
		rec.Metrics[i].Name = w.Metric
	}

	coords, err := e.resolver.Resolve(ctx, url)
	if err != nil {
		e.logger.Warn("cannot resolve repository", "url", url, "err", err)
		observability.Score().OnScoreComplete(ctx, url, 0, time.Since(start), err)
		return rec
	}
	setup := time.Since(start)
	rec.SetupLatency = setup.Seconds()

	var wg sync.WaitGroup
	for i, w := range e.weights {
		wg.Add(1)
		go func(slot *MetricScore, s Scorer) {
			defer wg.Done()
			mctx, cancel := e.scorerContext(ctx)
			defer cancel()
			v, elapsed, err := invoke(mctx, e.logger, s, coords)
			slot.Value, slot.Latency = v, elapsed.Seconds()
			observability.Score().OnMetricComplete(ctx, slot.Name, v, elapsed, err)
		}(&rec.Metrics[i], e.scorers[w.Metric])
	}
	wg.Wait()

	rec.NetScoreLatency = rec.SetupLatency
	for i, w := range e.weights {
		m := rec.Metrics[i]
		rec.NetScore += w.Weight * m.Value
		rec.NetScoreLatency += m.Latency
	}
	rec.NetScore = clamp01(rec.NetScore)

	e.logger.Debug("scored", "repo", coords.String(), "net", rec.NetScore, "elapsed", time.Since(start))
	observability.Score().OnScoreComplete(ctx, url, rec.NetScore, time.Since(start), nil)
	return rec
}

func (e *Engine) scorerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return context.WithCancel(ctx)
}
