package score

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
)

// Coordinates identify the repository being scored.
type Coordinates struct {
	URL     string // URL as given by the caller
	Owner   string // repository owner
	Repo    string // repository name
	Package string // npm package name, when the URL named one
}

// String returns "owner/repo".
func (c Coordinates) String() string { return c.Owner + "/" + c.Repo }

// Scorer computes one quality metric in [0, 1].
type Scorer interface {
	Name() string
	Score(ctx context.Context, c Coordinates) (float64, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc struct {
	Metric string
	Fn     func(ctx context.Context, c Coordinates) (float64, error)
}

// Name returns f.Metric.
func (f ScorerFunc) Name() string { return f.Metric }

// Score calls f.Fn.
func (f ScorerFunc) Score(ctx context.Context, c Coordinates) (float64, error) { return f.Fn(ctx, c) }

// Invoke runs s and measures how long it took. Any failure, whether an
// error, a panic, a NaN value or ctx ending first, is logged at warn level
// and reported as a zero value with the time spent so far. Finite values
// are clamped to [0, 1].
func Invoke(ctx context.Context, logger *log.Logger, s Scorer, c Coordinates) (value float64, elapsed time.Duration) {
	value, elapsed, _ = invoke(ctx, logger, s, c)
	return value, elapsed
}

func invoke(ctx context.Context, logger *log.Logger, s Scorer, c Coordinates) (float64, time.Duration, error) {
	if logger == nil {
		logger = log.Default()
	}
	start := time.Now()

	type result struct {
		value float64
		err   error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := s.Score(ctx, c)
		done <- result{value: v, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	elapsed := time.Since(start)

	if res.err == nil && math.IsNaN(res.value) {
		res.err = fmt.Errorf("scorer returned NaN")
	}
	if res.err != nil {
		logger.Warn("scorer failed", "metric", s.Name(), "repo", c.String(), "err", res.err, "elapsed", elapsed)
		return 0, elapsed, res.err
	}
	return clamp01(res.value), elapsed, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
