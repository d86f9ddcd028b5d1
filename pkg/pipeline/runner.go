package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/netscore/pkg/score"
)

// DefaultScoreConcurrency bounds how many URLs ScoreAll scores at once.
const DefaultScoreConcurrency = 4

// ScoreAll scores urls with bounded concurrency and returns the records in
// input order. It stops early only when ctx ends.
func (r *Runner) ScoreAll(ctx context.Context, urls []string) ([]score.Record, error) {
	start := time.Now()
	records := make([]score.Record, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultScoreConcurrency)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = r.Scores.Score(gctx, u)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.Logger.Info("scored repositories", "count", len(urls), "duration", time.Since(start).Round(time.Millisecond))
	return records, nil
}
