// Package score rates the quality of an open-source repository.
//
// An [Engine] resolves a package or repository URL to [Coordinates], runs
// every configured [Scorer] concurrently and combines their values into a
// weighted composite, the net score:
//
//	engine, err := score.NewEngine(resolver, metrics.All(source), score.DefaultWeights())
//	rec := engine.Score(ctx, "https://github.com/expressjs/express")
//	fmt.Println(rec.NetScore)
//
// Scoring never fails as a whole. A scorer that errors, panics or returns
// NaN contributes 0 for its metric, and a URL that cannot be resolved yields
// an all-zero [Record]. Every metric carries the wall-clock time its scorer
// took, failures included.
//
// Concrete scorers live in the metrics subpackage.
package score
