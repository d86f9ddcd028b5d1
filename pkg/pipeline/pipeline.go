// Package pipeline wires netscore's components together from a
// [config.Config].
//
// The CLI and the HTTP server both build a [Runner] so that caching,
// registry access and scoring behave the same at every entry point:
//
//	cfg, _ := config.Load("")
//	runner, err := pipeline.New(ctx, cfg, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer runner.Close()
//
//	records, _ := runner.ScoreAll(ctx, []string{"https://github.com/expressjs/express"})
//	id, entries, err := runner.Costs.CostOf(ctx, "express", "4.18.2", true)
//
// # Components
//
//   - Cache: file, memory, redis or no cache, shared by the npm and GitHub
//     clients and the cost record store
//   - Packages: npm registry or MongoDB package metadata
//   - Costs: the cost service over an aggregator
//   - Scores: the net score engine with the standard metrics
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netscore/pkg/cache"
	"github.com/matzehuels/netscore/pkg/config"
	"github.com/matzehuels/netscore/pkg/cost"
	"github.com/matzehuels/netscore/pkg/integrations/github"
	"github.com/matzehuels/netscore/pkg/integrations/npm"
	"github.com/matzehuels/netscore/pkg/registry"
	"github.com/matzehuels/netscore/pkg/score"
	"github.com/matzehuels/netscore/pkg/score/metrics"
)

// Runner holds the wired components. Fields are safe for concurrent use.
type Runner struct {
	Cache    cache.Cache
	Packages registry.Store
	Costs    *cost.Service
	Scores   *score.Engine
	Logger   *log.Logger

	closers []func(context.Context) error
}

// New builds a Runner from cfg. A nil logger means log.Default().
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Runner, error) {
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{Logger: logger}

	c, err := NewCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	r.Cache = c
	r.closers = append(r.closers, func(context.Context) error { return c.Close() })

	keyer := cache.KeyerFor(cfg.Cache.KeyPrefix)
	npmClient := npm.NewClient(c, cfg.Cache.HTTPTTL).WithBaseURL(cfg.Registry.NPMURL)
	npmClient.SetKeyer(keyer)
	githubClient := github.NewClient(c, cfg.GitHub.Token, cfg.Cache.HTTPTTL).WithBaseURL(cfg.GitHub.BaseURL)
	githubClient.SetKeyer(keyer)

	switch cfg.Registry.Backend {
	case config.RegistryMongo:
		store, err := registry.NewMongoStore(ctx, cfg.Registry.MongoURI, cfg.Registry.MongoDatabase)
		if err != nil {
			r.Close(ctx)
			return nil, err
		}
		r.Packages = store
		r.closers = append(r.closers, store.Close)
	default:
		r.Packages = registry.NewNPMStore(npmClient, c).WithKeyer(keyer)
	}

	records := cost.NewCacheStore(c, cfg.Cache.CostTTL).WithKeyer(keyer)
	agg := cost.NewAggregator(r.Packages, registry.DeclaredSizer{}, records, cost.WithLogger(logger))
	r.Costs = cost.NewService(r.Packages, agg)

	opts := []score.Option{score.WithLogger(logger)}
	if cfg.Score.ScorerTimeout > 0 {
		opts = append(opts, score.WithScorerTimeout(cfg.Score.ScorerTimeout))
	}
	engine, err := score.NewEngine(
		score.NewURLResolver(npmClient),
		metrics.All(metrics.NewGitHubSource(githubClient)),
		score.DefaultWeights(),
		opts...,
	)
	if err != nil {
		r.Close(ctx)
		return nil, err
	}
	r.Scores = engine

	logger.Debug("pipeline ready",
		"cache", cfg.Cache.Backend,
		"prefix", cfg.Cache.KeyPrefix,
		"registry", cfg.Registry.Backend,
		"github_auth", cfg.GitHub.Token != "")
	return r, nil
}

// NewCache creates the cache backend cfg selects.
func NewCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case config.CacheFile, "":
		fc, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case config.CacheMemory:
		mc, err := cache.NewMemoryCache(cfg.MemorySize)
		if err != nil {
			return nil, err
		}
		return mc, nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case config.CacheNone:
		return cache.NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Close releases backend connections.
func (r *Runner) Close(ctx context.Context) error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
