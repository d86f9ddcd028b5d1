package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netscore/pkg/cache"
	"github.com/matzehuels/netscore/pkg/config"
	"github.com/matzehuels/netscore/pkg/pipeline"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached API responses and cost records",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached entries from the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if cfg.Cache.Backend == config.CacheMemory || cfg.Cache.Backend == config.CacheNone {
				printInfo(out, "The %s cache keeps nothing between runs", cfg.Cache.Backend)
				return nil
			}

			backend, err := pipeline.NewCache(ctx, cfg.Cache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer backend.Close()

			var count int
			switch b := backend.(type) {
			case *cache.FileCache:
				count, err = b.Clear()
			case *cache.RedisCache:
				count, err = b.Clear(ctx, cfg.Cache.KeyPrefix)
			default:
				printWarning(out, "Cache backend %s cannot be cleared", cfg.Cache.Backend)
				return nil
			}
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess(out, "Cleared %d cached entries", count)
			switch cfg.Cache.Backend {
			case config.CacheFile:
				printDetail(out, "Directory: %s", cfg.Cache.Dir)
			case config.CacheRedis:
				printDetail(out, "Redis: %s", cfg.Cache.Redis.Addr)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != config.CacheFile {
				printWarning(cmd.ErrOrStderr(), "Configured cache backend is %s, not file", cfg.Cache.Backend)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Cache.Dir)
			return nil
		},
	}
}
