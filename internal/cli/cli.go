// Package cli implements the netscore command-line interface.
//
// # Commands
//
//   - score: Rate repositories by URL and print one JSON record per line
//   - cost: Compute the install cost of a package version
//   - serve: Run the HTTP API
//   - cache: Inspect or clear the local cache
//   - version: Print build information
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so that commands and the pipeline share
// one configured logger.
//
// # Configuration
//
// --config points at a TOML file; environment variables and a .env file
// override it (see the config package).
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netscore/pkg/buildinfo"
	"github.com/matzehuels/netscore/pkg/config"
	"github.com/matzehuels/netscore/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "netscore"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool

	// newRunner builds the pipeline; tests replace it.
	newRunner func(ctx context.Context, cfg *config.Config, logger *log.Logger) (*pipeline.Runner, error)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		newRunner: pipeline.New,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "netscore rates npm packages and their install cost",
		Long:         `netscore scores open-source repositories on weighted quality metrics and computes the transitive install cost of npm package versions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a TOML config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.scoreCommand())
	root.AddCommand(c.costCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration and applies its log level unless
// --verbose already asked for debug output.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if !c.verbose {
		if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
			c.SetLogLevel(level)
		}
	}
	return cfg, nil
}

// runner loads the configuration and wires a pipeline. Callers must Close it.
func (c *CLI) runner(ctx context.Context) (*pipeline.Runner, *config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	r, err := c.newRunner(ctx, cfg, loggerFromContext(ctx))
	if err != nil {
		return nil, nil, fmt.Errorf("init pipeline: %w", err)
	}
	return r, cfg, nil
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
