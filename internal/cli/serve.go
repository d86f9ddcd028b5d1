package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/netscore/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the cost and score engines over HTTP:

  GET  /healthz
  GET  /package/{id}/cost?dependency=true|false
  GET  /cost?name=<package>&version=<version>&dependency=true|false
  POST /rate  {"url": "..."}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, cfg, err := c.runner(ctx)
			if err != nil {
				return err
			}
			defer r.Close(ctx)

			if addr == "" {
				addr = cfg.Server.Addr
			}
			srv := server.New(r.Costs, r.Scores, loggerFromContext(ctx))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}
