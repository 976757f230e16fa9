package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crmmap/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

Snapshots are read from the configured source and cached in the configured
backend; use the redis backend to share the cache between instances. The
server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close(context.WithoutCancel(ctx))

			srv := server.New(runner, c.Logger)
			srv.Defaults = cfg.Request()
			c.Logger.Info("serving",
				"source", cfg.Source.Kind,
				"cache", cfg.Cache.Backend,
				"strategy", cfg.Layout.Strategy)
			return srv.ListenAndServe(ctx, cfg.Server)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the snapshot cache")
	return cmd
}
