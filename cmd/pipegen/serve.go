package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/pipegen/api"
	"github.com/kbukum/pipegen/bootstrap"
	"github.com/kbukum/pipegen/logger"
	"github.com/kbukum/pipegen/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipegen HTTP API",
		Long: `serve starts the HTTP API under /api/v1 together with the health, readiness
and version endpoints. When catalog.url is set the catalog is loaded once
the server is up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := &opts.cfg
			if port != 0 {
				cfg.Server.Port = port
				if err := cfg.Server.Validate(); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			rt, err := newRuntime(ctx, cfg, nil)
			if err != nil {
				return err
			}

			srv := server.New(cfg.Server, rt.log, server.WithMetrics(rt.metrics))
			srv.ApplyDefaults(cfg.Name, rt.checkers...)
			api.NewHandler(rt.ext, rt.inbox).Register(srv.GinEngine())
			srv.LogRoutes()

			rt.app.Register(bootstrap.NewComponent("http-server", srv.Start, srv.Stop))
			rt.app.OnReady(func(ctx context.Context) error {
				if cfg.Catalog.URL == "" {
					return nil
				}
				if err := rt.loadCatalog(ctx, ""); err != nil {
					rt.log.Warn("Initial catalog load failed, load it through the API",
						logger.Fields("url", cfg.Catalog.URL))
				}
				return nil
			})
			return rt.app.Run(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}
