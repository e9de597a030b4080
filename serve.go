package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phobologic/codeexplain/internal/server"
)

func (a *app) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the detection and explanation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.engine()
			if err != nil {
				return userError(err)
			}
			srv, err := server.New(server.Config{
				Engine:   engine,
				Catalog:  a.catalog,
				Gatherer: a.registry,
				Logger:   a.log,
				Version:  version,
			})
			if err != nil {
				return err
			}

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
