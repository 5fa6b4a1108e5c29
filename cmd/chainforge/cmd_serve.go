package main

import (
	"os/signal"
	"syscall"

	"chainforge/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			engine, cleanup, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if port == 0 {
				port = cfg.Server.Port
			}
			return server.New(engine, logger).ListenAndServe(ctx, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (defaults to config)")
	return cmd
}
