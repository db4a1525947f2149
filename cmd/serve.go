package main

import (
	"eventsrag/api"
	"eventsrag/pkg/runctx"

	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the question form over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}

			ans, cleanup, err := a.newAnswerer()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := runctx.Start(cmd.Context(), "serve")
			return api.NewServer(ans, a.cfg.Server.Addr, runctx.Logger(ctx, a.logger)).Start(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
