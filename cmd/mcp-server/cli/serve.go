package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST and JSON-RPC endpoints over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := root.build(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			logger := c.Logger()
			if addr == "" {
				addr = fmt.Sprintf(":%d", c.Config().Server.Port)
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return c.HTTPServer().ListenAndServe(gctx, addr)
			})
			g.Go(func() error {
				h := c.Gateway().Health(gctx)
				logger.Info("strapi probe", "base_url", c.Client().BaseURL(), "status", h.Status, "error", h.Error)
				return nil
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("server stopped", "error", err)
				return err
			}
			logger.Info("shutdown complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default \":<server.port>\")")
	return cmd
}
