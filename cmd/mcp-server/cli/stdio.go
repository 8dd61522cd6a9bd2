package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newStdioCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Speak MCP JSON-RPC over stdin/stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := root.build(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			c.Logger().Info("stdio transport ready", "base_url", c.Client().BaseURL())
			return c.Dispatcher().ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
