package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/providentiaww/strapi-mcp/pkg/mcp"
)

func newHealthCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the Strapi backend once and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := root.build(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			status := c.Gateway().Health(cmd.Context())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(status); err != nil {
				return err
			}
			if status.Status != mcp.StatusHealthy {
				return fmt.Errorf("strapi is %s", status.Status)
			}
			return nil
		},
	}
}
