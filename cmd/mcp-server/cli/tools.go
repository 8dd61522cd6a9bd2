package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/providentiaww/strapi-mcp/internal/gateway"
	"github.com/providentiaww/strapi-mcp/pkg/mcp"
)

func newToolsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The catalog is static; no backend is contacted.
			gw, err := gateway.New(nil)
			if err != nil {
				return err
			}
			catalog := struct {
				Tools []mcp.Tool `json:"tools" yaml:"tools"`
			}{Tools: gw.ListTools()}

			out := cmd.OutOrStdout()
			switch output {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(catalog)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(catalog); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unsupported output %q (want json or yaml)", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	return cmd
}
