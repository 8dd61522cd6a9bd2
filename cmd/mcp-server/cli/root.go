// Package cli implements the strapi-mcp command line using cobra.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/providentiaww/strapi-mcp/internal/config"
	"github.com/providentiaww/strapi-mcp/internal/container"
	"github.com/providentiaww/strapi-mcp/internal/logging"
)

// Version is stamped at build time with -ldflags "-X .../cli.Version=..."
var Version = "dev"

type rootOptions struct {
	configPath string
	envFile    string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "strapi-mcp",
		Short:         "MCP tool gateway for a Strapi content API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (env vars override it)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading config")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newStdioCmd(opts))
	root.AddCommand(newToolsCmd())
	root.AddCommand(newHealthCmd(opts))
	return root
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// build loads env and config, then wires the service container. Logs go to
// stderr for every subcommand.
func (o *rootOptions) build(ctx context.Context) (*container.Container, error) {
	config.LoadEnv(ctx, o.envFile, logging.New(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT")))

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return container.New(cfg, container.Options{LogWriter: os.Stderr, Version: Version})
}
