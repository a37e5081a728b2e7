package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/aiorg/internal/config"
	aimcp "github.com/sgx-labs/aiorg/internal/mcp"
)

func stdioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve the MCP tool on stdin/stdout",
		Long: `Run the MCP server over stdio for local clients.

There is no HTTP request here, so only the fallback token
(AI_ORGANISER_INTEGRATION_TOKEN or the token file) is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a.watchTokenFile(ctx)

			return aimcp.ServeStdio(ctx, a.svc)
		},
	}
}
