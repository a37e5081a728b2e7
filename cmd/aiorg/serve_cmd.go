package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/aiorg/internal/config"
	"github.com/sgx-labs/aiorg/internal/web"
)

func serveCmd() *cobra.Command {
	var (
		host string
		port int
		path string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP endpoint over streamable HTTP",
		Long: `Start the HTTP server for remote MCP clients.

Routes:
  <path>                                   MCP endpoint (default /mcp)
  /.well-known/oauth-protected-resource    OAuth resource metadata
  /healthz                                 Health check

Examples:
  aiorg serve                       # 0.0.0.0:8000/mcp
  aiorg serve --port 9000
  MCP_PATH=/ai aiorg serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("path") {
				cfg.Server.Path = path
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a.watchTokenFile(ctx)

			handler := web.NewHandler(cfg, a.svc, a.logger, Version)
			return web.Serve(ctx, cfg.Addr(), handler, a.logger)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides MCP_HOST)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides MCP_PORT)")
	cmd.Flags().StringVar(&path, "path", "", "MCP endpoint path (overrides MCP_PATH)")
	return cmd
}
