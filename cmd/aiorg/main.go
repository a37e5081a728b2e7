// Package main is the entrypoint for the aiorg CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/aiorg/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "aiorg",
		Short: "AI Organiser MCP server",
		Long:  "aiorg saves assistant responses into AI Organiser as notes, exposed to AI clients as an MCP tool.",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(stdioCmd())
	root.AddCommand(saveCmd())
	root.AddCommand(parseCmd())
	root.AddCommand(configCmd())
	root.AddCommand(versionCmd())
	root.AddCommand(completionCmd())

	// Global --config flag
	root.PersistentFlags().StringVar(&config.Override, "config", "", "Path to config.toml (overrides AIORG_CONFIG)")

	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the aiorg version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "aiorg %s\n", Version)
			return nil
		},
	}
}
