package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/aiorg/internal/config"
)

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <utterance...>",
		Short: "Show how an utterance is interpreted",
		Long: `Print the save intent parsed from an utterance, using the configured triggers.

Examples:
  aiorg parse сохрани это
  aiorg parse 'сохрани в «Здоровье»'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			parser, err := newParser(cfg)
			if err != nil {
				return err
			}
			in := parser.Parse(strings.Join(args, " "))
			data, err := json.MarshalIndent(in, "", "  ")
			if err != nil {
				return fmt.Errorf("encode intent: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
