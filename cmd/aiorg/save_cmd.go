package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/aiorg/internal/config"
	"github.com/sgx-labs/aiorg/internal/organiser"
)

// maxStdinBody caps a body read from stdin (4 MB).
const maxStdinBody = 4 * 1024 * 1024

func saveCmd() *cobra.Command {
	var (
		body      string
		utterance string
		project   string
		title     string
		sourceURL string
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save one note, exactly as the MCP tool would",
		Long: `Run a single save through the same gate as the MCP tool.

The body is read from --body, or from stdin when --body is omitted.
--utterance is the save request, e.g. "сохрани в «Работа»".
Only the fallback token is available here.

Examples:
  echo "shopping list" | aiorg save --utterance "save this"
  aiorg save --body "plan" --utterance "сохрани в «Работа»"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("body") {
				data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxStdinBody))
				if err != nil {
					return fmt.Errorf("read body: %w", err)
				}
				body = string(data)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}

			out := a.svc.Save(cmd.Context(), organiser.Request{
				Body:         body,
				RawUtterance: utterance,
				Project:      project,
				Title:        title,
				SourceURL:    sourceURL,
			}, nil)

			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				out.Response = nil
				if data, err = json.MarshalIndent(out, "", "  "); err != nil {
					return fmt.Errorf("encode outcome: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			if out.Failed() {
				return fmt.Errorf("note not saved (%s)", out.Category)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "Note text (default: read stdin)")
	cmd.Flags().StringVarP(&utterance, "utterance", "u", "", "The save request as the user said it")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project name (overrides the utterance)")
	cmd.Flags().StringVar(&title, "title", "", "Note title")
	cmd.Flags().StringVar(&sourceURL, "source-url", "", "Link back to the source")
	return cmd
}
