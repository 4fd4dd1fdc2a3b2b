package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soyeahso/agentwiz/internal/app"
	"github.com/soyeahso/agentwiz/internal/llm"
	"github.com/soyeahso/agentwiz/internal/version"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show agentwiz paths and configuration summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "agentwiz %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Fprintf(out, "Config:    %s", paths.Config)
			if _, err := os.Stat(paths.Config); os.IsNotExist(err) {
				fmt.Fprint(out, " (not found, using defaults)")
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Database:  %s\n", paths.Database(cfg.Store))
			fmt.Fprintf(out, "Agents:    %s\n", paths.Agents)
			fmt.Fprintln(out)

			if src, err := app.NewSource(cfg.Catalog); err == nil {
				fmt.Fprintf(out, "Catalog:   %s (cache=%s ttl=%dm)\n", src.Location(), cfg.Catalog.Cache, cfg.Catalog.CacheTTLMinutes)
			} else {
				fmt.Fprintf(out, "Catalog:   %v\n", err)
			}

			if cfg.Assistant.Provider == "none" {
				fmt.Fprintln(out, "Assistant: templates only (provider none)")
			} else {
				providers := llm.NewRegistryFromConfig(cfg.Assistant, log).List()
				if len(providers) > 0 {
					fmt.Fprintf(out, "Assistant: %s via %s\n", cfg.Assistant.Model, strings.Join(providers, ", "))
				} else {
					fmt.Fprintln(out, "Assistant: templates only (no API key configured)")
				}
			}
			fmt.Fprintf(out, "Document:  namespace=%s team=%s\n", cfg.Document.Namespace, cfg.Document.Team)
			return nil
		},
	}
}
