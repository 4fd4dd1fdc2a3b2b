package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soyeahso/agentwiz/internal/catalog"
	"github.com/soyeahso/agentwiz/internal/crd"
	"github.com/soyeahso/agentwiz/internal/tui"
	"github.com/soyeahso/agentwiz/internal/wizard"
)

func newChatCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Build an agent interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := rt.NewWizard(nil)
			defer w.Close()
			release := context.AfterFunc(ctx, w.Abandon)
			defer release()

			m := tui.New(w, rt.Loader)
			if err := tui.Run(ctx, m, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				return err
			}
			if m.Outcome() != tui.Completed {
				fmt.Fprintln(cmd.OutOrStdout(), "Session abandoned.")
				return nil
			}

			if _, err := rt.Record(ctx, w); err != nil {
				log.Warn().Err(err).Msg("failed to record document")
			}
			path := out
			if path == "" {
				path, err = defaultAgentPath(rt.Paths.Agents, w.Snapshot().AgentName)
				if err != nil {
					return err
				}
			}
			if err := writeDocument(w, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the agent YAML to this file (default ~/.agentwiz/agents/<name>.yaml)")
	return cmd
}

// defaultAgentPath names the file for an agent under dir. Names that are
// not DNS-1123 subdomains could leave dir, so they need an explicit --out.
func defaultAgentPath(dir, name string) (string, error) {
	if err := crd.ValidateName(name); err != nil {
		return "", fmt.Errorf("%w; pass --out to choose a file", err)
	}
	return filepath.Join(dir, name+".yaml"), nil
}

func writeDocument(w *wizard.Wizard, path string) error {
	out, err := w.Document().YAML()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

var _ wizard.Loader = (*catalog.Loader)(nil)
