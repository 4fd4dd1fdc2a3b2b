// Command agentwiz-mcp serves the agent catalog and agent assembly as MCP
// tools over stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soyeahso/agentwiz/internal/app"
	"github.com/soyeahso/agentwiz/internal/catalog"
	"github.com/soyeahso/agentwiz/internal/config"
	"github.com/soyeahso/agentwiz/internal/logging"
	"github.com/soyeahso/agentwiz/internal/mcpserver"
	"github.com/soyeahso/agentwiz/internal/version"
)

func main() {
	if err := newCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	var (
		cfgFile string
		watch   bool
	)
	cmd := &cobra.Command{
		Use:           "agentwiz-mcp",
		Short:         "Serve the agent catalog as MCP tools over stdio",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgFile, watch)
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default ~/.agentwiz/config.yaml)")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload a directory catalog when its files change")
	return cmd
}

func run(cfgFile string, watch bool) error {
	paths, err := config.ResolvePaths()
	if err != nil {
		return err
	}
	if cfgFile != "" {
		paths.Config = cfgFile
	}
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return err
	}
	// stdout carries the protocol, so console logs stay on stderr.
	log, closer, err := logging.FromConfig(cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()

	rt, err := app.Open(paths, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	srv := mcpserver.New(rt.Loader, log, mcpserver.Options{
		NewSession: rt.NewWizard,
		Record:     rt.Record,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if dir, ok := rt.Source.(*catalog.DirSource); ok && watch {
		go func() {
			err := dir.Watch(ctx, 500*time.Millisecond, func() {
				_, _ = srv.Reload(ctx)
			})
			if err != nil {
				log.Warn().Err(err).Msg("catalog watch stopped")
			}
		}()
	}

	log.Info().Str("catalog", rt.Source.Location()).Msg("serving MCP on stdio")
	return srv.Serve()
}
