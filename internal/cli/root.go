package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/soyeahso/agentwiz/internal/app"
	"github.com/soyeahso/agentwiz/internal/config"
	"github.com/soyeahso/agentwiz/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths     config.Paths
	cfg       config.Config
	log       *logging.Logger
	logCloser io.Closer
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agentwiz",
		Short: "agentwiz: build Agent resources from a component catalog",
		Long: "agentwiz walks you through naming an agent, choosing a persona, model profile, tools and\n" +
			"knowledge bases from a component catalog, and writes the resulting Agent resource as YAML.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			cfg, err = config.Load(paths.Config)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			log, logCloser, err = logging.FromConfig(cfg.Logging)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.agentwiz/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newCatalogCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// openRuntime builds the runtime for commands that touch the catalog or
// the database.
func openRuntime() (*app.Runtime, error) {
	return app.Open(paths, cfg, log)
}
