// Package cmd defines and implements the CLI commands for the mediadex
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mediadex/internal/config"
	"mediadex/internal/logging"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mediadex",
		Short: "An incremental media crawler for open directory listings.",
		Long: `mediadex walks H5AI and Apache-style directory listings, keeps a
persistent ledger of the media files it finds, and enriches each title
with metadata from TMDB. Crawls are incremental: directories whose
remote timestamps have not moved since the last visit are skipped.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default uses MEDIADEX_* environment)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newFailuresCmd())

	return cmd
}

// setup loads configuration and builds the process logger. Every
// subcommand starts here.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
