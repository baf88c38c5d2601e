// Package cmd implements the fintrack CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/logging"
)

var (
	flagDB        string
	flagQuiet     bool
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:   "fintrack",
	Short: "Personal expense ledger",
	Long:  "Track expenses and income in a local SQLite ledger: add, list, report, import and export.",
	RunE:  runSummary,

	SilenceUsage:      true,
	PersistentPreRunE: setupRuntime,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Ledger database file (default from config or FINTRACK_DB)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format: text or json")
}

func setupRuntime(_ *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	if _, err := logging.Setup(flagLogLevel, flagLogFormat, os.Stderr); err != nil {
		return err
	}
	return nil
}

// openLedger loads config and opens the ledger it points at. --db wins over
// FINTRACK_DB and the config file.
func openLedger() (*ledger.Ledger, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, err
	}

	path := flagDB
	if path == "" {
		path = cfg.DBPath()
	}

	l, err := ledger.Open(path, ledger.WithDefaultCategories(cfg.Ledger.DefaultCategories))
	if err != nil {
		return nil, cfg, fmt.Errorf("opening ledger: %w", err)
	}
	return l, cfg, nil
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}

func progressf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
