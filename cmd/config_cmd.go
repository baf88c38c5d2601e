package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	dbPath := cfg.DBPath()
	if flagDB != "" {
		dbPath = flagDB + " (--db)"
	}

	fmt.Println("  [ledger]")
	fmt.Print(cli.RenderKV([][2]string{
		{"Database", dbPath},
		{"Default categories", strings.Join(cfg.Ledger.DefaultCategories, ", ")},
	}))
	fmt.Println()

	income := strings.Join(cfg.Report.IncomeCategories, ", ")
	if income == "" {
		income = "(none)"
	}
	fmt.Println("  [report]")
	fmt.Print(cli.RenderKV([][2]string{
		{"Sign rule", cfg.Report.Rule},
		{"Income categories", income},
		{"Default days", fmt.Sprint(cfg.Report.DefaultDays)},
	}))
	fmt.Println()

	budget := "not set"
	if b, ok := cfg.MonthlyBudget(); ok {
		budget = cli.FormatAmount(b)
	}
	fmt.Println("  [budget]")
	fmt.Print(cli.RenderKV([][2]string{{"Monthly", budget}}))
	fmt.Println()

	fmt.Println("  [appearance]")
	fmt.Print(cli.RenderKV([][2]string{{"Theme", cfg.Appearance.Theme}}))
	fmt.Println()

	fmt.Println("  [server]")
	fmt.Print(cli.RenderKV([][2]string{
		{"Address", cfg.Server.Addr},
		{"Events buffer", fmt.Sprint(cfg.Server.EventsBuffer)},
	}))
	fmt.Println()

	fmt.Println("  Run `fintrack setup` to reconfigure.")
	return nil
}
