package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/report"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Totals by category, date span and income vs expenses",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	l, cfg, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	span, ok, err := l.GetDateRange()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("\n  The ledger is empty.")
		fmt.Println("  Record something with `fintrack add 12.50 Food --desc lunch`.")
		return nil
	}

	totals, err := l.GetExpensesByCategory()
	if err != nil {
		return err
	}
	all, err := l.GetAllExpenses()
	if err != nil {
		return err
	}

	conv := cfg.Convention()
	stats := report.Summarize(all, conv)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("LEDGER  %s .. %s", span.From, span.To)))
	fmt.Println()

	rows := [][]string{
		{"Entries", formatNumber(int64(stats.Count))},
		{"Days covered", formatNumber(int64(stats.Days))},
		cli.SeparatorRow,
		{"Expenses", cli.FormatAmount(stats.Expenses)},
		{"Income", cli.FormatAmount(stats.Income)},
		{"Net", cli.FormatAmount(stats.Net)},
		cli.SeparatorRow,
		{"Expenses/day", cli.FormatAmount(stats.ExpensesPerDay)},
	}
	if monthly, ok := cfg.MonthlyBudget(); ok {
		bs := report.Budget(all, conv, monthly, time.Now())
		rows = append(rows,
			cli.SeparatorRow,
			[]string{"Budget " + cli.FormatMonth(bs.Month), cli.FormatAmount(bs.Budget)},
			[]string{"Spent", fmt.Sprintf("%s (%s)", cli.FormatAmount(bs.Spent), cli.FormatPercent(bs.UsedPercent))},
			[]string{"Projected", cli.FormatAmount(bs.Projected)},
		)
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
	fmt.Println()

	catRows := make([][]string, 0, len(totals))
	for _, t := range totals {
		catRows = append(catRows, []string{t.Category, formatNumber(int64(t.Count)), cli.FormatAmount(t.Total)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By category",
		Headers: []string{"Category", "Entries", "Total"},
		Rows:    catRows,
	}))
	return nil
}
