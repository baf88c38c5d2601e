package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/report"
)

var (
	flagReportDays   int
	flagReportMonths int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Daily trend, monthly income vs expenses and category shares",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVarP(&flagReportDays, "days", "n", 0, "Trend window in days (default from config)")
	reportCmd.Flags().IntVar(&flagReportMonths, "months", 6, "Months shown in the income vs expenses table")
	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, _ []string) error {
	l, cfg, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	all, err := l.GetAllExpenses()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Println("\n  Nothing to report yet.")
		return nil
	}

	days := flagReportDays
	if days <= 0 {
		days = cfg.Report.DefaultDays
	}
	now := time.Now()
	conv := cfg.Convention()

	from := report.WindowStart(now, days)
	window := report.FilterSince(all, from)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("REPORT  Last %dd", days)))
	fmt.Println()

	trend := report.FillDays(report.DailyTrend(window), from, now.Format("2006-01-02"))
	values := make([]float64, len(trend))
	for i, d := range trend {
		values[i] = d.Total
	}
	if len(values) > 0 {
		fmt.Printf("  Daily net  %s\n", cli.RenderSparkline(values))
		fmt.Printf("             %s .. %s\n\n", trend[0].Date, trend[len(trend)-1].Date)
	}

	flows := report.MonthlyFlows(all, conv)
	if flagReportMonths > 0 && len(flows) > flagReportMonths {
		flows = flows[len(flows)-flagReportMonths:]
	}
	printFlows(flows)

	shares := report.CategoryShares(window, conv)
	if len(shares) == 0 {
		fmt.Println("  No expenses in this window.")
		return nil
	}
	fmt.Println()
	fmt.Println("  Where it went")
	labelW := 0
	for _, s := range shares {
		labelW = max(labelW, len(s.Category))
	}
	labelW = min(labelW, 18)
	for _, s := range shares {
		fmt.Printf("%s  %s\n",
			cli.RenderHorizontalBar(s.Category, labelW, s.Total, shares[0].Total, 30),
			cli.FormatPercent(s.Share))
	}
	return nil
}

func printFlows(flows []model.MonthlyFlow) {
	rows := make([][]string, 0, len(flows))
	for _, f := range flows {
		rows = append(rows, []string{
			cli.FormatMonth(f.Month),
			cli.RenderSigned(cli.FormatAmount(f.Income), true),
			cli.RenderSigned(cli.FormatAmount(f.Expenses), false),
			cli.FormatAmount(f.Net),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Income vs expenses",
		Headers: []string{"Month", "Income", "Expenses", "Net"},
		Rows:    rows,
	}))
}
