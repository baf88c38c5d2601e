package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/report"
)

var (
	flagListFrom     string
	flagListTo       string
	flagListCategory string
	flagListSearch   string
	flagListLimit    int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List expenses, newest first (or oldest first within --from/--to)",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringVar(&flagListFrom, "from", "", "Start date (YYYY-MM-DD, inclusive)")
	listCmd.Flags().StringVar(&flagListTo, "to", "", "End date (YYYY-MM-DD, inclusive)")
	listCmd.Flags().StringVarP(&flagListCategory, "category", "c", "", "Filter to category (substring match)")
	listCmd.Flags().StringVarP(&flagListSearch, "search", "s", "", "Filter by text in description or category")
	listCmd.Flags().IntVarP(&flagListLimit, "limit", "l", 0, "Show at most N rows (0 = all)")
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	l, cfg, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	var (
		expenses []model.Expense
		title    = "EXPENSES"
	)
	if flagListFrom != "" || flagListTo != "" {
		expenses, err = l.GetExpensesByDateRange(flagListFrom, flagListTo)
		title = fmt.Sprintf("EXPENSES  %s .. %s", flagListFrom, flagListTo)
	} else {
		expenses, err = l.GetAllExpenses()
	}
	if err != nil {
		return err
	}

	expenses = report.FilterByCategory(expenses, flagListCategory)
	expenses = report.FilterByText(expenses, flagListSearch)

	if len(expenses) == 0 {
		fmt.Println("\n  No expenses found.")
		return nil
	}

	shown := expenses
	if flagListLimit > 0 && len(shown) > flagListLimit {
		shown = shown[:flagListLimit]
	}

	conv := cfg.Convention()
	rows := make([][]string, 0, len(shown)+2)
	var total float64
	for _, e := range shown {
		income, _ := conv.Classify(e)
		amount := cli.FormatAmount(e.Amount)
		if income {
			amount += " in"
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Date,
			e.Category,
			e.Description,
			amount,
		})
		total += e.Amount
	}
	rows = append(rows, cli.SeparatorRow, []string{"", "", "", "Total", cli.FormatAmount(total)})

	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"ID", "Date", "Category", "Description", "Amount"},
		Rows:      rows,
		LeftAlign: []bool{false, true, true, true, false},
		MaxWidth:  40,
	}))
	if len(shown) < len(expenses) {
		fmt.Printf("  Showing %s of %s expenses\n", formatNumber(int64(len(shown))), formatNumber(int64(len(expenses))))
	}
	return nil
}
