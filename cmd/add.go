package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/ledger"
)

var (
	flagAddDate   string
	flagAddDesc   string
	flagAddIncome bool
)

var addCmd = &cobra.Command{
	Use:   "add AMOUNT CATEGORY",
	Short: "Record an expense (or income with --income)",
	Example: `  fintrack add 42.50 Food --desc lunch
  fintrack add 2500 Salary --income --date 2024-03-01`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&flagAddDate, "date", "", "Date as YYYY-MM-DD (default today)")
	addCmd.Flags().StringVar(&flagAddDesc, "desc", "", "Description")
	addCmd.Flags().BoolVar(&flagAddIncome, "income", false, "Record as income using the configured sign rule")
	rootCmd.AddCommand(addCmd)
}

func runAdd(_ *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[0])
	}

	l, cfg, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	amount = cfg.Convention().Signed(amount, flagAddIncome)
	id, err := l.AddExpense(ledger.NewExpense{
		Amount:      amount,
		Category:    args[1],
		Date:        flagAddDate,
		Description: flagAddDesc,
	})
	if err != nil {
		return err
	}

	e, _, err := l.GetExpense(id)
	if err != nil {
		return err
	}
	fmt.Printf("  Added #%d  %s  %s  %s\n", id, e.Date, e.Category, cli.FormatAmount(e.Amount))
	return nil
}
