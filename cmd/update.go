package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/ledger"
)

var (
	flagUpdAmount   float64
	flagUpdDesc     string
	flagUpdCategory string
	flagUpdDate     string
)

var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change fields of an expense; only the flags given are applied",
	Example: `  fintrack update 12 --amount 40
  fintrack update 12 --category Dining --desc "team lunch"`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().Float64Var(&flagUpdAmount, "amount", 0, "New amount")
	updateCmd.Flags().StringVar(&flagUpdDesc, "desc", "", "New description")
	updateCmd.Flags().StringVar(&flagUpdCategory, "category", "", "New category (created if unseen)")
	updateCmd.Flags().StringVar(&flagUpdDate, "date", "", "New date (YYYY-MM-DD)")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var u ledger.ExpenseUpdate
	if cmd.Flags().Changed("amount") {
		u.Amount = &flagUpdAmount
	}
	if cmd.Flags().Changed("desc") {
		u.Description = &flagUpdDesc
	}
	if cmd.Flags().Changed("category") {
		u.Category = &flagUpdCategory
	}
	if cmd.Flags().Changed("date") {
		u.Date = &flagUpdDate
	}

	l, _, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	ok, err := l.UpdateExpense(id, u)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("expense %d not found", id)
	}
	fmt.Printf("  Updated #%d\n", id)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
