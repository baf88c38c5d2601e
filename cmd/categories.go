package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cats"},
	Short:   "List categories with their totals",
	Args:    cobra.NoArgs,
	RunE:    runCategories,
}

var categoriesAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a category (no-op if it exists)",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesAdd,
}

var categoriesDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a category that no expense uses",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesDelete,
}

func init() {
	categoriesCmd.AddCommand(categoriesAddCmd)
	categoriesCmd.AddCommand(categoriesDeleteCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
	l, _, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	cats, err := l.ListCategories()
	if err != nil {
		return err
	}
	totals, err := l.GetExpensesByCategory()
	if err != nil {
		return err
	}
	byName := make(map[string]int, len(totals))
	for i, t := range totals {
		byName[t.Category] = i
	}

	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		entries, total := "0", "-"
		if i, ok := byName[c.Name]; ok {
			entries = formatNumber(int64(totals[i].Count))
			total = cli.FormatAmount(totals[i].Total)
		}
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name, entries, total})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:     "Categories",
		Headers:   []string{"ID", "Name", "Entries", "Total"},
		Rows:      rows,
		LeftAlign: []bool{false, true, false, false},
	}))
	return nil
}

func runCategoriesAdd(_ *cobra.Command, args []string) error {
	l, _, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	id, err := l.ResolveOrCreateCategory(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("  Category %q has id %d\n", args[0], id)
	return nil
}

func runCategoriesDelete(_ *cobra.Command, args []string) error {
	l, _, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	ok, err := l.DeleteCategory(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("category %q not found", args[0])
	}
	fmt.Printf("  Deleted category %q\n", args[0])
	return nil
}
