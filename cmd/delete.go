package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
)

var deleteCmd = &cobra.Command{
	Use:     "delete ID...",
	Aliases: []string{"rm"},
	Short:   "Delete expenses by id",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(_ *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	l, _, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	for _, id := range ids {
		ok, err := l.DeleteExpense(id)
		if err != nil {
			return err
		}
		if ok {
			fmt.Printf("  Deleted #%d\n", id)
		} else {
			fmt.Println(cli.RenderWarning(fmt.Sprintf("#%d not found, nothing deleted", id)))
		}
	}
	return nil
}
