package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/importer"
)

var (
	flagImportFormat     string
	flagImportCategory   string
	flagImportDateLayout string
	flagImportNegate     bool
	flagImportDryRun     bool
)

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Import expenses from CSV or OFX/QFX bank exports",
	Long: `Import expenses from bank exports.

CSV files need a header row with date and amount columns; category and
description are optional. OFX/QFX debits become positive expenses and
credits become negative amounts.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&flagImportFormat, "format", "", "Force format: csv or ofx (default from extension)")
	importCmd.Flags().StringVar(&flagImportCategory, "category", "Other", "Category for rows without one")
	importCmd.Flags().StringVar(&flagImportDateLayout, "date-layout", "2006-01-02", "Go time layout of CSV dates")
	importCmd.Flags().BoolVar(&flagImportNegate, "negate", false, "Flip CSV amount signs (for exports where debits are negative)")
	importCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "Validate without writing")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	progressf("  Reading %d file(s)...\n", len(args))
	records, err := importer.ParseFiles(ctx, args, flagImportFormat, importer.CSVOptions{
		DateLayout: flagImportDateLayout,
		Negate:     flagImportNegate,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("\n  No rows found.")
		return nil
	}

	l, _, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	opts := importer.Options{
		DefaultCategory: flagImportCategory,
		DryRun:          flagImportDryRun,
	}
	if !flagQuiet {
		bar := progressbar.NewOptions(len(records),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan]Importing[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
		)
		opts.Progress = func(done, _ int) { _ = bar.Set(done) }
	}

	res, err := importer.Import(ctx, l, records, opts)
	if err != nil {
		return err
	}

	verb := "Imported"
	if flagImportDryRun {
		verb = "Would import"
	}
	fmt.Printf("\n  %s %s of %s rows\n", verb, formatNumber(int64(res.Added)), formatNumber(int64(len(records))))
	if len(res.Failures) > 0 {
		rows := make([][]string, 0, len(res.Failures))
		for _, f := range res.Failures {
			rows = append(rows, []string{f.Record.Source, f.Err.Error()})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:     fmt.Sprintf("%d rows rejected", len(res.Failures)),
			Headers:   []string{"Row", "Reason"},
			Rows:      rows,
			LeftAlign: []bool{true, true},
			MaxWidth:  60,
		}))
	}
	return nil
}
