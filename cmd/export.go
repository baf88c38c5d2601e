package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/exporter"
	"github.com/theirongolddev/fintrack/internal/model"
)

var (
	flagExportFormat string
	flagExportOut    string
	flagExportFrom   string
	flagExportTo     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export expenses as CSV or an Excel workbook",
	Example: `  fintrack export > ledger.csv
  fintrack export --format xlsx --out ledger.xlsx --from 2024-01-01 --to 2024-12-31`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "csv", "Output format: csv or xlsx")
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default stdout)")
	exportCmd.Flags().StringVar(&flagExportFrom, "from", "", "Start date (YYYY-MM-DD, inclusive)")
	exportCmd.Flags().StringVar(&flagExportTo, "to", "", "End date (YYYY-MM-DD, inclusive)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	format, err := exporter.ParseFormat(flagExportFormat)
	if err != nil {
		return err
	}
	if format == exporter.FormatXLSX && flagExportOut == "" {
		return fmt.Errorf("xlsx export needs --out")
	}

	l, _, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	var expenses []model.Expense
	if flagExportFrom != "" || flagExportTo != "" {
		expenses, err = l.GetExpensesByDateRange(flagExportFrom, flagExportTo)
	} else {
		expenses, err = l.GetAllExpenses()
	}
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if flagExportOut != "" {
		//nolint:gosec // output path is given by the local user
		f, err := os.OpenFile(flagExportOut, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagExportOut, err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	bw := bufio.NewWriter(out)

	switch format {
	case exporter.FormatXLSX:
		totals, err := l.GetExpensesByCategory()
		if err != nil {
			return err
		}
		err = exporter.WriteXLSX(bw, expenses, totals)
		if err != nil {
			return err
		}
	default:
		if err := exporter.WriteCSV(bw, expenses); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	if flagExportOut != "" {
		progressf("  Wrote %s expenses to %s\n", formatNumber(int64(len(expenses))), flagExportOut)
	}
	return nil
}
