// Package exporter writes ledger rows out as CSV or as an Excel workbook.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/fintrack/internal/model"
)

// Sheet names used by WriteXLSX.
const (
	SheetExpenses   = "Expenses"
	SheetCategories = "Categories"
)

var expenseHeader = []string{"id", "date", "category", "description", "amount"}

// Format is an export file type.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or xlsx)", s)
	}
}

// WriteCSV writes one header row and one row per expense. The columns match
// what the CSV importer reads back.
func WriteCSV(w io.Writer, expenses []model.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(expenseHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, e := range expenses {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.Date,
			e.Category,
			e.Description,
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %d: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with an Expenses sheet and, when totals is
// non-empty, a Categories sheet.
func WriteXLSX(w io.Writer, expenses []model.Expense, totals []model.CategoryTotal) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetExpenses); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	header := make([]any, len(expenseHeader))
	for i, h := range expenseHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetExpenses, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := f.SetCellStyle(SheetExpenses, "A1", "E1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, e := range expenses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{e.ID, e.Date, e.Category, e.Description, e.Amount}
		if err := f.SetSheetRow(SheetExpenses, cell, &row); err != nil {
			return fmt.Errorf("writing expense %d: %w", e.ID, err)
		}
	}
	if len(expenses) > 0 {
		last := fmt.Sprintf("E%d", len(expenses)+1)
		if err := f.SetCellStyle(SheetExpenses, "E2", last, money); err != nil {
			return fmt.Errorf("styling amounts: %w", err)
		}
	}
	_ = f.SetColWidth(SheetExpenses, "B", "C", 14)
	_ = f.SetColWidth(SheetExpenses, "D", "D", 36)

	if len(totals) > 0 {
		if _, err := f.NewSheet(SheetCategories); err != nil {
			return fmt.Errorf("creating sheet: %w", err)
		}
		head := []any{"category", "total", "count"}
		if err := f.SetSheetRow(SheetCategories, "A1", &head); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		_ = f.SetCellStyle(SheetCategories, "A1", "C1", bold)
		for i, t := range totals {
			row := []any{t.Category, t.Total, t.Count}
			if err := f.SetSheetRow(SheetCategories, fmt.Sprintf("A%d", i+2), &row); err != nil {
				return fmt.Errorf("writing total %s: %w", t.Category, err)
			}
		}
		_ = f.SetCellStyle(SheetCategories, "B2", fmt.Sprintf("B%d", len(totals)+1), money)
		_ = f.SetColWidth(SheetCategories, "A", "A", 18)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
