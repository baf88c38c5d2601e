package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/fintrack/internal/importer"
	"github.com/theirongolddev/fintrack/internal/model"
)

var rows = []model.Expense{
	{ID: 2, Amount: 15, Date: "2024-03-15", Category: "Food"},
	{ID: 1, Amount: 42.5, Date: "2024-03-01", Category: "Food", Description: "lunch, with \"friends\""},
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestWriteCSVRoundTripsThroughImporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	recs, err := importer.ParseCSV(&buf, importer.CSVOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "2024-03-01", recs[1].Date)
	assert.Equal(t, 42.5, recs[1].Amount)
	assert.Equal(t, "lunch, with \"friends\"", recs[1].Description)
	assert.Equal(t, "Food", recs[1].Category)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	totals := []model.CategoryTotal{{Category: "Food", Total: 57.5, Count: 2}}
	require.NoError(t, WriteXLSX(&buf, rows, totals))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetExpenses, SheetCategories}, f.GetSheetList())

	got, err := f.GetRows(SheetExpenses, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, expenseHeader, got[0])
	assert.Equal(t, []string{"1", "2024-03-01", "Food", "lunch, with \"friends\"", "42.5"}, got[2])

	cats, err := f.GetRows(SheetCategories, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, []string{"Food", "57.5", "2"}, cats[1])
}

func TestWriteXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{SheetExpenses}, f.GetSheetList())
}
