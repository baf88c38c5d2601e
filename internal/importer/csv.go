package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/theirongolddev/fintrack/internal/ledger"
)

// CSVOptions controls ParseCSV.
type CSVOptions struct {
	// DateLayout is the Go time layout of the date column. Default ISO.
	DateLayout string
	// Comma is the field delimiter. Default ','.
	Comma rune
	// Negate flips amount signs, for exports where debits are negative.
	Negate bool
	// Name labels records in Source. Default "csv".
	Name string
}

var columnAliases = map[string]string{
	"date":        "date",
	"posted":      "date",
	"amount":      "amount",
	"value":       "amount",
	"category":    "category",
	"description": "description",
	"memo":        "description",
	"note":        "description",
	"payee":       "description",
}

// ParseCSV reads a header row followed by data rows. The date and amount
// columns are required; category and description are optional. Header names
// are matched case-insensitively.
func ParseCSV(r io.Reader, opts CSVOptions) ([]Record, error) {
	if opts.DateLayout == "" {
		opts.DateLayout = ledger.DateLayout
	}
	if opts.Name == "" {
		opts.Name = "csv"
	}

	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	cols := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canon, ok := columnAliases[key]; ok {
			if _, dup := cols[canon]; !dup {
				cols[canon] = i
			}
		}
	}
	for _, required := range []string{"date", "amount"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv header has no %s column", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if allBlank(row) {
			continue
		}

		rawDate := field(row, "date")
		day, err := time.Parse(opts.DateLayout, rawDate)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid date %q (layout %s)", opts.Name, line, rawDate, opts.DateLayout)
		}
		amount, err := parseAmount(field(row, "amount"))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", opts.Name, line, err)
		}
		if opts.Negate {
			amount = -amount
		}

		records = append(records, Record{
			Date:        day.Format(ledger.DateLayout),
			Amount:      amount,
			Category:    field(row, "category"),
			Description: field(row, "description"),
			Source:      fmt.Sprintf("%s:%d", opts.Name, line),
		})
	}
	return records, nil
}

func allBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
