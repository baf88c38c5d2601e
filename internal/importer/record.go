// Package importer reads bank exports (CSV, OFX/QFX) into ledger expenses.
package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is one parsed row, ready to become an expense. Amount follows the
// ledger convention: positive is an outflow.
type Record struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	// Source locates the row, e.g. "bank.csv:12".
	Source string `json:"source"`
}

// parseAmount accepts "1,234.50", "$12", "(45.00)" and "-3.2", rounding to cents.
func parseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", " ", "").Replace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	if neg {
		d = d.Neg()
	}
	return d.Round(2).InexactFloat64(), nil
}
