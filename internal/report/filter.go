package report

import (
	"strings"
	"time"

	"github.com/theirongolddev/fintrack/internal/model"
)

// FilterByCategory keeps expenses whose category contains substr, ignoring case.
func FilterByCategory(expenses []model.Expense, substr string) []model.Expense {
	if substr == "" {
		return expenses
	}
	needle := strings.ToLower(substr)
	var out []model.Expense
	for _, e := range expenses {
		if strings.Contains(strings.ToLower(e.Category), needle) {
			out = append(out, e)
		}
	}
	return out
}

// FilterSince keeps expenses dated on or after since (YYYY-MM-DD).
func FilterSince(expenses []model.Expense, since string) []model.Expense {
	if since == "" {
		return expenses
	}
	var out []model.Expense
	for _, e := range expenses {
		if e.Date >= since {
			out = append(out, e)
		}
	}
	return out
}

// FilterByText keeps expenses whose description or category contains query,
// ignoring case.
func FilterByText(expenses []model.Expense, query string) []model.Expense {
	query = strings.TrimSpace(query)
	if query == "" {
		return expenses
	}
	needle := strings.ToLower(query)
	var out []model.Expense
	for _, e := range expenses {
		if strings.Contains(strings.ToLower(e.Description), needle) ||
			strings.Contains(strings.ToLower(e.Category), needle) {
			out = append(out, e)
		}
	}
	return out
}

// WindowStart returns the first date of a window of days ending on now.
// A non-positive days yields "" (no lower bound).
func WindowStart(now time.Time, days int) string {
	if days <= 0 {
		return ""
	}
	return now.AddDate(0, 0, -(days - 1)).Format(dateLayout)
}
