// Package report turns ledger rows into the aggregates behind charts and
// summaries: daily trend, monthly income against expenses, category shares
// and budget burn.
//
// The ledger stores signed amounts without interpreting them. Which rows count
// as income is decided here, by a Convention taken from configuration.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/fintrack/internal/model"
)

// Sign rules understood by Convention.
const (
	// RuleNegative treats negative amounts as income.
	RuleNegative = "negative"
	// RuleCategory treats rows in the configured income categories as income.
	RuleCategory = "category"
)

// Convention decides whether a ledger row is income or an expense.
type Convention struct {
	Rule             string
	IncomeCategories []string
}

// DefaultConvention returns the negative-amount rule.
func DefaultConvention() Convention {
	return Convention{Rule: RuleNegative}
}

// Validate reports an unknown rule or an unusable category rule.
func (c Convention) Validate() error {
	switch c.Rule {
	case RuleNegative:
		return nil
	case RuleCategory:
		if len(c.IncomeCategories) == 0 {
			return fmt.Errorf("sign rule %q needs at least one income category", RuleCategory)
		}
		return nil
	default:
		return fmt.Errorf("unknown sign rule %q (want %q or %q)", c.Rule, RuleNegative, RuleCategory)
	}
}

// Classify reports whether e is income and returns its unsigned magnitude.
func (c Convention) Classify(e model.Expense) (income bool, magnitude float64) {
	if c.Rule == RuleCategory {
		return c.IsIncomeCategory(e.Category), math.Abs(e.Amount)
	}
	if e.Amount < 0 {
		return true, -e.Amount
	}
	return false, e.Amount
}

// IsIncomeCategory reports whether name is one of the income categories.
// Matching ignores case.
func (c Convention) IsIncomeCategory(name string) bool {
	for _, ic := range c.IncomeCategories {
		if strings.EqualFold(strings.TrimSpace(ic), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// Signed converts an amount typed by the user into the value to store.
// Under the negative rule income is stored as a negative number; under the
// category rule the amount is kept as entered.
func (c Convention) Signed(amount float64, income bool) float64 {
	if c.Rule == RuleCategory {
		return amount
	}
	if income {
		return -math.Abs(amount)
	}
	return amount
}
