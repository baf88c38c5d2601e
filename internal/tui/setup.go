package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/report"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

// SetupValues backs the first-run wizard. Fields are bound by pointer to the
// huh form, so the struct must outlive it.
type SetupValues struct {
	Theme            string
	Days             int
	Rule             string
	IncomeCategories string // comma separated
	Budget           string
	DBPath           string
}

var daysOptions = []int{7, 30, 90, 365}

// SetupValuesFrom seeds the wizard from cfg.
func SetupValuesFrom(cfg config.Config) *SetupValues {
	v := &SetupValues{
		Theme:            cfg.Appearance.Theme,
		Days:             cfg.Report.DefaultDays,
		Rule:             cfg.Report.Rule,
		IncomeCategories: strings.Join(cfg.Report.IncomeCategories, ", "),
		DBPath:           cfg.Ledger.DBPath,
	}
	if b, ok := cfg.MonthlyBudget(); ok {
		v.Budget = strconv.FormatFloat(b, 'f', -1, 64)
	}
	if v.Days <= 0 {
		v.Days = 30
	}
	return v
}

// NewSetupForm builds the first-run wizard bound to v.
func NewSetupForm(v *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}
	dayOpts := make([]huh.Option[int], 0, len(daysOptions))
	for _, d := range daysOptions {
		dayOpts = append(dayOpts, huh.NewOption(fmt.Sprintf("%d days", d), d))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to fintrack").
				Description("A few choices and the ledger is ready.\nRun `fintrack setup` any time to change them."),
			huh.NewSelect[string]().
				Title("Colour theme").
				Options(themeOpts...).
				Value(&v.Theme),
			huh.NewSelect[int]().
				Title("Default report window").
				Options(dayOpts...).
				Value(&v.Days),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How is income recorded?").
				Options(
					huh.NewOption("As negative amounts", report.RuleNegative),
					huh.NewOption("By category name", report.RuleCategory),
				).
				Value(&v.Rule),
			huh.NewInput().
				Title("Income categories").
				Description("Comma separated. Required for the category rule.").
				Placeholder("Salary, Income").
				Value(&v.IncomeCategories),
			huh.NewInput().
				Title("Monthly budget").
				Description("Leave empty for none.").
				Placeholder("1500").
				Value(&v.Budget).
				Validate(validateOptionalAmount),
			huh.NewInput().
				Title("Ledger file").
				Description("Leave empty for " + config.DataDir() + "/" + config.DefaultDBName).
				Value(&v.DBPath),
		),
	).WithShowHelp(true)
}

// Apply copies the wizard answers into cfg and validates the result.
func (v *SetupValues) Apply(cfg *config.Config) error {
	budget, err := parseOptionalAmount(v.Budget)
	if err != nil {
		return err
	}

	next := *cfg
	next.Appearance.Theme = v.Theme
	next.Report.DefaultDays = v.Days
	next.Report.Rule = v.Rule
	next.Report.IncomeCategories = splitList(v.IncomeCategories)
	next.Budget.Monthly = budget
	next.Ledger.DBPath = strings.TrimSpace(v.DBPath)

	if err := next.Validate(); err != nil {
		return err
	}
	*cfg = next
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseOptionalAmount(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return nil, fmt.Errorf("budget %q is not a positive number", s)
	}
	return &f, nil
}

func validateOptionalAmount(s string) error {
	_, err := parseOptionalAmount(s)
	return err
}

// expenseValues backs the add and edit forms.
type expenseValues struct {
	Amount      string
	Category    string
	Date        string
	Description string
	Income      bool
}

// expenseValuesFrom prefills an edit form. The stored sign is folded into the
// Income toggle so the form always shows a magnitude.
func expenseValuesFrom(e model.Expense, conv report.Convention) *expenseValues {
	income, mag := conv.Classify(e)
	return &expenseValues{
		Amount:      strconv.FormatFloat(mag, 'f', 2, 64),
		Category:    e.Category,
		Date:        e.Date,
		Description: e.Description,
		Income:      income,
	}
}

func newExpenseForm(title string, v *expenseValues, categories []string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("Amount").
				Value(&v.Amount).
				Validate(func(s string) error {
					f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || f <= 0 {
						return errors.New("enter a positive amount")
					}
					return nil
				}),
			huh.NewInput().
				Title("Category").
				Suggestions(categories).
				Value(&v.Category).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("category is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD, empty for today").
				Value(&v.Date).
				Validate(func(s string) error {
					if s = strings.TrimSpace(s); s != "" && !ledger.ValidDate(s) {
						return errors.New("use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&v.Description),
			huh.NewConfirm().
				Title("Income?").
				Affirmative("Income").
				Negative("Expense").
				Value(&v.Income),
		),
	).WithShowHelp(true)
}

// newExpense converts form answers into a ledger write.
func (v *expenseValues) newExpense(conv report.Convention) (ledger.NewExpense, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(v.Amount), 64)
	if err != nil {
		return ledger.NewExpense{}, fmt.Errorf("invalid amount %q", v.Amount)
	}
	return ledger.NewExpense{
		Amount:      conv.Signed(amount, v.Income),
		Category:    strings.TrimSpace(v.Category),
		Date:        strings.TrimSpace(v.Date),
		Description: strings.TrimSpace(v.Description),
	}, nil
}

// update diffs form answers against the original row so only changed
// fields are written.
func (v *expenseValues) update(orig model.Expense, conv report.Convention) (ledger.ExpenseUpdate, error) {
	in, err := v.newExpense(conv)
	if err != nil {
		return ledger.ExpenseUpdate{}, err
	}

	var u ledger.ExpenseUpdate
	if in.Amount != orig.Amount {
		u.Amount = &in.Amount
	}
	if in.Category != orig.Category {
		u.Category = &in.Category
	}
	if in.Date != "" && in.Date != orig.Date {
		u.Date = &in.Date
	}
	if in.Description != orig.Description {
		u.Description = &in.Description
	}
	return u, nil
}
