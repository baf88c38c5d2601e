package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fintrack/internal/model"
)

func sample() []model.Expense {
	return []model.Expense{
		{ID: 1, Amount: 42.50, Date: "2024-03-01", Category: "Food", Description: "lunch"},
		{ID: 2, Amount: 15.00, Date: "2024-03-15", Category: "Food"},
		{ID: 3, Amount: -2000, Date: "2024-03-15", Category: "Salary", Description: "march pay"},
		{ID: 4, Amount: 900, Date: "2024-04-02", Category: "Housing", Description: "rent"},
		{ID: 5, Amount: 30, Date: "2024-04-03", Category: "Transportation", Description: "bus pass"},
	}
}

func TestConventionValidate(t *testing.T) {
	assert.NoError(t, DefaultConvention().Validate())
	assert.NoError(t, Convention{Rule: RuleCategory, IncomeCategories: []string{"Income"}}.Validate())
	assert.Error(t, Convention{Rule: RuleCategory}.Validate())
	assert.Error(t, Convention{Rule: "sideways"}.Validate())
}

func TestConventionClassify(t *testing.T) {
	neg := DefaultConvention()
	income, mag := neg.Classify(model.Expense{Amount: -25, Category: "Income"})
	assert.True(t, income)
	assert.Equal(t, 25.0, mag)

	income, mag = neg.Classify(model.Expense{Amount: 25, Category: "Income"})
	assert.False(t, income)
	assert.Equal(t, 25.0, mag)

	byCat := Convention{Rule: RuleCategory, IncomeCategories: []string{"income"}}
	income, mag = byCat.Classify(model.Expense{Amount: 25, Category: "Income"})
	assert.True(t, income, "category match ignores case")
	assert.Equal(t, 25.0, mag)

	income, _ = byCat.Classify(model.Expense{Amount: -25, Category: "Food"})
	assert.False(t, income)
}

func TestConventionSigned(t *testing.T) {
	neg := DefaultConvention()
	assert.Equal(t, -100.0, neg.Signed(100, true))
	assert.Equal(t, -100.0, neg.Signed(-100, true))
	assert.Equal(t, 100.0, neg.Signed(100, false))

	byCat := Convention{Rule: RuleCategory, IncomeCategories: []string{"Income"}}
	assert.Equal(t, 100.0, byCat.Signed(100, true))
}

func TestDailyTrend(t *testing.T) {
	assert.Nil(t, DailyTrend(nil))

	trend := DailyTrend(sample())
	require.Len(t, trend, 4)
	assert.Equal(t, "2024-03-01", trend[0].Date)
	assert.Equal(t, "2024-03-15", trend[1].Date)
	assert.InDelta(t, -1985.0, trend[1].Total, 1e-9)
	assert.Equal(t, 2, trend[1].Count)
	assert.Equal(t, "2024-04-03", trend[3].Date)
}

func TestFillDays(t *testing.T) {
	trend := []model.DailyTotal{
		{Date: "2024-03-01", Total: 5, Count: 1},
		{Date: "2024-03-03", Total: 7, Count: 2},
		{Date: "2024-03-09", Total: 1, Count: 1},
	}
	filled := FillDays(trend, "2024-03-01", "2024-03-04")
	require.Len(t, filled, 4)
	assert.Equal(t, 5.0, filled[0].Total)
	assert.Equal(t, "2024-03-02", filled[1].Date)
	assert.Zero(t, filled[1].Total)
	assert.Equal(t, 7.0, filled[2].Total)
	assert.Equal(t, "2024-03-04", filled[3].Date)

	assert.Equal(t, trend, FillDays(trend, "bad", "2024-03-04"))
	assert.Equal(t, trend, FillDays(trend, "2024-03-04", "2024-03-01"))
}

func TestMonthlyFlows(t *testing.T) {
	assert.Nil(t, MonthlyFlows(nil, DefaultConvention()))

	flows := MonthlyFlows(sample(), DefaultConvention())
	require.Len(t, flows, 2)

	assert.Equal(t, "2024-03", flows[0].Month)
	assert.InDelta(t, 2000.0, flows[0].Income, 1e-9)
	assert.InDelta(t, 57.5, flows[0].Expenses, 1e-9)
	assert.InDelta(t, 1942.5, flows[0].Net, 1e-9)

	assert.Equal(t, "2024-04", flows[1].Month)
	assert.Zero(t, flows[1].Income)
	assert.InDelta(t, 930.0, flows[1].Expenses, 1e-9)
}

func TestCategorySharesExcludesIncome(t *testing.T) {
	shares := CategoryShares(sample(), DefaultConvention())
	require.Len(t, shares, 3)
	assert.Equal(t, "Housing", shares[0].Category)
	assert.Equal(t, "Food", shares[1].Category)
	assert.Equal(t, 2, shares[1].Count)
	assert.Equal(t, "Transportation", shares[2].Category)

	var sum float64
	for _, s := range shares {
		sum += s.Share
		assert.NotEqual(t, "Salary", s.Category)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	assert.Nil(t, CategoryShares(nil, DefaultConvention()))
	onlyIncome := []model.Expense{{Amount: -5, Date: "2024-01-01", Category: "Salary"}}
	assert.Nil(t, CategoryShares(onlyIncome, DefaultConvention()))
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample(), DefaultConvention())
	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 987.5, s.Expenses, 1e-9)
	assert.InDelta(t, 2000.0, s.Income, 1e-9)
	assert.InDelta(t, 1012.5, s.Net, 1e-9)
	assert.Equal(t, "2024-03-01", s.From)
	assert.Equal(t, "2024-04-03", s.To)
	assert.Equal(t, 34, s.Days)
	assert.InDelta(t, 987.5/34, s.ExpensesPerDay, 1e-9)

	empty := Summarize(nil, DefaultConvention())
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Days)
	assert.Empty(t, empty.From)
}

func TestBudget(t *testing.T) {
	now := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	bs := Budget(sample(), DefaultConvention(), 1500, now)

	assert.Equal(t, "2024-04", bs.Month)
	assert.InDelta(t, 930.0, bs.Spent, 1e-9)
	assert.InDelta(t, 570.0, bs.Remaining, 1e-9)
	assert.InDelta(t, 0.62, bs.UsedPercent, 1e-9)
	assert.InDelta(t, 93.0, bs.DailyBurnRate, 1e-9)
	assert.InDelta(t, 2790.0, bs.Projected, 1e-9)
	assert.Equal(t, 20, bs.DaysRemaining)

	zero := Budget(nil, DefaultConvention(), 0, now)
	assert.Zero(t, zero.UsedPercent)
}

func TestFilters(t *testing.T) {
	all := sample()

	assert.Len(t, FilterByCategory(all, "foo"), 2)
	assert.Len(t, FilterByCategory(all, ""), len(all))

	since := FilterSince(all, "2024-03-15")
	require.Len(t, since, 4)
	for _, e := range since {
		assert.GreaterOrEqual(t, e.Date, "2024-03-15")
	}

	assert.Len(t, FilterByText(all, "RENT"), 1)
	assert.Len(t, FilterByText(all, "transport"), 1, "matches category too")
	assert.Len(t, FilterByText(all, "  "), len(all))
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-20", WindowStart(now, 1))
	assert.Equal(t, "2024-02-20", WindowStart(now, 30))
	assert.Empty(t, WindowStart(now, 0))
}
