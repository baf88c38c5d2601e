package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fintrack/internal/model"
)

func ptr[T any](v T) *T { return &v }

func mustAdd(t *testing.T, l *Ledger, in NewExpense) int64 {
	t.Helper()
	id, err := l.AddExpense(in)
	require.NoError(t, err)
	require.Positive(t, id)
	return id
}

func TestAddExpenseRoundTrip(t *testing.T) {
	l := newTestLedger(t)

	id := mustAdd(t, l, NewExpense{Amount: 42.5, Category: "Food", Date: "2024-03-01", Description: "lunch"})

	all, err := l.GetAllExpenses()
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	assert.Equal(t, id, got.ID)
	assert.InDelta(t, 42.5, got.Amount, 1e-9)
	assert.Equal(t, "Food", got.Category)
	assert.Equal(t, "2024-03-01", got.Date)
	assert.Equal(t, "lunch", got.Description)
	assert.Positive(t, got.CategoryID)
}

func TestAddExpenseDefaultsToToday(t *testing.T) {
	l := newTestLedger(t)

	id := mustAdd(t, l, NewExpense{Amount: 3, Category: "Food"})

	e, ok, err := l.GetExpense(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-03-20", e.Date)
	assert.Equal(t, "", e.Description)
}

func TestAddExpenseCreatesCategoryOnce(t *testing.T) {
	l := newTestLedger(t)

	mustAdd(t, l, NewExpense{Amount: 10, Category: "Books", Date: "2024-01-01"})
	mustAdd(t, l, NewExpense{Amount: 12, Category: "Books", Date: "2024-01-02"})
	mustAdd(t, l, NewExpense{Amount: 1, Category: "  Books ", Date: "2024-01-03"})

	names, err := l.ExtractCategoryNames()
	require.NoError(t, err)

	count := 0
	for _, n := range names {
		if n == "Books" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Len(t, names, len(testDefaults)+1)
}

func TestCategoryNamesAreCaseSensitive(t *testing.T) {
	l := newTestLedger(t)

	mustAdd(t, l, NewExpense{Amount: 1, Category: "food", Date: "2024-01-01"})

	names, err := l.ExtractCategoryNames()
	require.NoError(t, err)
	assert.Contains(t, names, "Food")
	assert.Contains(t, names, "food")
}

func TestAddExpenseInvalidDateWritesNothing(t *testing.T) {
	l := newTestLedger(t)
	mustAdd(t, l, NewExpense{Amount: 1, Category: "Food", Date: "2024-01-01"})

	before, err := l.GetAllExpenses()
	require.NoError(t, err)

	_, err = l.AddExpense(NewExpense{Amount: 10, Category: "X", Date: "not-a-date"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.ErrorIs(t, err, ErrInvalidDate)

	after, err := l.GetAllExpenses()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	names, err := l.ExtractCategoryNames()
	require.NoError(t, err)
	assert.NotContains(t, names, "X", "category must not be created by a rejected write")
}

func TestAddExpenseValidation(t *testing.T) {
	l := newTestLedger(t)

	tests := []struct {
		name string
		in   NewExpense
		want error
	}{
		{"no category", NewExpense{Amount: 1, Date: "2024-01-01"}, ErrEmptyCategory},
		{"blank category", NewExpense{Amount: 1, Category: "   "}, ErrEmptyCategory},
		{"unknown category id", NewExpense{Amount: 1, CategoryID: 9999}, ErrUnknownCategory},
		{"nan amount", NewExpense{Amount: math.NaN(), Category: "Food"}, ErrInvalidAmount},
		{"inf amount", NewExpense{Amount: math.Inf(1), Category: "Food"}, ErrInvalidAmount},
		{"bad month", NewExpense{Amount: 1, Category: "Food", Date: "2024-13-01"}, ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.AddExpense(tt.in)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	n, err := l.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAddExpenseByCategoryID(t *testing.T) {
	l := newTestLedger(t)

	foodID, err := l.ResolveOrCreateCategory("Food")
	require.NoError(t, err)

	id := mustAdd(t, l, NewExpense{Amount: 7, CategoryID: foodID, Date: "2024-02-02"})
	e, ok, err := l.GetExpense(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Food", e.Category)
}

func TestAddExpenseNegativeAmountIsStoredAsIs(t *testing.T) {
	l := newTestLedger(t)

	id := mustAdd(t, l, NewExpense{Amount: -1200, Category: "income", Date: "2024-02-01"})
	e, _, err := l.GetExpense(id)
	require.NoError(t, err)
	assert.InDelta(t, -1200, e.Amount, 1e-9)
}

func TestGetAllExpensesOrdering(t *testing.T) {
	l := newTestLedger(t)

	a := mustAdd(t, l, NewExpense{Amount: 1, Category: "Food", Date: "2024-01-05"})
	b := mustAdd(t, l, NewExpense{Amount: 2, Category: "Food", Date: "2024-03-01"})
	c := mustAdd(t, l, NewExpense{Amount: 3, Category: "Food", Date: "2024-01-05"})

	all, err := l.GetAllExpenses()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{b, c, a}, []int64{all[0].ID, all[1].ID, all[2].ID})
}

func TestEmptyLedger(t *testing.T) {
	l := newTestLedger(t)

	_, ok, err := l.GetDateRange()
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := l.GetAllExpenses()
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	totals, err := l.GetExpensesByCategory()
	require.NoError(t, err)
	assert.NotNil(t, totals)
	assert.Empty(t, totals)
}

func TestTotalsAndDateRangeScenario(t *testing.T) {
	l := newTestLedger(t)

	mustAdd(t, l, NewExpense{Amount: 42.50, Category: "Food", Date: "2024-03-01", Description: "lunch"})
	mustAdd(t, l, NewExpense{Amount: 15.00, Category: "Food", Date: "2024-03-15"})

	totals, err := l.GetExpensesByCategory()
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "Food", totals[0].Category)
	assert.InDelta(t, 57.50, totals[0].Total, 1e-9)
	assert.Equal(t, 2, totals[0].Count)

	dr, ok, err := l.GetDateRange()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.DateRange{From: "2024-03-01", To: "2024-03-15"}, dr)
}

func TestGetExpensesByCategoryOrderingAndSums(t *testing.T) {
	l := newTestLedger(t)

	mustAdd(t, l, NewExpense{Amount: 10, Category: "Food", Date: "2024-01-01"})
	mustAdd(t, l, NewExpense{Amount: 20.25, Category: "Food", Date: "2024-01-02"})
	mustAdd(t, l, NewExpense{Amount: 100, Category: "Housing", Date: "2024-01-03"})
	mustAdd(t, l, NewExpense{Amount: 30.25, Category: "Books", Date: "2024-01-04"})

	totals, err := l.GetExpensesByCategory()
	require.NoError(t, err)
	require.Len(t, totals, 3, "categories without expenses are omitted")

	assert.Equal(t, "Housing", totals[0].Category)
	assert.InDelta(t, 100, totals[0].Total, 1e-9)
	// Equal totals fall back to name order.
	assert.Equal(t, "Books", totals[1].Category)
	assert.Equal(t, "Food", totals[2].Category)
	assert.InDelta(t, 30.25, totals[2].Total, 1e-9)
}

func TestGetExpensesByDateRange(t *testing.T) {
	l := newTestLedger(t)

	mustAdd(t, l, NewExpense{Amount: 1, Category: "Food", Date: "2024-03-10"})
	mustAdd(t, l, NewExpense{Amount: 2, Category: "Food", Date: "2024-02-28"})
	mustAdd(t, l, NewExpense{Amount: 3, Category: "Food", Date: "2024-03-01"})
	mustAdd(t, l, NewExpense{Amount: 4, Category: "Food", Date: "2024-03-31"})
	mustAdd(t, l, NewExpense{Amount: 5, Category: "Food", Date: "2024-04-01"})

	got, err := l.GetExpensesByDateRange("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	var dates []string
	for _, e := range got {
		dates = append(dates, e.Date)
	}
	assert.Equal(t, []string{"2024-03-01", "2024-03-10", "2024-03-31"}, dates)

	same, err := l.GetExpensesByDateRange("2024-03-10", "2024-03-10")
	require.NoError(t, err)
	require.Len(t, same, 1)

	reversed, err := l.GetExpensesByDateRange("2024-04-01", "2024-03-01")
	require.NoError(t, err)
	assert.Empty(t, reversed)

	none, err := l.GetExpensesByDateRange("2025-01-01", "2025-12-31")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGetExpensesByDateRangeInvalidBound(t *testing.T) {
	l := newTestLedger(t)
	mustAdd(t, l, NewExpense{Amount: 1, Category: "Food", Date: "2024-03-10"})

	got, err := l.GetExpensesByDateRange("2024-03-01", "March")
	require.Error(t, err)
	assert.Empty(t, got)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "end", ve.Field)

	_, err = l.GetExpensesByDateRange("", "2024-03-31")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "start", ve.Field)
}

func TestUpdateExpenseAmountOnly(t *testing.T) {
	l := newTestLedger(t)
	id := mustAdd(t, l, NewExpense{Amount: 42.5, Category: "Food", Date: "2024-03-01", Description: "lunch"})
	before, _, err := l.GetExpense(id)
	require.NoError(t, err)

	ok, err := l.UpdateExpense(id, ExpenseUpdate{Amount: ptr(99.99)})
	require.NoError(t, err)
	assert.True(t, ok)

	after, _, err := l.GetExpense(id)
	require.NoError(t, err)
	assert.InDelta(t, 99.99, after.Amount, 1e-9)
	assert.Equal(t, before.Description, after.Description)
	assert.Equal(t, before.Date, after.Date)
	assert.Equal(t, before.Category, after.Category)
	assert.Equal(t, before.CategoryID, after.CategoryID)
}

func TestUpdateExpenseAllFields(t *testing.T) {
	l := newTestLedger(t)
	id := mustAdd(t, l, NewExpense{Amount: 1, Category: "Food", Date: "2024-03-01"})

	ok, err := l.UpdateExpense(id, ExpenseUpdate{
		Amount:      ptr(2.0),
		Description: ptr("train"),
		Category:    ptr("Commute"),
		Date:        ptr("2024-03-02"),
	})
	require.NoError(t, err)
	require.True(t, ok)

	e, _, err := l.GetExpense(id)
	require.NoError(t, err)
	assert.Equal(t, model.Expense{ID: id, Amount: 2, Description: "train", Date: "2024-03-02", CategoryID: e.CategoryID, Category: "Commute"}, e)

	names, err := l.ExtractCategoryNames()
	require.NoError(t, err)
	assert.Contains(t, names, "Commute")
}

func TestUpdateExpenseByCategoryID(t *testing.T) {
	l := newTestLedger(t)
	id := mustAdd(t, l, NewExpense{Amount: 1, Category: "Food", Date: "2024-03-01"})
	housing, err := l.ResolveOrCreateCategory("Housing")
	require.NoError(t, err)

	ok, err := l.UpdateExpense(id, ExpenseUpdate{CategoryID: ptr(housing)})
	require.NoError(t, err)
	require.True(t, ok)

	e, _, err := l.GetExpense(id)
	require.NoError(t, err)
	assert.Equal(t, "Housing", e.Category)

	ok, err = l.UpdateExpense(id, ExpenseUpdate{CategoryID: ptr(int64(424242))})
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.True(t, IsValidation(err))

	e, _, err = l.GetExpense(id)
	require.NoError(t, err)
	assert.Equal(t, "Housing", e.Category, "failed update leaves the row unchanged")
}

func TestUpdateExpenseNothingToUpdate(t *testing.T) {
	l := newTestLedger(t)
	id := mustAdd(t, l, NewExpense{Amount: 1, Category: "Food", Date: "2024-03-01"})

	ok, err := l.UpdateExpense(id, ExpenseUpdate{})
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNothingToUpdate)
	assert.True(t, IsValidation(err))
}

func TestUpdateExpenseInvalidInput(t *testing.T) {
	l := newTestLedger(t)
	id := mustAdd(t, l, NewExpense{Amount: 1, Category: "Food", Date: "2024-03-01"})

	ok, err := l.UpdateExpense(id, ExpenseUpdate{Date: ptr("01/03/2024"), Amount: ptr(5.0)})
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidDate)

	ok, err = l.UpdateExpense(id, ExpenseUpdate{Category: ptr(" ")})
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrEmptyCategory)

	e, _, err := l.GetExpense(id)
	require.NoError(t, err)
	assert.InDelta(t, 1, e.Amount, 1e-9)
}

func TestUpdateUnknownExpense(t *testing.T) {
	l := newTestLedger(t)

	ok, err := l.UpdateExpense(12345, ExpenseUpdate{Amount: ptr(1.0), Category: ptr("Brand New")})
	require.NoError(t, err)
	assert.False(t, ok)

	names, err := l.ExtractCategoryNames()
	require.NoError(t, err)
	assert.NotContains(t, names, "Brand New")
}

func TestDeleteExpense(t *testing.T) {
	l := newTestLedger(t)
	keep := mustAdd(t, l, NewExpense{Amount: 1, Category: "Food", Date: "2024-03-01"})
	drop := mustAdd(t, l, NewExpense{Amount: 2, Category: "Food", Date: "2024-03-02"})

	ok, err := l.DeleteExpense(drop)
	require.NoError(t, err)
	assert.True(t, ok)

	all, err := l.GetAllExpenses()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep, all[0].ID)

	ok, err = l.DeleteExpense(drop)
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := l.GetAllExpenses()
	require.NoError(t, err)
	assert.Equal(t, all, again)
}

func TestGetExpenseMissing(t *testing.T) {
	l := newTestLedger(t)

	_, ok, err := l.GetExpense(1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddExpenseRollsBackNewCategoryOnInsertFailure(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.db.Exec(`CREATE TRIGGER fail_insert BEFORE INSERT ON expenses
		BEGIN SELECT RAISE(ABORT, 'insert refused'); END`)
	require.NoError(t, err)

	_, err = l.AddExpense(NewExpense{Amount: 9, Category: "Unseen", Date: "2024-03-01"})
	require.Error(t, err)
	assert.True(t, IsStorage(err))

	names, err := l.ExtractCategoryNames()
	require.NoError(t, err)
	assert.NotContains(t, names, "Unseen")
}

func TestUpdateExpenseRollsBackNewCategoryOnUpdateFailure(t *testing.T) {
	l := newTestLedger(t)
	id := mustAdd(t, l, NewExpense{Amount: 9, Category: "Food", Date: "2024-03-01"})

	_, err := l.db.Exec(`CREATE TRIGGER fail_update BEFORE UPDATE ON expenses
		BEGIN SELECT RAISE(ABORT, 'update refused'); END`)
	require.NoError(t, err)

	ok, err := l.UpdateExpense(id, ExpenseUpdate{Category: ptr("Unseen")})
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, IsStorage(err))

	names, err := l.ExtractCategoryNames()
	require.NoError(t, err)
	assert.NotContains(t, names, "Unseen")

	got, found, err := l.GetExpense(id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Food", got.Category)
}
