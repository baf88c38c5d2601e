package ledger

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/theirongolddev/fintrack/internal/model"
)

// NewExpense is the input to AddExpense. Category (a name) takes precedence
// over CategoryID. An empty Date means today.
type NewExpense struct {
	Amount      float64
	Category    string
	CategoryID  int64
	Date        string
	Description string
}

// ExpenseUpdate lists the fields UpdateExpense should rewrite. Nil fields are
// left as they are.
type ExpenseUpdate struct {
	Amount      *float64
	Description *string
	Category    *string
	CategoryID  *int64
	Date        *string
}

func (u ExpenseUpdate) empty() bool {
	return u.Amount == nil &&
		u.Description == nil &&
		u.Category == nil &&
		u.CategoryID == nil &&
		u.Date == nil
}

const selectExpenses = `SELECT e.id, e.amount, e.description, e.date, e.category_id, c.name
	FROM expenses e
	JOIN categories c ON c.id = e.category_id`

// AddExpense validates in, resolves its category (creating it when given by an
// unseen name) and inserts the expense, returning its id.
func (l *Ledger) AddExpense(in NewExpense) (int64, error) {
	const op = "add expense"

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(op); err != nil {
		return 0, err
	}

	if err := checkAmount(in.Amount); err != nil {
		return 0, err
	}
	date := in.Date
	if date == "" {
		date = l.today()
	} else if err := checkDate("date", date); err != nil {
		return 0, err
	}
	name := strings.TrimSpace(in.Category)
	if name == "" && in.CategoryID <= 0 {
		return 0, &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}

	tx, err := l.db.Begin()
	if err != nil {
		return 0, storageErr(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	catID, err := linkCategory(tx, name, in.CategoryID)
	if err != nil {
		return 0, storageErr(op, err)
	}

	res, err := tx.Exec(`INSERT INTO expenses (amount, description, date, category_id)
		VALUES (?, ?, ?, ?)`, in.Amount, in.Description, date, catID)
	if err != nil {
		return 0, storageErr(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr(op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storageErr(op, err)
	}

	l.log.Debug("expense added", "id", id, "category_id", catID, "amount", in.Amount, "date", date)
	return id, nil
}

// GetAllExpenses returns every expense, newest date first.
func (l *Ledger) GetAllExpenses() ([]model.Expense, error) {
	const op = "list expenses"

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(op); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(selectExpenses + " ORDER BY e.date DESC, e.id DESC")
	if err != nil {
		return nil, storageErr(op, err)
	}
	return scanExpenses(op, rows)
}

// GetExpensesByDateRange returns expenses with start <= date <= end, oldest
// first. A malformed bound yields an empty result and a ValidationError.
func (l *Ledger) GetExpensesByDateRange(start, end string) ([]model.Expense, error) {
	const op = "list expenses by date"

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(op); err != nil {
		return nil, err
	}

	if err := checkDate("start", start); err != nil {
		return []model.Expense{}, err
	}
	if err := checkDate("end", end); err != nil {
		return []model.Expense{}, err
	}

	rows, err := l.db.Query(selectExpenses+`
		WHERE e.date >= ? AND e.date <= ?
		ORDER BY e.date ASC, e.id ASC`, start, end)
	if err != nil {
		return nil, storageErr(op, err)
	}
	return scanExpenses(op, rows)
}

// GetExpense returns a single expense. The bool reports whether it exists.
func (l *Ledger) GetExpense(id int64) (model.Expense, bool, error) {
	const op = "get expense"

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(op); err != nil {
		return model.Expense{}, false, err
	}

	var e model.Expense
	err := l.db.QueryRow(selectExpenses+" WHERE e.id = ?", id).
		Scan(&e.ID, &e.Amount, &e.Description, &e.Date, &e.CategoryID, &e.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Expense{}, false, nil
	}
	if err != nil {
		return model.Expense{}, false, storageErr(op, err)
	}
	return e, true, nil
}

// GetExpensesByCategory sums expenses per category, largest total first.
// Categories without expenses are omitted.
func (l *Ledger) GetExpensesByCategory() ([]model.CategoryTotal, error) {
	const op = "total by category"

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(op); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(`SELECT c.name, SUM(e.amount) AS total, COUNT(e.id)
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		GROUP BY c.id, c.name
		ORDER BY total DESC, c.name ASC`)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer func() { _ = rows.Close() }()

	totals := []model.CategoryTotal{}
	for rows.Next() {
		var ct model.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total, &ct.Count); err != nil {
			return nil, storageErr(op, err)
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return totals, nil
}

// GetDateRange returns the earliest and latest expense dates. ok is false
// when the ledger holds no expenses.
func (l *Ledger) GetDateRange() (model.DateRange, bool, error) {
	const op = "date range"

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(op); err != nil {
		return model.DateRange{}, false, err
	}

	var from, to sql.NullString
	if err := l.db.QueryRow("SELECT MIN(date), MAX(date) FROM expenses").Scan(&from, &to); err != nil {
		return model.DateRange{}, false, storageErr(op, err)
	}
	if !from.Valid || !to.Valid {
		return model.DateRange{}, false, nil
	}
	return model.DateRange{From: from.String, To: to.String}, true, nil
}

// UpdateExpense rewrites the supplied fields of expense id. It reports false
// without changing anything when id does not exist. Supplying no fields is a
// ValidationError.
func (l *Ledger) UpdateExpense(id int64, u ExpenseUpdate) (bool, error) {
	const op = "update expense"

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(op); err != nil {
		return false, err
	}

	if u.empty() {
		return false, &ValidationError{Field: "update", Err: ErrNothingToUpdate}
	}
	if u.Amount != nil {
		if err := checkAmount(*u.Amount); err != nil {
			return false, err
		}
	}
	if u.Date != nil {
		if err := checkDate("date", *u.Date); err != nil {
			return false, err
		}
	}
	var name string
	if u.Category != nil {
		var err error
		if name, err = normalizeCategory(*u.Category); err != nil {
			return false, err
		}
	}

	tx, err := l.db.Begin()
	if err != nil {
		return false, storageErr(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRow("SELECT 1 FROM expenses WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageErr(op, err)
	}

	var (
		sets []string
		args []any
	)
	if u.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *u.Amount)
	}
	if u.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if u.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *u.Date)
	}
	if u.Category != nil || u.CategoryID != nil {
		var catID int64
		if u.Category != nil {
			catID, err = linkCategory(tx, name, 0)
		} else {
			catID, err = linkCategory(tx, "", *u.CategoryID)
		}
		if err != nil {
			return false, storageErr(op, err)
		}
		sets = append(sets, "category_id = ?")
		args = append(args, catID)
	}
	args = append(args, id)

	res, err := tx.Exec("UPDATE expenses SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return false, storageErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return false, storageErr(op, err)
	}

	l.log.Debug("expense updated", "id", id, "fields", len(sets))
	return n > 0, nil
}

// DeleteExpense removes expense id and reports whether a row was removed.
func (l *Ledger) DeleteExpense(id int64) (bool, error) {
	const op = "delete expense"

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(op); err != nil {
		return false, err
	}

	res, err := l.db.Exec("DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return false, storageErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr(op, err)
	}
	if n > 0 {
		l.log.Debug("expense deleted", "id", id)
	}
	return n > 0, nil
}

// Count returns the number of recorded expenses.
func (l *Ledger) Count() (int, error) {
	const op = "count expenses"

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(op); err != nil {
		return 0, err
	}

	var n int
	if err := l.db.QueryRow("SELECT COUNT(*) FROM expenses").Scan(&n); err != nil {
		return 0, storageErr(op, err)
	}
	return n, nil
}

func scanExpenses(op string, rows *sql.Rows) ([]model.Expense, error) {
	defer func() { _ = rows.Close() }()

	expenses := []model.Expense{}
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.Amount, &e.Description, &e.Date, &e.CategoryID, &e.Category); err != nil {
			return nil, storageErr(op, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return expenses, nil
}
