package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/fintrack/internal/model"
)

// ResolveOrCreateCategory returns the id of the category named name, creating
// it first when no category has that exact name. An unseen name is never an
// error; an empty one is.
func (l *Ledger) ResolveOrCreateCategory(name string) (int64, error) {
	const op = "resolve category"

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(op); err != nil {
		return 0, err
	}

	name, err := normalizeCategory(name)
	if err != nil {
		return 0, err
	}

	tx, err := l.db.Begin()
	if err != nil {
		return 0, storageErr(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	id, created, err := resolveOrCreate(tx, name)
	if err != nil {
		return 0, storageErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, storageErr(op, err)
	}
	if created {
		l.log.Debug("category created", "id", id, "name", name)
	}
	return id, nil
}

// ExtractCategoryNames returns every category name in lexicographic order.
func (l *Ledger) ExtractCategoryNames() ([]string, error) {
	const op = "list category names"

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(op); err != nil {
		return nil, err
	}

	rows, err := l.db.Query("SELECT name FROM categories ORDER BY name")
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer func() { _ = rows.Close() }()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, storageErr(op, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return names, nil
}

// ListCategories returns all categories ordered by name.
func (l *Ledger) ListCategories() ([]model.Category, error) {
	const op = "list categories"

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(op); err != nil {
		return nil, err
	}

	rows, err := l.db.Query("SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer func() { _ = rows.Close() }()

	cats := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, storageErr(op, err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return cats, nil
}

// DeleteCategory removes the category named name. It reports false when no
// such category exists, and refuses with ErrCategoryInUse while any expense
// still references it.
func (l *Ledger) DeleteCategory(name string) (bool, error) {
	const op = "delete category"

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(op); err != nil {
		return false, err
	}

	name, err := normalizeCategory(name)
	if err != nil {
		return false, err
	}

	tx, err := l.db.Begin()
	if err != nil {
		return false, storageErr(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRow("SELECT id FROM categories WHERE name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageErr(op, err)
	}

	var refs int
	if err := tx.QueryRow("SELECT COUNT(*) FROM expenses WHERE category_id = ?", id).Scan(&refs); err != nil {
		return false, storageErr(op, err)
	}
	if refs > 0 {
		return false, &ValidationError{Field: "category", Value: name, Err: ErrCategoryInUse}
	}

	if _, err := tx.Exec("DELETE FROM categories WHERE id = ?", id); err != nil {
		return false, storageErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return false, storageErr(op, err)
	}

	l.log.Debug("category deleted", "id", id, "name", name)
	return true, nil
}

func normalizeCategory(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	return name, nil
}

// resolveOrCreate looks a category up by exact name and inserts it when absent.
// The bool result reports whether a row was created.
func resolveOrCreate(q querier, name string) (int64, bool, error) {
	var id int64
	err := q.QueryRow("SELECT id FROM categories WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("looking up category %q: %w", name, err)
	}

	res, err := q.Exec("INSERT OR IGNORE INTO categories (name) VALUES (?)", name)
	if err != nil {
		return 0, false, fmt.Errorf("creating category %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		if id, err := res.LastInsertId(); err == nil {
			return id, true, nil
		}
	}

	// Absorbed by the unique constraint: read back the existing row.
	if err := q.QueryRow("SELECT id FROM categories WHERE name = ?", name).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("reading category %q: %w", name, err)
	}
	return id, false, nil
}

// linkCategory resolves the category an expense write should point at. A
// non-empty name wins and is resolved-or-created; otherwise id must exist.
func linkCategory(q querier, name string, id int64) (int64, error) {
	if name != "" {
		catID, _, err := resolveOrCreate(q, name)
		return catID, err
	}

	var found int64
	err := q.QueryRow("SELECT id FROM categories WHERE id = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &ValidationError{Field: "category_id", Value: strconv.FormatInt(id, 10), Err: ErrUnknownCategory}
	}
	if err != nil {
		return 0, fmt.Errorf("looking up category %d: %w", id, err)
	}
	return found, nil
}
