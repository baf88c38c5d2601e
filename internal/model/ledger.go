// Package model defines the domain types shared by the ledger, its reports and its front ends.
package model

// Category is a named expense grouping.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Expense is a single ledger entry with its category name resolved.
// Amount is signed; the ledger itself does not interpret the sign.
type Expense struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"` // YYYY-MM-DD
	CategoryID  int64   `json:"category_id"`
	Category    string  `json:"category"`
}

// CategoryTotal is the summed amount of all expenses in one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// DateRange is the inclusive span of recorded expense dates.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}
