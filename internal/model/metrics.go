package model

// Summary holds the top-level aggregate across a set of expenses.
type Summary struct {
	Count    int     `json:"count"`
	Expenses float64 `json:"expenses"`
	Income   float64 `json:"income"`
	Net      float64 `json:"net"` // Income - Expenses

	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	Days int    `json:"days"` // calendar days spanned, inclusive

	ExpensesPerDay float64 `json:"expenses_per_day"`
}

// DailyTotal holds the net signed amount recorded on one date.
type DailyTotal struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// MonthlyFlow compares income and expenses for one calendar month.
type MonthlyFlow struct {
	Month    string  `json:"month"` // YYYY-MM
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// CategoryShare is one slice of the expense distribution.
type CategoryShare struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Share    float64 `json:"share"` // 0..1
	Count    int     `json:"count"`
}
