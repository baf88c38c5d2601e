package model

// BudgetStatus tracks spending for the current month against a monthly budget.
type BudgetStatus struct {
	Month         string  `json:"month"`
	Budget        float64 `json:"budget"`
	Spent         float64 `json:"spent"`
	Remaining     float64 `json:"remaining"`
	UsedPercent   float64 `json:"used_percent"` // 0..1, may exceed 1
	DailyBurnRate float64 `json:"daily_burn_rate"`
	Projected     float64 `json:"projected"`
	DaysRemaining int     `json:"days_remaining"`
}
