package report

import (
	"sort"
	"time"

	"github.com/theirongolddev/fintrack/internal/model"
)

const dateLayout = "2006-01-02"

// DailyTrend sums the signed amount recorded on each date, oldest first.
func DailyTrend(expenses []model.Expense) []model.DailyTotal {
	if len(expenses) == 0 {
		return nil
	}

	dayMap := make(map[string]*model.DailyTotal)
	for _, e := range expenses {
		dt, ok := dayMap[e.Date]
		if !ok {
			dt = &model.DailyTotal{Date: e.Date}
			dayMap[e.Date] = dt
		}
		dt.Total += e.Amount
		dt.Count++
	}

	days := make([]model.DailyTotal, 0, len(dayMap))
	for _, dt := range dayMap {
		days = append(days, *dt)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	return days
}

// FillDays returns a continuous series from..to (inclusive) with zero entries
// for dates absent from trend, so charts show gaps. Dates in trend outside the
// window are dropped. Malformed bounds return trend unchanged.
func FillDays(trend []model.DailyTotal, from, to string) []model.DailyTotal {
	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return trend
	}
	end, err := time.Parse(dateLayout, to)
	if err != nil || end.Before(start) {
		return trend
	}

	byDate := make(map[string]model.DailyTotal, len(trend))
	for _, dt := range trend {
		byDate[dt.Date] = dt
	}

	var out []model.DailyTotal
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(dateLayout)
		if dt, ok := byDate[key]; ok {
			out = append(out, dt)
			continue
		}
		out = append(out, model.DailyTotal{Date: key})
	}
	return out
}

// MonthlyFlows compares income and expenses per calendar month, oldest first.
func MonthlyFlows(expenses []model.Expense, conv Convention) []model.MonthlyFlow {
	if len(expenses) == 0 {
		return nil
	}

	monthMap := make(map[string]*model.MonthlyFlow)
	for _, e := range expenses {
		if len(e.Date) < 7 {
			continue
		}
		month := e.Date[:7]
		mf, ok := monthMap[month]
		if !ok {
			mf = &model.MonthlyFlow{Month: month}
			monthMap[month] = mf
		}
		income, mag := conv.Classify(e)
		if income {
			mf.Income += mag
		} else {
			mf.Expenses += mag
		}
	}

	months := make([]model.MonthlyFlow, 0, len(monthMap))
	for _, mf := range monthMap {
		mf.Net = mf.Income - mf.Expenses
		months = append(months, *mf)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month < months[j].Month
	})
	return months
}

// CategoryShares distributes expenses (income excluded) over categories,
// largest first. Returns nil when there is nothing to distribute.
func CategoryShares(expenses []model.Expense, conv Convention) []model.CategoryShare {
	catMap := make(map[string]*model.CategoryShare)
	var total float64
	for _, e := range expenses {
		income, mag := conv.Classify(e)
		if income || mag == 0 {
			continue
		}
		cs, ok := catMap[e.Category]
		if !ok {
			cs = &model.CategoryShare{Category: e.Category}
			catMap[e.Category] = cs
		}
		cs.Total += mag
		cs.Count++
		total += mag
	}
	if len(catMap) == 0 || total == 0 {
		return nil
	}

	shares := make([]model.CategoryShare, 0, len(catMap))
	for _, cs := range catMap {
		cs.Share = cs.Total / total
		shares = append(shares, *cs)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Total != shares[j].Total {
			return shares[i].Total > shares[j].Total
		}
		return shares[i].Category < shares[j].Category
	})
	return shares
}

// Summarize computes totals, the covered date span and the daily expense rate.
func Summarize(expenses []model.Expense, conv Convention) model.Summary {
	var s model.Summary
	for _, e := range expenses {
		s.Count++
		income, mag := conv.Classify(e)
		if income {
			s.Income += mag
		} else {
			s.Expenses += mag
		}
		if s.From == "" || e.Date < s.From {
			s.From = e.Date
		}
		if e.Date > s.To {
			s.To = e.Date
		}
	}
	s.Net = s.Income - s.Expenses

	if s.Count == 0 {
		return s
	}
	from, err1 := time.Parse(dateLayout, s.From)
	to, err2 := time.Parse(dateLayout, s.To)
	if err1 == nil && err2 == nil {
		s.Days = int(to.Sub(from).Hours()/24) + 1
	}
	if s.Days > 0 {
		s.ExpensesPerDay = s.Expenses / float64(s.Days)
	}
	return s
}

// Budget measures spending in the month containing now against a monthly budget.
func Budget(expenses []model.Expense, conv Convention, monthly float64, now time.Time) model.BudgetStatus {
	month := now.Format("2006-01")
	daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	day := now.Day()

	bs := model.BudgetStatus{
		Month:         month,
		Budget:        monthly,
		DaysRemaining: daysInMonth - day,
	}
	for _, e := range expenses {
		if len(e.Date) < 7 || e.Date[:7] != month {
			continue
		}
		if income, mag := conv.Classify(e); !income {
			bs.Spent += mag
		}
	}

	bs.Remaining = monthly - bs.Spent
	if monthly > 0 {
		bs.UsedPercent = bs.Spent / monthly
	}
	if day > 0 {
		bs.DailyBurnRate = bs.Spent / float64(day)
		bs.Projected = bs.DailyBurnRate * float64(daysInMonth)
	}
	return bs
}
