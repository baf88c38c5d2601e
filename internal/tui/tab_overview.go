package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	s, prev := a.summary, a.prev

	if len(a.expenses) == 0 {
		return components.ContentCard("Overview",
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
				Render("The ledger is empty. Press [a] to add the first entry."), cw)
	}

	delta := func(cur, old float64) string {
		if prev.Count == 0 {
			return fmt.Sprintf("last %dd", a.days)
		}
		return cli.FormatDelta(cur, old) + " vs prior"
	}
	netTone := 1
	if s.Net < 0 {
		netTone = -1
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Spent", Value: cli.FormatAmount(s.Expenses), Delta: delta(s.Expenses, prev.Expenses), Tone: -1},
		{Label: "Income", Value: cli.FormatAmount(s.Income), Delta: delta(s.Income, prev.Income), Tone: 1},
		{Label: "Net", Value: cli.FormatAmount(s.Net), Delta: delta(s.Net, prev.Net), Tone: netTone},
		{Label: "Per day", Value: cli.FormatAmount(s.ExpensesPerDay), Delta: cli.FormatNumber(int64(s.Count)) + " entries"},
	}, cw))
	b.WriteString("\n")

	if len(a.spending) > 0 {
		values := make([]float64, len(a.spending))
		for i, d := range a.spending {
			values[i] = d.Total
		}
		chartH := 10
		if a.isCompactLayout() {
			chartH = 7
		}
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Daily Spending (%dd)", a.days),
			components.BarChart(values, chartDateLabels(a.spending), t.Blue, components.CardInnerWidth(cw), chartH),
			cw,
		))
		b.WriteString("\n")
	}

	halves := components.LayoutRow(cw, 2)
	flowW, shareW := halves[0], halves[1]
	if a.isCompactLayout() {
		flowW, shareW = cw, cw
	}
	flowCard := components.ContentCard("Income vs Expenses", a.flowsBody(components.CardInnerWidth(flowW)), flowW)
	shareCard := components.ContentCard("Where It Went", a.sharesBody(components.CardInnerWidth(shareW)), shareW)
	if a.isCompactLayout() {
		b.WriteString(flowCard + "\n" + shareCard)
	} else {
		b.WriteString(components.CardRow([]string{flowCard, shareCard}))
	}

	if a.budget != nil {
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Budget "+cli.FormatMonth(a.budget.Month), a.budgetBody(components.CardInnerWidth(cw)), cw))
	}
	return b.String()
}

func (a App) flowsBody(innerW int) string {
	t := theme.Active
	if len(a.flows) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No data")
	}

	peak := 0.0
	for _, f := range a.flows {
		peak = max(peak, f.Income, f.Expenses)
	}
	const labelW = 8
	barW := max(innerW-labelW-16, 4)

	lines := make([]string, len(a.flows))
	for i, f := range a.flows {
		lines[i] = components.FlowBars(cli.FormatMonth(f.Month), labelW, f.Income, f.Expenses, peak, barW)
	}
	return strings.Join(lines, "\n")
}

func (a App) sharesBody(innerW int) string {
	t := theme.Active
	if len(a.shares) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No spending in this window")
	}

	limit := min(len(a.shares), 8)
	labelW := min(max(innerW/4, 8), 18)
	barW := max(innerW-labelW-24, 4)
	palette := []lipgloss.Color{t.Accent, t.Blue, t.Magenta, t.Orange, t.Yellow, t.Cyan, t.Green, t.Red}

	lines := make([]string, 0, limit+1)
	for i, cs := range a.shares[:limit] {
		lines = append(lines, components.ShareBar(cs.Category, labelW, cs.Share, a.shares[0].Share, cs.Total, barW, palette[i%len(palette)]))
	}
	if rest := len(a.shares) - limit; rest > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render(fmt.Sprintf("+%d more", rest)))
	}
	return strings.Join(lines, "\n")
}

func (a App) budgetBody(innerW int) string {
	t := theme.Active
	bs := a.budget
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(components.BudgetBar("Used", bs.UsedPercent, 10, max(innerW-18, 10)))
	b.WriteString("\n")
	if bs.Budget > 0 {
		b.WriteString(components.BudgetBar("Projected", bs.Projected/bs.Budget, 10, max(innerW-18, 10)))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s%s   %s%s   %s%s   %s%s",
		muted.Render("Spent "), value.Render(cli.FormatAmount(bs.Spent)),
		muted.Render("Left "), value.Render(cli.FormatAmount(bs.Remaining)),
		muted.Render("Burn "), value.Render(cli.FormatAmount(bs.DailyBurnRate)+"/day"),
		muted.Render("Days left "), value.Render(fmt.Sprint(bs.DaysRemaining)))
	return b.String()
}
