package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

type categoriesState struct {
	cursor        int
	confirmDelete bool
}

func (s *categoriesState) move(delta, n int) {
	s.cursor += delta
	s.clamp(n)
}

func (s *categoriesState) clamp(n int) {
	s.cursor = max(min(s.cursor, n-1), 0)
}

// categoryRow joins a category with its all-time total, if it has one.
type categoryRow struct {
	model.Category
	total model.CategoryTotal
	used  bool
}

func (a App) categoryRows() []categoryRow {
	byName := make(map[string]model.CategoryTotal, len(a.totals))
	for _, ct := range a.totals {
		byName[ct.Category] = ct
	}
	rows := make([]categoryRow, len(a.categories))
	for i, c := range a.categories {
		ct, ok := byName[c.Name]
		rows[i] = categoryRow{Category: c, total: ct, used: ok}
	}
	return rows
}

func (a App) handleCategoriesKey(key string) (App, tea.Cmd, bool) {
	n := len(a.categories)
	switch key {
	case "j", "down":
		a.cats.move(1, n)
	case "k", "up":
		a.cats.move(-1, n)
	case "g", "home":
		a.cats.cursor = 0
	case "G", "end":
		a.cats.cursor = max(n-1, 0)
	case "d", "delete":
		if n > 0 {
			a.cats.confirmDelete = true
		}
	case "enter":
		// Jump to the expenses of this category.
		if n > 0 {
			a.exp.searchQuery = a.categories[a.cats.cursor].Name
			a.exp.cursor, a.exp.offset = 0, 0
			a.activeTab = tabExpenses
		}
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateCategoryConfirm(key string) (tea.Model, tea.Cmd) {
	a.cats.confirmDelete = false
	if key != "y" && key != "Y" || len(a.categories) == 0 {
		a.setStatus("Delete cancelled", nil)
		return a, nil
	}
	return a, deleteCategoryCmd(a.store, a.categories[a.cats.cursor].Name)
}

func (a App) renderCategoriesTab(cw, h int) string {
	t := theme.Active
	rows := a.categoryRows()

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)

	if len(rows) == 0 {
		return components.ContentCard("Categories", muted.Render("No categories yet."), cw)
	}

	const nameW, countW, totalW = 24, 8, 14
	shareW := min(max(components.CardInnerWidth(cw)-nameW-countW-totalW-10, 0), 30)

	var volume float64
	for _, r := range rows {
		volume += math.Abs(r.total.Total)
	}

	var b strings.Builder
	b.WriteString(header.Render(fmt.Sprintf("%-*s %*s %*s", nameW, "Category", countW, "Entries", totalW, "Total")))
	b.WriteString("\n")

	visible := max(h-6, 3)
	offset := max(a.cats.cursor-visible+1, 0)
	end := min(offset+visible, len(rows))
	conv := a.convention()

	for i := offset; i < end; i++ {
		r := rows[i]
		style := rowStyle
		if i == a.cats.cursor {
			style = selStyle
		}
		count, total := "-", "-"
		if r.used {
			count = cli.FormatNumber(int64(r.total.Count))
			total = cli.FormatAmount(r.total.Total)
		}
		line := style.Render(fmt.Sprintf("%-*s %*s ", nameW, cli.Truncate(r.Name, nameW), countW, count))
		income, _ := conv.Classify(model.Expense{Amount: r.total.Total, Category: r.Name})
		amt := style.Foreground(t.Signed(income)).Render(fmt.Sprintf("%*s", totalW, total))
		b.WriteString(line + amt)
		if shareW >= 5 && volume > 0 {
			b.WriteString(style.Render("  ") + components.ProgressBar(math.Abs(r.total.Total)/volume, shareW))
		}
		b.WriteString("\n")
	}

	if a.cats.confirmDelete {
		warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)
		b.WriteString(warn.Render(fmt.Sprintf("Delete category %s? [y/N]", rows[a.cats.cursor].Name)))
	} else {
		b.WriteString(muted.Render("[Enter] show expenses  [a]dd entry here  [d]elete unused category"))
	}

	return components.ContentCard(fmt.Sprintf("Categories (%d)", len(rows)), b.String(), cw)
}
