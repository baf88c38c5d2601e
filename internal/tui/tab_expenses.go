package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/report"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

// expensesState holds the expenses tab state.
type expensesState struct {
	cursor int
	offset int // first visible row

	searching   bool
	searchInput textinput.Model
	searchQuery string

	confirmDelete bool
}

func newExpensesState() expensesState {
	return expensesState{searchInput: newSearchInput()}
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "description or category"
	ti.Prompt = "/ "
	ti.CharLimit = 100
	ti.Width = 40
	return ti
}

// move shifts the cursor by delta within n rows.
func (s *expensesState) move(delta, n int) {
	s.cursor += delta
	s.clamp(n)
}

func (s *expensesState) clamp(n int) {
	s.cursor = min(s.cursor, n-1)
	s.cursor = max(s.cursor, 0)
}

// visibleExpenses is the full ledger narrowed by the search query, newest first.
func (a App) visibleExpenses() []model.Expense {
	return report.FilterByText(a.expenses, a.exp.searchQuery)
}

func (a App) selectedExpense() (model.Expense, bool) {
	rows := a.visibleExpenses()
	if a.exp.cursor < 0 || a.exp.cursor >= len(rows) {
		return model.Expense{}, false
	}
	return rows[a.exp.cursor], true
}

func (a App) handleExpensesKey(key string) (App, tea.Cmd, bool) {
	n := len(a.visibleExpenses())
	switch key {
	case "/":
		a.exp.searching = true
		a.exp.searchInput.SetValue(a.exp.searchQuery)
		a.exp.searchInput.Focus()
		return a, textinput.Blink, true
	case "esc":
		if a.exp.searchQuery != "" {
			a.exp.searchQuery = ""
			a.exp.cursor, a.exp.offset = 0, 0
		}
		return a, nil, true
	case "j", "down":
		a.exp.move(1, n)
	case "k", "up":
		a.exp.move(-1, n)
	case "ctrl+d", "pgdown":
		a.exp.move(max((a.height-8)/2, 1), n)
	case "ctrl+u", "pgup":
		a.exp.move(-max((a.height-8)/2, 1), n)
	case "g", "home":
		a.exp.cursor = 0
	case "G", "end":
		a.exp.cursor = max(n-1, 0)
	case "e", "enter":
		if e, ok := a.selectedExpense(); ok {
			m, cmd := a.openEditForm(e)
			return m.(App), cmd, true
		}
	case "d", "delete":
		if _, ok := a.selectedExpense(); ok {
			a.exp.confirmDelete = true
		}
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateExpensesSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.exp.searchQuery = strings.TrimSpace(a.exp.searchInput.Value())
		a.exp.searching = false
		a.exp.searchInput.Blur()
		a.exp.cursor, a.exp.offset = 0, 0
		return a, nil
	case "esc":
		a.exp.searching = false
		a.exp.searchInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.exp.searchInput, cmd = a.exp.searchInput.Update(msg)
	return a, cmd
}

func (a App) updateExpenseConfirm(key string) (tea.Model, tea.Cmd) {
	a.exp.confirmDelete = false
	if key != "y" && key != "Y" {
		a.setStatus("Delete cancelled", nil)
		return a, nil
	}
	e, ok := a.selectedExpense()
	if !ok {
		return a, nil
	}
	return a, deleteExpenseCmd(a.store, e.ID)
}

func (a App) renderExpensesTab(cw, h int) string {
	t := theme.Active
	rows := a.visibleExpenses()
	conv := a.convention()

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)

	innerW := components.CardInnerWidth(cw)
	const idW, dateW, amtW = 6, 10, 12
	catW := min(max(innerW/5, 10), 20)
	descW := max(innerW-idW-dateW-amtW-catW-4, 8)

	var b strings.Builder
	switch {
	case a.exp.searching:
		b.WriteString(a.exp.searchInput.View() + "\n")
	case a.exp.searchQuery != "":
		b.WriteString(muted.Render(fmt.Sprintf("Filter: %q  (%d matches, Esc clears)", a.exp.searchQuery, len(rows))) + "\n")
	}

	b.WriteString(header.Render(fmt.Sprintf("%*s %-*s %-*s %-*s %*s",
		idW, "ID", dateW, "Date", catW, "Category", descW, "Description", amtW, "Amount")))
	b.WriteString("\n")

	if len(rows) == 0 {
		b.WriteString(muted.Render("No expenses match."))
		return components.ContentCard("Expenses", b.String(), cw)
	}

	visible := max(h-7, 3)
	offset := a.exp.offset
	if a.exp.cursor < offset {
		offset = a.exp.cursor
	}
	if a.exp.cursor >= offset+visible {
		offset = a.exp.cursor - visible + 1
	}
	end := min(offset+visible, len(rows))

	for i := offset; i < end; i++ {
		e := rows[i]
		income, _ := conv.Classify(e)
		style := rowStyle
		if i == a.exp.cursor {
			style = selStyle
		}
		left := style.Render(fmt.Sprintf("%*d %-*s %-*s %-*s ",
			idW, e.ID,
			dateW, e.Date,
			catW, cli.Truncate(e.Category, catW),
			descW, cli.Truncate(e.Description, descW)))
		amount := style.Foreground(t.Signed(income)).Render(fmt.Sprintf("%*s", amtW, cli.FormatAmount(e.Amount)))
		b.WriteString(left + amount + "\n")
	}

	if a.exp.confirmDelete {
		if e, ok := a.selectedExpense(); ok {
			warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)
			b.WriteString(warn.Render(fmt.Sprintf("Delete #%d %s %s? [y/N]", e.ID, e.Category, cli.FormatAmount(e.Amount))))
		}
	} else {
		b.WriteString(muted.Render(fmt.Sprintf("%d-%d of %d  [/]search [e]dit [d]elete", offset+1, end, len(rows))))
	}

	return components.ContentCard(fmt.Sprintf("Expenses (%s)", cli.FormatNumber(int64(len(a.expenses)))), b.String(), cw)
}
