// Package tui provides the interactive Bubble Tea dashboard for fintrack.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/report"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

// Store is the part of the ledger the dashboard reads and writes.
type Store interface {
	GetAllExpenses() ([]model.Expense, error)
	ListCategories() ([]model.Category, error)
	GetExpensesByCategory() ([]model.CategoryTotal, error)
	AddExpense(in ledger.NewExpense) (int64, error)
	UpdateExpense(id int64, u ledger.ExpenseUpdate) (bool, error)
	DeleteExpense(id int64) (bool, error)
	DeleteCategory(name string) (bool, error)
	Path() string
}

// DataLoadedMsg carries a fresh snapshot of the ledger.
type DataLoadedMsg struct {
	Expenses   []model.Expense
	Totals     []model.CategoryTotal
	Categories []model.Category
	LoadTime   time.Duration
	Err        error
}

// MutationMsg reports the outcome of a write started from the dashboard.
type MutationMsg struct {
	Status string
	Err    error
}

const (
	tabOverview = iota
	tabExpenses
	tabCategories
	tabSettings
)

type formKind int

const (
	formNone formKind = iota
	formSetup
	formAdd
	formEdit
)

// App is the root Bubble Tea model.
type App struct {
	store  Store
	cfg    config.Config
	logger *slog.Logger
	now    func() time.Time

	// Data
	expenses   []model.Expense // newest first
	totals     []model.CategoryTotal
	categories []model.Category
	loaded     bool
	loadTime   time.Duration
	loadErr    error

	// Derived for the current window
	days     int
	window   []model.Expense
	summary  model.Summary
	prev     model.Summary
	spending []model.DailyTotal
	flows    []model.MonthlyFlow
	shares   []model.CategoryShare
	budget   *model.BudgetStatus

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	status    string
	statusErr bool

	exp      expensesState
	cats     categoriesState
	settings settingsState

	// Active huh form, if any. Values live on the heap so the form's
	// bindings survive App being copied.
	form      *huh.Form
	formKind  formKind
	setupVals *SetupValues
	expVals   *expenseValues
	editing   model.Expense
	needSetup bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
	flowMonths       = 6
)

// NewApp creates the dashboard over store. The first-run wizard is shown when
// no config file exists yet.
func NewApp(store Store, cfg config.Config) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	days := cfg.Report.DefaultDays
	if days <= 0 {
		days = 30
	}

	return App{
		store:     store,
		cfg:       cfg,
		logger:    slog.Default().With("component", "tui"),
		now:       time.Now,
		days:      days,
		needSetup: !config.Exists(),
		spinner:   sp,
		exp:       newExpensesState(),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.store),
		a.spinner.Tick,
	)
}

func (a App) convention() report.Convention {
	return a.cfg.Convention()
}

// recompute derives every view from the loaded expenses.
func (a *App) recompute() {
	now := a.now()
	conv := a.convention()
	from := report.WindowStart(now, a.days)
	to := now.Format(ledger.DateLayout)

	a.window = between(a.expenses, from, to)
	a.summary = report.Summarize(a.window, conv)

	prevEnd := now.AddDate(0, 0, -a.days)
	a.prev = report.Summarize(between(a.expenses, report.WindowStart(prevEnd, a.days), prevEnd.Format(ledger.DateLayout)), conv)

	a.spending = report.FillDays(report.DailyTrend(spendingOnly(a.window, conv)), from, to)
	a.flows = report.MonthlyFlows(a.expenses, conv)
	if len(a.flows) > flowMonths {
		a.flows = a.flows[len(a.flows)-flowMonths:]
	}
	a.shares = report.CategoryShares(a.window, conv)

	a.budget = nil
	if monthly, ok := a.cfg.MonthlyBudget(); ok {
		b := report.Budget(a.expenses, conv, monthly, now)
		a.budget = &b
	}

	a.exp.clamp(len(a.visibleExpenses()))
	a.cats.clamp(len(a.categories))
}

// between keeps expenses with from <= date <= to. An empty from is unbounded.
func between(expenses []model.Expense, from, to string) []model.Expense {
	var out []model.Expense
	for _, e := range report.FilterSince(expenses, from) {
		if e.Date <= to {
			out = append(out, e)
		}
	}
	return out
}

// spendingOnly keeps expense rows as positive magnitudes for charting.
func spendingOnly(expenses []model.Expense, conv report.Convention) []model.Expense {
	out := make([]model.Expense, 0, len(expenses))
	for _, e := range expenses {
		if income, mag := conv.Classify(e); !income {
			e.Amount = mag
			out = append(out, e)
		}
	}
	return out
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(a.formWidth()).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.form != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		return a.updateKeys(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.loadErr = msg.Err
		if msg.Err == nil {
			a.expenses = msg.Expenses
			a.totals = msg.Totals
			a.categories = msg.Categories
		} else {
			a.logger.Error("loading ledger", "err", msg.Err)
		}
		a.recompute()

		if a.needSetup && a.form == nil {
			return a.openSetup()
		}
		return a, nil

	case MutationMsg:
		a.setStatus(msg.Status, msg.Err)
		if msg.Err != nil {
			a.logger.Warn("ledger write failed", "err", msg.Err)
			return a, nil
		}
		return a, loadDataCmd(a.store)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Cursor blinks and other internal messages belong to the open form.
	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		switch a.activeTab {
		case tabExpenses:
			a.exp.move(-1, len(a.visibleExpenses()))
		case tabCategories:
			a.cats.move(-1, len(a.categories))
		}
	case tea.MouseButtonWheelDown:
		switch a.activeTab {
		case tabExpenses:
			a.exp.move(1, len(a.visibleExpenses()))
		case tabCategories:
			a.cats.move(1, len(a.categories))
		}
	case tea.MouseButtonLeft:
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Modal inputs take every key.
	switch {
	case a.activeTab == tabSettings && a.settings.editing:
		return a.updateSettingsInput(msg)
	case a.activeTab == tabExpenses && a.exp.searching:
		return a.updateExpensesSearch(msg)
	case a.activeTab == tabExpenses && a.exp.confirmDelete:
		return a.updateExpenseConfirm(key)
	case a.activeTab == tabCategories && a.cats.confirmDelete:
		return a.updateCategoryConfirm(key)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	var handled bool
	var cmd tea.Cmd
	switch a.activeTab {
	case tabExpenses:
		a, cmd, handled = a.handleExpensesKey(key)
	case tabCategories:
		a, cmd, handled = a.handleCategoriesKey(key)
	case tabSettings:
		a, cmd, handled = a.handleSettingsKey(key)
	}
	if handled {
		return a, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		a.setStatus("Reloading...", nil)
		return a, loadDataCmd(a.store)
	case "a":
		return a.openAddForm()
	case "[":
		a.days = max(a.days/2, 1)
		a.recompute()
	case "]":
		a.days = min(a.days*2, 3650)
		a.recompute()
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if idx := components.TabIdxByKey(key); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a *App) setStatus(msg string, err error) {
	if err != nil {
		a.status = err.Error()
		a.statusErr = true
		return
	}
	a.status = msg
	a.statusErr = false
}

// ─── Forms ──────────────────────────────────────────────────────

func (a App) openSetup() (tea.Model, tea.Cmd) {
	a.setupVals = SetupValuesFrom(a.cfg)
	a.form = NewSetupForm(a.setupVals)
	a.formKind = formSetup
	return a.startForm()
}

func (a App) openAddForm() (tea.Model, tea.Cmd) {
	a.expVals = &expenseValues{}
	if a.activeTab == tabCategories && len(a.categories) > 0 {
		a.expVals.Category = a.categories[a.cats.cursor].Name
	}
	a.form = newExpenseForm("New entry", a.expVals, a.categoryNames())
	a.formKind = formAdd
	return a.startForm()
}

func (a App) openEditForm(e model.Expense) (tea.Model, tea.Cmd) {
	a.editing = e
	a.expVals = expenseValuesFrom(e, a.convention())
	a.form = newExpenseForm(fmt.Sprintf("Edit #%d", e.ID), a.expVals, a.categoryNames())
	a.formKind = formEdit
	return a.startForm()
}

func (a App) startForm() (tea.Model, tea.Cmd) {
	if a.width > 0 {
		a.form = a.form.WithWidth(a.formWidth()).WithHeight(a.height)
	}
	return a, a.form.Init()
}

func (a App) formWidth() int {
	return min(max(a.width-4, 40), 80)
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" && a.formKind != formSetup {
		return a.closeForm(), nil
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		return a.submitForm()
	case huh.StateAborted:
		if a.formKind == formSetup {
			a.needSetup = false
		}
		return a.closeForm(), nil
	}
	return a, cmd
}

func (a App) closeForm() App {
	a.form = nil
	a.formKind = formNone
	a.expVals = nil
	a.setupVals = nil
	return a
}

func (a App) submitForm() (tea.Model, tea.Cmd) {
	kind := a.formKind
	conv := a.convention()
	setupVals, expVals, orig := a.setupVals, a.expVals, a.editing
	a = a.closeForm()

	switch kind {
	case formSetup:
		a.needSetup = false
		cfg := a.cfg
		if err := setupVals.Apply(&cfg); err != nil {
			a.setStatus("", err)
			return a, nil
		}
		a.applyConfig(cfg)
		a.setStatus("Saved to "+config.Path(), config.Save(cfg))
		return a, nil

	case formAdd:
		in, err := expVals.newExpense(conv)
		if err != nil {
			a.setStatus("", err)
			return a, nil
		}
		return a, addExpenseCmd(a.store, in)

	case formEdit:
		u, err := expVals.update(orig, conv)
		if err != nil {
			a.setStatus("", err)
			return a, nil
		}
		return a, updateExpenseCmd(a.store, orig.ID, u)
	}
	return a, nil
}

// applyConfig switches the running dashboard to cfg.
func (a *App) applyConfig(cfg config.Config) {
	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)
	if cfg.Report.DefaultDays > 0 {
		a.days = cfg.Report.DefaultDays
	}
	a.recompute()
}

func (a App) categoryNames() []string {
	names := make([]string, len(a.categories))
	for i, c := range a.categories {
		names[i] = c.Name
	}
	return names
}

// ─── Commands ───────────────────────────────────────────────────

// loadDataCmd reads a full snapshot of the ledger off the UI goroutine.
func loadDataCmd(store Store) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		expenses, err := store.GetAllExpenses()
		if err != nil {
			return DataLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}
		totals, err := store.GetExpensesByCategory()
		if err != nil {
			return DataLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}
		cats, err := store.ListCategories()
		if err != nil {
			return DataLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}
		return DataLoadedMsg{
			Expenses:   expenses,
			Totals:     totals,
			Categories: cats,
			LoadTime:   time.Since(start),
		}
	}
}

func addExpenseCmd(store Store, in ledger.NewExpense) tea.Cmd {
	return func() tea.Msg {
		id, err := store.AddExpense(in)
		if err != nil {
			return MutationMsg{Err: err}
		}
		return MutationMsg{Status: fmt.Sprintf("Added #%d", id)}
	}
}

func updateExpenseCmd(store Store, id int64, u ledger.ExpenseUpdate) tea.Cmd {
	return func() tea.Msg {
		ok, err := store.UpdateExpense(id, u)
		switch {
		case errors.Is(err, ledger.ErrNothingToUpdate):
			return MutationMsg{Status: "No changes"}
		case err != nil:
			return MutationMsg{Err: err}
		case !ok:
			return MutationMsg{Err: fmt.Errorf("expense #%d no longer exists", id)}
		}
		return MutationMsg{Status: fmt.Sprintf("Updated #%d", id)}
	}
}

func deleteExpenseCmd(store Store, id int64) tea.Cmd {
	return func() tea.Msg {
		ok, err := store.DeleteExpense(id)
		if err != nil {
			return MutationMsg{Err: err}
		}
		if !ok {
			return MutationMsg{Status: fmt.Sprintf("#%d was already gone", id)}
		}
		return MutationMsg{Status: fmt.Sprintf("Deleted #%d", id)}
	}
}

func deleteCategoryCmd(store Store, name string) tea.Cmd {
	return func() tea.Msg {
		ok, err := store.DeleteCategory(name)
		switch {
		case errors.Is(err, ledger.ErrCategoryInUse):
			return MutationMsg{Err: fmt.Errorf("%s still has expenses", name)}
		case err != nil:
			return MutationMsg{Err: err}
		case !ok:
			return MutationMsg{Status: name + " was already gone"}
		}
		return MutationMsg{Status: "Deleted category " + name}
	}
}

// ─── Views ──────────────────────────────────────────────────────

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  fintrack needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4).
		Render(
			lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true).Render("◈ fintrack") + "\n\n" +
				a.spinner.View() +
				lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(" Opening ledger..."),
		)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewForm() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(a.form.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

type binding struct{ key, desc string }

func (a App) viewHelp() string {
	t := theme.Active
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []binding
	}{
		{"Navigation", []binding{
			{"1-4", "Jump to tab"},
			{"← → tab", "Previous / next tab"},
			{"j k", "Move in lists"},
			{"g G", "First / last row"},
			{"[ ]", "Halve / double the window"},
		}},
		{"Ledger", []binding{
			{"a", "Add an entry"},
			{"e Enter", "Edit the selected expense"},
			{"d", "Delete the selected row"},
			{"/", "Search expenses"},
			{"r", "Reload"},
		}},
		{"General", []binding{
			{"Esc", "Back / cancel"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true).Render("◈ Keyboard Shortcuts"))
	for _, s := range sections {
		b.WriteString("\n\n" + sectionStyle.Render(s.title))
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "\n  %s  %s", keyStyle.Render(fmt.Sprintf("%-8s", bind.key)), descStyle.Render(bind.desc))
		}
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3).
		Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w, cw, h := a.width, a.contentWidth(), a.height

	header := components.RenderTabBar(a.activeTab, w)

	right := fmt.Sprintf("%dd │ %s entries │ %s", a.days,
		cli.FormatNumber(int64(len(a.expenses))), cli.Truncate(a.store.Path(), 40))
	status := components.RenderStatusBar(w, components.Status{
		Hints:   "[?]help [a]dd [q]uit",
		Message: a.status,
		IsError: a.statusErr,
		Right:   right,
	})

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(status), minContentHeight)

	var content string
	switch {
	case a.loadErr != nil:
		content = components.ContentCard("Error", a.loadErr.Error(), cw)
	case a.activeTab == tabOverview:
		content = a.renderOverviewTab(cw)
	case a.activeTab == tabExpenses:
		content = a.renderExpensesTab(cw, contentH)
	case a.activeTab == tabCategories:
		content = a.renderCategoriesTab(cw, contentH)
	case a.activeTab == tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	out := lipgloss.JoinVertical(lipgloss.Left, header, content, status)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, out,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

// tabAtX returns the tab under column x, or -1. Hitboxes follow RenderTabBar:
// tabs are separated by one column.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1
	}
	return -1
}

// chartDateLabels labels a chronological YYYY-MM-DD series: month names at
// the start and at month boundaries, day numbers elsewhere.
func chartDateLabels(days []model.DailyTotal) []string {
	labels := make([]string, len(days))
	prevMonth := ""
	for i, d := range days {
		dt, err := time.Parse(ledger.DateLayout, d.Date)
		if err != nil {
			labels[i] = d.Date
			continue
		}
		month := d.Date[:7]
		if i == 0 || month != prevMonth {
			labels[i] = dt.Format("Jan")
		} else {
			labels[i] = fmt.Sprint(dt.Day())
		}
		prevMonth = month
	}
	return labels
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads every line to w with the background colour.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
