package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/report"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

const (
	settingsFieldTheme = iota
	settingsFieldDays
	settingsFieldRule
	settingsFieldIncome
	settingsFieldBudget
	settingsFieldCount
)

var settingsLabels = [settingsFieldCount]string{
	"Theme",
	"Default Days",
	"Sign Rule",
	"Income Categories",
	"Monthly Budget",
}

// settingsState tracks the settings tab.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func (a App) handleSettingsKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.settings.cursor = min(a.settings.cursor+1, settingsFieldCount-1)
	case "k", "up":
		a.settings.cursor = max(a.settings.cursor-1, 0)
	case "enter":
		m, cmd := a.settingsStartEdit()
		return m, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

// settingValue renders the current value of field as editable text.
func (a App) settingValue(field int) string {
	switch field {
	case settingsFieldTheme:
		return a.cfg.Appearance.Theme
	case settingsFieldDays:
		return strconv.Itoa(a.cfg.Report.DefaultDays)
	case settingsFieldRule:
		return a.cfg.Report.Rule
	case settingsFieldIncome:
		return strings.Join(a.cfg.Report.IncomeCategories, ", ")
	case settingsFieldBudget:
		if b, ok := a.cfg.MonthlyBudget(); ok {
			return strconv.FormatFloat(b, 'f', -1, 64)
		}
	}
	return ""
}

func (a App) settingsStartEdit() (App, tea.Cmd) {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	ti.SetValue(a.settingValue(a.settings.cursor))

	switch a.settings.cursor {
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
	case settingsFieldDays:
		ti.Placeholder = "30"
	case settingsFieldRule:
		ti.Placeholder = report.RuleNegative + " or " + report.RuleCategory
	case settingsFieldIncome:
		ti.Placeholder = "Salary, Income"
	case settingsFieldBudget:
		ti.Placeholder = "1500 (empty to clear)"
	}

	ti.Focus()
	a.settings.input = ti
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil
	return a, textinput.Blink
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.editing = false
		a.settings.saveErr = a.settingsSave(strings.TrimSpace(a.settings.input.Value()))
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave applies val to the selected field, validates the whole config
// and persists it. The running dashboard only changes when the save succeeds.
func (a *App) settingsSave(val string) error {
	cfg := a.cfg
	cfg.Report.IncomeCategories = append([]string(nil), a.cfg.Report.IncomeCategories...)

	switch a.settings.cursor {
	case settingsFieldTheme:
		if !theme.Valid(val) {
			return fmt.Errorf("unknown theme %q", val)
		}
		cfg.Appearance.Theme = val
	case settingsFieldDays:
		d, err := strconv.Atoi(val)
		if err != nil || d <= 0 {
			return fmt.Errorf("default days must be a positive number")
		}
		cfg.Report.DefaultDays = d
	case settingsFieldRule:
		cfg.Report.Rule = val
	case settingsFieldIncome:
		cfg.Report.IncomeCategories = splitList(val)
	case settingsFieldBudget:
		b, err := parseOptionalAmount(val)
		if err != nil {
			return err
		}
		cfg.Budget.Monthly = b
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	a.applyConfig(cfg)
	return nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selLabel := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	selValue := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	marker := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	var form strings.Builder
	for i := 0; i < settingsFieldCount; i++ {
		label := fmt.Sprintf("%-19s ", settingsLabels[i]+":")
		value := a.settingValue(i)
		if value == "" {
			value = "(not set)"
		}

		switch {
		case a.settings.editing && i == a.settings.cursor:
			form.WriteString(marker.Render("▸ ") + selLabel.Render(label) + a.settings.input.View())
		case i == a.settings.cursor:
			row := marker.Render("▸ ") + selLabel.Render(label) + selValue.Render(value)
			if pad := components.CardInnerWidth(cw) - lipgloss.Width(row); pad > 0 {
				row += selValue.Render(strings.Repeat(" ", pad))
			}
			form.WriteString(row)
		default:
			form.WriteString(valueStyle.Render("  ") + labelStyle.Render(label) + valueStyle.Render(value))
		}
		form.WriteString("\n")
	}

	switch {
	case a.settings.saveErr != nil:
		form.WriteString("\n" + lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).
			Render("Not saved: "+a.settings.saveErr.Error()))
	case a.settings.saved:
		form.WriteString("\n" + lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Render("Saved!"))
	}
	form.WriteString("\n" + labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	info := [][2]string{
		{"Ledger file", a.store.Path()},
		{"Config file", config.Path()},
		{"Entries", cli.FormatNumber(int64(len(a.expenses)))},
		{"Categories", cli.FormatNumber(int64(len(a.categories)))},
		{"Load time", fmt.Sprintf("%dms", a.loadTime.Milliseconds())},
	}
	var infoBody strings.Builder
	for i, kv := range info {
		if i > 0 {
			infoBody.WriteString("\n")
		}
		infoBody.WriteString(labelStyle.Render(fmt.Sprintf("%-13s", kv[0])) + valueStyle.Render(kv[1]))
	}

	return components.ContentCard("Settings", form.String(), cw) + "\n" +
		components.ContentCard("Ledger", infoBody.String(), cw)
}
