package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

// Status is what the bottom bar reports.
type Status struct {
	Hints   string // key hints, left aligned
	Message string // last action result, shown in the middle
	IsError bool
	Right   string // ledger facts, right aligned
}

// RenderStatusBar renders the bottom status bar across width.
func RenderStatusBar(width int, s Status) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.SurfaceHover)
	msgColor := t.Green
	if s.IsError {
		msgColor = t.Red
	}
	msgStyle := lipgloss.NewStyle().Foreground(msgColor).Background(t.SurfaceHover).Bold(true)

	left := " " + s.Hints
	right := s.Right + " "
	msg := ""
	if s.Message != "" {
		msg = "  " + s.Message
	}

	used := lipgloss.Width(left) + lipgloss.Width(msg) + lipgloss.Width(right)
	gap := max(width-used, 1)

	return base.Render(left) + msgStyle.Render(msg) + base.Render(strings.Repeat(" ", gap)+right)
}
