package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorText).Align(lipgloss.Center)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	valueStyle   = lipgloss.NewStyle().Foreground(ColorText)
	mutedStyle   = lipgloss.NewStyle().Foreground(ColorTextMuted)
	dimStyle     = lipgloss.NewStyle().Foreground(ColorTextDim)
	incomeStyle  = lipgloss.NewStyle().Foreground(ColorGreen)
	expenseStyle = lipgloss.NewStyle().Foreground(ColorRed)
	warnStyle    = lipgloss.NewStyle().Foreground(ColorOrange)
)

// SeparatorRow marks a horizontal rule inside Table.Rows.
var SeparatorRow = []string{"---"}

// Table represents a bordered text table for CLI output.
// Column 0 is left-aligned, the rest right-aligned unless LeftAlign says
// otherwise.
type Table struct {
	Title     string
	Headers   []string
	Rows      [][]string
	Widths    []int  // optional column widths, auto-calculated if nil
	LeftAlign []bool // optional per-column alignment override
	MaxWidth  int    // cells wider than this are truncated; 0 means no limit
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(titleStyle.Render(title))
}

func (t Table) columns() int {
	if len(t.Headers) > 0 {
		return len(t.Headers)
	}
	for _, row := range t.Rows {
		if !isSeparator(row) {
			return len(row)
		}
	}
	return 0
}

func (t Table) left(col int) bool {
	if col < len(t.LeftAlign) {
		return t.LeftAlign[col]
	}
	return col == 0
}

func (t Table) cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	if t.MaxWidth > 0 {
		return Truncate(row[col], t.MaxWidth)
	}
	return row[col]
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == SeparatorRow[0]
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	numCols := t.columns()
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			if isSeparator(row) {
				continue
			}
			for i := 0; i < numCols; i++ {
				widths[i] = max(widths[i], lipgloss.Width(t.cell(row, i)))
			}
		}
	}

	rule := func(l, mid, r string) string {
		parts := make([]string, numCols)
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return dimStyle.Render(l+strings.Join(parts, mid)+r) + "\n"
	}
	line := func(cells []string, style lipgloss.Style) string {
		var b strings.Builder
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			c := ""
			if i < len(cells) {
				c = cells[i]
			}
			pad := strings.Repeat(" ", max(0, widths[i]-lipgloss.Width(c)))
			if t.left(i) {
				b.WriteString(style.Render(" " + c + pad + " "))
			} else {
				b.WriteString(style.Render(" " + pad + c + " "))
			}
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
		return b.String()
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}
	b.WriteString(rule("╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(line(t.Headers, headerStyle))
		b.WriteString(rule("├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		if isSeparator(row) {
			b.WriteString(rule("├", "┼", "┤"))
			continue
		}
		cells := make([]string, numCols)
		for i := range cells {
			cells[i] = t.cell(row, i)
		}
		b.WriteString(line(cells, valueStyle))
	}
	b.WriteString(rule("╰", "┴", "╯"))
	return b.String()
}

// RenderKV renders aligned "label  value" lines.
func RenderKV(pairs [][2]string) string {
	labelW := 0
	for _, p := range pairs {
		labelW = max(labelW, lipgloss.Width(p[0]))
	}
	var b strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&b, "  %s  %s\n", mutedStyle.Render(fmt.Sprintf("%-*s", labelW, p[0])), valueStyle.Render(p[1]))
	}
	return b.String()
}

// RenderSigned colours an amount green when it is income and red otherwise.
func RenderSigned(text string, income bool) string {
	if income {
		return incomeStyle.Render(text)
	}
	return expenseStyle.Render(text)
}

// RenderWarning renders a highlighted notice line.
func RenderWarning(msg string) string {
	return warnStyle.Render("  ! " + msg)
}

// RenderSparkline draws values as unicode blocks scaled between their min and max.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo > 0 {
		lo = 0
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(blocks)-1))
		idx = max(0, min(idx, len(blocks)-1))
		b.WriteRune(blocks[idx])
	}
	return b.String()
}

// RenderHorizontalBar renders one labelled bar scaled against maxValue.
func RenderHorizontalBar(label string, labelWidth int, value, maxValue float64, maxWidth int) string {
	barLen := 0
	if maxValue > 0 && value > 0 {
		barLen = int(value / maxValue * float64(maxWidth))
	}
	barLen = min(barLen, maxWidth)
	return fmt.Sprintf("  %s %s %s",
		mutedStyle.Render(fmt.Sprintf("%-*s", labelWidth, Truncate(label, labelWidth))),
		lipgloss.NewStyle().Foreground(ColorBlue).Render(strings.Repeat("█", barLen)),
		valueStyle.Render(FormatAmount(value)),
	)
}
