package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders non-negative values as a one-line block chart.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(math.Max(v, 0) / peak * float64(len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[min(idx, len(sparkBlocks)-1)])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// BarChart renders a column chart of non-negative values with a Y axis and
// optional X labels. Series too dense for the width are down-sampled.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	step := tickStep(peak)
	for math.Ceil(peak/step) > float64(max(height/2, 2)) {
		step *= 2
	}
	intervals := max(int(math.Ceil(peak/step)), 1)
	ceiling := float64(intervals) * step
	rowsPerTick := max(height/intervals, 2)
	chartH := rowsPerTick * intervals

	yLabelW := max(len(cli.FormatCompact(ceiling))+1, 4)
	chartW := max(width-yLabelW-1, 5)

	values, labels = sampleSeries(values, labels, chartW)
	n := len(values)
	gap := 1
	if n == 1 {
		gap = 0
	}
	barW := min(max((chartW-(n-1)*gap)/n, 1), 6)
	axisLen := n*barW + (n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	fill := lipgloss.NewStyle().Background(t.Surface)
	eighths := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		top := ceiling * float64(row) / float64(chartH)
		bottom := ceiling * float64(row-1) / float64(chartH)

		barColor := t.Accent
		if float64(row)/float64(chartH) > 0.5 {
			barColor = color
		}
		barStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)

		label := ""
		if row%rowsPerTick == 0 {
			label = cli.FormatCompact(step * float64(row/rowsPerTick))
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, label)))

		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(fill.Render(strings.Repeat(" ", gap)))
			}
			switch {
			case v >= top:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := int((v - bottom) / (top - bottom) * 8)
				idx = min(max(idx, 1), 8)
				b.WriteString(barStyle.Render(strings.Repeat(string(eighths[idx]), barW)))
			default:
				b.WriteString(fill.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└%s", yLabelW, "0", strings.Repeat("─", axisLen))))
	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(fill.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(axisLabels(labels, barW+gap, axisLen)))
	}
	return b.String()
}

// sampleSeries keeps at most one column per two cells of width.
func sampleSeries(values []float64, labels []string, width int) ([]float64, []string) {
	n := len(values)
	limit := max((width+1)/2, 2)
	if n <= limit {
		return values, labels
	}
	sampled := make([]float64, limit)
	var sampledLabels []string
	if len(labels) == n {
		sampledLabels = make([]string, limit)
	}
	for i := range sampled {
		src := i * (n - 1) / (limit - 1)
		sampled[i] = values[src]
		if sampledLabels != nil {
			sampledLabels[i] = labels[src]
		}
	}
	return sampled, sampledLabels
}

// axisLabels places labels under their columns, skipping any that would overlap.
func axisLabels(labels []string, pitch, axisLen int) string {
	buf := []rune(strings.Repeat(" ", axisLen))
	lastEnd := -1
	for i, lbl := range labels {
		pos := i * pitch
		r := []rune(lbl)
		if pos <= lastEnd || pos+len(r) > axisLen {
			continue
		}
		copy(buf[pos:], r)
		lastEnd = pos + len(r)
	}
	return strings.TrimRight(string(buf), " ")
}

// tickStep picks a round interval giving roughly five ticks.
func tickStep(peak float64) float64 {
	if peak <= 0 {
		return 1
	}
	rough := peak / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// ShareBar renders "label ████ 42.0%  1,234.00" scaled against the largest share.
func ShareBar(label string, labelW int, share, maxShare, total float64, barW int, color lipgloss.Color) string {
	t := theme.Active
	n := 0
	if maxShare > 0 {
		n = int(share / maxShare * float64(barW))
	}
	n = min(max(n, 0), barW)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pad := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s ", labelW, cli.Truncate(label, labelW))) +
		barStyle.Render(strings.Repeat("█", n)) +
		pad.Render(strings.Repeat(" ", barW-n+1)) +
		dimStyle.Render(fmt.Sprintf("%6s  %s", cli.FormatPercent(share), cli.FormatAmount(total)))
}

// FlowBars renders paired income and expense bars for one period label.
func FlowBars(label string, labelW int, income, expenses, peak float64, barW int) string {
	t := theme.Active
	scale := func(v float64) int {
		if peak <= 0 {
			return 0
		}
		return min(max(int(v/peak*float64(barW)), 0), barW)
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pad := lipgloss.NewStyle().Background(t.Surface)
	line := func(v float64, color lipgloss.Color) string {
		n := scale(v)
		return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(strings.Repeat("█", n)) +
			pad.Render(strings.Repeat(" ", barW-n+1)) +
			lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(cli.FormatAmount(v))
	}

	return labelStyle.Render(fmt.Sprintf("%-*s ", labelW, label)) + line(income, t.Income()) + "\n" +
		pad.Render(strings.Repeat(" ", labelW+1)) + line(expenses, t.Expense())
}
