package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

func init() {
	// Force TrueColor so styles emit ANSI codes under test.
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, tc := range []struct{ total, n int }{{80, 3}, {100, 4}, {7, 2}, {5, 5}} {
		widths := LayoutRow(tc.total, tc.n)
		require.Len(t, widths, tc.n)
		sum := 0
		for _, w := range widths {
			sum += w
		}
		assert.Equal(t, tc.total, sum)
	}
	assert.Nil(t, LayoutRow(80, 0))
}

func TestCardRowPadsShorterCards(t *testing.T) {
	theme.SetActive("flexoki-dark")

	short := ContentCard("Short", "Content", 22)
	tall := ContentCard("Tall", "1\n2\n3\n4\n5", 22)
	shortLines := lipgloss.Height(short)
	require.Less(t, shortLines, lipgloss.Height(tall))

	lines := strings.Split(CardRow([]string{tall, short}), "\n")
	assert.Len(t, lines, lipgloss.Height(tall))
	for i := shortLines; i < len(lines); i++ {
		assert.Contains(t, lines[i], "\x1b[", "line %d has no styling", i)
	}
}

func TestCardRowSkipsEmpty(t *testing.T) {
	card := ContentCard("Only", "x", 20)
	assert.Equal(t, lipgloss.Width(card), lipgloss.Width(CardRow([]string{"", card, ""})))
	assert.Empty(t, CardRow(nil))
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Spent", Value: "1,200.00", Tone: -1},
		{Label: "Income", Value: "3,000.00", Tone: 1},
		{Label: "Net", Value: "1,800.00"},
	}, 90)
	assert.Equal(t, 90, lipgloss.Width(row))
	assert.Contains(t, row, "Income")
}

func TestBarChartFitsWidth(t *testing.T) {
	values := make([]float64, 90)
	labels := make([]string, 90)
	for i := range values {
		values[i] = float64(i % 17)
		labels[i] = "d"
	}
	chart := BarChart(values, labels, theme.Active.Blue, 60, 8)
	for _, line := range strings.Split(chart, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 60)
	}
	assert.Contains(t, chart, "└")
}

func TestBarChartFallsBackToSparkline(t *testing.T) {
	chart := BarChart([]float64{1, 2, 3}, nil, theme.Active.Blue, 10, 8)
	assert.Equal(t, 3, lipgloss.Width(chart))
	assert.Empty(t, BarChart(nil, nil, theme.Active.Blue, 60, 8))
}

func TestTabIdxByKey(t *testing.T) {
	assert.Equal(t, 0, TabIdxByKey("1"))
	assert.Equal(t, len(Tabs)-1, TabIdxByKey(Tabs[len(Tabs)-1].Key))
	assert.Equal(t, -1, TabIdxByKey("z"))
}

func TestBudgetBarShowsOverspend(t *testing.T) {
	bar := BudgetBar("Budget", 1.25, 8, 20)
	assert.Contains(t, bar, "125%")
	assert.Equal(t, theme.Active.Red, ColorForPct(1.25))
	assert.Equal(t, theme.Active.Green, ColorForPct(0.1))
}

func TestProgressBarClampsShare(t *testing.T) {
	half := ProgressBar(0.5, 10)
	assert.Contains(t, half, "50%")
	assert.Equal(t, 14, lipgloss.Width(half))

	assert.Contains(t, ProgressBar(3, 10), "100%")
	assert.Contains(t, ProgressBar(-1, 10), " 0%")
}
