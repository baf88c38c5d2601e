package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestByNameFallsBack(t *testing.T) {
	assert.Equal(t, "tokyo-night", ByName("tokyo-night").Name)
	assert.Equal(t, FlexokiDark.Name, ByName("no-such-theme").Name)
}

func TestSetActive(t *testing.T) {
	defer SetActive(FlexokiDark.Name)

	SetActive("terminal")
	assert.Equal(t, "terminal", Active.Name)
	assert.Equal(t, Terminal.Green, Active.Signed(true))
	assert.Equal(t, Terminal.Red, Active.Signed(false))
}

func TestNamesMatchValid(t *testing.T) {
	names := Names()
	assert.Len(t, names, len(All))
	for _, n := range names {
		assert.True(t, Valid(n), n)
	}
	assert.False(t, Valid(""))
}

func TestThemesFillEveryRole(t *testing.T) {
	for _, th := range All {
		assert.NotEmpty(t, th.Background, th.Name)
		assert.NotEmpty(t, th.Cyan, th.Name)
		assert.Equal(t, th.Accent, th.BorderAccent, th.Name)
	}
	assert.Equal(t, lipgloss.Color("#D14D41"), FlexokiDark.Red)
	assert.Equal(t, lipgloss.Color("15"), Terminal.TextPrimary)
}

func TestSplitPanicsOnWrongCount(t *testing.T) {
	assert.Panics(t, func() { split("#000 #111", 3) })
}
