// Package theme defines the colour themes of the fintrack dashboard.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Highlighted surface (active tab, selected row)
	SurfaceBright lipgloss.Color // Extra bright surface for emphasis
	Border        lipgloss.Color // Subtle borders
	BorderBright  lipgloss.Color // Prominent borders (cards, focus)
	BorderAccent  lipgloss.Color // Accent-colored borders for focus states
	TextDim       lipgloss.Color // Lowest contrast text (hints, disabled)
	TextMuted     lipgloss.Color // Secondary text (labels, metadata)
	TextPrimary   lipgloss.Color // Primary content text
	Accent        lipgloss.Color // Primary accent (links, active states)
	AccentBright  lipgloss.Color // Brighter accent for emphasis
	AccentDim     lipgloss.Color // Dimmed accent for backgrounds
	Green         lipgloss.Color
	GreenBright   lipgloss.Color
	Orange        lipgloss.Color
	Red           lipgloss.Color
	Blue          lipgloss.Color
	BlueBright    lipgloss.Color
	Yellow        lipgloss.Color
	Magenta       lipgloss.Color
	Cyan          lipgloss.Color
}

// Income is the colour used for amounts read as income.
func (t Theme) Income() lipgloss.Color { return t.Green }

// Expense is the colour used for amounts read as spending.
func (t Theme) Expense() lipgloss.Color { return t.Red }

// Signed picks the income or expense colour.
func (t Theme) Signed(income bool) lipgloss.Color {
	if income {
		return t.Income()
	}
	return t.Expense()
}

// Active is the currently selected theme.
var Active = FlexokiDark

// ramps lists a theme's colours as space-separated groups, darkest or
// least prominent first.
type ramps struct {
	surface string // background, surface, hover, bright
	border  string // border, bright border
	text    string // dim, muted, primary
	accent  string // accent, bright, dim
	signal  string // green, bright green, red, orange, yellow
	hue     string // blue, bright blue, magenta, cyan
}

func split(group string, n int) []lipgloss.Color {
	f := strings.Fields(group)
	if len(f) != n {
		panic(fmt.Sprintf("theme: want %d colours in %q, got %d", n, group, len(f)))
	}
	out := make([]lipgloss.Color, n)
	for i, c := range f {
		out[i] = lipgloss.Color(c)
	}
	return out
}

func newTheme(name string, r ramps) Theme {
	s, b, t := split(r.surface, 4), split(r.border, 2), split(r.text, 3)
	a, sig, h := split(r.accent, 3), split(r.signal, 5), split(r.hue, 4)
	return Theme{
		Name:          name,
		Background:    s[0],
		Surface:       s[1],
		SurfaceHover:  s[2],
		SurfaceBright: s[3],
		Border:        b[0],
		BorderBright:  b[1],
		BorderAccent:  a[0],
		TextDim:       t[0],
		TextMuted:     t[1],
		TextPrimary:   t[2],
		Accent:        a[0],
		AccentBright:  a[1],
		AccentDim:     a[2],
		Green:         sig[0],
		GreenBright:   sig[1],
		Red:           sig[2],
		Orange:        sig[3],
		Yellow:        sig[4],
		Blue:          h[0],
		BlueBright:    h[1],
		Magenta:       h[2],
		Cyan:          h[3],
	}
}

// FlexokiDark is the default: warm paper tones on near-black.
var FlexokiDark = newTheme("flexoki-dark", ramps{
	surface: "#100F0F #1C1B1A #282726 #343331",
	border:  "#403E3C #575653",
	text:    "#575653 #878580 #FFFCF0",
	accent:  "#3AA99F #5BC8BE #1A3533",
	signal:  "#879A39 #A3B859 #D14D41 #DA702C #D0A215",
	hue:     "#4385BE #6BA3D6 #CE5D97 #24837B",
})

// TokyoNight is a cool blue and purple theme.
var TokyoNight = newTheme("tokyo-night", ramps{
	surface: "#1A1B26 #24283B #343A52 #414868",
	border:  "#565F89 #7982A9",
	text:    "#565F89 #A9B1D6 #C0CAF5",
	accent:  "#7AA2F7 #A9C1FF #252B3F",
	signal:  "#9ECE6A #B9E87A #F7768E #FF9E64 #E0AF68",
	hue:     "#7AA2F7 #A9C1FF #BB9AF7 #7DCFFF",
})

// Terminal sticks to the 16 ANSI colours.
var Terminal = newTheme("terminal", ramps{
	surface: "0 0 8 8",
	border:  "8 7",
	text:    "8 7 15",
	accent:  "6 14 0",
	signal:  "2 10 1 3 3",
	hue:     "4 12 5 6",
})

// All lists the selectable themes in display order.
var All = []Theme{FlexokiDark, TokyoNight, Terminal}

// Names lists the selectable theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Valid reports whether name is a known theme.
func Valid(name string) bool {
	for _, t := range All {
		if t.Name == name {
			return true
		}
	}
	return false
}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
