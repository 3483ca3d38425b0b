// Package theme defines color themes for the letmecheque dashboard.
package theme

import (
	"github.com/letmecheque/letmecheque/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color roles used throughout the TUI and CLI output.
type Theme struct {
	Name string

	Background   lipgloss.Color // app background
	Surface      lipgloss.Color // cards and panels
	SurfaceHover lipgloss.Color // active tab, selected row
	Border       lipgloss.Color
	BorderAccent lipgloss.Color // focused cards and overlays

	TextDim     lipgloss.Color // hints, axes
	TextMuted   lipgloss.Color // labels
	TextPrimary lipgloss.Color

	Accent       lipgloss.Color
	AccentBright lipgloss.Color // peaks and titles

	Green   lipgloss.Color // safe, low-spending zone
	Orange  lipgloss.Color // high-spending zone
	Red     lipgloss.Color // at risk
	Blue    lipgloss.Color // series
	Yellow  lipgloss.Color
	Magenta lipgloss.Color
	Cyan    lipgloss.Color
}

// palette lists a theme's colors in role order: the five surfaces, the
// three text shades, the two accents, then the seven signal colors.
type palette struct {
	surfaces [5]string
	text     [3]string
	accents  [2]string
	signals  [7]string
}

func (p palette) theme(name string) Theme {
	c := func(s string) lipgloss.Color { return lipgloss.Color(s) }
	return Theme{
		Name:         name,
		Background:   c(p.surfaces[0]),
		Surface:      c(p.surfaces[1]),
		SurfaceHover: c(p.surfaces[2]),
		Border:       c(p.surfaces[3]),
		BorderAccent: c(p.surfaces[4]),
		TextDim:      c(p.text[0]),
		TextMuted:    c(p.text[1]),
		TextPrimary:  c(p.text[2]),
		Accent:       c(p.accents[0]),
		AccentBright: c(p.accents[1]),
		Green:        c(p.signals[0]),
		Orange:       c(p.signals[1]),
		Red:          c(p.signals[2]),
		Blue:         c(p.signals[3]),
		Yellow:       c(p.signals[4]),
		Magenta:      c(p.signals[5]),
		Cyan:         c(p.signals[6]),
	}
}

var (
	// FlexokiDark is the default: a warm, paper-inspired dark theme.
	FlexokiDark = palette{
		surfaces: [5]string{"#100F0F", "#1C1B1A", "#282726", "#403E3C", "#3AA99F"},
		text:     [3]string{"#575653", "#878580", "#FFFCF0"},
		accents:  [2]string{"#3AA99F", "#5BC8BE"},
		signals:  [7]string{"#879A39", "#DA702C", "#D14D41", "#4385BE", "#D0A215", "#CE5D97", "#24837B"},
	}.theme("flexoki-dark")

	CatppuccinMocha = palette{
		surfaces: [5]string{"#1E1E2E", "#313244", "#45475A", "#585B70", "#89B4FA"},
		text:     [3]string{"#6C7086", "#A6ADC8", "#CDD6F4"},
		accents:  [2]string{"#89B4FA", "#B4D0FB"},
		signals:  [7]string{"#A6E3A1", "#FAB387", "#F38BA8", "#89B4FA", "#F9E2AF", "#F5C2E7", "#94E2D5"},
	}.theme("catppuccin-mocha")

	TokyoNight = palette{
		surfaces: [5]string{"#1A1B26", "#24283B", "#343A52", "#565F89", "#7AA2F7"},
		text:     [3]string{"#565F89", "#A9B1D6", "#C0CAF5"},
		accents:  [2]string{"#7AA2F7", "#A9C1FF"},
		signals:  [7]string{"#9ECE6A", "#FF9E64", "#F7768E", "#7AA2F7", "#E0AF68", "#BB9AF7", "#7DCFFF"},
	}.theme("tokyo-night")

	// Terminal sticks to the ANSI 16 colors.
	Terminal = palette{
		surfaces: [5]string{"0", "0", "8", "8", "6"},
		text:     [3]string{"8", "7", "15"},
		accents:  [2]string{"6", "14"},
		signals:  [7]string{"2", "3", "1", "4", "3", "5", "6"},
	}.theme("terminal")
)

// Active is the currently selected theme.
var Active = FlexokiDark

// All lists the available themes in display order.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// ByName returns the named theme, or FlexokiDark when the name is unknown.
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

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Risk returns the color for a risk classification.
func (t Theme) Risk(level model.RiskLevel) lipgloss.Color {
	switch level {
	case model.RiskSafe:
		return t.Green
	case model.RiskAtRisk:
		return t.Red
	default:
		return t.TextMuted
	}
}

// Zone returns the color for a location alert.
func (t Theme) Zone(highSpend bool) lipgloss.Color {
	if highSpend {
		return t.Orange
	}
	return t.Green
}
