package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/letmecheque/letmecheque/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// unit clamps v to [0, 1], mapping NaN to 0.
func unit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return min(max(v, 0), 1)
}

// ProgressBar renders a block bar with a percentage, brightening as it fills.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := int(unit(pct) * float64(width))

	color := t.Cyan
	if pct >= 0.8 {
		color = t.AccentBright
	} else if pct >= 0.5 {
		color = t.Accent
	}

	return text(color).Render(strings.Repeat("█", filled)) +
		text(t.TextDim).Render(strings.Repeat("░", width-filled)) +
		text(color).Render(" ") +
		text(color).Bold(true).Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ColorForRatio grades a spend-to-balance ratio against the risk threshold
// from green through yellow and orange to red.
func ColorForRatio(ratio, threshold float64) string {
	t := theme.Active
	switch {
	case ratio > threshold*1.5:
		return string(t.Red)
	case ratio > threshold:
		return string(t.Orange)
	case ratio > threshold*0.7:
		return string(t.Yellow)
	default:
		return string(t.Green)
	}
}

func solidBar(color string, width int) progress.Model {
	bar := progress.New(
		progress.WithSolidFill(color),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(theme.Active.TextDim)
	return bar
}

// RiskGauge renders a labelled bar for a ratio. The threshold sits at the
// bar's midpoint.
func RiskGauge(label string, ratio, threshold float64, labelW, barWidth int) string {
	t := theme.Active
	fill := 0.0
	if threshold > 0 {
		fill = unit(ratio / (threshold * 2))
	}
	color := ColorForRatio(ratio, threshold)
	gap := text(t.TextDim).Render(" ")

	return text(t.TextMuted).Render(fmt.Sprintf("%-*s", labelW, label)) + gap +
		solidBar(color, barWidth).ViewAs(fill) + gap +
		text(lipgloss.Color(color)).Bold(true).Render(fmt.Sprintf("%5.1f%%", ratio)) +
		text(t.TextDim).Render(fmt.Sprintf("  (limit %.0f%%)", threshold))
}

// Slider renders value as a bar over [0, maxValue] followed by the amount.
func Slider(label string, value, maxValue float64, width int) string {
	t := theme.Active
	fill := 0.0
	if maxValue > 0 {
		fill = unit(value / maxValue)
	}
	barW := max(width-lipgloss.Width(label)-14, 8)
	gap := text(t.TextDim).Render(" ")

	return text(t.TextMuted).Render(label) + gap +
		solidBar(string(t.Accent), barW).ViewAs(fill) + gap +
		text(t.TextPrimary).Bold(true).Render(fmt.Sprintf("€%.0f", value))
}
