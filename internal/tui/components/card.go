// Package components provides reusable widgets for the letmecheque dashboard.
package components

import (
	"strings"

	"github.com/letmecheque/letmecheque/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const minCardWidth = 10

// LayoutRow splits totalWidth into n widths summing to totalWidth; the
// leftmost widths take the remainder.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	widths := make([]int, n)
	for i := range widths {
		widths[i] = totalWidth / n
		if i < totalWidth%n {
			widths[i]++
		}
	}
	return widths
}

// frame is the bordered surface shared by every card. outerWidth includes
// the border.
func frame(outerWidth int) lipgloss.Style {
	t := theme.Active
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(max(outerWidth-2, minCardWidth)).
		Padding(0, 1)
}

func text(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Background(theme.Active.Surface)
}

// Metric is one entry of a MetricCardRow.
type Metric struct {
	Label, Value, Delta string
	// Color overrides the value color when set.
	Color lipgloss.Color
}

// MetricCard renders a label over a bold value, with an optional dim note.
func MetricCard(m Metric, outerWidth int) string {
	t := theme.Active
	valueColor := t.TextPrimary
	if m.Color != "" {
		valueColor = m.Color
	}

	lines := []string{text(t.TextMuted).Render(m.Label), text(valueColor).Bold(true).Render(m.Value)}
	if m.Delta != "" {
		lines = append(lines, text(t.TextDim).Render(m.Delta))
	}
	return frame(outerWidth).Render(strings.Join(lines, "\n"))
}

// MetricCardRow lays out metric cards across exactly totalWidth columns.
func MetricCardRow(cards []Metric, totalWidth int) string {
	widths := LayoutRow(totalWidth, len(cards))
	rendered := make([]string, len(cards))
	for i, c := range cards {
		rendered[i] = MetricCard(c, widths[i])
	}
	return CardRow(rendered)
}

// ContentCard renders body in a card, under title when one is given.
func ContentCard(title, body string, outerWidth int) string {
	if title != "" {
		body = text(theme.Active.TextMuted).Bold(true).Render(title) + "\n" + body
	}
	return frame(outerWidth).Render(body)
}

// CardRow joins rendered cards side by side, skipping empty ones. Shorter
// cards are extended with background-colored blank lines so the row has no
// unstyled cells.
func CardRow(cards []string) string {
	present := make([]string, 0, len(cards))
	tallest := 0
	for _, c := range cards {
		if c == "" {
			continue
		}
		present = append(present, c)
		tallest = max(tallest, lipgloss.Height(c))
	}
	switch len(present) {
	case 0:
		return ""
	case 1:
		return present[0]
	}

	fill := lipgloss.NewStyle().Background(theme.Active.Background)
	for i, c := range present {
		if missing := tallest - lipgloss.Height(c); missing > 0 {
			blank := fill.Render(strings.Repeat(" ", lipgloss.Width(c)))
			present[i] = c + strings.Repeat("\n"+blank, missing)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, present...)
}

// CardInnerWidth is the text width inside a card of outerWidth, after the
// border and padding.
func CardInnerWidth(outerWidth int) int {
	return max(outerWidth-4, minCardWidth)
}
