package cli

import (
	"fmt"
	"strings"

	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// styles derives the CLI text styles from the active theme so --theme
// applies to plain command output as well as the dashboard.
type styles struct {
	title, header, value, muted, dim lipgloss.Style
	good, warn, series               lipgloss.Style
}

func current() styles {
	t := theme.Active
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	return styles{
		title:  fg(t.TextPrimary).Bold(true).Align(lipgloss.Center),
		header: fg(t.Accent).Bold(true),
		value:  fg(t.TextPrimary),
		muted:  fg(t.TextMuted),
		dim:    fg(t.TextDim),
		good:   fg(t.Green),
		warn:   fg(t.Orange),
		series: fg(t.Blue),
	}
}

// Table represents a bordered text table for CLI output. The first column
// is left-aligned and the rest right-aligned. A row holding the single
// cell "---" draws a separator.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	s := current()
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Active.Border).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)
	return box.Render(s.title.Render(title))
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == "---"
}

// columnWidths measures display width, so multi-byte cells such as amounts
// in euro or sparklines line up.
func (t Table) columnWidths() []int {
	n := len(t.Headers)
	for _, row := range t.Rows {
		if !isSeparator(row) && len(row) > n {
			n = len(row)
		}
	}
	widths := make([]int, n)
	measure := func(cells []string) {
		for i, c := range cells {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		if !isSeparator(row) {
			measure(row)
		}
	}
	return widths
}

func pad(cell string, width int, left bool) string {
	fill := strings.Repeat(" ", max(width-lipgloss.Width(cell), 0))
	if left {
		return " " + cell + fill + " "
	}
	return " " + fill + cell + " "
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	widths := t.columnWidths()
	if len(widths) == 0 {
		return ""
	}
	s := current()

	rule := func(l, m, r string) string {
		segs := make([]string, len(widths))
		for i, w := range widths {
			segs[i] = strings.Repeat("─", w+2)
		}
		return s.dim.Render(l+strings.Join(segs, m)+r) + "\n"
	}
	line := func(cells []string, style lipgloss.Style, alignAll bool) string {
		var b strings.Builder
		bar := s.dim.Render("│")
		b.WriteString(bar)
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(style.Render(pad(cell, w, alignAll || i == 0)))
			b.WriteString(bar)
		}
		return b.String() + "\n"
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + s.header.Render(t.Title) + "\n")
	}
	b.WriteString(rule("╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(line(t.Headers, s.header, true))
		b.WriteString(rule("├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		if isSeparator(row) {
			b.WriteString(rule("├", "┼", "┤"))
			continue
		}
		b.WriteString(line(row, s.value, false))
	}
	b.WriteString(rule("╰", "┴", "╯"))
	return b.String()
}

// RenderGauge renders a ratio bar scaled so the threshold sits at the
// midpoint, colored by whether the ratio exceeds it.
func RenderGauge(ratio, threshold float64, width int) string {
	if width <= 0 || threshold <= 0 {
		return ""
	}
	s := current()
	filled := int(min(max(ratio/(threshold*2), 0), 1) * float64(width))

	fill := s.good
	if ratio > threshold {
		fill = s.warn
	}
	bar := fill.Render(strings.Repeat("█", filled)) + s.dim.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("[%s] %s of balance", bar, FormatRatio(ratio))
}

// RenderRiskLevel renders a risk classification label.
func RenderRiskLevel(level model.RiskLevel) string {
	s := current()
	switch level {
	case model.RiskSafe:
		return s.good.Render("SAFE")
	case model.RiskAtRisk:
		return s.warn.Bold(true).Render("AT RISK")
	default:
		return s.muted.Render("n/a")
	}
}

// RenderPrompt renders a hint shown in place of a missing result.
func RenderPrompt(msg string) string {
	return "  " + current().muted.Render(msg)
}

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

func sparkRune(v, peak float64) rune {
	idx := int(v / peak * float64(len(sparkBlocks)-1))
	return sparkBlocks[min(max(idx, 0), len(sparkBlocks)-1)]
}

// RenderSeriesSparkline draws one cell per calendar month; months without
// data are left blank so gaps stay visible.
func RenderSeriesSparkline(s model.AggregatedSeries) string {
	_, peak, ok := s.Peak()
	if !ok || peak <= 0 {
		peak = 1
	}
	runes := make([]rune, 0, model.PeriodCount)
	for _, pt := range s.Points {
		if !pt.Defined {
			runes = append(runes, '·')
			continue
		}
		runes = append(runes, sparkRune(pt.Value, peak))
	}
	return current().series.Render(string(runes))
}

// RenderHorizontalBar renders a labelled horizontal bar chart entry.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return "  " + label
	}
	n := int(min(max(value/maxValue, 0), 1) * float64(maxWidth))
	return fmt.Sprintf("  %s %s", label, current().good.Render(strings.Repeat("█", n)))
}
