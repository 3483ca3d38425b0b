package tui

import (
	"fmt"
	"strings"

	"github.com/letmecheque/letmecheque/internal/cli"
	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/pipeline"
	"github.com/letmecheque/letmecheque/internal/tui/components"
	"github.com/letmecheque/letmecheque/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active

	if a.result == nil || a.result.SpendingErr != nil {
		var err error
		if a.result != nil {
			err = a.result.SpendingErr
		}
		msg := pipeline.Prompt(err)
		if a.sources.SpendingPath != "" {
			msg += "\n" + a.sources.SpendingPath
		}
		return promptCard("Spending", msg, cw)
	}
	if a.overErr != nil {
		return promptCard("Spending", pipeline.Prompt(a.overErr), cw)
	}

	ov := a.overview
	cat := a.selectedCategory()
	var b strings.Builder

	// Row 1: metric cards
	peakVal, peakDelta := "n/a", ""
	if ov.HasPeak {
		peakVal = cli.FormatEuro(ov.PeakValue)
		peakDelta = ov.PeakPeriod.String()
	}

	nextVal, nextDelta := "n/a", pipeline.Prompt(ov.ForecastErr)
	var nextColor lipgloss.Color
	if f := ov.Forecast; f != nil {
		nextVal = cli.FormatEuro(f.NextValue)
		nextDelta = f.NextPeriod.String() + " · " + cli.FormatSlope(f.Slope)
		if f.Slope > 0 {
			nextColor = t.Orange
		} else {
			nextColor = t.Green
		}
	}

	cards := []components.Metric{
		{Label: cat, Value: fmt.Sprintf("%d months", ov.Series.Defined()), Delta: fmt.Sprintf("%d of %d", a.catIdx+1, len(a.categories))},
		{Label: "Monthly Average", Value: cli.FormatEuro(ov.Series.Mean())},
		{Label: "Peak Month", Value: peakVal, Delta: peakDelta},
		{Label: "Next Month", Value: nextVal, Delta: nextDelta, Color: nextColor},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: monthly chart, simulated when an extra amount is set
	chartH := 10
	if a.isCompactLayout() {
		chartH = 7
	}
	series, color, title := ov.Series, t.Blue, "Monthly Spending: "+cat
	if sim := ov.Simulation; sim != nil && sim.Delta > 0 {
		series, color = sim.Series, t.Magenta
		title = fmt.Sprintf("Monthly Spending: %s (+%s/mo)", cat, cli.FormatEuro(sim.Delta))
	}
	b.WriteString(components.ContentCard(title,
		components.SeriesChart(series, color, components.CardInnerWidth(cw), chartH), cw))
	b.WriteString("\n")

	// Row 3: category picker + forecast / simulation detail
	var left, right int
	if a.isCompactLayout() {
		left, right = cw, cw
	} else {
		halves := components.LayoutRow(cw, 2)
		left, right = halves[0], halves[1]
	}

	picker := components.ContentCard("Categories", a.renderCategoryList(components.CardInnerWidth(left)), left)
	detail := components.ContentCard("Forecast & Simulation", a.renderForecastDetail(components.CardInnerWidth(right)), right)

	if a.isCompactLayout() {
		b.WriteString(picker + "\n" + detail)
	} else {
		b.WriteString(components.CardRow([]string{picker, detail}))
	}
	return b.String()
}

func (a App) renderCategoryList(innerW int) string {
	t := theme.Active
	ds := a.spending()

	nameStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	nameW := innerW - 16
	if nameW < 8 {
		nameW = 8
	}

	var b strings.Builder
	for i, cat := range a.categories {
		s, err := pipeline.Aggregate(ds, cat)
		if err != nil {
			continue
		}
		vals := make([]float64, 0, len(model.Periods))
		for _, p := range model.Periods {
			v, _ := s.At(p)
			vals = append(vals, v)
		}
		label := fmt.Sprintf(" %-*s", nameW, truncStr(cat, nameW))
		if i == a.catIdx {
			b.WriteString(selStyle.Render(label))
		} else {
			b.WriteString(nameStyle.Render(label))
		}
		b.WriteString(spaceStyle.Render(" "))
		b.WriteString(components.Sparkline(vals, t.Blue))
		if i < len(a.categories)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a App) renderForecastDetail(innerW int) string {
	t := theme.Active
	ov := a.overview

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Italic(true)

	row := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-16s", label)) + valueStyle.Render(value)
	}

	var lines []string
	if f := ov.Forecast; f != nil {
		lines = append(lines,
			row("Trend", cli.FormatSlope(f.Slope)),
			row("Fit (R²)", fmt.Sprintf("%.2f", f.RSquared)),
			row("Projected "+f.NextPeriod.Short(), cli.FormatEuro(f.NextValue)),
		)
	} else {
		lines = append(lines, hintStyle.Render(pipeline.Prompt(ov.ForecastErr)))
	}
	lines = append(lines, "")

	lines = append(lines, components.Slider("Extra/month", a.delta, a.cfg.Simulation.MaxExtra, innerW))
	if sim := ov.Simulation; sim != nil {
		peak := sim.PeakPeriod.String() + " " + cli.FormatEuro(sim.PeakValue)
		if ov.HasPeak && sim.Delta > 0 {
			peak += " (" + cli.FormatDelta(sim.PeakValue, ov.PeakValue) + ")"
		}
		lines = append(lines, row("Simulated peak", peak))
	}
	lines = append(lines, hintStyle.Render("j/k category  +/- extra  0 reset"))
	return strings.Join(lines, "\n")
}
