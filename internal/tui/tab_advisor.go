package tui

import (
	"fmt"
	"strings"

	"github.com/letmecheque/letmecheque/internal/cli"
	"github.com/letmecheque/letmecheque/internal/daemon"
	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/pipeline"
	"github.com/letmecheque/letmecheque/internal/tui/components"
	"github.com/letmecheque/letmecheque/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// maxRankedPlatforms caps the platform list on the advisor tab.
const maxRankedPlatforms = 10

func (a App) renderAdvisorTab(cw int) string {
	t := theme.Active
	var b strings.Builder

	// Row 1: weekly spend control and risk gauge
	innerW := components.CardInnerWidth(cw)
	hint := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Italic(true)

	var risk strings.Builder
	risk.WriteString(components.Slider("Weekly spend", a.weekly, a.cfg.Risk.WeeklyMax, innerW))
	risk.WriteString("\n\n")

	r := a.risk
	if r.Level == model.RiskIndeterminate {
		risk.WriteString(hint.Render(daemon.BalancePrompt + " (Balances tab)"))
	} else {
		barW := innerW - 40
		if barW < 10 {
			barW = 10
		}
		risk.WriteString(components.RiskGauge("Share of balance", r.Ratio, r.Threshold, 16, barW))
		risk.WriteString("\n")

		level := lipgloss.NewStyle().Foreground(t.Risk(r.Level)).Background(t.Surface).Bold(true)
		body := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		risk.WriteString(level.Render(r.Level.String()))
		risk.WriteString(body.Render(fmt.Sprintf("  %s/week against %s", cli.FormatDecimal(r.Estimate), cli.FormatDecimal(r.Balance))))
	}
	risk.WriteString("\n")
	risk.WriteString(hint.Render("+/- weekly spend"))
	b.WriteString(components.ContentCard("Overspend Risk", risk.String(), cw))
	b.WriteString("\n")

	// Row 2: platform ranking
	if a.result == nil || a.result.PlatformErr != nil {
		var err error
		if a.result != nil {
			err = a.result.PlatformErr
		}
		b.WriteString(promptCard("Online Platforms", pipeline.Prompt(err), cw))
		return b.String()
	}
	if len(a.ranked) == 0 {
		b.WriteString(promptCard("Online Platforms", "No platforms in the reference table.", cw))
		return b.String()
	}

	top := a.ranked
	if len(top) > maxRankedPlatforms {
		top = top[:maxRankedPlatforms]
	}
	maxSpend := top[0].AvgSpendPerUser

	nameW := 0
	for _, p := range top {
		if w := lipgloss.Width(p.Name); w > nameW {
			nameW = w
		}
	}
	if nameW > 24 {
		nameW = 24
	}
	barW := innerW - nameW - 22
	if barW < 10 {
		barW = 10
	}

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	catStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	valStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var list strings.Builder
	for i, p := range top {
		filled := 0
		if maxSpend > 0 {
			filled = int(p.AvgSpendPerUser / maxSpend * float64(barW))
		}
		list.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(p.Name, nameW))))
		list.WriteString(spaceStyle.Render(" "))
		list.WriteString(barStyle.Render(strings.Repeat("█", filled)))
		list.WriteString(spaceStyle.Render(strings.Repeat(" ", barW-filled)))
		list.WriteString(valStyle.Render(fmt.Sprintf(" %8s ", cli.FormatEuro(p.AvgSpendPerUser))))
		list.WriteString(catStyle.Render(truncStr(p.Category, 10)))
		if i < len(top)-1 {
			list.WriteString("\n")
		}
	}
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Priciest Online Platforms (top %d of %d)", len(top), len(a.ranked)),
		list.String(), cw))
	return b.String()
}
