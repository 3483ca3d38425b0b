package tui

import (
	"fmt"
	"strings"

	"github.com/letmecheque/letmecheque/internal/pipeline"
	"github.com/letmecheque/letmecheque/internal/tui/components"
	"github.com/letmecheque/letmecheque/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderLocationTab(cw int) string {
	t := theme.Active
	known := a.cfg.Locations.Known
	if len(known) == 0 {
		return promptCard("Location", "No locations configured. Add some under [locations] in the config file.", cw)
	}

	var left, right int
	if a.isCompactLayout() {
		left, right = cw, cw
	} else {
		halves := components.LayoutRow(cw, 2)
		left, right = halves[0], halves[1]
	}

	nameStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	innerW := components.CardInnerWidth(left)
	nameW := innerW - 4

	var list strings.Builder
	for i, loc := range known {
		alert := pipeline.ClassifyLocation(loc, a.cfg.Locations.HighSpend)
		dot := lipgloss.NewStyle().Foreground(t.Zone(alert.HighSpend)).Background(t.Surface).Render("●")
		label := fmt.Sprintf(" %-*s", nameW, truncStr(loc, nameW))
		if i == a.locIdx {
			list.WriteString(selStyle.Render(label))
		} else {
			list.WriteString(nameStyle.Render(label))
		}
		list.WriteString(spaceStyle.Render(" ") + dot)
		if i < len(known)-1 {
			list.WriteString("\n")
		}
	}
	picker := components.ContentCard("Where are you?", list.String(), left)

	idx := a.locIdx
	if idx >= len(known) {
		idx = len(known) - 1
	}
	alert := pipeline.ClassifyLocation(known[idx], a.cfg.Locations.HighSpend)

	zone := lipgloss.NewStyle().Foreground(t.Zone(alert.HighSpend)).Background(t.Surface).Bold(true)
	body := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	hint := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Italic(true)

	var detail strings.Builder
	detail.WriteString(body.Render(alert.Location))
	detail.WriteString("\n\n")
	if alert.HighSpend {
		detail.WriteString(zone.Render("High-spending zone"))
		detail.WriteString("\n")
		detail.WriteString(body.Render("Prices here run above average. Set a cap before you go."))
	} else {
		detail.WriteString(zone.Render("Low-spending zone"))
		detail.WriteString("\n")
		detail.WriteString(body.Render("No extra caution needed here."))
	}
	detail.WriteString("\n\n")
	detail.WriteString(hint.Render("j/k to choose a location"))

	card := components.ContentCard("Spending Zone", detail.String(), right)
	if a.isCompactLayout() {
		return picker + "\n" + card
	}
	return components.CardRow([]string{picker, card})
}
