package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/letmecheque/letmecheque/internal/cli"
	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/tui/components"
	"github.com/letmecheque/letmecheque/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// balanceValues holds the raw form input. Blank fields count as zero.
type balanceValues struct {
	revolut string
	bank    string
	cash    string
}

func validateAmount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errors.New("enter an amount like 250 or 99.50")
	}
	if d.IsNegative() {
		return errors.New("balance cannot be negative")
	}
	return nil
}

func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// toBalances converts the form input into session balances.
func (v *balanceValues) toBalances() (model.Balances, error) {
	b := model.Balances{
		Revolut: parseAmount(v.revolut),
		Bank:    parseAmount(v.bank),
		Cash:    parseAmount(v.cash),
	}
	return b, b.Validate()
}

func newBalanceForm(vals *balanceValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Revolut").
				Description("Current Revolut balance in euro").
				Placeholder("0.00").
				Value(&vals.revolut).
				Validate(validateAmount),
			huh.NewInput().
				Title("Other bank").
				Placeholder("0.00").
				Value(&vals.bank).
				Validate(validateAmount),
			huh.NewInput().
				Title("Cash").
				Placeholder("0.00").
				Value(&vals.cash).
				Validate(validateAmount),
		).Title("Balances").Description("Kept for this session only."),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(false)
}

func (a *App) openBalanceForm() tea.Cmd {
	*a.balVals = balanceValues{}
	if a.balances.Total().IsPositive() {
		a.balVals.revolut = a.balances.Revolut.String()
		a.balVals.bank = a.balances.Bank.String()
		a.balVals.cash = a.balances.Cash.String()
	}
	a.balanceForm = newBalanceForm(a.balVals)
	return a.balanceForm.Init()
}

func (a App) updateBalanceForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		a.balanceForm = nil
		return a, nil
	}

	form, cmd := a.balanceForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.balanceForm = f
	}

	switch a.balanceForm.State {
	case huh.StateCompleted:
		if b, err := a.balVals.toBalances(); err == nil {
			a.balances = b
			a.recomputeRisk()
		}
		a.balanceForm = nil
		return a, nil
	case huh.StateAborted:
		a.balanceForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) renderBalancesTab(cw int) string {
	t := theme.Active

	if a.balanceForm != nil {
		return components.ContentCard("Enter Balances", a.balanceForm.View(), cw)
	}

	total := a.balances.Total()
	if !total.IsPositive() {
		return promptCard("Balances", "No balances entered yet. Press Enter to add them.", cw)
	}

	var b strings.Builder
	shares := a.balances.Shares()
	cards := make([]components.Metric, 0, len(shares)+1)
	for _, s := range shares {
		cards = append(cards, components.Metric{
			Label: s.Source,
			Value: cli.FormatDecimal(s.Amount),
			Delta: cli.FormatRatio(s.Percent) + " of total",
		})
	}
	cards = append(cards, components.Metric{Label: "Total", Value: cli.FormatDecimal(total), Color: t.AccentBright})
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	innerW := components.CardInnerWidth(cw)
	labelW := 12
	barW := innerW - labelW - 10
	if barW < 10 {
		barW = 10
	}
	colors := []lipgloss.Color{t.Blue, t.Cyan, t.Yellow}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var body strings.Builder
	for i, s := range shares {
		filled := int(s.Percent / 100 * float64(barW))
		if filled > barW {
			filled = barW
		}
		barStyle := lipgloss.NewStyle().Foreground(colors[i%len(colors)]).Background(t.Surface)
		body.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, s.Source)))
		body.WriteString(spaceStyle.Render(" "))
		body.WriteString(barStyle.Render(strings.Repeat("█", filled)))
		body.WriteString(emptyStyle.Render(strings.Repeat("░", barW-filled)))
		body.WriteString(labelStyle.Render(fmt.Sprintf(" %6.1f%%", s.Percent)))
		body.WriteString("\n")
	}
	body.WriteString("\n")
	body.WriteString(emptyStyle.Render("Enter edit  x clear"))

	b.WriteString(components.ContentCard("Balance Share", body.String(), cw))
	return b.String()
}
