package components

import (
	"fmt"

	"github.com/letmecheque/letmecheque/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar. source names the loaded
// spending file; dataAge is how long the last load took.
func RenderStatusBar(width int, source, dataAge string, refreshing bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [?]help  [r]eload  [q]uit"
	right := ""
	switch {
	case refreshing:
		right = "Reloading... "
	case source != "":
		right = fmt.Sprintf("%s · %s ", source, dataAge)
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return style.Render(left + fmt.Sprintf("%*s", padding, "") + right)
}
