package theme

import (
	"testing"

	"github.com/letmecheque/letmecheque/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestByNameFallsBackToDefault(t *testing.T) {
	assert.Equal(t, "tokyo-night", ByName("tokyo-night").Name)
	assert.Equal(t, FlexokiDark.Name, ByName("solarized").Name)
}

func TestSetActive(t *testing.T) {
	defer SetActive(FlexokiDark.Name)

	SetActive("terminal")
	assert.Equal(t, Terminal, Active)
}

func TestNamesMatchAll(t *testing.T) {
	names := Names()
	assert.Len(t, names, len(All))
	assert.Equal(t, "flexoki-dark", names[0])
}

func TestEveryRoleIsSet(t *testing.T) {
	for _, th := range All {
		roles := []string{
			string(th.Background), string(th.Surface), string(th.SurfaceHover),
			string(th.Border), string(th.BorderAccent), string(th.TextDim),
			string(th.TextMuted), string(th.TextPrimary), string(th.Accent),
			string(th.AccentBright), string(th.Green), string(th.Orange),
			string(th.Red), string(th.Blue), string(th.Yellow),
			string(th.Magenta), string(th.Cyan),
		}
		for i, r := range roles {
			assert.NotEmpty(t, r, "%s role %d", th.Name, i)
		}
	}
}

func TestRiskAndZoneColors(t *testing.T) {
	th := FlexokiDark
	assert.Equal(t, th.Red, th.Risk(model.RiskAtRisk))
	assert.Equal(t, th.Green, th.Risk(model.RiskSafe))
	assert.Equal(t, th.TextMuted, th.Risk(model.RiskIndeterminate))
	assert.Equal(t, th.Orange, th.Zone(true))
	assert.Equal(t, th.Green, th.Zone(false))
}
