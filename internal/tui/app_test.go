package tui

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/letmecheque/letmecheque/internal/config"
	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/pipeline"
	"github.com/letmecheque/letmecheque/internal/source"
	"github.com/letmecheque/letmecheque/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func loadedApp(t *testing.T) App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	theme.SetActive("terminal")

	dir := t.TempDir()
	src := pipeline.Sources{
		SpendingPath: writeDataset(t, dir, "spend.csv",
			"Student_ID,Month,Food_(€),Rent_(€),Total_(€)",
			"S1,January,50,400,450",
			"S2,February,60,380,440",
			"S3,March,70,390,460",
		),
		PlatformPath: writeDataset(t, dir, "shops.csv",
			"Website,Category,Avg_Spending_Per_User (€)",
			"Tesco,Groceries,40",
			"Zalando,Fashion,85",
		),
		Columns: source.DefaultColumns(),
	}
	res, err := pipeline.Load(context.Background(), src, nil, nil)
	require.NoError(t, err)

	a := NewApp(config.DefaultConfig(), src, false)
	a.needSetup = false
	return update(t, a, DataLoadedMsg{Result: res})
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	out, ok := m.(App)
	require.True(t, ok)
	return out
}

func keys(t *testing.T, a App, ks ...string) App {
	t.Helper()
	for _, k := range ks {
		a = update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
	return a
}

func TestDataLoadedSelectsTotal(t *testing.T) {
	a := loadedApp(t)

	assert.True(t, a.loaded)
	assert.Equal(t, []string{"Total", "Food", "Rent"}, a.categories)
	assert.Equal(t, "Total", a.selectedCategory())
	assert.True(t, errors.Is(a.overview.ForecastErr, pipeline.ErrForecastExempt))
	require.Len(t, a.ranked, 2)
	assert.Equal(t, "Zalando", a.ranked[0].Name)
}

func TestOverviewKeysDriveForecastAndSimulation(t *testing.T) {
	a := loadedApp(t)

	a = keys(t, a, "j")
	require.Equal(t, "Food", a.selectedCategory())
	require.NotNil(t, a.overview.Forecast)
	assert.Equal(t, model.April, a.overview.Forecast.NextPeriod)
	assert.InDelta(t, 80, a.overview.Forecast.NextValue, 1e-9)

	a = keys(t, a, "+", "+")
	assert.InDelta(t, 20, a.delta, 1e-9)
	require.NotNil(t, a.overview.Simulation)
	assert.Equal(t, model.March, a.overview.Simulation.PeakPeriod)
	assert.InDelta(t, 90, a.overview.Simulation.PeakValue, 1e-9)

	// Delta never drops below zero.
	a = keys(t, a, "-", "-", "-")
	assert.Zero(t, a.delta)

	a = keys(t, a, "k", "k")
	assert.Equal(t, "Total", a.selectedCategory())
}

func TestDeltaClampedToConfiguredMax(t *testing.T) {
	a := loadedApp(t)
	a.cfg.Simulation.MaxExtra = 15

	a = keys(t, a, "+", "+", "+")
	assert.InDelta(t, 15, a.delta, 1e-9)
}

func TestTabKeysSwitchTabs(t *testing.T) {
	a := loadedApp(t)

	a = keys(t, a, "a")
	assert.Equal(t, tabAdvisor, a.activeTab)
	a = keys(t, a, "l")
	assert.Equal(t, tabLocation, a.activeTab)
	a = keys(t, a, "b")
	assert.Equal(t, tabBalances, a.activeTab)
	a = update(t, a, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, tabLocation, a.activeTab)
}

func TestAdvisorRiskFollowsWeeklyAndBalances(t *testing.T) {
	a := loadedApp(t)
	assert.Equal(t, model.RiskIndeterminate, a.risk.Level)

	a.balances = model.Balances{
		Revolut: decimal.NewFromInt(2000),
		Bank:    decimal.NewFromInt(1000),
		Cash:    decimal.Zero,
	}
	a.recomputeRisk()
	assert.Equal(t, model.RiskSafe, a.risk.Level) // 300 / 3000 = 10%, not above

	a = keys(t, a, "a", "+")
	assert.InDelta(t, 310, a.weekly, 1e-9)
	assert.Equal(t, model.RiskAtRisk, a.risk.Level)

	a = keys(t, a, "b", "x")
	assert.Equal(t, model.RiskIndeterminate, a.risk.Level)
}

func TestAdvisorNonFiniteWeeklyIsIndeterminate(t *testing.T) {
	a := loadedApp(t)
	a.balances = model.Balances{Bank: decimal.NewFromInt(3000)}
	a.weekly = math.NaN()
	a.recomputeRisk()
	assert.Equal(t, model.RiskIndeterminate, a.risk.Level)

	a = keys(t, a, "a")
	assert.NotPanics(t, func() { _ = a.View() })
}

func TestLocationCursorStaysInRange(t *testing.T) {
	a := loadedApp(t)
	a = keys(t, a, "l", "k")
	assert.Zero(t, a.locIdx)

	for range a.cfg.Locations.Known {
		a = keys(t, a, "j")
	}
	assert.Equal(t, len(a.cfg.Locations.Known)-1, a.locIdx)
}

func TestBalanceValues(t *testing.T) {
	assert.NoError(t, validateAmount(""))
	assert.NoError(t, validateAmount("12.50"))
	assert.Error(t, validateAmount("-5"))
	assert.Error(t, validateAmount("abc"))

	v := &balanceValues{revolut: "100.10", bank: " ", cash: "0.20"}
	b, err := v.toBalances()
	require.NoError(t, err)
	assert.Equal(t, "100.3", b.Total().String())
}

func TestViewRendersEveryTab(t *testing.T) {
	a := loadedApp(t)
	a = update(t, a, tea.WindowSizeMsg{Width: 140, Height: 45})

	for _, k := range []string{"o", "b", "l", "a"} {
		a = keys(t, a, k)
		out := a.View()
		assert.NotEmpty(t, out, "tab %q", k)
	}

	a = keys(t, a, "o", "j")
	assert.Contains(t, a.View(), "Food")
}

func TestViewTooNarrow(t *testing.T) {
	a := loadedApp(t)
	a = update(t, a, tea.WindowSizeMsg{Width: 60, Height: 20})
	assert.Contains(t, a.View(), "too narrow")
}

func TestMissingSpendingShowsPrompt(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	theme.SetActive("terminal")

	src := pipeline.Sources{
		SpendingPath: filepath.Join(t.TempDir(), "missing.csv"),
		Columns:      source.DefaultColumns(),
	}
	res, err := pipeline.Load(context.Background(), src, nil, nil)
	require.NoError(t, err)

	a := NewApp(config.DefaultConfig(), src, false)
	a.needSetup = false
	a = update(t, a, DataLoadedMsg{Result: res})
	a = update(t, a, tea.WindowSizeMsg{Width: 140, Height: 40})

	assert.Empty(t, a.categories)
	assert.Contains(t, a.View(), "Dataset not found")
}
