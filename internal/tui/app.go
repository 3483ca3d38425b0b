// Package tui provides the interactive Bubble Tea dashboard for letmecheque.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/letmecheque/letmecheque/internal/cli"
	"github.com/letmecheque/letmecheque/internal/config"
	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/pipeline"
	"github.com/letmecheque/letmecheque/internal/store"
	"github.com/letmecheque/letmecheque/internal/tui/components"
	"github.com/letmecheque/letmecheque/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// DataLoadedMsg is sent when the data pipeline finishes.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	LoadTime time.Duration
}

// ProgressMsg reports dataset loading progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background reload completes.
type RefreshDataMsg struct {
	Result   *pipeline.LoadResult
	LoadTime time.Duration
}

const (
	tabOverview = iota
	tabBalances
	tabLocation
	tabAdvisor
)

// App is the root Bubble Tea model.
type App struct {
	cfg      config.Config
	sources  pipeline.Sources
	useCache bool
	policy   pipeline.ForecastPolicy

	// Data
	result   *pipeline.LoadResult
	loaded   bool
	loadTime time.Duration

	refreshing bool

	// Overview: selected category and simulated extra spend
	categories []string
	catIdx     int
	delta      float64
	overview   model.Overview
	overErr    error

	// Balances are session context only; they are never saved.
	balances    model.Balances
	balanceForm *huh.Form
	balVals     *balanceValues

	locIdx int

	// Advisor
	weekly float64
	ranked []model.Platform
	risk   model.RiskAssessment

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg // progress + completion messages from loader goroutine
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5 // minimum content area height
)

// NewApp creates a new TUI app model.
func NewApp(cfg config.Config, src pipeline.Sources, useCache bool) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		cfg:       cfg,
		sources:   src,
		useCache:  useCache,
		policy:    pipeline.ForecastPolicy{Exempt: cfg.Forecast.ExemptCategories},
		weekly:    cfg.Risk.WeeklyDefault,
		needSetup: !config.Exists(),
		balVals:   &balanceValues{},
		setupVals: &setupValues{},
		spinner:   sp,
		loadSub:   make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.sources, a.useCache, a.loadSub),
		a.spinner.Tick,
	)
}

func (a App) spending() *model.Dataset {
	if a.result == nil || a.result.SpendingErr != nil {
		return nil
	}
	return a.result.Spending
}

// recompute rebuilds every derived view from the loaded data and the
// current controls. All engine calls happen here.
func (a *App) recompute() {
	a.categories = nil
	a.overview = model.Overview{}
	a.overErr = nil

	if ds := a.spending(); ds != nil {
		a.categories = ds.Selectable()
		if a.catIdx >= len(a.categories) {
			a.catIdx = len(a.categories) - 1
		}
		if a.catIdx < 0 {
			a.catIdx = 0
		}
		if len(a.categories) > 0 {
			a.overview, a.overErr = pipeline.BuildOverview(ds, a.categories[a.catIdx], a.delta, a.policy)
		}
	}

	a.ranked = nil
	if a.result != nil && a.result.PlatformErr == nil {
		a.ranked = pipeline.RankPlatforms(a.result.Platforms)
	}
	a.recomputeRisk()
}

// recomputeRisk falls back to an indeterminate assessment when the
// weekly spend or threshold is not a usable number.
func (a *App) recomputeRisk() {
	r, err := pipeline.Risk(a.balances, a.weekly, a.cfg.Risk.ThresholdPercent)
	if err != nil {
		r = model.RiskAssessment{Level: model.RiskIndeterminate, Threshold: a.cfg.Risk.ThresholdPercent}
	}
	a.risk = r
}

func (a App) selectedCategory() string {
	if a.catIdx < 0 || a.catIdx >= len(a.categories) {
		return ""
	}
	return a.categories[a.catIdx]
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil || a.balanceForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			a.moveCursor(1)
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}

		// Forms intercept all keys while open
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.balanceForm != nil {
			return a.updateBalanceForm(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if handled, cmd := a.updateTabKeys(key); handled {
			return a, cmd
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "r":
			if !a.refreshing {
				a.refreshing = true
				return a, refreshDataCmd(a.sources, a.useCache)
			}
		case "left", "shift+tab":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		default:
			if len(msg.Runes) == 1 {
				if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
					a.activeTab = idx
				}
			}
		}
		return a, nil

	case DataLoadedMsg:
		a.result = msg.Result
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.recompute()

		if a.needSetup {
			a.setupForm = newSetupForm(a.cfg, a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case RefreshDataMsg:
		a.refreshing = false
		if msg.Result != nil {
			a.result = msg.Result
			a.loadTime = msg.LoadTime
			a.recompute()
		}
		return a, nil
	}

	// Forward unhandled messages to open forms (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.balanceForm != nil {
		return a.updateBalanceForm(msg)
	}
	return a, nil
}

// updateTabKeys handles keys owned by the active tab.
func (a *App) updateTabKeys(key string) (bool, tea.Cmd) {
	switch a.activeTab {
	case tabOverview:
		switch key {
		case "j", "down":
			a.moveCursor(1)
			return true, nil
		case "k", "up":
			a.moveCursor(-1)
			return true, nil
		case "+", "=", "]":
			a.setDelta(a.delta + a.cfg.Simulation.Step)
			return true, nil
		case "-", "_", "[":
			a.setDelta(a.delta - a.cfg.Simulation.Step)
			return true, nil
		case "0":
			a.setDelta(0)
			return true, nil
		}

	case tabBalances:
		switch key {
		case "enter", "e":
			return true, a.openBalanceForm()
		case "x":
			a.balances = model.Balances{}
			a.recomputeRisk()
			return true, nil
		}

	case tabLocation:
		switch key {
		case "j", "down":
			a.moveCursor(1)
			return true, nil
		case "k", "up":
			a.moveCursor(-1)
			return true, nil
		}

	case tabAdvisor:
		switch key {
		case "+", "=", "]":
			a.setWeekly(a.weekly + weeklyStep)
			return true, nil
		case "-", "_", "[":
			a.setWeekly(a.weekly - weeklyStep)
			return true, nil
		}
	}
	return false, nil
}

const weeklyStep = 10.0

func (a *App) moveCursor(d int) {
	switch a.activeTab {
	case tabOverview:
		next := a.catIdx + d
		if next >= 0 && next < len(a.categories) {
			a.catIdx = next
			a.recompute()
		}
	case tabLocation:
		next := a.locIdx + d
		if next >= 0 && next < len(a.cfg.Locations.Known) {
			a.locIdx = next
		}
	}
}

func (a *App) setDelta(v float64) {
	a.delta = clamp(v, 0, a.cfg.Simulation.MaxExtra)
	a.recompute()
}

func (a *App) setWeekly(v float64) {
	a.weekly = clamp(v, 0, a.cfg.Risk.WeeklyMax)
	a.recomputeRisk()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if hi > lo && v > hi {
		return hi
	}
	return v
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		changed := a.saveSetupConfig()
		a.needSetup = false
		a.setupForm = nil
		if changed {
			a.refreshing = true
			return a, refreshDataCmd(a.sources, a.useCache)
		}
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  letmecheque needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return fitHeight(msg, h)
}

// overlay centers body in a bordered card over the app background.
func (a App) overlay(body string, padV, padH int) string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(padV, padH).
		Render(body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func onSurface(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Background(theme.Active.Surface)
}

func (a App) viewLoading() string {
	t := theme.Active
	muted := onSurface(t.TextMuted)

	lines := []string{
		onSurface(t.AccentBright).Bold(true).Render("◈ letmecheque") + muted.Render(" · Spending Forecasts"),
		"",
	}
	status := onSurface(t.Accent).Render(a.spinner.View())
	if a.progressMax > 0 {
		lines = append(lines,
			status+muted.Render(" Loading datasets"),
			"",
			components.ProgressBar(float64(a.progress)/float64(a.progressMax), 30))
	} else {
		lines = append(lines, status+muted.Render(" Reading "+a.sources.SpendingPath))
	}
	return a.overlay(strings.Join(lines, "\n"), 2, 4)
}

type keyHelp struct{ keys, action string }

var helpSections = []struct {
	name  string
	binds []keyHelp
}{
	{"Navigation", []keyHelp{
		{"o b l a", "Jump to tab"},
		{"← → tab", "Previous / Next tab"},
		{"j k", "Select category / location"},
	}},
	{"Controls", []keyHelp{
		{"+ -", "Extra spend (Overview), weekly spend (Advisor)"},
		{"0", "Reset extra spend"},
		{"Enter", "Enter balances (Balances)"},
		{"x", "Clear balances"},
		{"r", "Reload datasets"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}},
}

func (a App) viewHelp() string {
	t := theme.Active
	key := onSurface(t.Cyan).Bold(true)
	desc := onSurface(t.TextMuted)

	lines := []string{onSurface(t.AccentBright).Bold(true).Render("◈ Keyboard Shortcuts")}
	for _, sec := range helpSections {
		lines = append(lines, "", onSurface(t.Accent).Bold(true).Render(sec.name))
		for _, kb := range sec.binds {
			lines = append(lines, "  "+key.Render(fmt.Sprintf("%-10s", kb.keys))+"  "+desc.Render(kb.action))
		}
	}
	lines = append(lines, "", onSurface(t.TextDim).Render("Press any key to close"))
	return a.overlay(strings.Join(lines, "\n"), 1, 3)
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + context pill
	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pillAccent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	pill := pillStyle.Render(" ")
	if cat := a.selectedCategory(); cat != "" {
		pill += pillAccent.Render(cat)
	}
	if a.delta > 0 {
		pill += pillStyle.Render(" │ ") + pillAccent.Render("+"+cli.FormatEuro(a.delta)+"/mo")
	}
	pill += pillStyle.Render(" │ weekly ") + pillAccent.Render(cli.FormatEuro(a.weekly))
	if a.balances.Total().IsPositive() {
		pill += pillStyle.Render(" │ ") + lipgloss.NewStyle().
			Foreground(t.Risk(a.risk.Level)).Background(t.Surface).Bold(true).
			Render(a.risk.Level.String())
	}
	pill += pillStyle.Render(" ")

	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(pill)

	// 2. Status bar
	source := ""
	if ds := a.spending(); ds != nil {
		source = ds.Source
	}
	statusBar := components.RenderStatusBar(w, source, fmt.Sprintf("%.1fs", a.loadTime.Seconds()), a.refreshing)

	// 3. Content zone height
	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	// 4. Tab content
	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabBalances:
		content = a.renderBalancesTab(cw)
	case tabLocation:
		content = a.renderLocationTab(cw)
	case tabAdvisor:
		content = a.renderAdvisorTab(cw)
	}

	content = fillWidth(fitHeight(content, contentH), cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// promptCard renders a hint in place of a missing result.
func promptCard(title, msg string, cw int) string {
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Italic(true)
	return components.ContentCard(title, style.Render(msg), cw)
}

// ─── Loading ────────────────────────────────────────────────────

func load(src pipeline.Sources, useCache bool, progressFn pipeline.ProgressFunc) *pipeline.LoadResult {
	var cache *store.Cache
	if useCache {
		if c, err := store.Open(pipeline.CachePath()); err == nil {
			defer func() { _ = c.Close() }()
			cache = c
		}
	}
	res, err := pipeline.Load(context.Background(), src, cache, progressFn)
	if err != nil {
		return &pipeline.LoadResult{SpendingErr: err, PlatformErr: err}
	}
	return res
}

// loadDataCmd starts the data loading pipeline in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(src pipeline.Sources, useCache bool, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send; a dropped update is superseded by the next.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			res := load(src, useCache, progressFn)
			sub <- DataLoadedMsg{Result: res, LoadTime: time.Since(start)}
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads the datasets in the background (no progress UI).
func refreshDataCmd(src pipeline.Sources, useCache bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		return RefreshDataMsg{Result: load(src, useCache, nil), LoadTime: time.Since(start)}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// truncStr shortens s to limit runes, marking the cut with an ellipsis.
func truncStr(s string, limit int) string {
	switch runes := []rune(s); {
	case limit <= 0:
		return ""
	case len(runes) > limit:
		return string(runes[:limit-1]) + "…"
	default:
		return s
	}
}

// fitHeight returns s with exactly h lines, cutting or padding as needed.
func fitHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// fillWidth extends every line to w columns painted with bg.
func fillWidth(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX maps a click column on the tab bar to a tab index, or -1.
// Tabs are laid out by RenderTabBar with a single column between them.
func (a App) tabAtX(x int) int {
	right := 0
	for i, tab := range components.Tabs {
		left := right
		right = left + components.TabVisualWidth(tab, i == a.activeTab)
		if x >= left && x < right {
			return i
		}
		right++
	}
	return -1
}
