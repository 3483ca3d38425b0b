package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/letmecheque/letmecheque/internal/config"
	"github.com/letmecheque/letmecheque/internal/source"
	"github.com/letmecheque/letmecheque/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// setupValues holds the first-run form input.
type setupValues struct {
	dataDir      string
	spendingFile string
	platformFile string
	theme        string
	weekly       string
}

// datasetSuggestions splits the files found in dataDir into likely spending
// tables and likely platform tables.
func datasetSuggestions(dataDir string) (spending, platforms []string) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, nil
	}
	for _, f := range files {
		if source.LooksLikePlatforms(f.Name) {
			platforms = append(platforms, f.Name)
		} else {
			spending = append(spending, f.Name)
		}
	}
	return spending, platforms
}

func validateWeekly(limit float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return errors.New("enter a number")
		}
		if v < 0 || v > limit {
			return errors.New("out of range")
		}
		return nil
	}
}

func newSetupForm(cfg config.Config, vals *setupValues) *huh.Form {
	*vals = setupValues{
		dataDir:      cfg.General.DataDir,
		spendingFile: cfg.General.SpendingFile,
		platformFile: cfg.General.PlatformFile,
		theme:        cfg.Appearance.Theme,
		weekly:       strconv.FormatFloat(cfg.Risk.WeeklyDefault, 'f', -1, 64),
	}
	spending, platforms := datasetSuggestions(cfg.General.DataDir)

	themeOpts := huh.NewOptions(theme.Names()...)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to letmecheque").
				Description("Point it at your monthly spending export and pick a look."),
			huh.NewInput().
				Title("Data directory").
				Description("Folder holding the CSV or XLSX datasets").
				Value(&vals.dataDir),
			huh.NewInput().
				Title("Spending file").
				Suggestions(spending).
				Value(&vals.spendingFile).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("spending file is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Platform file").
				Description("Optional online shopping reference table").
				Suggestions(platforms).
				Value(&vals.platformFile),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
			huh.NewInput().
				Title("Default weekly spend").
				Description("Starting point for the overspend advisor, in euro").
				Value(&vals.weekly).
				Validate(validateWeekly(cfg.Risk.WeeklyMax)),
		),
	).WithTheme(huh.ThemeDracula())
}

// saveSetupConfig persists the form values and applies them to the running
// app. It reports whether the dataset locations changed.
func (a *App) saveSetupConfig() bool {
	cfg, _ := config.Load()
	v := a.setupVals

	cfg.General.DataDir = strings.TrimSpace(v.dataDir)
	cfg.General.SpendingFile = strings.TrimSpace(v.spendingFile)
	cfg.General.PlatformFile = strings.TrimSpace(v.platformFile)
	cfg.Appearance.Theme = v.theme
	if w, err := strconv.ParseFloat(strings.TrimSpace(v.weekly), 64); err == nil {
		cfg.Risk.WeeklyDefault = w
	}

	// Settings still apply for this session if saving fails.
	_ = config.Save(cfg)
	theme.SetActive(cfg.Appearance.Theme)

	a.weekly = cfg.Risk.WeeklyDefault
	a.recomputeRisk()

	changed := cfg.SpendingPath() != a.sources.SpendingPath || cfg.PlatformPath() != a.sources.PlatformPath
	a.sources.SpendingPath = cfg.SpendingPath()
	a.sources.PlatformPath = cfg.PlatformPath()
	a.cfg.General = cfg.General
	a.cfg.Appearance = cfg.Appearance
	a.cfg.Risk.WeeklyDefault = cfg.Risk.WeeklyDefault
	return changed
}
