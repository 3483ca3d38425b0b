// Package cmd implements the letmecheque CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/letmecheque/letmecheque/internal/cli"
	"github.com/letmecheque/letmecheque/internal/config"
	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/pipeline"
	"github.com/letmecheque/letmecheque/internal/source"
	"github.com/letmecheque/letmecheque/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDataDir   string
	flagSpending  string
	flagPlatforms string
	flagNoCache   bool
	flagQuiet     bool
	flagTheme     string
)

var rootCmd = &cobra.Command{
	Use:           "letmecheque",
	Short:         "Personal spending forecasts and overspend checks",
	Long:          "Aggregate monthly spending, forecast next month, simulate extra spend and check it against your balances.",
	RunE:          runOverview,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errPrompted marks a failure whose prompt has already been printed.
var errPrompted = errors.New("prompt shown")

// prompted prints the prompt for err, plus its detail when that adds
// something, and returns err marked so Execute does not repeat it.
func prompted(w io.Writer, err error) error {
	hint := pipeline.Prompt(err)
	fmt.Fprintln(w, cli.RenderPrompt(hint))
	if detail := err.Error(); detail != hint {
		fmt.Fprintln(w, cli.RenderPrompt(detail))
	}
	return fmt.Errorf("%w: %w", errPrompted, err)
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errPrompted) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		if hint := pipeline.Prompt(err); hint != "" && hint != err.Error() {
			fmt.Fprintf(os.Stderr, "  %s\n", hint)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory holding the datasets (default: config or current directory)")
	rootCmd.PersistentFlags().StringVar(&flagSpending, "spending", "", "Spending dataset file (CSV or XLSX)")
	rootCmd.PersistentFlags().StringVar(&flagPlatforms, "platforms", "", "Platform reference dataset file (CSV or XLSX)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagTheme, "theme", "", "Color theme (flexoki-dark, catppuccin-mocha, tokyo-night, terminal)")
}

// loadConfig reads the config file and layers command-line flags over it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagDataDir != "" {
		cfg.General.DataDir = flagDataDir
	}
	if flagSpending != "" {
		cfg.General.SpendingFile = flagSpending
	}
	if flagPlatforms != "" {
		cfg.General.PlatformFile = flagPlatforms
	}
	if flagNoCache {
		cfg.General.NoCache = true
	}
	if flagTheme != "" {
		cfg.Appearance.Theme = flagTheme
	}
	return cfg, cfg.Validate()
}

// sourcesFor builds the loader inputs for cfg.
func sourcesFor(cfg config.Config) pipeline.Sources {
	return pipeline.Sources{
		SpendingPath: cfg.SpendingPath(),
		PlatformPath: cfg.PlatformPath(),
		Columns: source.Columns{
			Period: cfg.Columns.Period,
			Entity: cfg.Columns.Entity,
			Total:  cfg.Columns.Total,
		},
	}
}

func forecastPolicy(cfg config.Config) pipeline.ForecastPolicy {
	return pipeline.ForecastPolicy{Exempt: cfg.Forecast.ExemptCategories}
}

// loadData is the shared data loading path used by all commands.
// Uses SQLite cache when available for fast subsequent runs.
func loadData(cfg config.Config) (*pipeline.LoadResult, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Loading datasets...\n")
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
	}

	var cache *store.Cache
	if !cfg.General.NoCache {
		c, err := store.Open(pipeline.CachePath())
		if err != nil {
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Cache unavailable, doing full parse\n")
			}
		} else {
			defer func() { _ = c.Close() }()
			cache = c
		}
	}

	result, err := pipeline.Load(context.Background(), sourcesFor(cfg), cache, progressFn)
	if err != nil {
		return nil, err
	}

	if !flagQuiet {
		if ds := result.Spending; ds != nil {
			fmt.Fprintf(os.Stderr, "\r  Loaded %s records across %d categories (%d cached, %d reparsed)    \n",
				cli.FormatNumber(int64(len(ds.Records))), len(ds.Categories),
				result.CacheHits, result.Reparsed)
		} else {
			fmt.Fprintln(os.Stderr)
		}
		warnDataset(result.Spending)
	}
	return result, nil
}

// warnDataset prints informational counters the loader collected.
func warnDataset(ds *model.Dataset) {
	if ds == nil {
		return
	}
	if ds.SkippedRows > 0 {
		fmt.Fprintf(os.Stderr, "  %d rows skipped (unrecognized month)\n", ds.SkippedRows)
	}
	if ds.InvalidCells > 0 {
		fmt.Fprintf(os.Stderr, "  %d cells ignored (not a valid amount)\n", ds.InvalidCells)
	}
	if ds.TotalMismatches > 0 {
		fmt.Fprintf(os.Stderr, "  %d rows where the Total column disagrees with the categories\n", ds.TotalMismatches)
	}
}

// requireSpending returns the spending dataset or its load error. A
// missing file is reported to w as a prompt.
func requireSpending(w io.Writer, res *pipeline.LoadResult) (*model.Dataset, error) {
	switch {
	case errors.Is(res.SpendingErr, pipeline.ErrDatasetUnavailable):
		return nil, prompted(w, res.SpendingErr)
	case res.SpendingErr != nil:
		return nil, res.SpendingErr
	}
	if res.Spending == nil {
		return nil, errors.New("spending dataset not loaded")
	}
	return res.Spending, nil
}

// loadSpending is loadConfig + loadData + requireSpending.
func loadSpending() (config.Config, *pipeline.LoadResult, *model.Dataset, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, nil, nil, err
	}
	res, err := loadData(cfg)
	if err != nil {
		return cfg, nil, nil, err
	}
	ds, err := requireSpending(os.Stdout, res)
	return cfg, res, ds, err
}

// resolveCategory maps a user-typed category onto the dataset, or reports
// the available names.
func resolveCategory(ds *model.Dataset, name string) (string, error) {
	resolved := pipeline.ResolveCategory(ds, name)
	if resolved == model.TotalCategory || ds.HasCategory(resolved) {
		return resolved, nil
	}
	return "", fmt.Errorf("%w %q (available: %v)", pipeline.ErrUnknownCategory, name, ds.Selectable())
}
