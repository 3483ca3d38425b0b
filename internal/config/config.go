// Package config loads and saves letmecheque settings.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment overrides, applied after the config file.
const (
	EnvDataDir      = "LETMECHEQUE_DATA_DIR"
	EnvSpendingFile = "LETMECHEQUE_SPENDING_FILE"
	EnvPlatformFile = "LETMECHEQUE_PLATFORM_FILE"
	EnvAddr         = "LETMECHEQUE_ADDR"
)

// Config holds all letmecheque configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Columns    ColumnsConfig    `toml:"columns"`
	Forecast   ForecastConfig   `toml:"forecast"`
	Simulation SimulationConfig `toml:"simulation"`
	Risk       RiskConfig       `toml:"risk"`
	Locations  LocationsConfig  `toml:"locations"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// GeneralConfig locates the datasets.
type GeneralConfig struct {
	DataDir      string `toml:"data_dir,omitempty"`
	SpendingFile string `toml:"spending_file"`
	PlatformFile string `toml:"platform_file"`
	NoCache      bool   `toml:"no_cache"`
}

// ColumnsConfig names the non-category columns of the spending table.
type ColumnsConfig struct {
	Period string `toml:"period"`
	Entity string `toml:"entity"`
	Total  string `toml:"total"`
}

// ForecastConfig holds forecasting policy.
type ForecastConfig struct {
	ExemptCategories []string `toml:"exempt_categories"`
}

// SimulationConfig bounds the extra-spend control offered to users.
type SimulationConfig struct {
	MaxExtra float64 `toml:"max_extra"`
	Step     float64 `toml:"step"`
}

// RiskConfig holds the overspending threshold and the weekly spend control.
type RiskConfig struct {
	ThresholdPercent float64 `toml:"threshold_percent"`
	WeeklyMax        float64 `toml:"weekly_max"`
	WeeklyDefault    float64 `toml:"weekly_default"`
}

// LocationsConfig lists the locations offered and which of them are
// high-spend zones.
type LocationsConfig struct {
	Known     []string `toml:"known"`
	HighSpend []string `toml:"high_spend"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds HTTP service settings.
type DaemonConfig struct {
	Addr          string `toml:"addr"`
	IntervalSec   int    `toml:"interval_sec"`
	SessionTTLMin int    `toml:"session_ttl_min"`
	EventsBuffer  int    `toml:"events_buffer"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			SpendingFile: "Cleaned_Monthly_Spending.csv",
			PlatformFile: "final_irish_online_shopping_50.csv",
		},
		Columns: ColumnsConfig{
			Period: "Month",
			Entity: "Student ID",
			Total:  "Total",
		},
		Forecast: ForecastConfig{
			ExemptCategories: []string{"Total"},
		},
		Simulation: SimulationConfig{
			MaxExtra: 500,
			Step:     10,
		},
		Risk: RiskConfig{
			ThresholdPercent: 10,
			WeeklyMax:        1000,
			WeeklyDefault:    300,
		},
		Locations: LocationsConfig{
			Known: []string{
				"Home", "Work", "Shopping Mall", "Nightclub",
				"Concert", "Restaurant", "Grafton Street", "Temple Bar",
			},
			HighSpend: []string{
				"Shopping Mall", "Nightclub", "Concert",
				"Restaurant", "Grafton Street", "Temple Bar",
			},
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:          "127.0.0.1:8451",
			IntervalSec:   15,
			SessionTTLMin: 30,
			EventsBuffer:  200,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "letmecheque")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "letmecheque")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads .env and the config file, returning defaults if neither exists.
// Environment variables override file values.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	ApplyEnv(&cfg)
	return cfg, nil
}

// ApplyEnv copies any set override variables into cfg.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.General.DataDir = v
	}
	if v := os.Getenv(EnvSpendingFile); v != "" {
		cfg.General.SpendingFile = v
	}
	if v := os.Getenv(EnvPlatformFile); v != "" {
		cfg.General.PlatformFile = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Daemon.Addr = v
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string
	for name, v := range map[string]float64{
		"simulation.max_extra":   c.Simulation.MaxExtra,
		"simulation.step":        c.Simulation.Step,
		"risk.threshold_percent": c.Risk.ThresholdPercent,
		"risk.weekly_max":        c.Risk.WeeklyMax,
		"risk.weekly_default":    c.Risk.WeeklyDefault,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			problems = append(problems, name+" must be a finite number")
		}
	}
	sort.Strings(problems)
	if strings.TrimSpace(c.Columns.Period) == "" {
		problems = append(problems, "columns.period must not be empty")
	}
	if c.Simulation.MaxExtra < 0 {
		problems = append(problems, "simulation.max_extra must be >= 0")
	}
	if c.Simulation.Step <= 0 {
		problems = append(problems, "simulation.step must be > 0")
	}
	if c.Risk.ThresholdPercent <= 0 {
		problems = append(problems, "risk.threshold_percent must be > 0")
	}
	if c.Risk.WeeklyDefault < 0 || c.Risk.WeeklyDefault > c.Risk.WeeklyMax {
		problems = append(problems, "risk.weekly_default must be within [0, risk.weekly_max]")
	}
	if c.Daemon.IntervalSec < 1 {
		problems = append(problems, "daemon.interval_sec must be >= 1")
	}
	if c.Daemon.SessionTTLMin < 1 {
		problems = append(problems, "daemon.session_ttl_min must be >= 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// SpendingPath resolves the spending dataset against the data directory.
func (c Config) SpendingPath() string {
	return resolve(c.General.DataDir, c.General.SpendingFile)
}

// PlatformPath resolves the platform dataset against the data directory.
func (c Config) PlatformPath() string {
	return resolve(c.General.DataDir, c.General.PlatformFile)
}

func resolve(dir, name string) string {
	if name == "" || dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// IsKnownLocation reports whether name is one of the configured locations.
func (c Config) IsKnownLocation(name string) bool {
	for _, l := range c.Locations.Known {
		if strings.EqualFold(l, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}
