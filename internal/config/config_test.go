package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvDataDir, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Risk.ThresholdPercent != 10 {
		t.Errorf("ThresholdPercent = %v, want 10", cfg.Risk.ThresholdPercent)
	}
	if cfg.Simulation.MaxExtra != 500 || cfg.Simulation.Step != 10 {
		t.Errorf("Simulation = %+v, want max 500 step 10", cfg.Simulation)
	}
	if len(cfg.Forecast.ExemptCategories) != 1 || cfg.Forecast.ExemptCategories[0] != "Total" {
		t.Errorf("ExemptCategories = %v, want [Total]", cfg.Forecast.ExemptCategories)
	}
	if Exists() {
		t.Error("Exists() = true before Save")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.General.DataDir = "/srv/data"
	cfg.Risk.ThresholdPercent = 15
	cfg.Forecast.ExemptCategories = nil
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(ConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.General.DataDir != "/srv/data" {
		t.Errorf("DataDir = %q", got.General.DataDir)
	}
	if got.Risk.ThresholdPercent != 15 {
		t.Errorf("ThresholdPercent = %v, want 15", got.Risk.ThresholdPercent)
	}
	if got.SpendingPath() != filepath.Join("/srv/data", "Cleaned_Monthly_Spending.csv") {
		t.Errorf("SpendingPath = %q", got.SpendingPath())
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvDataDir, "/env/data")
	t.Setenv(EnvPlatformFile, "/abs/shops.xlsx")
	t.Setenv(EnvAddr, "0.0.0.0:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.DataDir != "/env/data" {
		t.Errorf("DataDir = %q, want /env/data", cfg.General.DataDir)
	}
	if cfg.PlatformPath() != "/abs/shops.xlsx" {
		t.Errorf("PlatformPath = %q, absolute path must not be joined", cfg.PlatformPath())
	}
	if cfg.Daemon.Addr != "0.0.0.0:9000" {
		t.Errorf("Addr = %q", cfg.Daemon.Addr)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "letmecheque", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[risk\nthreshold = "), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("Load accepted malformed TOML")
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Simulation.Step = 0
	cfg.Risk.WeeklyDefault = 5000
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate accepted bad config")
	}
	for _, want := range []string{"simulation.step", "risk.weekly_default"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidate_RejectsNonFinite(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "letmecheque", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	body := "[risk]\nthreshold_percent = nan\nweekly_default = inf\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = cfg.Validate()
	if err == nil {
		t.Fatal("Validate accepted nan threshold")
	}
	for _, want := range []string{"risk.threshold_percent must be a finite number", "risk.weekly_default must be a finite number"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestIsKnownLocation(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.IsKnownLocation("temple bar") {
		t.Error("temple bar should be known")
	}
	if cfg.IsKnownLocation("Moon") {
		t.Error("Moon should not be known")
	}
}
