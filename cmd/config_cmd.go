package cmd

import (
	"fmt"
	"strings"

	"github.com/letmecheque/letmecheque/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	dataDir := cfg.General.DataDir
	if dataDir == "" {
		dataDir = "(current directory)"
	}
	fmt.Printf("    Data directory: %s\n", dataDir)
	fmt.Printf("    Spending file:  %s\n", cfg.SpendingPath())
	fmt.Printf("    Platform file:  %s\n", cfg.PlatformPath())
	fmt.Printf("    Cache:          %v\n", !cfg.General.NoCache)
	fmt.Println()

	fmt.Println("  [Columns]")
	fmt.Printf("    Month:   %s\n", cfg.Columns.Period)
	fmt.Printf("    Entity:  %s\n", cfg.Columns.Entity)
	fmt.Printf("    Total:   %s\n", cfg.Columns.Total)
	fmt.Println()

	fmt.Println("  [Forecast]")
	fmt.Printf("    Exempt categories: %s\n", strings.Join(cfg.Forecast.ExemptCategories, ", "))
	fmt.Println()

	fmt.Println("  [Simulation]")
	fmt.Printf("    Max extra: €%.0f (step €%.0f)\n", cfg.Simulation.MaxExtra, cfg.Simulation.Step)
	fmt.Println()

	fmt.Println("  [Risk]")
	fmt.Printf("    Threshold:      %.1f%% of balance per week\n", cfg.Risk.ThresholdPercent)
	fmt.Printf("    Weekly default: €%.0f (max €%.0f)\n", cfg.Risk.WeeklyDefault, cfg.Risk.WeeklyMax)
	fmt.Println()

	fmt.Println("  [Locations]")
	fmt.Printf("    Known:      %s\n", strings.Join(cfg.Locations.Known, ", "))
	fmt.Printf("    High-spend: %s\n", strings.Join(cfg.Locations.HighSpend, ", "))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Poll interval: %ds\n", cfg.Daemon.IntervalSec)
	fmt.Printf("    Session TTL:   %dm\n", cfg.Daemon.SessionTTLMin)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  Run `letmecheque setup` to reconfigure.")
	return nil
}
