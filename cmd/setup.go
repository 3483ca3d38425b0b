package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/letmecheque/letmecheque/internal/config"
	"github.com/letmecheque/letmecheque/internal/source"
	"github.com/letmecheque/letmecheque/internal/tui/theme"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)
	ask := func(current string) string {
		if current != "" {
			fmt.Printf("     [%s] > ", current)
		} else {
			fmt.Print("     > ")
		}
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			return current
		}
		return line
	}

	// Load existing config or defaults
	cfg, _ := config.Load()

	fmt.Println()
	fmt.Println("  Welcome to letmecheque!")
	fmt.Println()

	// 1. Data directory
	fmt.Println("  1. Data directory")
	fmt.Println("     Folder holding your spending and platform datasets.")
	dataDir := cfg.General.DataDir
	if flagDataDir != "" {
		dataDir = flagDataDir
	}
	cfg.General.DataDir = ask(dataDir)
	fmt.Println()

	files, _ := source.ScanDir(cfg.General.DataDir)
	if len(files) > 0 {
		fmt.Printf("  Found %d datasets:\n", len(files))
		for _, f := range files {
			fmt.Printf("     %s\n", f.Name)
		}
		fmt.Println()
	}
	for _, f := range files {
		if source.LooksLikePlatforms(f.Name) {
			if cfg.General.PlatformFile == config.DefaultConfig().General.PlatformFile {
				cfg.General.PlatformFile = f.Name
			}
		} else if cfg.General.SpendingFile == config.DefaultConfig().General.SpendingFile {
			cfg.General.SpendingFile = f.Name
		}
	}

	// 2. Files
	fmt.Println("  2. Monthly spending file")
	cfg.General.SpendingFile = ask(cfg.General.SpendingFile)
	fmt.Println()
	fmt.Println("  3. Online platform reference file")
	cfg.General.PlatformFile = ask(cfg.General.PlatformFile)
	fmt.Println()

	// 3. Risk defaults
	fmt.Println("  4. Default weekly spend (euro)")
	if v, err := strconv.ParseFloat(ask(strconv.FormatFloat(cfg.Risk.WeeklyDefault, 'f', -1, 64)), 64); err == nil {
		cfg.Risk.WeeklyDefault = v
	}
	fmt.Println()
	fmt.Println("  5. Overspend threshold (% of balance per week)")
	if v, err := strconv.ParseFloat(ask(strconv.FormatFloat(cfg.Risk.ThresholdPercent, 'f', -1, 64)), 64); err == nil {
		cfg.Risk.ThresholdPercent = v
	}
	fmt.Println()

	// 4. Theme
	fmt.Println("  6. Color theme")
	names := theme.Names()
	for i, n := range names {
		marker := ""
		if n == cfg.Appearance.Theme {
			marker = " [current]"
		}
		fmt.Printf("     (%d) %s%s\n", i+1, n, marker)
	}
	if idx, err := strconv.Atoi(ask("")); err == nil && idx >= 1 && idx <= len(names) {
		cfg.Appearance.Theme = names[idx-1]
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `letmecheque setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
