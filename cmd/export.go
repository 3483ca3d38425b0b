package cmd

import (
	"fmt"
	"time"

	"github.com/letmecheque/letmecheque/internal/export"

	"github.com/spf13/cobra"
)

var (
	flagExportOut   string
	flagExportExtra float64
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write series, forecasts and platform ranking to an XLSX workbook",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "letmecheque-report.xlsx", "Output workbook path")
	exportCmd.Flags().Float64Var(&flagExportExtra, "extra", 0, "Extra monthly spend for the Simulation sheet (EUR)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	cfg, res, ds, err := loadSpending()
	if err != nil {
		return err
	}

	r := export.Report{
		Dataset:     ds,
		Policy:      forecastPolicy(cfg),
		Delta:       flagExportExtra,
		GeneratedAt: time.Now(),
	}
	if res.PlatformErr == nil {
		r.Platforms = res.Platforms
	} else if !flagQuiet {
		fmt.Printf("  Platforms sheet skipped: %v\n", res.PlatformErr)
	}

	if err := export.Write(flagExportOut, r); err != nil {
		return err
	}
	fmt.Printf("  Wrote %s\n", flagExportOut)
	return nil
}
