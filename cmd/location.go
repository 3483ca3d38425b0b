package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/letmecheque/letmecheque/internal/cli"
	"github.com/letmecheque/letmecheque/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagLocationList bool

var locationCmd = &cobra.Command{
	Use:   "location [name]",
	Short: "Check whether a location is a high-spend zone",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLocation,
}

func init() {
	locationCmd.Flags().BoolVarP(&flagLocationList, "list", "l", false, "List known locations")
	rootCmd.AddCommand(locationCmd)
}

func runLocation(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if len(args) == 0 && !flagLocationList {
		return errors.New("give a location or use --list")
	}
	if flagLocationList {
		rows := make([][]string, 0, len(cfg.Locations.Known))
		for _, loc := range cfg.Locations.Known {
			alert := pipeline.ClassifyLocation(loc, cfg.Locations.HighSpend)
			zone := "normal"
			if alert.HighSpend {
				zone = "high-spend"
			}
			rows = append(rows, []string{alert.Location, zone})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Location", "Zone"},
			Rows:    rows,
		}))
		return nil
	}

	name := strings.TrimSpace(args[0])
	alert := pipeline.ClassifyLocation(name, cfg.Locations.HighSpend)
	if !cfg.IsKnownLocation(name) {
		fmt.Println(cli.RenderPrompt(fmt.Sprintf("%q is not a known location; run with --list to see them", name)))
		return nil
	}
	if alert.HighSpend {
		fmt.Printf("  %s is a high-spend zone. Set yourself a limit before you go.\n", alert.Location)
	} else {
		fmt.Printf("  %s is a normal spending zone.\n", alert.Location)
	}
	return nil
}
