package cmd

import (
	"fmt"
	"os"

	"github.com/letmecheque/letmecheque/internal/cli"
	"github.com/letmecheque/letmecheque/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagExtra float64

var simulateCmd = &cobra.Command{
	Use:   "simulate <category>",
	Short: "Add an extra monthly amount to a category and show the new peak",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().Float64VarP(&flagExtra, "extra", "x", 0, "Extra spend added to every month (EUR)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(_ *cobra.Command, args []string) error {
	cfg, _, ds, err := loadSpending()
	if err != nil {
		return err
	}
	if flagExtra > cfg.Simulation.MaxExtra && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Note: --extra %s is above the usual range of %s\n",
			cli.FormatEuro(flagExtra), cli.FormatEuro(cfg.Simulation.MaxExtra))
	}

	category, err := resolveCategory(ds, args[0])
	if err != nil {
		return err
	}
	series, err := pipeline.Aggregate(ds, category)
	if err != nil {
		return err
	}
	sim, err := pipeline.Simulate(series, flagExtra)
	if err != nil {
		switch pipeline.Condition(err) {
		case "InsufficientData":
			fmt.Println(cli.RenderPrompt("No months with spending to simulate"))
			return nil
		case "InvalidAmount":
			return prompted(os.Stdout, err)
		}
		return err
	}
	basePeriod, baseValue, _ := series.Peak()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SIMULATION  %s  +%s/month", category, cli.FormatEuro(flagExtra))))
	fmt.Println()

	var rows [][]string
	for i, pt := range sim.Series.Points {
		if !pt.Defined {
			continue
		}
		rows = append(rows, []string{
			pt.Period.String(),
			cli.FormatEuro(series.Points[i].Value),
			cli.FormatEuro(pt.Value),
		})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Peak", basePeriod.String() + " " + cli.FormatEuro(baseValue), sim.PeakPeriod.String() + " " + cli.FormatEuro(sim.PeakValue)},
	)

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Actual", "Simulated"},
		Rows:    rows,
	}))
	return nil
}
