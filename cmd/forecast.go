package cmd

import (
	"fmt"

	"github.com/letmecheque/letmecheque/internal/cli"
	"github.com/letmecheque/letmecheque/internal/pipeline"

	"github.com/spf13/cobra"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast <category>",
	Short: "Fit a linear trend to a category and predict next month",
	Args:  cobra.ExactArgs(1),
	RunE:  runForecast,
}

func init() {
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(_ *cobra.Command, args []string) error {
	cfg, _, ds, err := loadSpending()
	if err != nil {
		return err
	}
	category, err := resolveCategory(ds, args[0])
	if err != nil {
		return err
	}
	series, err := pipeline.Aggregate(ds, category)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FORECAST  %s", category)))
	fmt.Println()

	fc, err := forecastPolicy(cfg).Forecast(series)
	if err != nil {
		fmt.Println(cli.RenderPrompt(pipeline.Prompt(err)))
		return nil
	}

	rows := make([][]string, 0, len(fc.Periods)+5)
	for i, p := range fc.Periods {
		rows = append(rows, []string{
			p.String(),
			cli.FormatEuro(fc.Observed[i]),
			cli.FormatEuro(fc.Fitted[i]),
			cli.FormatEuro(fc.Observed[i] - fc.Fitted[i]),
		})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Trend", cli.FormatSlope(fc.Slope), "", ""},
		[]string{"R²", fmt.Sprintf("%.3f", fc.RSquared), "", ""},
		[]string{"Next: " + fc.NextPeriod.String(), cli.FormatEuro(fc.NextValue), "", ""},
	)

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Observed", "Fitted", "Residual"},
		Rows:    rows,
	}))
	return nil
}
