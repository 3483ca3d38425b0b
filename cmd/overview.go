package cmd

import (
	"fmt"

	"github.com/letmecheque/letmecheque/internal/cli"
	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagOverviewCategory string

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Monthly spending per category with next-month forecast",
	RunE:  runOverview,
}

func init() {
	overviewCmd.Flags().StringVarP(&flagOverviewCategory, "category", "c", "", "Show the full month table for one category")
	rootCmd.AddCommand(overviewCmd)
}

func runOverview(_ *cobra.Command, _ []string) error {
	cfg, _, ds, err := loadSpending()
	if err != nil {
		return err
	}
	policy := forecastPolicy(cfg)

	if flagOverviewCategory != "" {
		category, err := resolveCategory(ds, flagOverviewCategory)
		if err != nil {
			return err
		}
		return printCategoryDetail(ds, category, policy)
	}

	if len(ds.Records) == 0 {
		fmt.Println("\n  No spending records found in", ds.Source)
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SPENDING OVERVIEW"))
	fmt.Println()

	rows := make([][]string, 0, len(ds.Categories)+1)
	for _, s := range pipeline.AggregateAll(ds) {
		row := []string{s.Category, fmt.Sprintf("%d", s.Defined()), "-", "-", "", ""}
		if s.Defined() > 0 {
			row[2] = cli.FormatEuro(s.Mean())
		}
		if p, v, ok := s.Peak(); ok {
			row[3] = fmt.Sprintf("%s %s", p.Short(), cli.FormatEuro(v))
		}
		if fc, err := policy.Forecast(s); err == nil {
			row[4] = fmt.Sprintf("%s %s", fc.NextPeriod.Short(), cli.FormatEuro(fc.NextValue))
		} else {
			row[4] = pipeline.Prompt(err)
		}
		row[5] = cli.RenderSeriesSparkline(s)
		rows = append(rows, row)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   ds.Source,
		Headers: []string{"Category", "Months", "Mean", "Peak", "Next Month", "Jan-Dec"},
		Rows:    rows,
	}))
	return nil
}

// printCategoryDetail prints every month of one category with the fitted
// trend alongside.
func printCategoryDetail(ds *model.Dataset, category string, policy pipeline.ForecastPolicy) error {
	ov, err := pipeline.BuildOverview(ds, category, 0, policy)
	if err != nil {
		return err
	}

	fitted := map[model.Period]float64{}
	if ov.Forecast != nil {
		for i, p := range ov.Forecast.Periods {
			fitted[p] = ov.Forecast.Fitted[i]
		}
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  by month", category)))
	fmt.Println()

	rows := make([][]string, 0, model.PeriodCount+3)
	for _, pt := range ov.Series.Points {
		row := []string{pt.Period.String(), "-", ""}
		if pt.Defined {
			row[1] = cli.FormatEuro(pt.Value)
		}
		if f, ok := fitted[pt.Period]; ok {
			row[2] = cli.FormatEuro(f)
		}
		rows = append(rows, row)
	}
	rows = append(rows, []string{"---"})
	if ov.HasPeak {
		rows = append(rows, []string{"Peak", cli.FormatEuro(ov.PeakValue), ov.PeakPeriod.String()})
	}
	if ov.Forecast != nil {
		rows = append(rows, []string{"Next (" + ov.Forecast.NextPeriod.String() + ")", cli.FormatEuro(ov.Forecast.NextValue), cli.FormatSlope(ov.Forecast.Slope)})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Spent", "Trend"},
		Rows:    rows,
	}))
	if ov.ForecastErr != nil {
		fmt.Println(cli.RenderPrompt(pipeline.Prompt(ov.ForecastErr)))
	}
	return nil
}
