package cmd

import (
	"fmt"
	"os"

	"github.com/letmecheque/letmecheque/internal/cli"
	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/pipeline"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagRevolut string
	flagBank    string
	flagCash    string
	flagWeekly  float64
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Compare a weekly spend against your balances",
	RunE:  runRisk,
}

func init() {
	riskCmd.Flags().StringVar(&flagRevolut, "revolut", "", "Revolut balance (EUR)")
	riskCmd.Flags().StringVar(&flagBank, "bank", "", "Other bank balance (EUR)")
	riskCmd.Flags().StringVar(&flagCash, "cash", "", "Cash on hand (EUR)")
	riskCmd.Flags().Float64VarP(&flagWeekly, "weekly", "w", 0, "Estimated weekly spend (EUR, default from config)")
	rootCmd.AddCommand(riskCmd)
}

func parseBalance(name, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q is not an amount", name, raw)
	}
	return d, nil
}

func runRisk(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var b model.Balances
	if b.Revolut, err = parseBalance("revolut", flagRevolut); err != nil {
		return err
	}
	if b.Bank, err = parseBalance("bank", flagBank); err != nil {
		return err
	}
	if b.Cash, err = parseBalance("cash", flagCash); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}

	weekly := cfg.Risk.WeeklyDefault
	if cmd.Flags().Changed("weekly") {
		weekly = flagWeekly
	}
	a, err := pipeline.Risk(b, weekly, cfg.Risk.ThresholdPercent)
	if err != nil {
		return prompted(os.Stdout, err)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("OVERSPEND CHECK"))
	fmt.Println()

	rows := make([][]string, 0, 5)
	for _, s := range b.Shares() {
		rows = append(rows, []string{s.Source, cli.FormatDecimal(s.Amount), fmt.Sprintf("%.1f%%", s.Percent)})
	}
	rows = append(rows, []string{"---"}, []string{"Total", cli.FormatDecimal(b.Total()), ""})
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Source", "Balance", "Share"},
		Rows:    rows,
	}))
	fmt.Println()

	fmt.Printf("  Weekly spend:  %s\n", cli.FormatDecimal(a.Estimate))
	if a.Level == model.RiskIndeterminate {
		fmt.Println(cli.RenderPrompt("Enter your balances to get a risk assessment"))
		return nil
	}
	fmt.Printf("  %s\n", cli.RenderGauge(a.Ratio, a.Threshold, 30))
	fmt.Printf("  Status:        %s (threshold %s)\n", cli.RenderRiskLevel(a.Level), cli.FormatRatio(a.Threshold))
	return nil
}
