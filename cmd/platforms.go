package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/letmecheque/letmecheque/internal/cli"
	"github.com/letmecheque/letmecheque/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagTop int

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "Online shopping platforms ranked by average spend per user",
	RunE:  runPlatforms,
}

func init() {
	platformsCmd.Flags().IntVarP(&flagTop, "top", "t", 10, "Number of platforms to show (0 for all)")
	rootCmd.AddCommand(platformsCmd)
}

func runPlatforms(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	res, err := loadData(cfg)
	if err != nil {
		return err
	}
	if errors.Is(res.PlatformErr, pipeline.ErrDatasetUnavailable) {
		return prompted(os.Stdout, res.PlatformErr)
	}
	if res.PlatformErr != nil {
		return res.PlatformErr
	}

	ranked := pipeline.RankPlatforms(res.Platforms)
	if flagTop > 0 && flagTop < len(ranked) {
		ranked = ranked[:flagTop]
	}
	if len(ranked) == 0 {
		fmt.Println("\n  No platforms in the reference dataset.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("TOP PLATFORMS  avg spend per user"))
	fmt.Println()

	maxSpend := ranked[0].AvgSpendPerUser
	rows := make([][]string, 0, len(ranked))
	for i, p := range ranked {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			p.Name,
			p.Category,
			cli.FormatEuro(p.AvgSpendPerUser),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"#", "Platform", "Category", "Avg/User"},
		Rows:    rows,
	}))

	fmt.Println()
	for _, p := range ranked {
		fmt.Println(cli.RenderHorizontalBar(fmt.Sprintf("%-20s", p.Name), p.AvgSpendPerUser, maxSpend, 30))
	}
	return nil
}
