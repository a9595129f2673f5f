package main

import (
	"context"

	"github.com/newthinker/stocksim/internal/app"
	"github.com/spf13/cobra"
)

var (
	compareDate     string
	compareSellDate string
)

var compareCmd = &cobra.Command{
	Use:   `compare "TICKER:AMOUNT,..." "TICKER:AMOUNT,..."...`,
	Short: "Compare investment scenarios over the same period",
	Long: `Compare two or more scenarios. Each scenario is a quoted, comma separated
list of TICKER:AMOUNT holdings.`,
	Example: `  stocksim compare "AAPL:1000,TSLA:500" "MSFT:800,GOOGL:700" --date 2020-01-01`,
	Args:    inputArgs(cobra.MinimumNArgs(1)),
	RunE:    runCompare,
}

func init() {
	compareCmd.Flags().StringVarP(&compareDate, "date", "d", "", "buy date YYYY-MM-DD (required)")
	compareCmd.Flags().StringVarP(&compareSellDate, "sell-date", "s", "", "sell date YYYY-MM-DD (default today)")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	if err := requireFlags(cmd, "date"); err != nil {
		return err
	}
	specs, err := app.ParseScenarios(args)
	if err != nil {
		return err
	}

	return run(cmd, func(ctx context.Context, e *env) error {
		period, err := app.ParsePeriod(compareDate, compareSellDate, e.app.Now())
		if err != nil {
			return err
		}

		result, err := e.app.Compare(ctx, specs, period)
		if err != nil {
			return err
		}
		return e.emit(result, func() error { return e.out.Comparison(result) })
	})
}
