package main

import (
	"context"

	"github.com/newthinker/stocksim/internal/app"
	"github.com/spf13/cobra"
)

var (
	dcaDate    string
	dcaEndDate string
	dcaAmount  float64
)

var dcaCmd = &cobra.Command{
	Use:     "dca TICKER",
	Short:   "Simulate dollar-cost averaging with monthly purchases",
	Example: "  stocksim dca AAPL --date 2020-01-01 --amount 500",
	Args:    inputArgs(cobra.ExactArgs(1)),
	RunE:    runDCA,
}

func init() {
	dcaCmd.Flags().StringVarP(&dcaDate, "date", "d", "", "start date YYYY-MM-DD (required)")
	dcaCmd.Flags().StringVarP(&dcaEndDate, "end-date", "e", "", "last purchase date YYYY-MM-DD (default today)")
	dcaCmd.Flags().Float64VarP(&dcaAmount, "amount", "a", 0, "amount per month (default from config)")

	rootCmd.AddCommand(dcaCmd)
}

func runDCA(cmd *cobra.Command, args []string) error {
	if err := requireFlags(cmd, "date"); err != nil {
		return err
	}
	ticker, err := app.ParseTicker(args[0])
	if err != nil {
		return err
	}

	return run(cmd, func(ctx context.Context, e *env) error {
		period, err := app.ParsePeriod(dcaDate, dcaEndDate, e.app.Now())
		if err != nil {
			return err
		}
		amount, err := amountFlag(cmd, "amount", dcaAmount, e.cfg.Defaults.DCAAmount)
		if err != nil {
			return err
		}

		result, err := e.app.DCA(ctx, ticker, period, amount)
		if err != nil {
			return err
		}
		return e.emit(result, func() error { return e.out.DCA(result) })
	})
}
