package main

import (
	"context"

	"github.com/newthinker/stocksim/internal/app"
	"github.com/spf13/cobra"
)

var (
	bestDate     string
	bestSellDate string
	bestAmount   float64
	bestTop      int
)

var bestCmd = &cobra.Command{
	Use:     "best TICKER...",
	Short:   "Rank stocks by their return over a period",
	Example: "  stocksim best AAPL TSLA MSFT GOOGL NVDA --date 2020-01-01",
	Args:    inputArgs(cobra.MinimumNArgs(1)),
	RunE:    runBest,
}

func init() {
	bestCmd.Flags().StringVarP(&bestDate, "date", "d", "", "buy date YYYY-MM-DD (required)")
	bestCmd.Flags().StringVarP(&bestSellDate, "sell-date", "s", "", "sell date YYYY-MM-DD (default today)")
	bestCmd.Flags().Float64VarP(&bestAmount, "amount", "a", 0, "amount per stock (default from config)")
	bestCmd.Flags().IntVarP(&bestTop, "top", "t", 0, "show the top N results (default from config)")

	rootCmd.AddCommand(bestCmd)
}

func runBest(cmd *cobra.Command, args []string) error {
	if err := requireFlags(cmd, "date"); err != nil {
		return err
	}
	tickers, err := parseTickers(args)
	if err != nil {
		return err
	}

	return run(cmd, func(ctx context.Context, e *env) error {
		period, err := app.ParsePeriod(bestDate, bestSellDate, e.app.Now())
		if err != nil {
			return err
		}
		amount, err := amountFlag(cmd, "amount", bestAmount, e.cfg.Defaults.Amount)
		if err != nil {
			return err
		}
		top := bestTop
		if !cmd.Flags().Changed("top") {
			top = e.cfg.Defaults.Top
		}

		result, err := e.app.Best(ctx, tickers, period, amount, top)
		if err != nil {
			return err
		}
		return e.emit(result, func() error { return e.out.Ranking(result) })
	})
}
