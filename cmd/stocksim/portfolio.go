package main

import (
	"context"

	"github.com/newthinker/stocksim/internal/app"
	"github.com/spf13/cobra"
)

var (
	portfolioDate     string
	portfolioSellDate string
)

var portfolioCmd = &cobra.Command{
	Use:     "portfolio TICKER:AMOUNT...",
	Short:   "Simulate a portfolio of stocks bought on the same date",
	Example: "  stocksim portfolio AAPL:1000 TSLA:500 MSFT:500 --date 2020-01-01",
	Args:    inputArgs(cobra.MinimumNArgs(1)),
	RunE:    runPortfolio,
}

func init() {
	portfolioCmd.Flags().StringVarP(&portfolioDate, "date", "d", "", "buy date YYYY-MM-DD (required)")
	portfolioCmd.Flags().StringVarP(&portfolioSellDate, "sell-date", "s", "", "sell date YYYY-MM-DD (default today)")

	rootCmd.AddCommand(portfolioCmd)
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	if err := requireFlags(cmd, "date"); err != nil {
		return err
	}
	holdings, err := app.ParseHoldings(args)
	if err != nil {
		return err
	}

	return run(cmd, func(ctx context.Context, e *env) error {
		period, err := app.ParsePeriod(portfolioDate, portfolioSellDate, e.app.Now())
		if err != nil {
			return err
		}

		result, err := e.app.Portfolio(ctx, holdings, period)
		if err != nil {
			return err
		}
		return e.emit(result, func() error { return e.out.Portfolio(result) })
	})
}
