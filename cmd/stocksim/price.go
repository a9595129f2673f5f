package main

import (
	"context"

	"github.com/newthinker/stocksim/internal/app"
	"github.com/spf13/cobra"
)

var priceCmd = &cobra.Command{
	Use:     "price TICKER",
	Short:   "Show the latest price of a stock",
	Example: "  stocksim price AAPL",
	Args:    inputArgs(cobra.ExactArgs(1)),
	RunE:    runPrice,
}

func init() {
	rootCmd.AddCommand(priceCmd)
}

func runPrice(cmd *cobra.Command, args []string) error {
	ticker, err := app.ParseTicker(args[0])
	if err != nil {
		return err
	}

	return run(cmd, func(ctx context.Context, e *env) error {
		p, err := e.app.Price(ctx, ticker)
		if err != nil {
			return err
		}
		return e.emit(p, func() error { return e.out.Price(p.Symbol, p.Value) })
	})
}
