package main

import (
	"context"
	"strings"

	"github.com/newthinker/stocksim/internal/app"
	"github.com/spf13/cobra"
)

var (
	simulateDate      string
	simulateSellDate  string
	simulateAmount    float64
	simulateBenchmark bool
	simulateBenchTick string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate TICKER",
	Short: "Simulate a single stock investment",
	Long: `Simulate buying TICKER for a dollar amount on a date and selling it on the
sell date, or valuing it at the latest price.`,
	Example: `  stocksim simulate AAPL --date 2020-01-01 --amount 1000
  stocksim simulate AAPL --date 2020-01-01 --amount 1000 --benchmark`,
	Args: inputArgs(cobra.ExactArgs(1)),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVarP(&simulateDate, "date", "d", "", "buy date YYYY-MM-DD (required)")
	simulateCmd.Flags().StringVarP(&simulateSellDate, "sell-date", "s", "", "sell date YYYY-MM-DD (default today)")
	simulateCmd.Flags().Float64VarP(&simulateAmount, "amount", "a", 0, "investment amount (required)")
	simulateCmd.Flags().BoolVarP(&simulateBenchmark, "benchmark", "b", false, "compare against the benchmark index")
	simulateCmd.Flags().StringVar(&simulateBenchTick, "benchmark-ticker", "", "benchmark ticker (default from config)")

	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if err := requireFlags(cmd, "date", "amount"); err != nil {
		return err
	}
	ticker, err := app.ParseTicker(args[0])
	if err != nil {
		return err
	}
	if err := app.ValidateAmount(simulateAmount); err != nil {
		return err
	}

	return run(cmd, func(ctx context.Context, e *env) error {
		period, err := app.ParsePeriod(simulateDate, simulateSellDate, e.app.Now())
		if err != nil {
			return err
		}

		if !simulateBenchmark && simulateBenchTick == "" {
			result, err := e.app.Simulate(ctx, ticker, period, simulateAmount)
			if err != nil {
				return err
			}
			return e.emit(result, func() error { return e.out.Investment(result) })
		}

		benchmark := strings.ToUpper(simulateBenchTick)
		if benchmark == "" {
			benchmark = e.cfg.Benchmark.Ticker
		}

		outcome, err := e.app.SimulateWithBenchmark(ctx, ticker, benchmark, period, simulateAmount)
		if err != nil {
			return err
		}
		if outcome.Benchmark == nil {
			e.warn("could not fetch benchmark data: %v", outcome.Warning)
			return e.emit(outcome.Investment, func() error { return e.out.Investment(outcome.Investment) })
		}
		return e.emit(outcome.Benchmark, func() error { return e.out.Benchmark(*outcome.Benchmark) })
	})
}
