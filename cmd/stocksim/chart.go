package main

import (
	"context"
	"fmt"

	"github.com/newthinker/stocksim/internal/app"
	"github.com/newthinker/stocksim/internal/core"
	"github.com/spf13/cobra"
)

const sparklineWidth = 48

var (
	chartDate      string
	chartEndDate   string
	chartAmount    float64
	chartSave      string
	chartOverwrite bool
	chartList      bool
)

var chartCmd = &cobra.Command{
	Use:   "chart TICKER...",
	Short: "Chart the value of an investment over time",
	Long: `Chart the value of the same amount invested in each ticker. Without --save the
chart is drawn as terminal sparklines; with --save it is rendered as SVG and
written to the configured archive.`,
	Example: `  stocksim chart AAPL TSLA MSFT --date 2020-01-01
  stocksim chart AAPL MSFT --date 2020-01-01 --save aapl-vs-msft
  stocksim chart --list`,
	RunE: runChart,
}

func init() {
	chartCmd.Flags().StringVarP(&chartDate, "date", "d", "", "start date YYYY-MM-DD")
	chartCmd.Flags().StringVarP(&chartEndDate, "end-date", "e", "", "end date YYYY-MM-DD (default today)")
	chartCmd.Flags().Float64VarP(&chartAmount, "amount", "a", 0, "initial amount (default from config)")
	chartCmd.Flags().StringVarP(&chartSave, "save", "o", "", "save the chart as SVG under this name")
	chartCmd.Flags().BoolVar(&chartOverwrite, "overwrite", false, "replace an existing saved chart")
	chartCmd.Flags().BoolVar(&chartList, "list", false, "list saved charts")

	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
	if chartList {
		return run(cmd, func(ctx context.Context, e *env) error {
			names, err := e.app.SavedCharts(ctx)
			if err != nil {
				return err
			}
			return e.emit(names, func() error {
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		})
	}

	if len(args) == 0 {
		return core.Errorf(core.ErrInvalidInput, "at least one ticker is required")
	}
	if err := requireFlags(cmd, "date"); err != nil {
		return err
	}
	tickers, err := parseTickers(args)
	if err != nil {
		return err
	}

	return run(cmd, func(ctx context.Context, e *env) error {
		period, err := app.ParsePeriod(chartDate, chartEndDate, e.app.Now())
		if err != nil {
			return err
		}
		amount, err := amountFlag(cmd, "amount", chartAmount, e.cfg.Defaults.Amount)
		if err != nil {
			return err
		}

		series, skipped, err := e.app.Chart(ctx, tickers, period, amount)
		if err != nil {
			return err
		}
		if !jsonOutput {
			if err := e.out.Skipped(skipped); err != nil {
				return err
			}
		}

		if chartSave != "" {
			title := fmt.Sprintf("Investment performance: %.0f invested on %s",
				amount, period.Start.Format(core.DateLayout))
			location, err := e.app.SaveChart(ctx, chartSave, title, series, chartOverwrite)
			if err != nil {
				return err
			}
			return e.emit(map[string]string{"location": location}, func() error { return e.out.Saved(location) })
		}

		return e.emit(series, func() error { return e.out.Chart(series, amount, period.Start, sparklineWidth) })
	})
}
