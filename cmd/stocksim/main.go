package main

import (
	"fmt"
	"os"

	"github.com/newthinker/stocksim/internal/core"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	debug      bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "stocksim",
	Short: "Stock investment simulator",
	Long: `stocksim estimates what a past investment would be worth today.
It prices lump-sum purchases, portfolios, rankings, scenario comparisons,
benchmark comparisons and monthly dollar-cost averaging from Yahoo Finance
closing prices.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return core.WrapError(core.ErrInvalidInput, err)
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(core.ExitCode(err))
	}
}
