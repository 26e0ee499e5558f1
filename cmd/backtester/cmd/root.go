package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "An event-driven bar-replay backtesting engine",
	Long: `Backtester replays historical OHLCV bars through trading strategies and
reports the resulting equity curve, trade history, and performance
statistics.

It provides tools for:
  - Running backtests from a config file or directly from flags
  - Importing CSV bar data (plain, .xz, or zipped) into a kline store
  - Resampling klines between periods (1m -> 15m -> 1d ...)
  - Querying recorded runs, trades, and equity curves`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
