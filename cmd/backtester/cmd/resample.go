package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/store"
)

var resampleCmd = &cobra.Command{
	Use:   "resample",
	Short: "Resample klines from one period to another",
	Long: `Resample aggregates stored bars into a coarser period: opens from the
first bar of each bucket, highs and lows across it, closes from the last,
volumes summed.

Example:
  backtester resample -d klines.db -i AAPL --from 1m --to 15m`,
	RunE: runResample,
}

var (
	resampleDBPath string
	resampleSymbol string
	resampleFrom   string
	resampleTo     string
)

func init() {
	rootCmd.AddCommand(resampleCmd)

	resampleCmd.Flags().StringVarP(&resampleDBPath, "db", "d", "./klines.db", "path to kline store database")
	resampleCmd.Flags().StringVarP(&resampleSymbol, "symbol", "i", "", "symbol to resample (default: all)")
	resampleCmd.Flags().StringVar(&resampleFrom, "from", "1m", "source period")
	resampleCmd.Flags().StringVar(&resampleTo, "to", "", "target period (required)")
	resampleCmd.MarkFlagRequired("to")
}

func runResample(cmd *cobra.Command, args []string) error {
	st, err := store.Open(resampleDBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	symbols := []string{resampleSymbol}
	if resampleSymbol == "" {
		if symbols, err = st.Symbols(resampleFrom); err != nil {
			return err
		}
		if len(symbols) == 0 {
			return fmt.Errorf("no symbols stored at period %s", resampleFrom)
		}
	}

	for _, sym := range symbols {
		n, err := st.ResampleInto(sym, resampleFrom, resampleTo)
		if err != nil {
			return fmt.Errorf("resample %s: %w", sym, err)
		}
		fmt.Printf("%s: %s -> %s, %d bars written\n", sym, resampleFrom, resampleTo, n)
	}
	return nil
}
