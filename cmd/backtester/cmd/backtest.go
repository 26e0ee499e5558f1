package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/engine"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/store"
	"github.com/rustyeddy/backtester/strategy"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a backtest directly from flags",
	Long: `Backtest replays a bar file (or a symbol from a kline store) through a
registered strategy without a config file.

Supported strategies:
  - noop: Does nothing (baseline test)
  - sma-cross: SMA crossover with configurable fast/slow windows

Example:
  backtester backtest -f data/aapl.csv -s sma-cross --fast 10 --slow 30`,
	RunE: runBacktest,
}

var (
	btFile     string
	btDBPath   string
	btPeriod   string
	btSymbol   string
	btCash     float64
	btStrategy string
	btFast     int
	btSlow     int
	btSize     float64
	btCommRate float64
	btSlipBPS  float64
	btBatch    int
	btJournal  string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btFile, "file", "f", "", "path to bar CSV (plain or .xz)")
	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "", "path to kline store database")
	backtestCmd.Flags().StringVarP(&btPeriod, "period", "p", "1d", "kline period when loading from a store")
	backtestCmd.Flags().StringVarP(&btSymbol, "symbol", "i", "", "instrument symbol (required)")
	backtestCmd.Flags().Float64VarP(&btCash, "cash", "b", 100_000, "starting cash")

	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "noop", "strategy name")
	backtestCmd.Flags().IntVar(&btFast, "fast", 10, "sma-cross: fast window")
	backtestCmd.Flags().IntVar(&btSlow, "slow", 30, "sma-cross: slow window")
	backtestCmd.Flags().Float64VarP(&btSize, "size", "u", 1, "order size per signal")

	backtestCmd.Flags().Float64Var(&btCommRate, "commission", 0, "commission rate per fill (fraction of notional)")
	backtestCmd.Flags().Float64Var(&btSlipBPS, "slippage", 0, "market order slippage in basis points")
	backtestCmd.Flags().IntVar(&btBatch, "batch", 0, "bars per journal flush (0 = default)")
	backtestCmd.Flags().StringVar(&btJournal, "journal", "", "path to SQLite journal DB (empty = no journal)")

	backtestCmd.MarkFlagRequired("symbol")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	if (btFile == "") == (btDBPath == "") {
		return fmt.Errorf("exactly one of --file or --db is required")
	}

	var (
		bars []market.Bar
		err  error
	)
	if btFile != "" {
		bars, err = market.LoadFile(btFile, btSymbol)
	} else {
		var st *store.Store
		if st, err = store.Open(btDBPath); err == nil {
			bars, err = st.LoadOrSynthesize(btPeriod, btSymbol, time.Time{}, time.Time{})
			st.Close()
		}
	}
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	strat, err := strategyByName(btStrategy)
	if err != nil {
		return err
	}

	e, err := engine.New(engine.Config{
		Cash:           btCash,
		CommissionRate: btCommRate,
		SlippageBPS:    btSlipBPS,
		BatchSize:      btBatch,
	})
	if err != nil {
		return err
	}

	if btJournal != "" {
		jnl, err := openJournal(config.JournalConfig{Type: "sqlite", DBPath: btJournal})
		if err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		defer jnl.Close()
		e.SetJournal(jnl)
	}

	fmt.Printf("Running backtest with strategy: %s\n", btStrategy)
	fmt.Printf("  Symbol: %s\n", btSymbol)
	fmt.Printf("  Bars: %d\n", len(bars))

	res, err := e.Run(strat, bars)
	if err != nil {
		return err
	}

	printResult(res)
	return nil
}

func strategyByName(name string) (strategy.Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sma-cross", "smacross":
		return strategy.NewSMACross(btFast, btSlow, btSize), nil
	default:
		return strategy.New(name)
	}
}
