package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/engine"
	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest described by a config file",
	Long: `Run loads a YAML or JSON configuration, replays the configured bar data
through the configured strategy, and prints the result.

Example:
  backtester run -c backtest.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to config file (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return err
	}

	bars, err := loadConfiguredBars(cfg)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	strat, err := cfg.BuildStrategy()
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	ecfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}
	e, err := engine.New(ecfg)
	if err != nil {
		return err
	}

	jnl, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if jnl != nil {
		defer jnl.Close()
		e.SetJournal(jnl)
	}

	fmt.Printf("Running %s on %s (%d bars)\n", cfg.Strategy.Name, cfg.Data.Symbol, len(bars))
	res, err := e.Run(strat, bars)
	if err != nil {
		return err
	}

	printResult(res)
	return nil
}

func loadConfiguredBars(cfg *config.Config) ([]market.Bar, error) {
	if cfg.Data.File != "" {
		return market.LoadFile(cfg.Data.File, cfg.Data.Symbol)
	}

	st, err := store.Open(cfg.Data.DBPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	// Range filtering happens in the engine; load the whole series.
	return st.LoadOrSynthesize(cfg.Data.Period, cfg.Data.Symbol, time.Time{}, time.Time{})
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "", "none":
		return nil, nil
	case "csv":
		return journal.NewCSV(jc.TradesFile, jc.EquityFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	}
	return nil, fmt.Errorf("unknown journal type %q", jc.Type)
}

func printResult(res *engine.Result) {
	s := res.Stats

	fmt.Printf("\nBacktest Complete! (run %s)\n", res.RunID)
	if !res.Start.IsZero() {
		fmt.Printf("  Period: %s -> %s\n",
			res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"))
	}
	fmt.Printf("  Cash: $%.2f\n", res.Cash)
	fmt.Printf("  Equity: $%.2f\n", res.Equity)
	fmt.Printf("  Realized PnL: $%.2f\n", res.RealizedPnL)
	if res.Position != 0 {
		fmt.Printf("  Open Position: %.4f @ $%.4f\n", res.Position, res.AvgCost)
	}

	fmt.Printf("\nPerformance:\n")
	fmt.Printf("  Total Return: %.2f%%\n", s.TotalReturn*100)
	fmt.Printf("  Annualized: %.2f%%\n", s.AnnualizedReturn*100)
	fmt.Printf("  Volatility: %.2f%%\n", s.Volatility*100)
	fmt.Printf("  Sharpe: %.2f\n", s.Sharpe)
	fmt.Printf("  Calmar: %.2f\n", s.Calmar)
	fmt.Printf("  Max Drawdown: %.2f%% (%d bars)\n", s.MaxDrawdown*100, s.MaxDDDuration)

	fmt.Printf("\nTrades:\n")
	fmt.Printf("  Total: %d (wins: %d, losses: %d)\n", s.TotalTrades, s.WinningTrades, s.LosingTrades)
	fmt.Printf("  Win Rate: %.1f%%\n", s.WinRate*100)
	fmt.Printf("  Total PnL: $%.2f\n", s.TotalPnL)
}
