package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query recorded backtest runs",
	Long: `Query and display backtest records from a SQLite journal database.

Subcommands:
  runs   - List recorded runs
  run    - Show one run's summary
  trades - List a run's trades

Examples:
  backtester journal runs
  backtester journal trades <run-id>`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show one run's summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List a run's trades",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalTradesCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./backtests.db", "path to SQLite journal DB")
}

func openJournalDB() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListRuns()
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %-8s  %s -> %s  equity $%.2f  return %.2f%%  trades %d\n",
			r.RunID, r.Symbol,
			r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"),
			r.EndEquity, r.TotalReturn*100, r.Trades)
	}
	return nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	r, err := j.GetRun(args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	fmt.Printf("Run %s (%s)\n", r.RunID, r.Created.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Symbol: %s\n", r.Symbol)
	fmt.Printf("  Period: %s -> %s\n", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	fmt.Printf("  Cash: $%.2f -> $%.2f (equity $%.2f)\n", r.StartCash, r.EndCash, r.EndEquity)
	fmt.Printf("  Return: %.2f%%  Max DD: %.2f%%  Sharpe: %.2f\n",
		r.TotalReturn*100, r.MaxDrawdown*100, r.Sharpe)
	fmt.Printf("  Trades: %d (wins %d, losses %d, win rate %.1f%%)\n",
		r.Trades, r.Wins, r.Losses, r.WinRate*100)
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	trades, err := j.ListTradesByRun(args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	if len(trades) == 0 {
		fmt.Println("No trades recorded for this run.")
		return nil
	}

	for _, t := range trades {
		fmt.Printf("%s  #%d  %-4s %-8s  %.4f x %.4f  comm $%.4f  pnl $%.2f\n",
			t.Time.Format("2006-01-02 15:04:05"), t.OrderID,
			t.Side, t.Symbol, t.Size, t.Price, t.Commission, t.RealizedPnL)
	}
	return nil
}
