// Package journal persists backtest runs: the run summary, every fill, and
// the equity curve. Implementations must tolerate being called from the
// engine's batch flushes — writes arrive in bursts, in order.
package journal

import "time"

// RunRecord summarizes one completed run.
type RunRecord struct {
	RunID    string
	Created  time.Time
	Strategy string
	Symbol   string
	Dataset  string

	Start time.Time
	End   time.Time

	StartCash float64
	EndCash   float64
	EndEquity float64

	Trades      int
	Wins        int
	Losses      int
	WinRate     float64
	TotalReturn float64
	MaxDrawdown float64
	Sharpe      float64
}

// TradeRecord is one fill as stored.
type TradeRecord struct {
	RunID       string
	OrderID     uint64
	Symbol      string
	Side        string
	Price       float64
	Size        float64
	Commission  float64
	RealizedPnL float64
	Time        time.Time
}

// EquityRecord is one equity-curve point as stored.
type EquityRecord struct {
	RunID  string
	Time   time.Time
	Equity float64
}

// Journal records run artifacts. Close flushes and releases the backing
// store.
type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}
