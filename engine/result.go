package engine

import (
	"time"

	"github.com/rustyeddy/backtester/sim"
	"github.com/rustyeddy/backtester/stats"
)

// Result is the finalized outcome of a run. It is self-contained: the
// caller gets the curve, the trade history, and the computed statistics
// without reaching back into the engine.
type Result struct {
	RunID string
	Start time.Time
	End   time.Time

	Cash        float64
	Position    float64
	AvgCost     float64
	Equity      float64
	RealizedPnL float64

	Stats       stats.Snapshot
	EquityCurve []stats.EquityPoint
	Trades      []sim.TradeRecord

	// Positions holds every open position, sorted by symbol. Single-feed
	// runs have at most one entry; multi-feed runs may have several.
	Positions []sim.Position
}

// symbol returns the traded symbol when the run touched exactly one,
// otherwise "". Multi-symbol runs are journaled without a symbol.
func (r *Result) symbol() string {
	seen := ""
	for _, t := range r.Trades {
		if seen == "" {
			seen = t.Symbol
			continue
		}
		if t.Symbol != seen {
			return ""
		}
	}
	return seen
}
