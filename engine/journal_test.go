package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/sim"
)

func TestRunWritesSQLiteJournal(t *testing.T) {
	jnl, err := journal.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer jnl.Close()

	e, err := New(Config{Cash: 10000, CommissionRate: 0.005, BatchSize: 2})
	require.NoError(t, err)
	e.SetJournal(jnl)

	strat := &script{actions: map[int]any{
		0: sim.Intent{Side: sim.Buy, Size: 10},
		2: sim.Intent{Side: sim.Sell, Size: 10},
	}}
	bars := testBars("AAPL", 100, 105, 110, 112, 111)

	res, err := e.Run(strat, bars)
	require.NoError(t, err)

	rec, err := jnl.GetRun(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", rec.Symbol)
	assert.InDelta(t, 10000, rec.StartCash, 1e-9)
	assert.InDelta(t, res.Cash, rec.EndCash, 1e-9)
	assert.InDelta(t, res.Equity, rec.EndEquity, 1e-9)
	assert.Equal(t, 2, rec.Trades)

	trades, err := jnl.ListTradesByRun(res.RunID)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "BUY", trades[0].Side)
	assert.Equal(t, "SELL", trades[1].Side)
	assert.InDelta(t, res.Trades[1].RealizedPnL, trades[1].RealizedPnL, 1e-9)

	curve, err := jnl.ListEquityByRun(res.RunID)
	require.NoError(t, err)
	require.Len(t, curve, len(bars))
	for i, pt := range curve {
		assert.InDelta(t, res.EquityCurve[i].Equity, pt.Equity, 1e-9)
	}

	runs, err := jnl.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].RunID)
}

func TestRunWritesCSVJournal(t *testing.T) {
	dir := t.TempDir()
	jnl, err := journal.NewCSV(filepath.Join(dir, "trades.csv"), filepath.Join(dir, "equity.csv"))
	require.NoError(t, err)

	e, err := New(Config{Cash: 10000})
	require.NoError(t, err)
	e.SetJournal(jnl)

	strat := &script{actions: map[int]any{0: "BUY"}}
	_, err = e.Run(strat, testBars("SPY", 100, 101))
	require.NoError(t, err)
	require.NoError(t, jnl.Close())
}
