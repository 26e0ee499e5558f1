package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/backtester/sim"
)

func curveOf(values ...float64) []EquityPoint {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]EquityPoint, len(values))
	for i, v := range values {
		out[i] = EquityPoint{Time: t0.AddDate(0, 0, i), Equity: v}
	}
	return out
}

func TestComputeEmptyCurve(t *testing.T) {
	s := Compute(nil, nil, Config{})
	assert.Equal(t, Snapshot{}, s)
}

func TestComputeSinglePoint(t *testing.T) {
	s := Compute(curveOf(10_000), nil, Config{})
	assert.Equal(t, 0.0, s.TotalReturn)
	assert.Equal(t, 0.0, s.AnnualizedReturn)
	assert.Equal(t, 0.0, s.Volatility)
	assert.Equal(t, 0.0, s.Sharpe)
	assert.Equal(t, 0.0, s.Calmar)
	assert.Equal(t, 0.0, s.MaxDrawdown)
}

func TestTotalAndAnnualizedReturn(t *testing.T) {
	s := Compute(curveOf(10_000, 10_500, 11_000), nil, Config{PeriodsPerYear: 252})
	assert.InDelta(t, 0.10, s.TotalReturn, 1e-12)

	// (1 + 0.10)^(252/2) - 1
	want := math.Pow(1.10, 126) - 1
	assert.InDelta(t, want, s.AnnualizedReturn, 1e-9)
}

func TestZeroVolatilitySharpeIsZero(t *testing.T) {
	s := Compute(curveOf(10_000, 10_000, 10_000), nil, Config{})
	assert.Equal(t, 0.0, s.Volatility)
	assert.Equal(t, 0.0, s.Sharpe)
	assert.False(t, math.IsNaN(s.Sharpe))
}

func TestDrawdown(t *testing.T) {
	// Peak 12000, trough 9000 -> 25% drawdown over 3 bars below the peak.
	s := Compute(curveOf(10_000, 12_000, 11_000, 9_000, 11_500, 12_500), nil, Config{})
	assert.InDelta(t, 0.25, s.MaxDrawdown, 1e-12)
	assert.Equal(t, 3, s.MaxDDDuration)
}

func TestDrawdownBounds(t *testing.T) {
	curves := [][]float64{
		{100, 90, 80, 120, 60},
		{50, 51, 52, 53},
		{10, 10, 10},
	}
	for _, c := range curves {
		s := Compute(curveOf(c...), nil, Config{})
		assert.GreaterOrEqual(t, s.MaxDrawdown, 0.0)
		assert.LessOrEqual(t, s.MaxDrawdown, 1.0)
	}

	// Monotonically non-decreasing curve never draws down.
	s := Compute(curveOf(100, 100, 110, 120), nil, Config{})
	assert.Equal(t, 0.0, s.MaxDrawdown)
	assert.Equal(t, 0.0, s.Calmar)
}

func TestTradeStats(t *testing.T) {
	trades := []sim.TradeRecord{
		{Side: sim.Buy, Price: 100, Size: 10},
		{Side: sim.Sell, Price: 110, Size: 10, RealizedPnL: 100},
		{Side: sim.Buy, Price: 105, Size: 10},
		{Side: sim.Sell, Price: 101, Size: 10, RealizedPnL: -40},
	}
	s := Compute(curveOf(10_000, 10_100, 10_060), trades, Config{})

	assert.Equal(t, 4, s.TotalTrades)
	assert.Equal(t, 1, s.WinningTrades)
	assert.Equal(t, 1, s.LosingTrades)
	assert.InDelta(t, 0.25, s.WinRate, 1e-12)
	assert.InDelta(t, 60.0, s.TotalPnL, 1e-12)
}

func TestSharpeUsesRiskFree(t *testing.T) {
	curve := curveOf(10_000, 10_100, 10_150, 10_300, 10_250)
	base := Compute(curve, nil, Config{PeriodsPerYear: 252})
	withRF := Compute(curve, nil, Config{PeriodsPerYear: 252, RiskFree: 0.05})
	assert.Less(t, withRF.Sharpe, base.Sharpe)
}
