// Package stats derives risk/return metrics from a finalized equity curve
// and trade history. Nothing here runs in the hot loop: the engine calls
// Compute exactly once, after the last bar.
package stats

import (
	"math"
	"time"

	"github.com/rustyeddy/backtester/sim"
)

// EquityPoint is one mark-to-market observation, one per processed bar.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// Config tunes annualization. The zero value is usable: 252 periods per
// year and a zero risk-free rate.
type Config struct {
	PeriodsPerYear float64
	RiskFree       float64 // annual risk-free rate, e.g. 0.02
}

// Snapshot holds the derived metrics. Degenerate inputs (flat curve, single
// point, no trades) produce zeros, never NaN and never an error.
type Snapshot struct {
	StartEquity      float64 `json:"start_equity"`
	EndEquity        float64 `json:"end_equity"`
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	Sharpe           float64 `json:"sharpe"`
	Calmar           float64 `json:"calmar"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	MaxDDDuration    int     `json:"max_dd_duration"`
	TotalTrades      int     `json:"total_trades"`
	WinningTrades    int     `json:"winning_trades"`
	LosingTrades     int     `json:"losing_trades"`
	WinRate          float64 `json:"win_rate"`
	TotalPnL         float64 `json:"total_pnl"`
}

// Compute walks the curve once for returns and drawdown, then folds in the
// trade history.
func Compute(curve []EquityPoint, trades []sim.TradeRecord, cfg Config) Snapshot {
	if cfg.PeriodsPerYear <= 0 {
		cfg.PeriodsPerYear = 252
	}

	var s Snapshot
	if len(curve) == 0 {
		return s
	}

	s.StartEquity = curve[0].Equity
	s.EndEquity = curve[len(curve)-1].Equity
	if s.StartEquity != 0 {
		s.TotalReturn = s.EndEquity/s.StartEquity - 1
	}

	returns := periodReturns(curve)
	mean := meanOf(returns)
	sd := sampleStdev(returns, mean)

	nPeriods := float64(len(returns))
	if nPeriods > 0 {
		base := 1 + s.TotalReturn
		if base > 0 {
			s.AnnualizedReturn = math.Pow(base, cfg.PeriodsPerYear/nPeriods) - 1
		} else {
			s.AnnualizedReturn = -1
		}
	}

	sqrtPPY := math.Sqrt(cfg.PeriodsPerYear)
	s.Volatility = sd * sqrtPPY
	if sd > 0 {
		excess := mean - cfg.RiskFree/cfg.PeriodsPerYear
		s.Sharpe = excess / sd * sqrtPPY
	}

	s.MaxDrawdown, s.MaxDDDuration = drawdown(curve)
	if s.MaxDrawdown > 0 {
		s.Calmar = s.AnnualizedReturn / s.MaxDrawdown
	}

	s.TotalTrades = len(trades)
	for _, tr := range trades {
		s.TotalPnL += tr.RealizedPnL
		if tr.Side != sim.Sell {
			continue
		}
		if tr.RealizedPnL > 0 {
			s.WinningTrades++
		} else if tr.RealizedPnL < 0 {
			s.LosingTrades++
		}
	}
	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades)
	}

	return s
}

func periodReturns(curve []EquityPoint) []float64 {
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev != 0 {
			out = append(out, curve[i].Equity/prev-1)
		}
	}
	return out
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func sampleStdev(vals []float64, mean float64) float64 {
	if len(vals) <= 1 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

// drawdown tracks the running peak in a single pass. Duration counts the
// longest contiguous run of bars spent below a prior peak.
func drawdown(curve []EquityPoint) (maxDD float64, maxDuration int) {
	peak := curve[0].Equity
	duration := 0
	for _, pt := range curve {
		if pt.Equity > peak {
			peak = pt.Equity
			duration = 0
			continue
		}
		duration++
		if peak > 0 {
			if dd := 1 - pt.Equity/peak; dd > maxDD {
				maxDD = dd
			}
		}
		if duration > maxDuration {
			maxDuration = duration
		}
	}
	return maxDD, maxDuration
}
