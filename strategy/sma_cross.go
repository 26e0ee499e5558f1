package strategy

import (
	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/sim"
)

func init() {
	Register("sma-cross", func() Strategy { return NewSMACross(10, 30, 1) })
}

// SMACross goes long when the fast average crosses above the slow one and
// flattens on the cross back down. Long-only, at most one position.
type SMACross struct {
	fast *indicators.SMA
	slow *indicators.SMA
	size float64

	wasAbove bool
	ready    bool
}

func NewSMACross(fast, slow int, size float64) *SMACross {
	return &SMACross{
		fast: indicators.NewSMA(fast),
		slow: indicators.NewSMA(slow),
		size: size,
	}
}

func (s *SMACross) Next(bar market.Bar, ctx Context) (any, error) {
	s.fast.Update(bar)
	s.slow.Update(bar)

	if !s.fast.Ready() || !s.slow.Ready() {
		return nil, nil
	}

	above := s.fast.Value() > s.slow.Value()
	defer func() { s.wasAbove = above; s.ready = true }()

	if !s.ready {
		return nil, nil
	}

	if above && !s.wasAbove && ctx.Position == 0 {
		return sim.Intent{Side: sim.Buy, Type: sim.Market, Size: s.size}, nil
	}
	if !above && s.wasAbove && ctx.Position > 0 {
		return sim.Intent{Side: sim.Sell, Type: sim.Market, Size: ctx.Position}, nil
	}
	return nil, nil
}
