package strategy

import "github.com/rustyeddy/backtester/market"

func init() {
	Register("noop", func() Strategy { return Noop{} })
}

// Noop never trades. Useful as a wiring test and a baseline.
type Noop struct{}

func (Noop) Next(market.Bar, Context) (any, error) { return nil, nil }
