package sim

import (
	"github.com/rustyeddy/backtester/market"
)

// Matcher turns an order plus the current bar into at most one fill. It
// holds no state across bars: an unfilled limit order is simply gone.
type Matcher struct {
	Costs CostModel
}

// Match executes an order against one bar.
//
// Market orders always fill, fully, at the bar's close adjusted by
// slippage. Limit buys fill iff the bar traded at or below the limit
// (bar.Low <= price); limit sells iff it traded at or above (bar.High >=
// price). Limit fills execute exactly at the limit price.
func (m Matcher) Match(o Order, bar market.Bar) (Fill, bool) {
	switch o.Type {
	case Market:
		price := m.Costs.ExecutionPrice(o.Side, bar.Close)
		return m.fill(o, price, bar), true

	case Limit:
		if o.Side == Buy && bar.Low <= o.Price {
			return m.fill(o, o.Price, bar), true
		}
		if o.Side == Sell && bar.High >= o.Price {
			return m.fill(o, o.Price, bar), true
		}
	}
	return Fill{}, false
}

func (m Matcher) fill(o Order, price float64, bar market.Bar) Fill {
	return Fill{
		OrderID:    o.ID,
		Side:       o.Side,
		Price:      price,
		Size:       o.Size,
		Commission: m.Costs.Commission(price * o.Size),
		Time:       bar.Time,
		Symbol:     o.Symbol,
	}
}
