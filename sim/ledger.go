package sim

import (
	"fmt"
	"math"
	"sort"
)

// Position is one instrument's holding. Quantity is signed but stays >= 0
// under the long-only policy; AvgCost is the size-weighted average entry
// price and is untouched by position-decreasing fills.
type Position struct {
	Symbol   string
	Quantity float64
	AvgCost  float64
}

// Ledger owns cash, positions, and realized PnL for a single run. It is
// mutated only by fills and mark-to-market, and only by one goroutine.
type Ledger struct {
	cash      float64
	realized  float64
	equity    float64
	positions map[string]*Position
	lastClose map[string]float64
}

// NewLedger starts a ledger with the given cash; equity equals cash until
// the first mark.
func NewLedger(cash float64) *Ledger {
	return &Ledger{
		cash:      cash,
		equity:    cash,
		positions: make(map[string]*Position),
		lastClose: make(map[string]float64),
	}
}

func (l *Ledger) Cash() float64        { return l.cash }
func (l *Ledger) RealizedPnL() float64 { return l.realized }
func (l *Ledger) Equity() float64      { return l.equity }

// Position returns a copy of the holding for symbol; the zero Position if
// there is none.
func (l *Ledger) Position(symbol string) Position {
	if p, ok := l.positions[symbol]; ok {
		return *p
	}
	return Position{Symbol: symbol}
}

// Positions returns copies of all non-empty holdings, sorted by symbol.
func (l *Ledger) Positions() []Position {
	out := make([]Position, 0, len(l.positions))
	for _, p := range l.positions {
		if p.Quantity != 0 {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// ApplyFill books one fill and returns the realized PnL it produced (zero
// for position-increasing fills). A sell larger than the current holding is
// an error; the caller rejects such orders before matching, this is the
// backstop.
func (l *Ledger) ApplyFill(f Fill) (float64, error) {
	p, ok := l.positions[f.Symbol]
	if !ok {
		p = &Position{Symbol: f.Symbol}
		l.positions[f.Symbol] = p
	}

	notional := f.Price * f.Size

	switch f.Side {
	case Buy:
		newQty := p.Quantity + f.Size
		if p.Quantity > 0 {
			p.AvgCost = (p.AvgCost*p.Quantity + notional) / newQty
		} else {
			p.AvgCost = f.Price
		}
		p.Quantity = newQty
		l.cash -= notional + f.Commission
		return 0, nil

	case Sell:
		if f.Size > p.Quantity {
			return 0, fmt.Errorf("%w: sell %v exceeds position %v in %s",
				ErrInvalidOrder, f.Size, p.Quantity, f.Symbol)
		}
		closing := math.Min(f.Size, p.Quantity)
		realized := (f.Price - p.AvgCost) * closing
		l.realized += realized
		p.Quantity -= f.Size
		if p.Quantity < 1e-12 {
			p.Quantity = 0
			p.AvgCost = 0
		}
		l.cash += notional - f.Commission
		return realized, nil
	}

	return 0, fmt.Errorf("%w: unknown side %d", ErrInvalidOrder, f.Side)
}

// Valuation prices the account as if symbol last traded at close, without
// recording anything. The engine uses it for pre-decision snapshots.
func (l *Ledger) Valuation(symbol string, close float64) float64 {
	equity := l.cash
	for sym, p := range l.positions {
		if p.Quantity == 0 {
			continue
		}
		last := l.lastClose[sym]
		if sym == symbol {
			last = close
		}
		equity += p.Quantity * last
	}
	return equity
}

// MarkToMarket records the latest close for symbol and recomputes equity as
// cash plus the value of every holding at its last known close. Called
// exactly once per processed bar, after the fill (if any).
func (l *Ledger) MarkToMarket(symbol string, close float64) float64 {
	l.lastClose[symbol] = close

	equity := l.cash
	for sym, p := range l.positions {
		if p.Quantity == 0 {
			continue
		}
		equity += p.Quantity * l.lastClose[sym]
	}
	l.equity = equity
	return equity
}
