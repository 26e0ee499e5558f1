// Package strategy defines the decision-procedure interface the engine
// drives, plus a small registry of built-in strategies.
package strategy

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/sim"
)

// Context is an immutable snapshot of the account taken before each
// decision. It is a value copy, never a live handle into the ledger, so a
// strategy cannot mutate engine state out of band.
type Context struct {
	Cash     float64
	Position float64
	AvgCost  float64
	Equity   float64
	BarIndex int
}

// Strategy is the minimal interface a backtest strategy must implement.
// Next is called once per bar and may return:
//
//   - nil for no action
//   - "BUY" or "SELL" (market order of size 1)
//   - a sim.Intent (or *sim.Intent)
//   - a map[string]any descriptor {action, type, size, price, symbol}
//
// A malformed return is rejected as an invalid order; an error terminates
// the run.
type Strategy interface {
	Next(bar market.Bar, ctx Context) (any, error)
}

// Lifecycle hooks. All optional: the engine probes for them once when the
// run is constructed and substitutes no-ops for anything missing.
type (
	StartHandler interface {
		OnStart(ctx Context) error
	}
	OrderHandler interface {
		OnOrder(evt sim.OrderEvent) error
	}
	TradeHandler interface {
		OnTrade(evt sim.TradeEvent) error
	}
	StopHandler interface {
		OnStop() error
	}
)

// PositionInfo is one instrument's holding as seen by a multi-feed
// strategy.
type PositionInfo struct {
	Position float64
	AvgCost  float64
}

// MultiContext is the portfolio-level snapshot passed to multi-feed
// strategies.
type MultiContext struct {
	Cash       float64
	Equity     float64
	BarIndex   int
	Positions  map[string]PositionInfo
	LastPrices map[string]float64
}

// MultiStrategy is implemented by strategies that want the full update
// slice when several feeds advance together. NextMulti may return a single
// action (any of the Next shapes) or a []any of them. Strategies without it
// fall back to Next with the primary feed's latest bar.
type MultiStrategy interface {
	NextMulti(update map[string]market.Bar, ctx MultiContext) (any, error)
}

// Factory builds a fresh strategy instance. Registered strategies must be
// constructed per run: instances carry indicator state.
type Factory func() Strategy

var (
	mu       sync.RWMutex
	registry = make(map[string]Factory)
)

// Register adds a named strategy factory. Later registrations replace
// earlier ones.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = f
}

// New builds a registered strategy by name.
func New(name string) (Strategy, error) {
	mu.RLock()
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (registered: %s)", name, strings.Join(Names(), ", "))
	}
	return f(), nil
}

// Names lists the registered strategy names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
