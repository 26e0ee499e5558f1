package engine

import (
	"github.com/rustyeddy/backtester/sim"
	"github.com/rustyeddy/backtester/strategy"
)

// hooks holds the strategy's lifecycle callbacks, resolved once when the
// run is constructed. Missing hooks are no-ops, so the hot loop never
// re-probes interfaces.
type hooks struct {
	onStart func(strategy.Context) error
	onOrder func(sim.OrderEvent) error
	onTrade func(sim.TradeEvent) error
	onStop  func() error
}

func bindHooks(s strategy.Strategy) hooks {
	h := hooks{
		onStart: func(strategy.Context) error { return nil },
		onOrder: func(sim.OrderEvent) error { return nil },
		onTrade: func(sim.TradeEvent) error { return nil },
		onStop:  func() error { return nil },
	}
	if v, ok := s.(strategy.StartHandler); ok {
		h.onStart = v.OnStart
	}
	if v, ok := s.(strategy.OrderHandler); ok {
		h.onOrder = v.OnOrder
	}
	if v, ok := s.(strategy.TradeHandler); ok {
		h.onTrade = v.OnTrade
	}
	if v, ok := s.(strategy.StopHandler); ok {
		h.onStop = v.OnStop
	}
	return h
}
