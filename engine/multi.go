package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/sim"
	"github.com/rustyeddy/backtester/stats"
	"github.com/rustyeddy/backtester/strategy"
)

// RunMulti replays several bar feeds against one strategy on a joint
// timeline. Each step advances every feed whose next bar carries the
// earliest pending timestamp, so feeds with different calendars interleave
// correctly and simultaneous bars arrive together.
//
// Strategies implementing strategy.MultiStrategy receive the whole update
// slice and may return a []any of actions; plain strategies fall back to
// Next with the primary feed's bar. Feed IDs are processed in sorted order
// everywhere, so runs are reproducible regardless of map iteration.
func (e *Engine) RunMulti(strat strategy.Strategy, feeds map[string][]market.Bar) (*Result, error) {
	if strat == nil {
		return nil, errors.New("engine: strategy is required")
	}
	if len(feeds) == 0 {
		return nil, errors.New("engine: at least one feed is required")
	}

	ids := make([]string, 0, len(feeds))
	for fid := range feeds {
		ids = append(ids, fid)
	}
	sort.Strings(ids)

	filtered := make(map[string][]market.Bar, len(feeds))
	for _, fid := range ids {
		bars := feeds[fid]
		if err := market.ValidateSeries(bars); err != nil {
			return nil, fmt.Errorf("feed %s: %w", fid, err)
		}
		filtered[fid] = market.FilterRange(bars, e.cfg.Start, e.cfg.End)
	}

	r := newRun(e.cfg, strat, e.jnl)
	return r.executeMulti(ids, filtered)
}

func (r *run) executeMulti(ids []string, feeds map[string][]market.Bar) (*Result, error) {
	if err := r.transition(Started); err != nil {
		return nil, err
	}
	if err := r.hooks.onStart(strategy.Context{
		Cash:   r.cfg.Cash,
		Equity: r.cfg.Cash,
	}); err != nil {
		return r.fail(err)
	}
	if err := r.transition(Running); err != nil {
		return nil, err
	}

	ms, isMulti := r.strat.(strategy.MultiStrategy)
	primary := ids[0]

	cursors := make(map[string]int, len(feeds))
	lastBar := make(map[string]market.Bar) // by symbol, for matching
	lastPrice := make(map[string]float64)  // by symbol, for valuation
	update := make(map[string]market.Bar, len(feeds))

	batch := r.cfg.batchSize()
	step := 0
	for {
		// Earliest pending timestamp across all feeds.
		var next market.Bar
		found := false
		for _, fid := range ids {
			i := cursors[fid]
			if i >= len(feeds[fid]) {
				continue
			}
			b := feeds[fid][i]
			if !found || b.Time.Before(next.Time) {
				next = b
				found = true
			}
		}
		if !found {
			break
		}

		for k := range update {
			delete(update, k)
		}
		for _, fid := range ids {
			i := cursors[fid]
			if i < len(feeds[fid]) && feeds[fid][i].Time.Equal(next.Time) {
				b := feeds[fid][i]
				update[fid] = b
				lastBar[b.Symbol] = b
				lastPrice[b.Symbol] = b.Close
				cursors[fid]++
			}
		}

		if err := r.stepMulti(step, ids, update, lastBar, lastPrice, ms, isMulti, primary); err != nil {
			r.state = Failed
			return nil, err
		}
		step++

		if step%batch == 0 {
			if err := r.flushJournal(); err != nil {
				r.state = Failed
				return nil, fmt.Errorf("engine: journal: %w", err)
			}
		}
	}
	if err := r.flushJournal(); err != nil {
		r.state = Failed
		return nil, fmt.Errorf("engine: journal: %w", err)
	}

	if err := r.transition(Stopped); err != nil {
		return nil, err
	}
	if err := r.hooks.onStop(); err != nil {
		return r.fail(err)
	}
	if err := r.transition(Finalized); err != nil {
		return nil, err
	}
	return r.finalize()
}

func (r *run) stepMulti(step int, ids []string, update map[string]market.Bar,
	lastBar map[string]market.Bar, lastPrice map[string]float64,
	ms strategy.MultiStrategy, isMulti bool, primary string) error {

	var (
		action any
		err    error
	)
	switch {
	case isMulti:
		action, err = ms.NextMulti(copyUpdate(update), r.multiContext(step, lastPrice))
	default:
		bar, ok := update[primary]
		if !ok {
			// Plain strategies only see the primary feed.
			action, err = nil, nil
		} else {
			pos := r.ledger.Position(bar.Symbol)
			action, err = r.strat.Next(bar, strategy.Context{
				Cash:     r.ledger.Cash(),
				Position: pos.Quantity,
				AvgCost:  pos.AvgCost,
				Equity:   r.ledger.Valuation(bar.Symbol, bar.Close),
				BarIndex: step,
			})
		}
	}
	if err != nil {
		return fmt.Errorf("%w: next at step %d: %v", ErrStrategy, step, err)
	}

	actions, ok := action.([]any)
	if !ok {
		actions = []any{action}
	}
	defaultSymbol := singleUpdateSymbol(update)
	for _, a := range actions {
		if err := r.handleMultiAction(a, defaultSymbol, lastBar); err != nil {
			return err
		}
	}

	// Mark every advanced symbol, then record one equity point for the
	// joint timestamp.
	var equity float64
	var last market.Bar
	for _, fid := range ids {
		b, ok := update[fid]
		if !ok {
			continue
		}
		equity = r.ledger.MarkToMarket(b.Symbol, b.Close)
		last = b
	}
	r.curve = append(r.curve, stats.EquityPoint{Time: last.Time, Equity: equity})
	if r.jnl != nil {
		r.pendingEquity = append(r.pendingEquity, journal.EquityRecord{
			RunID: r.runID, Time: last.Time, Equity: equity,
		})
	}
	return nil
}

func (r *run) handleMultiAction(action any, defaultSymbol string, lastBar map[string]market.Bar) error {
	intent, ok, err := sim.ParseAction(action, defaultSymbol)
	if err != nil {
		return r.reject(sim.OrderEvent{
			Status: sim.OrderRejected,
			Reason: err.Error(),
			Symbol: defaultSymbol,
		})
	}
	if !ok {
		return nil
	}
	if intent.Symbol == "" {
		return r.reject(sim.OrderEvent{
			Status: sim.OrderRejected,
			Side:   intent.Side,
			Type:   intent.Type,
			Size:   intent.Size,
			Reason: "order requires a symbol when several feeds advance",
		})
	}
	bar, ok := lastBar[intent.Symbol]
	if !ok {
		return r.reject(sim.OrderEvent{
			Status: sim.OrderRejected,
			Side:   intent.Side,
			Type:   intent.Type,
			Size:   intent.Size,
			Symbol: intent.Symbol,
			Reason: fmt.Sprintf("no market data for %s", intent.Symbol),
		})
	}
	return r.submit(intent, bar)
}

func (r *run) multiContext(step int, lastPrice map[string]float64) strategy.MultiContext {
	positions := make(map[string]strategy.PositionInfo)
	equity := r.ledger.Cash()
	for _, p := range r.ledger.Positions() {
		positions[p.Symbol] = strategy.PositionInfo{Position: p.Quantity, AvgCost: p.AvgCost}
		equity += p.Quantity * lastPrice[p.Symbol]
	}
	prices := make(map[string]float64, len(lastPrice))
	for sym, px := range lastPrice {
		prices[sym] = px
	}
	return strategy.MultiContext{
		Cash:       r.ledger.Cash(),
		Equity:     equity,
		BarIndex:   step,
		Positions:  positions,
		LastPrices: prices,
	}
}

// copyUpdate hands the strategy its own map so it cannot disturb the
// engine's reusable one.
func copyUpdate(update map[string]market.Bar) map[string]market.Bar {
	out := make(map[string]market.Bar, len(update))
	for fid, b := range update {
		out[fid] = b
	}
	return out
}

// singleUpdateSymbol returns the symbol when exactly one feed advanced,
// otherwise "" and orders must name their symbol explicitly.
func singleUpdateSymbol(update map[string]market.Bar) string {
	if len(update) != 1 {
		return ""
	}
	for _, b := range update {
		return b.Symbol
	}
	return ""
}
