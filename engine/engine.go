// Package engine drives a backtest: it advances time bar by bar, crosses
// into the strategy for a decision, matches the resulting order, applies
// the fill to the ledger, marks to market, and records the equity curve.
// The per-bar sequence is fixed and single-threaded; that is what rules out
// look-ahead and makes runs reproducible.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/backtester/id"
	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/sim"
	"github.com/rustyeddy/backtester/stats"
	"github.com/rustyeddy/backtester/strategy"
)

// ErrStrategy wraps an error returned by a strategy callback. The run
// transitions to Failed; its ledger state is unreliable and no statistics
// are produced.
var ErrStrategy = errors.New("engine: strategy callback failed")

// Engine executes runs. Engines are cheap; independent runs that should
// execute in parallel each get their own Engine, ledger included — there
// is no shared mutable state between runs.
type Engine struct {
	cfg Config
	jnl journal.Journal
}

func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// SetJournal attaches an optional journal. Writes are buffered and flushed
// at batch boundaries; journaling never changes run results.
func (e *Engine) SetJournal(j journal.Journal) { e.jnl = j }

// Run replays bars against the strategy and returns the finalized result.
// The bar series must be valid (spec'd OHLC invariants, strictly increasing
// timestamps); a bad series aborts before the first step.
func (e *Engine) Run(strat strategy.Strategy, bars []market.Bar) (*Result, error) {
	if strat == nil {
		return nil, errors.New("engine: strategy is required")
	}
	if err := market.ValidateSeries(bars); err != nil {
		return nil, err
	}
	bars = market.FilterRange(bars, e.cfg.Start, e.cfg.End)

	r := newRun(e.cfg, strat, e.jnl)
	return r.execute(bars)
}

// run is the per-run state: ledger, order sequence, curve, histories, and
// the lifecycle state machine. It lives for one Run call.
type run struct {
	cfg   Config
	strat strategy.Strategy
	hooks hooks
	state State

	runID   string
	matcher sim.Matcher
	ledger  *sim.Ledger
	seq     uint64

	curve  []stats.EquityPoint
	trades []sim.TradeRecord

	jnl           journal.Journal
	pendingTrades []journal.TradeRecord
	pendingEquity []journal.EquityRecord
}

func newRun(cfg Config, strat strategy.Strategy, jnl journal.Journal) *run {
	return &run{
		cfg:   cfg,
		strat: strat,
		hooks: bindHooks(strat),
		state: Created,
		runID: id.New(),
		matcher: sim.Matcher{Costs: sim.CostModel{
			CommissionRate: cfg.CommissionRate,
			SlippageBPS:    cfg.SlippageBPS,
		}},
		ledger: sim.NewLedger(cfg.Cash),
		jnl:    jnl,
	}
}

func (r *run) transition(to State) error {
	if !r.state.canTransition(to) {
		return fmt.Errorf("engine: illegal transition %s -> %s", r.state, to)
	}
	r.state = to
	return nil
}

func (r *run) fail(err error) (*Result, error) {
	r.state = Failed
	return nil, fmt.Errorf("%w: %v", ErrStrategy, err)
}

func (r *run) execute(bars []market.Bar) (*Result, error) {
	r.curve = make([]stats.EquityPoint, 0, len(bars))

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

	// Bars are processed in batches purely to amortize journal flushes;
	// the per-bar sequence inside a batch is identical for every size.
	batch := r.cfg.batchSize()
	for start := 0; start < len(bars); start += batch {
		end := min(start+batch, len(bars))
		for i := start; i < end; i++ {
			if err := r.step(i, bars[i]); err != nil {
				r.state = Failed
				return nil, err
			}
		}
		if err := r.flushJournal(); err != nil {
			r.state = Failed
			return nil, fmt.Errorf("engine: journal: %w", err)
		}
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

// step runs the seven-step protocol for one bar:
// snapshot, decide, match, apply, mark, record, with event hooks fired at
// the submit/fill/reject points. The order is a hard guarantee.
func (r *run) step(i int, bar market.Bar) error {
	pos := r.ledger.Position(bar.Symbol)
	ctx := strategy.Context{
		Cash:     r.ledger.Cash(),
		Position: pos.Quantity,
		AvgCost:  pos.AvgCost,
		Equity:   r.ledger.Valuation(bar.Symbol, bar.Close),
		BarIndex: i,
	}

	action, err := r.strat.Next(bar, ctx)
	if err != nil {
		return fmt.Errorf("%w: next at bar %d: %v", ErrStrategy, i, err)
	}

	if err := r.handleAction(action, bar); err != nil {
		return err
	}

	equity := r.ledger.MarkToMarket(bar.Symbol, bar.Close)
	r.curve = append(r.curve, stats.EquityPoint{Time: bar.Time, Equity: equity})
	if r.jnl != nil {
		r.pendingEquity = append(r.pendingEquity, journal.EquityRecord{
			RunID: r.runID, Time: bar.Time, Equity: equity,
		})
	}
	return nil
}

func (r *run) handleAction(action any, bar market.Bar) error {
	intent, ok, err := sim.ParseAction(action, bar.Symbol)
	if err != nil {
		return r.reject(sim.OrderEvent{
			Status: sim.OrderRejected,
			Reason: err.Error(),
			Symbol: bar.Symbol,
		})
	}
	if !ok {
		return nil
	}
	return r.submit(intent, bar)
}

// submit runs one validated intent through the order pipeline: oversell
// check, submit event, match, fill. Rejections are events, not errors.
func (r *run) submit(intent sim.Intent, bar market.Bar) error {
	// Long-only: a sell must not exceed the current holding.
	if intent.Side == sim.Sell && intent.Size > r.ledger.Position(intent.Symbol).Quantity {
		return r.reject(sim.OrderEvent{
			Status: sim.OrderRejected,
			Side:   intent.Side,
			Type:   intent.Type,
			Size:   intent.Size,
			Symbol: intent.Symbol,
			Reason: "sell exceeds position",
		})
	}

	r.seq++
	order := sim.Order{
		ID:     r.seq,
		Side:   intent.Side,
		Type:   intent.Type,
		Size:   intent.Size,
		Price:  intent.Price,
		Symbol: intent.Symbol,
	}

	if err := r.hooks.onOrder(sim.OrderEvent{
		Status:     sim.OrderSubmitted,
		OrderID:    order.ID,
		Side:       order.Side,
		Type:       order.Type,
		Size:       order.Size,
		LimitPrice: order.Price,
		Symbol:     order.Symbol,
	}); err != nil {
		return fmt.Errorf("%w: on_order: %v", ErrStrategy, err)
	}

	fill, matched := r.matcher.Match(order, bar)
	if !matched {
		// Unfilled limit orders expire with the bar; they never rest.
		return r.reject(sim.OrderEvent{
			Status:     sim.OrderRejected,
			OrderID:    order.ID,
			Side:       order.Side,
			Type:       order.Type,
			Size:       order.Size,
			LimitPrice: order.Price,
			Symbol:     order.Symbol,
			Reason:     "unfilled within bar",
		})
	}

	return r.applyFill(order, fill)
}

func (r *run) reject(evt sim.OrderEvent) error {
	if err := r.hooks.onOrder(evt); err != nil {
		return fmt.Errorf("%w: on_order: %v", ErrStrategy, err)
	}
	return nil
}

func (r *run) applyFill(order sim.Order, fill sim.Fill) error {
	realized, err := r.ledger.ApplyFill(fill)
	if err != nil {
		// Pre-checked above; an error here is an engine bug, not a
		// strategy mistake.
		return fmt.Errorf("engine: apply fill: %w", err)
	}

	record := sim.TradeRecord{
		OrderID:     fill.OrderID,
		Side:        fill.Side,
		Price:       fill.Price,
		Size:        fill.Size,
		Commission:  fill.Commission,
		Time:        fill.Time,
		Symbol:      fill.Symbol,
		RealizedPnL: realized,
	}
	r.trades = append(r.trades, record)
	if r.jnl != nil {
		r.pendingTrades = append(r.pendingTrades, journal.TradeRecord{
			RunID:       r.runID,
			OrderID:     record.OrderID,
			Symbol:      record.Symbol,
			Side:        record.Side.String(),
			Price:       record.Price,
			Size:        record.Size,
			Commission:  record.Commission,
			RealizedPnL: record.RealizedPnL,
			Time:        record.Time,
		})
	}

	if err := r.hooks.onOrder(sim.OrderEvent{
		Status:  sim.OrderFilled,
		OrderID: order.ID,
		Side:    order.Side,
		Type:    order.Type,
		Size:    fill.Size,
		Symbol:  order.Symbol,
	}); err != nil {
		return fmt.Errorf("%w: on_order: %v", ErrStrategy, err)
	}
	if err := r.hooks.onTrade(sim.TradeEvent{
		OrderID:    fill.OrderID,
		Side:       fill.Side,
		Price:      fill.Price,
		Size:       fill.Size,
		Commission: fill.Commission,
		Symbol:     fill.Symbol,
		Time:       fill.Time,
	}); err != nil {
		return fmt.Errorf("%w: on_trade: %v", ErrStrategy, err)
	}
	return nil
}

func (r *run) flushJournal() error {
	if r.jnl == nil {
		return nil
	}
	for _, t := range r.pendingTrades {
		if err := r.jnl.RecordTrade(t); err != nil {
			return err
		}
	}
	for _, e := range r.pendingEquity {
		if err := r.jnl.RecordEquity(e); err != nil {
			return err
		}
	}
	r.pendingTrades = r.pendingTrades[:0]
	r.pendingEquity = r.pendingEquity[:0]
	return nil
}

func (r *run) finalize() (*Result, error) {
	snapshot := stats.Compute(r.curve, r.trades, stats.Config{
		PeriodsPerYear: r.cfg.PeriodsPerYear,
		RiskFree:       r.cfg.RiskFree,
	})

	res := &Result{
		RunID:       r.runID,
		Cash:        r.ledger.Cash(),
		Equity:      r.ledger.Equity(),
		RealizedPnL: r.ledger.RealizedPnL(),
		Stats:       snapshot,
		EquityCurve: r.curve,
		Trades:      r.trades,
		Positions:   r.ledger.Positions(),
	}
	if len(r.curve) > 0 {
		res.Start = r.curve[0].Time
		res.End = r.curve[len(r.curve)-1].Time
	} else {
		res.Equity = r.cfg.Cash
	}
	if len(res.Positions) == 1 {
		res.Position = res.Positions[0].Quantity
		res.AvgCost = res.Positions[0].AvgCost
	}

	if r.jnl != nil {
		if err := r.jnl.RecordRun(journal.RunRecord{
			RunID:       r.runID,
			Created:     time.Now().UTC(),
			Symbol:      res.symbol(),
			Start:       res.Start,
			End:         res.End,
			StartCash:   r.cfg.Cash,
			EndCash:     res.Cash,
			EndEquity:   res.Equity,
			Trades:      snapshot.TotalTrades,
			Wins:        snapshot.WinningTrades,
			Losses:      snapshot.LosingTrades,
			WinRate:     snapshot.WinRate,
			TotalReturn: snapshot.TotalReturn,
			MaxDrawdown: snapshot.MaxDrawdown,
			Sharpe:      snapshot.Sharpe,
		}); err != nil {
			return nil, fmt.Errorf("engine: journal: %w", err)
		}
	}

	return res, nil
}
