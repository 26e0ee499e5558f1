// Package market defines OHLCV bars and the feeds that supply them to the
// backtest engine.
package market

import (
	"errors"
	"fmt"
	"time"
)

// Bar is one OHLCV aggregate for a fixed interval of a single instrument.
// Bars are ephemeral inside a run: the engine owns one for a step and does
// not retain it.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Symbol string
}

var (
	// ErrInvalidBar reports an OHLC inconsistency or a missing required field.
	ErrInvalidBar = errors.New("market: invalid bar")

	// ErrNonMonotonic reports timestamps that are not strictly increasing.
	ErrNonMonotonic = errors.New("market: non-monotonic timestamps")
)

// Validate checks the single-bar invariants: a usable timestamp and
// high >= max(open, close), low <= min(open, close).
func (b Bar) Validate() error {
	if b.Time.IsZero() {
		return fmt.Errorf("%w: missing datetime", ErrInvalidBar)
	}
	if b.High < b.Open || b.High < b.Close {
		return fmt.Errorf("%w: high %v below open/close", ErrInvalidBar, b.High)
	}
	if b.Low > b.Open || b.Low > b.Close {
		return fmt.Errorf("%w: low %v above open/close", ErrInvalidBar, b.Low)
	}
	return nil
}

// ValidateSeries checks every bar plus the cross-bar ordering invariant.
// The engine refuses to start a run on a series that fails here.
func ValidateSeries(bars []Bar) error {
	var prev time.Time
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("bar %d: %w", i, err)
		}
		if i > 0 && !b.Time.After(prev) {
			return fmt.Errorf("bar %d (%s): %w", i, b.Time.Format(time.RFC3339), ErrNonMonotonic)
		}
		prev = b.Time
	}
	return nil
}

// FilterRange returns the bars whose timestamps fall within [from, to].
// A zero bound is open on that side. The input order is preserved.
func FilterRange(bars []Bar, from, to time.Time) []Bar {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if !from.IsZero() && b.Time.Before(from) {
			continue
		}
		if !to.IsZero() && b.Time.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out
}
