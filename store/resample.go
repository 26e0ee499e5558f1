package store

import (
	"fmt"
	"time"

	"github.com/rustyeddy/backtester/market"
)

// Resample aggregates a time-ascending bar series into the target period.
// Each output bar covers one period bucket: open from the first source bar,
// high and low over all of them, close from the last, volume summed, and
// the timestamp aligned to the bucket start. Buckets with no source bars
// produce no output.
func Resample(bars []market.Bar, period string) ([]market.Bar, error) {
	minutes, err := PeriodMinutes(period)
	if err != nil {
		return nil, err
	}
	if err := market.ValidateSeries(bars); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, nil
	}

	var (
		out     []market.Bar
		current market.Bar
		bucket  time.Time
		open    bool
	)
	flush := func() {
		if open {
			out = append(out, current)
			open = false
		}
	}
	for _, b := range bars {
		if b.Symbol != bars[0].Symbol {
			return nil, fmt.Errorf("store: resample: mixed symbols %s and %s",
				bars[0].Symbol, b.Symbol)
		}
		bkt := floorToPeriod(b.Time, minutes)
		if !open || !bkt.Equal(bucket) {
			flush()
			bucket = bkt
			current = market.Bar{
				Time:   bkt,
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: b.Volume,
				Symbol: b.Symbol,
			}
			open = true
			continue
		}
		if b.High > current.High {
			current.High = b.High
		}
		if b.Low < current.Low {
			current.Low = b.Low
		}
		current.Close = b.Close
		current.Volume += b.Volume
	}
	flush()
	return out, nil
}

// basePeriod is the finest period imports normally target. Coarser periods
// can always be synthesized from it.
const basePeriod = "1m"

// LoadOrSynthesize loads the symbol's bars at the period, and when the
// period has no data for the symbol, builds it by resampling the base 1m
// data first.
func (s *Store) LoadOrSynthesize(period, symbol string, from, to time.Time) ([]market.Bar, error) {
	bars, err := s.LoadBars(period, symbol, from, to)
	if err != nil || len(bars) > 0 {
		return bars, err
	}
	minutes, err := PeriodMinutes(period)
	if err != nil {
		return nil, err
	}
	if minutes <= 1 {
		return nil, nil
	}
	if _, err := s.ResampleInto(symbol, basePeriod, period); err != nil {
		return nil, err
	}
	return s.LoadBars(period, symbol, from, to)
}

// ResampleInto reads the symbol's bars at the source period, resamples them
// to the target period, and stores the result. Returns the number of bars
// written.
func (s *Store) ResampleInto(symbol, fromPeriod, toPeriod string) (int, error) {
	bars, err := s.LoadBars(fromPeriod, symbol, time.Time{}, time.Time{})
	if err != nil {
		return 0, err
	}
	resampled, err := Resample(bars, toPeriod)
	if err != nil {
		return 0, err
	}
	return s.SaveBars(toPeriod, resampled)
}
