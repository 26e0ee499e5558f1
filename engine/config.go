package engine

import (
	"errors"
	"fmt"
	"time"
)

// DefaultBatchSize is used when Config.BatchSize is zero. Batch size is a
// throughput knob only; results are identical for any value.
const DefaultBatchSize = 1000

// Config holds the per-run parameters.
type Config struct {
	// Start and End bound the bar feed inclusively. Zero values leave the
	// corresponding side open.
	Start time.Time
	End   time.Time

	// Cash is the initial capital.
	Cash float64

	// CommissionRate is charged as a fraction of notional on every fill.
	CommissionRate float64

	// SlippageBPS shifts market fills adversely, in basis points.
	SlippageBPS float64

	// BatchSize is the number of bars grouped per journal flush.
	BatchSize int

	// PeriodsPerYear and RiskFree feed the statistics engine. Zero means
	// 252 periods and a zero risk-free rate.
	PeriodsPerYear float64
	RiskFree       float64
}

var errConfig = errors.New("engine: invalid config")

func (c Config) validate() error {
	if c.Cash <= 0 {
		return fmt.Errorf("%w: cash must be positive, got %v", errConfig, c.Cash)
	}
	if c.CommissionRate < 0 {
		return fmt.Errorf("%w: negative commission rate %v", errConfig, c.CommissionRate)
	}
	if c.SlippageBPS < 0 {
		return fmt.Errorf("%w: negative slippage %v", errConfig, c.SlippageBPS)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("%w: negative batch size %d", errConfig, c.BatchSize)
	}
	if !c.Start.IsZero() && !c.End.IsZero() && c.End.Before(c.Start) {
		return fmt.Errorf("%w: end %s before start %s", errConfig,
			c.End.Format(time.DateOnly), c.Start.Format(time.DateOnly))
	}
	return nil
}

func (c Config) batchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return DefaultBatchSize
}
