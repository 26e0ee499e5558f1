package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommission(t *testing.T) {
	m := CostModel{CommissionRate: 0.0005}
	assert.Equal(t, 5.0, m.Commission(10_000))
	assert.Equal(t, 0.0, CostModel{}.Commission(10_000))
}

func TestExecutionPriceSlippage(t *testing.T) {
	m := CostModel{SlippageBPS: 2}

	// Buys slip up, sells slip down: always adverse.
	assert.InDelta(t, 100.02, m.ExecutionPrice(Buy, 100), 1e-9)
	assert.InDelta(t, 99.98, m.ExecutionPrice(Sell, 100), 1e-9)

	// Zero slippage is exact.
	assert.Equal(t, 100.0, CostModel{}.ExecutionPrice(Buy, 100))
	assert.Equal(t, 100.0, CostModel{}.ExecutionPrice(Sell, 100))
}
