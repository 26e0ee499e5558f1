package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/market"
)

func testBar(low, high, close float64) market.Bar {
	return market.Bar{
		Time:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Open:   close,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: 1000,
		Symbol: "TEST",
	}
}

func TestMatchMarketFillsAtSlippedClose(t *testing.T) {
	m := Matcher{Costs: CostModel{CommissionRate: 0.001, SlippageBPS: 10}}
	bar := testBar(99, 101, 100)

	f, ok := m.Match(Order{ID: 1, Side: Buy, Type: Market, Size: 2, Symbol: "TEST"}, bar)
	require.True(t, ok)
	assert.InDelta(t, 100.1, f.Price, 1e-9)
	assert.Equal(t, 2.0, f.Size)
	assert.InDelta(t, 100.1*2*0.001, f.Commission, 1e-9)
	assert.Equal(t, bar.Time, f.Time)

	f, ok = m.Match(Order{ID: 2, Side: Sell, Type: Market, Size: 2, Symbol: "TEST"}, bar)
	require.True(t, ok)
	assert.InDelta(t, 99.9, f.Price, 1e-9)
}

func TestMatchLimitBoundary(t *testing.T) {
	m := Matcher{}

	// Bar traded down to 9: a buy limit at 9.5 fills, exactly at 9.5.
	f, ok := m.Match(Order{ID: 1, Side: Buy, Type: Limit, Size: 1, Price: 9.5}, testBar(9, 11, 10))
	require.True(t, ok)
	assert.Equal(t, 9.5, f.Price)

	// Bar never traded below 10: the same order does not fill.
	_, ok = m.Match(Order{ID: 2, Side: Buy, Type: Limit, Size: 1, Price: 9.5}, testBar(10, 12, 11))
	assert.False(t, ok)

	// Sell limit fills when the high reaches the price.
	f, ok = m.Match(Order{ID: 3, Side: Sell, Type: Limit, Size: 1, Price: 10.5}, testBar(9, 11, 10))
	require.True(t, ok)
	assert.Equal(t, 10.5, f.Price)

	_, ok = m.Match(Order{ID: 4, Side: Sell, Type: Limit, Size: 1, Price: 12.5}, testBar(9, 11, 10))
	assert.False(t, ok)
}

func TestMatchLimitIgnoresSlippage(t *testing.T) {
	m := Matcher{Costs: CostModel{SlippageBPS: 50}}
	f, ok := m.Match(Order{ID: 1, Side: Buy, Type: Limit, Size: 1, Price: 9.5}, testBar(9, 11, 10))
	require.True(t, ok)
	assert.Equal(t, 9.5, f.Price)
}
