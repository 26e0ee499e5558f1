package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(side Side, price, size, commission float64) Fill {
	return Fill{
		Side:       side,
		Price:      price,
		Size:       size,
		Commission: commission,
		Time:       time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Symbol:     "TEST",
	}
}

func TestLedgerBuy(t *testing.T) {
	l := NewLedger(10_000)

	// Market buy of 10 @ 100 with 5 commission.
	realized, err := l.ApplyFill(fill(Buy, 100, 10, 5))
	require.NoError(t, err)
	assert.Equal(t, 0.0, realized)
	assert.Equal(t, 8995.0, l.Cash())

	p := l.Position("TEST")
	assert.Equal(t, 10.0, p.Quantity)
	assert.Equal(t, 100.0, p.AvgCost)
}

func TestLedgerSellRealizesPnL(t *testing.T) {
	l := NewLedger(10_000)
	_, err := l.ApplyFill(fill(Buy, 100, 10, 5))
	require.NoError(t, err)

	realized, err := l.ApplyFill(fill(Sell, 110, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, 100.0, realized)
	assert.Equal(t, 100.0, l.RealizedPnL())
	assert.Equal(t, 10095.0, l.Cash())
	assert.Equal(t, 0.0, l.Position("TEST").Quantity)
	assert.Equal(t, 0.0, l.Position("TEST").AvgCost)
}

func TestLedgerRoundTripIsNeutral(t *testing.T) {
	l := NewLedger(5000)

	_, err := l.ApplyFill(fill(Buy, 42, 7, 0))
	require.NoError(t, err)
	_, err = l.ApplyFill(fill(Sell, 42, 7, 0))
	require.NoError(t, err)

	assert.Equal(t, 5000.0, l.Cash())
	assert.Equal(t, 0.0, l.RealizedPnL())
	assert.Equal(t, 0.0, l.Position("TEST").Quantity)
}

func TestLedgerWeightedAverageCost(t *testing.T) {
	l := NewLedger(100_000)

	_, err := l.ApplyFill(fill(Buy, 100, 10, 0))
	require.NoError(t, err)
	_, err = l.ApplyFill(fill(Buy, 110, 10, 0))
	require.NoError(t, err)

	p := l.Position("TEST")
	assert.Equal(t, 20.0, p.Quantity)
	assert.InDelta(t, 105.0, p.AvgCost, 1e-9)

	// A partial sell leaves avg cost untouched.
	realized, err := l.ApplyFill(fill(Sell, 120, 5, 0))
	require.NoError(t, err)
	assert.InDelta(t, 75.0, realized, 1e-9)
	assert.InDelta(t, 105.0, l.Position("TEST").AvgCost, 1e-9)
	assert.Equal(t, 15.0, l.Position("TEST").Quantity)
}

func TestLedgerRejectsOversell(t *testing.T) {
	l := NewLedger(10_000)
	_, err := l.ApplyFill(fill(Buy, 100, 5, 0))
	require.NoError(t, err)

	_, err = l.ApplyFill(fill(Sell, 100, 6, 0))
	assert.ErrorIs(t, err, ErrInvalidOrder)

	// The failed fill must not have moved anything.
	assert.Equal(t, 5.0, l.Position("TEST").Quantity)
	assert.Equal(t, 9500.0, l.Cash())
}

func TestLedgerMarkToMarket(t *testing.T) {
	l := NewLedger(10_000)
	_, err := l.ApplyFill(fill(Buy, 100, 10, 0))
	require.NoError(t, err)

	eq := l.MarkToMarket("TEST", 105)
	assert.Equal(t, 9000.0+10*105, eq)
	assert.Equal(t, eq, l.Equity())

	// A second instrument marks independently.
	other := fill(Buy, 50, 2, 0)
	other.Symbol = "OTHER"
	_, err = l.ApplyFill(other)
	require.NoError(t, err)
	eq = l.MarkToMarket("OTHER", 60)
	assert.Equal(t, 8900.0+10*105+2*60, eq)
}
