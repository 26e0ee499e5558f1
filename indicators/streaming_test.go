package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/backtester/market"
)

func closes(values ...float64) []market.Bar {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Bar, len(values))
	for i, v := range values {
		out[i] = market.Bar{Time: t0.AddDate(0, 0, i), Open: v, High: v, Low: v, Close: v}
	}
	return out
}

func TestSMAStreaming(t *testing.T) {
	m := NewSMA(3)
	bars := closes(10, 20, 30, 40)

	m.Update(bars[0])
	m.Update(bars[1])
	assert.False(t, m.Ready())
	assert.Equal(t, 0.0, m.Value())

	m.Update(bars[2])
	assert.True(t, m.Ready())
	assert.InDelta(t, 20.0, m.Value(), 1e-12)

	m.Update(bars[3])
	assert.InDelta(t, 30.0, m.Value(), 1e-12)

	m.Reset()
	assert.False(t, m.Ready())
}

func TestEMASeedsWithSMA(t *testing.T) {
	e := NewEMA(3)
	for _, b := range closes(10, 20, 30) {
		e.Update(b)
	}
	assert.True(t, e.Ready())
	assert.InDelta(t, 20.0, e.Value(), 1e-12)

	// k = 2/(3+1) = 0.5; next ema = (40-20)*0.5 + 20 = 30
	e.Update(closes(40)[0])
	assert.InDelta(t, 30.0, e.Value(), 1e-12)
}

func TestIndicatorNames(t *testing.T) {
	assert.Equal(t, "SMA(20)", NewSMA(20).Name())
	assert.Equal(t, "EMA(9)", NewEMA(9).Name())
}
