package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorSMA(t *testing.T) {
	prices := []float64{100, 101, 102, 103, 104, 105, 106}
	out, ok := VectorSMA(prices, 5)
	require.Len(t, out, len(prices))

	for i := 0; i < 4; i++ {
		assert.False(t, ok[i])
	}
	assert.True(t, ok[4])
	assert.InDelta(t, 102.0, out[4], 1e-12)
	assert.InDelta(t, 103.0, out[5], 1e-12)
	assert.InDelta(t, 104.0, out[6], 1e-12)
}

func TestVectorSMAAgreesWithStreaming(t *testing.T) {
	prices := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}
	out, ok := VectorSMA(prices, 4)

	m := NewSMA(4)
	for i, p := range prices {
		m.Update(closes(p)[0])
		assert.Equal(t, m.Ready(), ok[i])
		if ok[i] {
			assert.InDelta(t, m.Value(), out[i], 1e-12)
		}
	}
}

func TestVectorSMADegenerate(t *testing.T) {
	out, ok := VectorSMA(nil, 5)
	assert.Empty(t, out)
	assert.Empty(t, ok)

	out, ok = VectorSMA([]float64{1, 2}, 0)
	assert.False(t, ok[0])
	assert.False(t, ok[1])
	assert.Equal(t, []float64{0, 0}, out)
}

func TestVectorRSI(t *testing.T) {
	// Strictly rising prices: RSI pins at 100 once ready.
	up := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	out, ok := VectorRSI(up, 3)
	for i := 0; i < 3; i++ {
		assert.False(t, ok[i])
	}
	for i := 3; i < len(up); i++ {
		require.True(t, ok[i])
		assert.Equal(t, 100.0, out[i])
	}

	// Strictly falling prices: RSI is 0.
	down := []float64{8, 7, 6, 5, 4}
	out, ok = VectorRSI(down, 3)
	require.True(t, ok[4])
	assert.Equal(t, 0.0, out[4])
}

func TestVectorRSIRange(t *testing.T) {
	prices := []float64{44, 44.3, 44.1, 43.6, 44.3, 44.8, 45.1, 45.4, 45.1, 46.3, 46.1, 45.8}
	out, ok := VectorRSI(prices, 5)
	for i := range prices {
		if !ok[i] {
			continue
		}
		assert.GreaterOrEqual(t, out[i], 0.0)
		assert.LessOrEqual(t, out[i], 100.0)
	}
}
