package indicators

// VectorSMA computes a simple moving average over a whole price slice with
// a sliding-window sum. The result has the same length as the input; the
// first window-1 entries are NaN-free zeros flagged by the ok slice.
//
// ok[i] reports whether out[i] is a meaningful value (the window was full).
func VectorSMA(prices []float64, window int) (out []float64, ok []bool) {
	out = make([]float64, len(prices))
	ok = make([]bool, len(prices))
	if window <= 0 || len(prices) == 0 {
		return out, ok
	}

	var sum float64
	for i, p := range prices {
		sum += p
		if i >= window {
			sum -= prices[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
			ok[i] = true
		}
	}
	return out, ok
}

// VectorRSI computes the relative strength index with Wilder smoothing.
// Values range 0-100; an all-gain window yields 100. ok[i] is true from
// index window onward.
func VectorRSI(prices []float64, window int) (out []float64, ok []bool) {
	out = make([]float64, len(prices))
	ok = make([]bool, len(prices))
	if window <= 0 || len(prices) < 2 {
		return out, ok
	}

	gains := make([]float64, len(prices)-1)
	losses := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	var avgGain, avgLoss float64
	for i := range gains {
		if i < window-1 {
			continue
		}
		if i == window-1 {
			for j := 0; j < window; j++ {
				avgGain += gains[j]
				avgLoss += losses[j]
			}
			avgGain /= float64(window)
			avgLoss /= float64(window)
		} else {
			avgGain = (avgGain*float64(window-1) + gains[i]) / float64(window)
			avgLoss = (avgLoss*float64(window-1) + losses[i]) / float64(window)
		}

		rsi := 100.0
		if avgLoss != 0 {
			rsi = 100 - 100/(1+avgGain/avgLoss)
		}
		out[i+1] = rsi
		ok[i+1] = true
	}
	return out, ok
}
