package sim

// CostModel prices execution costs. It is pure: no state, no side effects.
// Commission is charged on every fill in both directions. Slippage moves a
// market fill against the taker — up for buys, down for sells — and is
// never applied to limit fills.
type CostModel struct {
	CommissionRate float64 // fraction of notional, e.g. 0.0005
	SlippageBPS    float64 // basis points, e.g. 2.0 = 0.02%
}

// Commission returns the fee for a fill of the given notional.
func (m CostModel) Commission(notional float64) float64 {
	return notional * m.CommissionRate
}

// ExecutionPrice returns the slipped price for a market order against the
// given reference price.
func (m CostModel) ExecutionPrice(side Side, reference float64) float64 {
	return reference * (1 + float64(side)*m.SlippageBPS/10_000)
}
