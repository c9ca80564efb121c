package commission_fee

// FlatRateCommissionFee charges a fixed fraction of the traded notional on
// every leg, the fee model of the simulated exchange.
type FlatRateCommissionFee struct {
	rate float64
}

// NewFlatRateCommissionFee creates a flat-rate commission fee. A negative
// rate falls back to DefaultFlatRate.
func NewFlatRateCommissionFee(rate float64) CommissionFee {
	if rate < 0 {
		rate = DefaultFlatRate
	}

	return &FlatRateCommissionFee{rate: rate}
}

func (c *FlatRateCommissionFee) Calculate(notional float64) float64 {
	return c.rate * notional
}
