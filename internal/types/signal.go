package types

// SignalSeries holds the buy/sell decisions for a bar sequence, aligned
// one-to-one with the bars they were generated from. Index 0 is always false
// on both sides because the momentum-cross condition needs a previous bar.
type SignalSeries struct {
	Buy  []bool
	Sell []bool
}

// NewSignalSeries allocates an all-false signal series for n bars.
func NewSignalSeries(n int) SignalSeries {
	return SignalSeries{
		Buy:  make([]bool, n),
		Sell: make([]bool, n),
	}
}

// Len returns the number of bars covered by the series.
func (s SignalSeries) Len() int {
	return len(s.Buy)
}
