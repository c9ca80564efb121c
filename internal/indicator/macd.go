package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-optimizer/pkg/errors"
)

// MACDResult holds the MACD line and its signal line, aligned with the input
// series. Warm-up positions are NaN.
type MACDResult struct {
	Line   []float64
	Signal []float64
}

// MACDSeries calculates the MACD line (fast EMA minus slow EMA) and its
// signal line (EMA of the MACD line over signalPeriod).
func MACDSeries(values []float64, fastPeriod, slowPeriod, signalPeriod int) (MACDResult, error) {
	if fastPeriod <= 0 || slowPeriod <= 0 || signalPeriod <= 0 {
		return MACDResult{}, errors.Newf(errors.ErrCodeInvalidPeriod,
			"MACD periods must be positive integers, got fast=%d slow=%d signal=%d", fastPeriod, slowPeriod, signalPeriod)
	}

	fastEMA, err := EMASeries(values, fastPeriod)
	if err != nil {
		return MACDResult{}, errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate fast EMA", err)
	}

	slowEMA, err := EMASeries(values, slowPeriod)
	if err != nil {
		return MACDResult{}, errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate slow EMA", err)
	}

	line := make([]float64, len(values))
	for i := range line {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	// The signal line is an EMA of the MACD line computed only over its
	// valid region, so the NaN warm-up prefix does not poison the seed.
	signal := make([]float64, len(values))
	for i := range signal {
		signal[i] = math.NaN()
	}

	firstValid := firstNonNaN(line)
	if firstValid >= 0 {
		signalTail, err := EMASeries(line[firstValid:], signalPeriod)
		if err != nil {
			return MACDResult{}, errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate signal line", err)
		}

		copy(signal[firstValid:], signalTail)
	}

	return MACDResult{Line: line, Signal: signal}, nil
}

// firstNonNaN returns the index of the first non-NaN value, or -1.
func firstNonNaN(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}

	return -1
}
