package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-optimizer/pkg/errors"
)

// EMASeries calculates the exponential moving average of values for the given
// period. The result is aligned with the input: positions before the first
// full period are NaN, matching the warm-up rows a dataframe calculation
// would drop.
func EMASeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	result := make([]float64, len(values))
	for i := range result {
		result[i] = math.NaN()
	}

	if len(values) < period {
		return result, nil
	}

	// Seed with the SMA of the first period values
	sma := 0.0
	for i := 0; i < period; i++ {
		sma += values[i]
	}

	sma /= float64(period)
	result[period-1] = sma

	// Use alpha = 2/(period+1) to match pandas ewm with adjust=False
	alpha := 2.0 / float64(period+1)

	ema := sma
	for i := period; i < len(values); i++ {
		ema = (values[i] * alpha) + (ema * (1 - alpha))
		result[i] = ema
	}

	return result, nil
}
