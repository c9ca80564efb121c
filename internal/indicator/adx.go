package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-optimizer/internal/types"
	"github.com/rxtech-lab/argo-optimizer/pkg/errors"
)

// ADXSeries calculates the Average Directional Index, a non-directional
// measure of trend strength on a 0-100 scale. The result is aligned with the
// input bars; the first 2*period-1 positions are NaN (one period to seed the
// Wilder-smoothed true range and directional movement, another to seed the
// DX average).
func ADXSeries(data []types.MarketData, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	result := make([]float64, len(data))
	for i := range result {
		result[i] = math.NaN()
	}

	if len(data) < 2*period {
		return result, nil
	}

	// True range and directional movements, defined from the second bar on.
	tr := make([]float64, len(data))
	plusDM := make([]float64, len(data))
	minusDM := make([]float64, len(data))

	for i := 1; i < len(data); i++ {
		highLow := data[i].High - data[i].Low
		highClose := math.Abs(data[i].High - data[i-1].Close)
		lowClose := math.Abs(data[i].Low - data[i-1].Close)
		tr[i] = math.Max(highLow, math.Max(highClose, lowClose))

		upMove := data[i].High - data[i-1].High
		downMove := data[i-1].Low - data[i].Low

		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}

		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}

	// Seed the Wilder sums over the first period of movements.
	var smoothTR, smoothPlusDM, smoothMinusDM float64
	for i := 1; i <= period; i++ {
		smoothTR += tr[i]
		smoothPlusDM += plusDM[i]
		smoothMinusDM += minusDM[i]
	}

	dx := make([]float64, len(data))

	var adx float64

	var dxSum float64

	for i := period; i < len(data); i++ {
		if i > period {
			smoothTR = smoothTR - smoothTR/float64(period) + tr[i]
			smoothPlusDM = smoothPlusDM - smoothPlusDM/float64(period) + plusDM[i]
			smoothMinusDM = smoothMinusDM - smoothMinusDM/float64(period) + minusDM[i]
		}

		var plusDI, minusDI float64
		if smoothTR > 0 {
			plusDI = 100 * smoothPlusDM / smoothTR
			minusDI = 100 * smoothMinusDM / smoothTR
		}

		if plusDI+minusDI > 0 {
			dx[i] = 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
		}

		// The first ADX value is a simple average of the first period DX
		// values; later values use Wilder's smoothing.
		switch {
		case i < 2*period-1:
			dxSum += dx[i]
		case i == 2*period-1:
			dxSum += dx[i]
			adx = dxSum / float64(period)
			result[i] = adx
		default:
			adx = (adx*float64(period-1) + dx[i]) / float64(period)
			result[i] = adx
		}
	}

	return result, nil
}
