package backtest

import (
	"math"

	"github.com/rxtech-lab/argo-optimizer/internal/types"
)

const (
	// hoursPerYear assumes uniform hourly bars and 24/7 trading (365 * 24).
	hoursPerYear = 8760.0

	// minDrawdown suppresses scores from runs whose risk was so close to
	// zero that the ratio would be spuriously large.
	minDrawdown = 0.01
)

// CalmarRatio computes the risk-adjusted objective for one equity curve:
// the annualized return divided by the maximum drawdown.
//
// Degenerate inputs map to 0.0 instead of erroring: fewer than 2 points,
// less than one elapsed hour (cannot annualize), or a maximum drawdown below
// 1%. The result is always finite.
func CalmarRatio(curve types.EquityCurve) float64 {
	if len(curve) < 2 {
		return 0.0
	}

	if curve.Elapsed().Hours() < 1 {
		return 0.0
	}

	annualizedReturn := AnnualizedReturn(curve)

	maxDrawdown := MaxDrawdown(curve)
	if maxDrawdown < minDrawdown {
		return 0.0
	}

	ratio := annualizedReturn / maxDrawdown
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0.0
	}

	return ratio
}

// AnnualizedReturn compounds the curve's total return to a 8760-hour year.
// Returns 0 when less than one hour elapsed, or when compounding cannot
// produce a finite number: a total return at or below -100% (short positions
// can drive equity negative) makes the base of the power non-positive, and a
// large gain over a short window overflows float64.
func AnnualizedReturn(curve types.EquityCurve) float64 {
	if len(curve) < 2 {
		return 0.0
	}

	elapsedHours := curve.Elapsed().Hours()
	if elapsedHours < 1 {
		return 0.0
	}

	annualized := math.Pow(1+curve.TotalReturn(), hoursPerYear/elapsedHours) - 1
	if math.IsNaN(annualized) || math.IsInf(annualized, 0) {
		return 0.0
	}

	return annualized
}

// MaxDrawdown returns the largest fractional decline from a running peak,
// as a positive number. An empty curve has zero drawdown.
func MaxDrawdown(curve types.EquityCurve) float64 {
	var peak, worst float64

	for i, p := range curve {
		if i == 0 || p.Value > peak {
			peak = p.Value
		}

		if peak > 0 {
			drawdown := (p.Value - peak) / peak
			if drawdown < worst {
				worst = drawdown
			}
		}
	}

	return math.Abs(worst)
}
