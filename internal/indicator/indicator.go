// Package indicator computes the technical indicator series the strategy
// consumes: a trend EMA, an ADX trend-strength line and the MACD momentum
// pair. Series are computed over a bar slice in one pass; warm-up rows where
// any indicator is still undefined are trimmed from the output the same way
// a dataframe pipeline would drop its NaN rows.
package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-optimizer/internal/types"
	"github.com/rxtech-lab/argo-optimizer/pkg/errors"
)

// Snapshot is the typed per-bar indicator record handed to the signal
// generator. Using an explicit record instead of name-keyed columns keeps
// the engine decoupled from any column naming convention.
type Snapshot struct {
	// Trend is the EMA of the close over the trend length.
	Trend float64
	// Strength is the ADX value over the strength length.
	Strength float64
	// MomentumLine and MomentumSignal are the MACD line and its signal line.
	MomentumLine   float64
	MomentumSignal float64
}

// Compute calculates all indicator series for the given bars and parameter
// set and trims the warm-up prefix. It returns the surviving bars and their
// aligned snapshots. An InsufficientDataError is returned when no bar
// survives warm-up.
func Compute(data []types.MarketData, params types.StrategyParams) ([]types.MarketData, []Snapshot, error) {
	closes := make([]float64, len(data))
	for i, d := range data {
		closes[i] = d.Close
	}

	trend, err := EMASeries(closes, params.TrendLength)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate trend EMA", err)
	}

	strength, err := ADXSeries(data, params.StrengthLength)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate ADX", err)
	}

	momentum, err := MACDSeries(closes, params.MomentumFast, params.MomentumSlow, params.MomentumSignal)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate MACD", err)
	}

	warmup := len(data)

	for i := range data {
		if !math.IsNaN(trend[i]) && !math.IsNaN(strength[i]) &&
			!math.IsNaN(momentum.Line[i]) && !math.IsNaN(momentum.Signal[i]) {
			warmup = i

			break
		}
	}

	if warmup >= len(data) {
		return nil, nil, errors.NewInsufficientDataErrorf(warmup, len(data),
			"no bars survive indicator warm-up: %d bars available", len(data))
	}

	bars := data[warmup:]

	snapshots := make([]Snapshot, len(bars))
	for i := range bars {
		snapshots[i] = Snapshot{
			Trend:          trend[warmup+i],
			Strength:       strength[warmup+i],
			MomentumLine:   momentum.Line[warmup+i],
			MomentumSignal: momentum.Signal[warmup+i],
		}
	}

	return bars, snapshots, nil
}
