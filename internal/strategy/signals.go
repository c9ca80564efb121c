// Package strategy turns indicator snapshots into trade signals.
package strategy

import (
	"github.com/rxtech-lab/argo-optimizer/internal/indicator"
	"github.com/rxtech-lab/argo-optimizer/internal/types"
	"github.com/rxtech-lab/argo-optimizer/pkg/errors"
)

// GenerateSignals evaluates the "2 of 3" voting rule per bar:
//
//   - trend: close above (bullish) or below (bearish) the trend EMA
//   - strength: ADX above the configured threshold, a confirming vote that
//     counts toward both sides
//   - momentum: the MACD line crossing its signal line between the previous
//     bar and this one
//
// A side fires when at least two of its three votes are true. The first bar
// never fires because the cross check needs a previous bar; the cross check
// only ever looks backwards, so signals at bar i are unaffected by bars
// after i.
func GenerateSignals(bars []types.MarketData, snapshots []indicator.Snapshot, params types.StrategyParams) (types.SignalSeries, error) {
	if len(bars) != len(snapshots) {
		return types.SignalSeries{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"bars and snapshots must be aligned, got %d bars and %d snapshots", len(bars), len(snapshots))
	}

	signals := types.NewSignalSeries(len(bars))

	for i := 1; i < len(bars); i++ {
		close := bars[i].Close
		snap := snapshots[i]
		prev := snapshots[i-1]

		trendUp := close > snap.Trend
		trendDown := close < snap.Trend
		strong := snap.Strength > params.StrengthThreshold

		crossUp := prev.MomentumLine < prev.MomentumSignal && snap.MomentumLine > snap.MomentumSignal
		crossDown := prev.MomentumLine > prev.MomentumSignal && snap.MomentumLine < snap.MomentumSignal

		signals.Buy[i] = voteCount(trendUp, strong, crossUp) >= 2
		signals.Sell[i] = voteCount(trendDown, strong, crossDown) >= 2
	}

	return signals, nil
}

func voteCount(votes ...bool) int {
	count := 0

	for _, v := range votes {
		if v {
			count++
		}
	}

	return count
}
