package reporting

import (
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-optimizer/internal/backtest"
	"github.com/rxtech-lab/argo-optimizer/internal/types"
)

// NewBacktestStats summarizes one phase run into a serializable record.
// The equity curve may be empty, in which case the final value falls back to
// the initial capital and all ratios are zero.
func NewBacktestStats(
	phase string,
	curve types.EquityCurve,
	params types.StrategyParams,
	initialCapital float64,
	tradeResult types.TradeResult,
	dataPath string,
	equityCurvePath string,
) types.BacktestStats {
	finalValue := initialCapital
	totalReturn := 0.0

	if len(curve) > 0 {
		finalValue = curve.Last().Value
		totalReturn = curve.TotalReturn()
	}

	return types.BacktestStats{
		ID:               uuid.New().String(),
		Timestamp:        time.Now(),
		Phase:            phase,
		InitialCapital:   initialCapital,
		FinalValue:       finalValue,
		TotalReturn:      totalReturn,
		AnnualizedReturn: backtest.AnnualizedReturn(curve),
		MaxDrawdown:      backtest.MaxDrawdown(curve),
		CalmarRatio:      backtest.CalmarRatio(curve),
		TradeResult:      tradeResult,
		Params:           params,
		DataPath:         dataPath,
		EquityCurvePath:  equityCurvePath,
	}
}
