package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-optimizer/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-optimizer/internal/logger"
	"github.com/rxtech-lab/argo-optimizer/internal/types"
	"github.com/stretchr/testify/suite"
)

type WalkForwardTestSuite struct {
	suite.Suite
	evaluator *WalkForwardEvaluator
	params    types.StrategyParams
}

func TestWalkForwardSuite(t *testing.T) {
	suite.Run(t, new(WalkForwardTestSuite))
}

func (suite *WalkForwardTestSuite) SetupTest() {
	suite.evaluator = NewWalkForwardEvaluator(1_000_000,
		commission_fee.NewFlatRateCommissionFee(0.00125), logger.NewNopLogger())
	suite.params = types.StrategyParams{
		TrendLength:       10,
		StrengthLength:    5,
		StrengthThreshold: 25,
		MomentumFast:      3,
		MomentumSlow:      6,
		MomentumSignal:    4,
		StopLoss:          0.05,
		TakeProfit:        0.10,
		PositionFraction:  0.5,
	}
}

// waveBars builds hourly bars following a deterministic oscillation so that
// every block contains trends in both directions.
func waveBars(n int) []types.MarketData {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.MarketData, n)

	for i := range bars {
		price := 100 + 20*math.Sin(float64(i)/12) + 5*math.Sin(float64(i)/3)
		bars[i] = types.MarketData{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   price,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: 1000,
		}
	}

	return bars
}

func (suite *WalkForwardTestSuite) TestInvalidMomentumOrderingAlwaysRejected() {
	params := suite.params
	params.MomentumFast = 30
	params.MomentumSlow = 20

	suite.Equal(RejectionScore, suite.evaluator.Evaluate(waveBars(1000), params))

	params.MomentumFast = 20 // equal is rejected too
	suite.Equal(RejectionScore, suite.evaluator.Evaluate(waveBars(1000), params))
}

func (suite *WalkForwardTestSuite) TestUndersizedBlocksRejected() {
	// 250 bars / 10 splits = 25 bars per block, below the minimum of 30.
	suite.Equal(RejectionScore, suite.evaluator.Evaluate(waveBars(250), suite.params))
}

func (suite *WalkForwardTestSuite) TestBlocksConsumedByWarmupAreRejected() {
	// Blocks pass the raw size check but a 100-bar trend EMA leaves no bar
	// after warm-up in a 35-bar block, so every block scores the penalty.
	params := suite.params
	params.TrendLength = 100

	suite.Equal(RejectionScore, suite.evaluator.Evaluate(waveBars(350), params))
}

func (suite *WalkForwardTestSuite) TestFlatMarketScoresZero() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.MarketData, 600)

	for i := range bars {
		bars[i] = types.MarketData{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   100,
			High:   100,
			Low:    100,
			Close:  100,
			Volume: 1000,
		}
	}

	// No signal ever fires, every block's curve is constant, and the
	// drawdown floor maps each block to 0.
	suite.InDelta(0.0, suite.evaluator.Evaluate(bars, suite.params), 1e-12)
}

func (suite *WalkForwardTestSuite) TestDeterministicUnderParallelism() {
	bars := waveBars(1200)

	first := suite.evaluator.Evaluate(bars, suite.params)
	for i := 0; i < 5; i++ {
		suite.Equal(first, suite.evaluator.Evaluate(bars, suite.params))
	}
}

func (suite *WalkForwardTestSuite) TestScoreIsFinite() {
	score := suite.evaluator.Evaluate(waveBars(1200), suite.params)
	suite.False(math.IsNaN(score))
	suite.False(math.IsInf(score, 0))
}

func (suite *WalkForwardTestSuite) TestViolentMarketScoreIsFinite() {
	// An exponential blow-off on top of the oscillation: a short caught by
	// the rally can push equity below zero, and a long riding it earns a
	// return that overflows when annualized over a 60-hour block. Both
	// extremes must still land on a finite score.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.MarketData, 600)

	for i := range bars {
		price := (100 + 20*math.Sin(float64(i)/12)) * math.Exp(float64(i)/40)
		bars[i] = types.MarketData{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   price,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: 1000,
		}
	}

	score := suite.evaluator.Evaluate(bars, suite.params)
	suite.False(math.IsNaN(score))
	suite.False(math.IsInf(score, 0))
}

func (suite *WalkForwardTestSuite) TestRemainderBarsExcluded() {
	// 1207 bars: 7 remainder bars beyond 10 equal blocks must not change
	// the score relative to the exact multiple.
	bars := waveBars(1207)

	suite.Equal(suite.evaluator.Evaluate(bars[:1200], suite.params),
		suite.evaluator.Evaluate(bars, suite.params))
}
