package backtest

import (
	"sync"

	"github.com/rxtech-lab/argo-optimizer/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-optimizer/internal/indicator"
	"github.com/rxtech-lab/argo-optimizer/internal/logger"
	"github.com/rxtech-lab/argo-optimizer/internal/strategy"
	"github.com/rxtech-lab/argo-optimizer/internal/types"
	"github.com/rxtech-lab/argo-optimizer/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultSplits is the number of contiguous blocks a dataset is split
	// into for walk-forward evaluation.
	DefaultSplits = 10

	// MinBlockBars is the smallest usable block size, checked against the
	// pre-indicator bar count before any block is simulated.
	MinBlockBars = 30

	// RejectionScore is the sentinel for invalid or degenerate trials.
	RejectionScore = -1.0
)

// WalkForwardEvaluator scores one candidate parameter set by re-running the
// full signal + simulation pipeline independently on contiguous sub-periods
// and averaging the per-block objective. Each block recomputes its own
// indicators and so pays its own warm-up; blocks are deliberately not
// continuations of each other's indicator state. That independence is part
// of the observable scoring contract, not an optimization detail.
type WalkForwardEvaluator struct {
	splits         int
	minBlockBars   int
	initialCapital float64
	commission     commission_fee.CommissionFee
	log            *logger.Logger
}

// NewWalkForwardEvaluator creates an evaluator with the default split count.
func NewWalkForwardEvaluator(initialCapital float64, commission commission_fee.CommissionFee, log *logger.Logger) *WalkForwardEvaluator {
	return &WalkForwardEvaluator{
		splits:         DefaultSplits,
		minBlockBars:   MinBlockBars,
		initialCapital: initialCapital,
		commission:     commission,
		log:            log,
	}
}

// Evaluate returns the trial score for the parameter set over the bars.
// The result is always finite: invalid momentum ordering (fast >= slow) and
// undersized blocks short-circuit to the rejection score before any block is
// simulated, and a block that produces no value series contributes the
// rejection score to the mean.
func (e *WalkForwardEvaluator) Evaluate(bars []types.MarketData, params types.StrategyParams) float64 {
	if params.MomentumFast >= params.MomentumSlow {
		e.log.Debug("rejecting trial: momentum fast period >= slow period",
			zap.Int("fast", params.MomentumFast),
			zap.Int("slow", params.MomentumSlow),
		)

		return RejectionScore
	}

	chunkSize := len(bars) / e.splits
	if chunkSize < e.minBlockBars {
		e.log.Debug("rejecting trial: blocks too small",
			zap.Int("bars", len(bars)),
			zap.Int("chunk_size", chunkSize),
		)

		return RejectionScore
	}

	// Blocks share no state and are aggregated with an order-independent
	// mean, so they can run concurrently.
	scores := make([]float64, e.splits)

	var wg sync.WaitGroup

	for i := 0; i < e.splits; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			block := bars[i*chunkSize : (i+1)*chunkSize]
			scores[i] = e.evaluateBlock(block, params)
		}(i)
	}

	wg.Wait()

	sum := 0.0
	for _, score := range scores {
		sum += score
	}

	return sum / float64(e.splits)
}

// evaluateBlock runs indicators, signals and the simulator over one block
// and scores the resulting curve.
func (e *WalkForwardEvaluator) evaluateBlock(block []types.MarketData, params types.StrategyParams) float64 {
	blockBars, snapshots, err := indicator.Compute(block, params)
	if err != nil {
		if !errors.IsInsufficientDataError(err) {
			e.log.Warn("indicator computation failed for block", zap.Error(err))
		}

		return RejectionScore
	}

	signals, err := strategy.GenerateSignals(blockBars, snapshots, params)
	if err != nil {
		e.log.Warn("signal generation failed for block", zap.Error(err))

		return RejectionScore
	}

	simulator := NewPositionSimulator(e.initialCapital, e.commission, e.log)

	curve, err := simulator.Run(blockBars, signals, params)
	if err != nil {
		e.log.Warn("simulation failed for block", zap.Error(err))

		return RejectionScore
	}

	if len(curve) == 0 {
		return RejectionScore
	}

	return CalmarRatio(curve)
}
