package optimizer

import (
	"math"

	"github.com/rxtech-lab/argo-optimizer/internal/backtest"
	"github.com/rxtech-lab/argo-optimizer/internal/logger"
	"github.com/rxtech-lab/argo-optimizer/internal/types"
	"github.com/rxtech-lab/argo-optimizer/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Result is the outcome of an optimization run. Found is false when no trial
// produced a positive score, in which case Params must not be traded.
type Result struct {
	Params types.StrategyParams
	Score  float64
	Trials int
	Found  bool
}

// Optimizer searches the parameter space for the set with the best
// walk-forward score on the training data.
type Optimizer struct {
	evaluator    *backtest.WalkForwardEvaluator
	searcher     Searcher
	logger       *logger.Logger
	showProgress bool
}

func NewOptimizer(evaluator *backtest.WalkForwardEvaluator, searcher Searcher, logger *logger.Logger) *Optimizer {
	return &Optimizer{
		evaluator:    evaluator,
		searcher:     searcher,
		logger:       logger,
		showProgress: true,
	}
}

// DisableProgress turns the terminal progress bar off, for tests and
// non-interactive runs.
func (o *Optimizer) DisableProgress() {
	o.showProgress = false
}

// Run evaluates trials parameter sets against the given candles and returns
// the best. Every trial produces a finite score, so a run never aborts on a
// bad parameter set.
func (o *Optimizer) Run(bars []types.MarketData, trials int) (Result, error) {
	if trials <= 0 {
		return Result{}, errors.Newf(errors.ErrCodeInvalidParameter, "trials must be positive, got %d", trials)
	}

	var bar *progressbar.ProgressBar
	if o.showProgress {
		bar = progressbar.NewOptions(trials,
			progressbar.OptionSetDescription("Optimizing"),
			progressbar.OptionShowCount(),
		)
	}

	best := Result{Score: math.Inf(-1), Trials: trials}

	for trial := 0; trial < trials; trial++ {
		params := o.searcher.Propose(trial)
		score := o.evaluator.Evaluate(bars, params)
		o.searcher.Report(params, score)

		o.logger.Debug("trial finished",
			zap.Int("trial", trial),
			zap.Float64("score", score),
		)

		if score > best.Score {
			best.Params = params
			best.Score = score
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	best.Found = best.Score > 0
	if !best.Found {
		o.logger.Warn("no profitable parameter set found",
			zap.Int("trials", trials),
			zap.Float64("best_score", best.Score),
		)
	} else {
		o.logger.Info("optimization finished",
			zap.Int("trials", trials),
			zap.Float64("best_score", best.Score),
		)
	}

	return best, nil
}
