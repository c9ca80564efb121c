package engine

import (
	"time"

	"github.com/rxtech-lab/argo-optimizer/internal/backtest"
	"github.com/rxtech-lab/argo-optimizer/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-optimizer/internal/datasource"
	"github.com/rxtech-lab/argo-optimizer/internal/indicator"
	"github.com/rxtech-lab/argo-optimizer/internal/logger"
	"github.com/rxtech-lab/argo-optimizer/internal/optimizer"
	"github.com/rxtech-lab/argo-optimizer/internal/reporting"
	"github.com/rxtech-lab/argo-optimizer/internal/strategy"
	"github.com/rxtech-lab/argo-optimizer/internal/types"
	"github.com/rxtech-lab/argo-optimizer/pkg/errors"
	"go.uber.org/zap"
)

const (
	PhaseTrain      = "train"
	PhaseValidation = "validation"
	PhaseTest       = "test"
)

// OptimizerEngine orchestrates one full run: load and clean the candles,
// split them into train, validation and test sets, search the training set
// for the best parameters, then replay those parameters on each set and
// write the results.
type OptimizerEngine struct {
	config        Config
	log           *logger.Logger
	state         *backtest.BacktestState
	datasource    datasource.DataSource
	dataPath      string
	resultsFolder string
	showProgress  bool
}

func NewOptimizerEngine() *OptimizerEngine {
	return &OptimizerEngine{
		config:       DefaultConfig(),
		showProgress: true,
	}
}

// Initialize parses the yaml config and prepares the logger and the trade
// recording state.
func (e *OptimizerEngine) Initialize(config string) error {
	parsed, err := ParseConfig([]byte(config))
	if err != nil {
		return err
	}

	e.config = parsed

	if e.log == nil {
		log, loggerErr := logger.NewLogger()
		if loggerErr != nil {
			return loggerErr
		}

		e.log = log
	}

	e.log.Debug("optimizer engine initialized",
		zap.Float64("initial_capital", e.config.InitialCapital),
		zap.Int("trials", e.config.Trials),
	)

	e.state, err = backtest.NewBacktestState(e.log)
	if err != nil {
		return err
	}

	return e.state.Initialize()
}

// SetLogger replaces the engine's logger. Call before Initialize.
func (e *OptimizerEngine) SetLogger(log *logger.Logger) {
	e.log = log
}

// SetTrials overrides the configured trial count. Call after Initialize;
// non-positive values are ignored.
func (e *OptimizerEngine) SetTrials(trials int) {
	if trials > 0 {
		e.config.Trials = trials
	}
}

// SetDataSource injects a prepared data source. When unset, Run opens an
// in-memory DuckDB source over the data path.
func (e *OptimizerEngine) SetDataSource(ds datasource.DataSource) {
	e.datasource = ds
}

// SetDataPath points the engine at the candle CSV file.
func (e *OptimizerEngine) SetDataPath(path string) error {
	if path == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "data path is empty")
	}

	e.dataPath = path

	return nil
}

// SetResultsFolder sets the directory run artifacts are written into.
func (e *OptimizerEngine) SetResultsFolder(folder string) error {
	if folder == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "results folder is empty")
	}

	e.resultsFolder = folder

	return nil
}

// DisableProgress turns off the optimizer's terminal progress bar.
func (e *OptimizerEngine) DisableProgress() {
	e.showProgress = false
}

// Run executes the full optimization flow.
func (e *OptimizerEngine) Run() error {
	if e.dataPath == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "no data path set")
	}

	if e.resultsFolder == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "no results folder set")
	}

	if e.state == nil {
		return errors.New(errors.ErrCodeBacktestStateNil, "engine not initialized")
	}

	bars, err := e.loadCandles()
	if err != nil {
		return err
	}

	trainSet, validationSet, testSet := e.split(bars)
	e.log.Info("data loaded and split",
		zap.Int("train", len(trainSet)),
		zap.Int("validation", len(validationSet)),
		zap.Int("test", len(testSet)),
	)

	commission := commission_fee.GetCommissionFeeHandler(e.config.Broker, e.config.CommissionRate)

	seed := e.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	evaluator := backtest.NewWalkForwardEvaluator(e.config.InitialCapital, commission, e.log)
	searcher := optimizer.NewRandomSearcher(optimizer.DefaultSearchSpace(), seed)

	opt := optimizer.NewOptimizer(evaluator, searcher, e.log)
	if !e.showProgress {
		opt.DisableProgress()
	}

	result, err := opt.Run(trainSet, e.config.Trials)
	if err != nil {
		return err
	}

	if !result.Found {
		return errors.Newf(errors.ErrCodeTrialFailed,
			"no profitable parameter set found after %d trials (best score %.4f)",
			result.Trials, result.Score)
	}

	e.log.Info("champion parameters selected", zap.Float64("score", result.Score))

	writer, err := reporting.NewCSVWriter(e.resultsFolder)
	if err != nil {
		return err
	}

	phases := []struct {
		name string
		bars []types.MarketData
	}{
		{PhaseTrain, trainSet},
		{PhaseValidation, validationSet},
		{PhaseTest, testSet},
	}

	stats := make([]types.BacktestStats, 0, len(phases))

	for _, phase := range phases {
		phaseStats, phaseErr := e.runPhase(phase.name, phase.bars, result.Params, commission, writer)
		if phaseErr != nil {
			return phaseErr
		}

		stats = append(stats, phaseStats)
	}

	if err := writer.WriteStats(stats); err != nil {
		return err
	}

	e.log.Info("run finished", zap.String("results", writer.RunDir()))

	return nil
}

// Close releases the engine's resources.
func (e *OptimizerEngine) Close() error {
	var firstErr error

	if e.datasource != nil {
		if err := e.datasource.Close(); err != nil {
			firstErr = err
		}

		e.datasource = nil
	}

	if e.state != nil {
		if err := e.state.Close(); err != nil && firstErr == nil {
			firstErr = err
		}

		e.state = nil
	}

	return firstErr
}

func (e *OptimizerEngine) loadCandles() ([]types.MarketData, error) {
	if e.datasource == nil {
		ds, err := datasource.NewDataSource(":memory:", e.log)
		if err != nil {
			return nil, err
		}

		e.datasource = ds
	}

	if err := e.datasource.Initialize(e.dataPath); err != nil {
		return nil, err
	}

	bars, err := e.datasource.ReadAll(e.config.StartTime, e.config.EndTime)
	if err != nil {
		return nil, err
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeBacktestNoData, "no candles loaded from %s", e.dataPath)
	}

	return bars, nil
}

// split partitions the candles chronologically into train, validation and
// test sets.
func (e *OptimizerEngine) split(bars []types.MarketData) ([]types.MarketData, []types.MarketData, []types.MarketData) {
	trainEnd := int(float64(len(bars)) * e.config.TrainFraction)
	validationEnd := int(float64(len(bars)) * (e.config.TrainFraction + e.config.ValidationFraction))

	return bars[:trainEnd], bars[trainEnd:validationEnd], bars[validationEnd:]
}

// runPhase replays the champion parameters on one data set and writes its
// artifacts. A phase too short to compute indicators produces empty stats
// instead of failing the run.
func (e *OptimizerEngine) runPhase(
	name string,
	bars []types.MarketData,
	params types.StrategyParams,
	commission commission_fee.CommissionFee,
	writer reporting.ResultWriter,
) (types.BacktestStats, error) {
	if err := e.state.Cleanup(); err != nil {
		return types.BacktestStats{}, err
	}

	curve, err := e.simulatePhase(bars, params, commission)
	if err != nil {
		return types.BacktestStats{}, err
	}

	curvePath := ""

	if len(curve) > 0 {
		curvePath, err = writer.WriteEquityCurve(name, curve)
		if err != nil {
			return types.BacktestStats{}, err
		}
	} else {
		e.log.Warn("phase produced no portfolio values", zap.String("phase", name))
	}

	trades, err := e.state.Trades()
	if err != nil {
		return types.BacktestStats{}, err
	}

	if err := writer.WriteTrades(name, trades); err != nil {
		return types.BacktestStats{}, err
	}

	tradeResult, err := e.state.TradeResult()
	if err != nil {
		return types.BacktestStats{}, err
	}

	stats := reporting.NewBacktestStats(name, curve, params, e.config.InitialCapital, tradeResult, e.dataPath, curvePath)

	e.log.Info("phase finished",
		zap.String("phase", name),
		zap.Float64("final_value", stats.FinalValue),
		zap.Float64("total_return", stats.TotalReturn),
		zap.Float64("annualized_return", stats.AnnualizedReturn),
		zap.Int("trades", tradeResult.NumberOfTrades),
	)

	return stats, nil
}

func (e *OptimizerEngine) simulatePhase(
	bars []types.MarketData,
	params types.StrategyParams,
	commission commission_fee.CommissionFee,
) (types.EquityCurve, error) {
	trimmed, snapshots, err := indicator.Compute(bars, params)
	if err != nil {
		if errors.IsInsufficientDataError(err) {
			return nil, nil
		}

		return nil, err
	}

	signals, err := strategy.GenerateSignals(trimmed, snapshots, params)
	if err != nil {
		return nil, err
	}

	sim := backtest.NewPositionSimulator(e.config.InitialCapital, commission, e.log)
	sim.SetState(e.state)

	return sim.Run(trimmed, signals, params)
}
