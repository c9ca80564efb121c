package engine

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-optimizer/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-optimizer/internal/logger"
	"github.com/rxtech-lab/argo-optimizer/internal/types"
	"github.com/rxtech-lab/argo-optimizer/mocks"
	"github.com/rxtech-lab/argo-optimizer/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type EngineTestSuite struct {
	suite.Suite
	engine *OptimizerEngine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) SetupTest() {
	suite.engine = NewOptimizerEngine()
	suite.engine.SetLogger(logger.NewNopLogger())
	suite.engine.DisableProgress()
}

func (suite *EngineTestSuite) TearDownTest() {
	if suite.engine != nil {
		suite.engine.Close()
	}
}

// writeWaveCSV writes n hourly candles oscillating around 100 and returns
// the file path.
func (suite *EngineTestSuite) writeWaveCSV(n int) string {
	var b strings.Builder

	b.WriteString("date,open,high,low,close,volume\n")

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < n; i++ {
		price := 100 + 20*math.Sin(float64(i)/25)
		fmt.Fprintf(&b, "%s,%f,%f,%f,%f,1000\n",
			start.Add(time.Duration(i)*time.Hour).Format("2006-01-02 15:04:05"),
			price, price+1, price-1, price)
	}

	path := filepath.Join(suite.T().TempDir(), "candles.csv")
	suite.Require().NoError(os.WriteFile(path, []byte(b.String()), 0o644))

	return path
}

func (suite *EngineTestSuite) TestRunRequiresDataPath() {
	suite.Require().NoError(suite.engine.Initialize(""))
	suite.Require().NoError(suite.engine.SetResultsFolder(suite.T().TempDir()))

	err := suite.engine.Run()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *EngineTestSuite) TestRunRequiresInitialize() {
	suite.Require().NoError(suite.engine.SetDataPath("candles.csv"))
	suite.Require().NoError(suite.engine.SetResultsFolder(suite.T().TempDir()))

	err := suite.engine.Run()
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestStateNil))
}

func (suite *EngineTestSuite) TestEmptySettersRejected() {
	suite.Error(suite.engine.SetDataPath(""))
	suite.Error(suite.engine.SetResultsFolder(""))
}

func (suite *EngineTestSuite) TestSplitFractions() {
	bars := make([]types.MarketData, 100)

	train, validation, test := suite.engine.split(bars)
	suite.Len(train, 60)
	suite.Len(validation, 20)
	suite.Len(test, 20)
}

func (suite *EngineTestSuite) TestRunTooFewCandles() {
	// Every trial is penalized on a series this short, so the run reports
	// that no profitable parameters were found.
	suite.Require().NoError(suite.engine.Initialize("trials: 3\nseed: 1\n"))
	suite.Require().NoError(suite.engine.SetDataPath(suite.writeWaveCSV(80)))
	suite.Require().NoError(suite.engine.SetResultsFolder(suite.T().TempDir()))

	err := suite.engine.Run()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeTrialFailed))
}

func (suite *EngineTestSuite) TestRunMissingDataFile() {
	suite.Require().NoError(suite.engine.Initialize(""))
	suite.Require().NoError(suite.engine.SetDataPath(filepath.Join(suite.T().TempDir(), "missing.csv")))
	suite.Require().NoError(suite.engine.SetResultsFolder(suite.T().TempDir()))

	suite.Error(suite.engine.Run())
}

func (suite *EngineTestSuite) TestRunNoCandles() {
	suite.Require().NoError(suite.engine.Initialize(""))
	suite.Require().NoError(suite.engine.SetDataPath("candles.csv"))
	suite.Require().NoError(suite.engine.SetResultsFolder(suite.T().TempDir()))

	ctrl := gomock.NewController(suite.T())
	ds := mocks.NewMockDataSource(ctrl)
	ds.EXPECT().Initialize("candles.csv").Return(nil)
	ds.EXPECT().ReadAll(gomock.Any(), gomock.Any()).Return(nil, nil)
	ds.EXPECT().Close().Return(nil)

	suite.engine.SetDataSource(ds)

	err := suite.engine.Run()
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestNoData))
}

func (suite *EngineTestSuite) TestRunPassesTimeWindow() {
	config := "start_time: 2024-01-01T00:00:00Z\nend_time: 2024-02-01T00:00:00Z\n"
	suite.Require().NoError(suite.engine.Initialize(config))
	suite.Require().NoError(suite.engine.SetDataPath("candles.csv"))
	suite.Require().NoError(suite.engine.SetResultsFolder(suite.T().TempDir()))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	ctrl := gomock.NewController(suite.T())
	ds := mocks.NewMockDataSource(ctrl)
	ds.EXPECT().Initialize("candles.csv").Return(nil)
	ds.EXPECT().ReadAll(optional.Some(start), optional.Some(end)).Return(nil, nil)
	ds.EXPECT().Close().Return(nil)

	suite.engine.SetDataSource(ds)

	err := suite.engine.Run()
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestNoData))
}

func (suite *EngineTestSuite) TestSimulatePhaseProducesCurve() {
	suite.Require().NoError(suite.engine.Initialize(""))

	bars := make([]types.MarketData, 400)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range bars {
		price := 100 + 20*math.Sin(float64(i)/25)
		bars[i] = types.MarketData{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1000,
		}
	}

	params := types.StrategyParams{
		TrendLength:       50,
		StrengthLength:    14,
		StrengthThreshold: 25,
		MomentumFast:      12,
		MomentumSlow:      26,
		MomentumSignal:    9,
		StopLoss:          0.05,
		TakeProfit:        0.10,
		PositionFraction:  0.25,
	}

	commission := commission_fee.NewFlatRateCommissionFee(commission_fee.DefaultFlatRate)

	curve, err := suite.engine.simulatePhase(bars, params, commission)
	suite.Require().NoError(err)
	suite.NotEmpty(curve)

	for _, point := range curve {
		suite.False(math.IsNaN(point.Value))
		suite.Greater(point.Value, 0.0)
	}
}

func (suite *EngineTestSuite) TestSimulatePhaseTooShort() {
	suite.Require().NoError(suite.engine.Initialize(""))

	bars := make([]types.MarketData, 20)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range bars {
		bars[i] = types.MarketData{Time: start.Add(time.Duration(i) * time.Hour), Close: 100, Open: 100, High: 100, Low: 100}
	}

	params := types.StrategyParams{
		TrendLength:       100,
		StrengthLength:    14,
		StrengthThreshold: 25,
		MomentumFast:      12,
		MomentumSlow:      26,
		MomentumSignal:    9,
		StopLoss:          0.05,
		TakeProfit:        0.10,
		PositionFraction:  0.25,
	}

	curve, err := suite.engine.simulatePhase(bars, params, commission_fee.NewZeroCommissionFee())
	suite.NoError(err)
	suite.Empty(curve)
}

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestDefaults() {
	config, err := ParseConfig(nil)
	suite.Require().NoError(err)

	suite.InDelta(1_000_000, config.InitialCapital, 1e-12)
	suite.Equal(commission_fee.BrokerFlatRate, config.Broker)
	suite.InDelta(commission_fee.DefaultFlatRate, config.CommissionRate, 1e-12)
	suite.Equal(50, config.Trials)
	suite.InDelta(0.6, config.TrainFraction, 1e-12)
	suite.InDelta(0.2, config.ValidationFraction, 1e-12)
	suite.True(config.StartTime.IsNone())
}

func (suite *ConfigTestSuite) TestPartialOverride() {
	config, err := ParseConfig([]byte("trials: 10\ninitial_capital: 5000\n"))
	suite.Require().NoError(err)

	suite.Equal(10, config.Trials)
	suite.InDelta(5000, config.InitialCapital, 1e-12)
	// Untouched fields keep their defaults.
	suite.InDelta(0.6, config.TrainFraction, 1e-12)
}

func (suite *ConfigTestSuite) TestTimeWindow() {
	config, err := ParseConfig([]byte("start_time: 2024-01-01T00:00:00Z\nend_time: 2024-06-01T00:00:00Z\n"))
	suite.Require().NoError(err)

	suite.True(config.StartTime.IsSome())
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), config.StartTime.Unwrap())
	suite.True(config.EndTime.IsSome())
}

func (suite *ConfigTestSuite) TestInvalidSplit() {
	_, err := ParseConfig([]byte("train_fraction: 0.8\nvalidation_fraction: 0.3\n"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestInvalidCapital() {
	_, err := ParseConfig([]byte("initial_capital: -5\n"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
