package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ParamsTestSuite struct {
	suite.Suite
}

func TestParamsSuite(t *testing.T) {
	suite.Run(t, new(ParamsTestSuite))
}

func validParams() StrategyParams {
	return StrategyParams{
		TrendLength:       100,
		StrengthLength:    14,
		StrengthThreshold: 25,
		MomentumFast:      12,
		MomentumSlow:      26,
		MomentumSignal:    9,
		StopLoss:          0.05,
		TakeProfit:        0.10,
		PositionFraction:  0.5,
	}
}

func (suite *ParamsTestSuite) TestValidateValid() {
	params := validParams()
	suite.NoError(params.Validate())
}

func (suite *ParamsTestSuite) TestValidateRejectsZeroPeriods() {
	params := validParams()
	params.TrendLength = 0
	suite.Error(params.Validate())

	params = validParams()
	params.MomentumSignal = -1
	suite.Error(params.Validate())
}

func (suite *ParamsTestSuite) TestValidateRejectsRiskFractionsOutOfRange() {
	params := validParams()
	params.StopLoss = 1.5
	suite.Error(params.Validate())

	params = validParams()
	params.TakeProfit = 0
	suite.Error(params.Validate())

	params = validParams()
	params.PositionFraction = 1.2
	suite.Error(params.Validate())
}

func (suite *ParamsTestSuite) TestValidateAllowsFullPositionFraction() {
	params := validParams()
	params.PositionFraction = 1.0
	suite.NoError(params.Validate())
}

func (suite *ParamsTestSuite) TestValidateAllowsInvertedMomentumPeriods() {
	// fast >= slow is scored with the rejection penalty by the evaluator,
	// not rejected at validation time.
	params := validParams()
	params.MomentumFast = 30
	params.MomentumSlow = 20
	suite.NoError(params.Validate())
}
