package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type MACDTestSuite struct {
	suite.Suite
}

func TestMACDSuite(t *testing.T) {
	suite.Run(t, new(MACDTestSuite))
}

func (suite *MACDTestSuite) TestInvalidPeriods() {
	_, err := MACDSeries([]float64{1, 2, 3}, 0, 26, 9)
	suite.Error(err)

	_, err = MACDSeries([]float64{1, 2, 3}, 12, -1, 9)
	suite.Error(err)

	_, err = MACDSeries([]float64{1, 2, 3}, 12, 26, 0)
	suite.Error(err)
}

func (suite *MACDTestSuite) TestConstantSeriesIsZero() {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 100
	}

	result, err := MACDSeries(values, 5, 10, 4)
	suite.NoError(err)
	suite.Len(result.Line, 60)
	suite.Len(result.Signal, 60)

	// After warm-up both EMAs equal the constant, so line and signal are 0.
	for i := 20; i < 60; i++ {
		suite.InDelta(0.0, result.Line[i], 1e-12)
		suite.InDelta(0.0, result.Signal[i], 1e-12)
	}
}

func (suite *MACDTestSuite) TestSignalWarmupFollowsLineWarmup() {
	values := make([]float64, 40)
	for i := range values {
		values[i] = float64(i + 1)
	}

	result, err := MACDSeries(values, 3, 6, 4)
	suite.NoError(err)

	lineStart := firstNonNaN(result.Line)
	signalStart := firstNonNaN(result.Signal)
	suite.Equal(5, lineStart) // slow period - 1
	suite.Equal(lineStart+3, signalStart)

	for i := 0; i < signalStart; i++ {
		suite.True(math.IsNaN(result.Signal[i]))
	}
}

func (suite *MACDTestSuite) TestUptrendLinePositive() {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 100 + 2*float64(i)
	}

	result, err := MACDSeries(values, 4, 8, 3)
	suite.NoError(err)

	// In a steady uptrend the fast EMA sits above the slow EMA.
	for i := 20; i < 50; i++ {
		suite.Greater(result.Line[i], 0.0)
	}
}
