package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type PortfolioTestSuite struct {
	suite.Suite
}

func TestPortfolioSuite(t *testing.T) {
	suite.Run(t, new(PortfolioTestSuite))
}

func (suite *PortfolioTestSuite) TestTotalReturn() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := EquityCurve{
		{Time: start, Value: 1000},
		{Time: start.Add(time.Hour), Value: 1100},
	}

	suite.InDelta(0.1, curve.TotalReturn(), 1e-12)
	suite.Equal(time.Hour, curve.Elapsed())
}

func (suite *PortfolioTestSuite) TestTotalReturnDegenerate() {
	suite.Zero(EquityCurve{}.TotalReturn())
	suite.Zero(EquityCurve{{Value: 100}}.TotalReturn())
	suite.Zero(EquityCurve{}.Elapsed())
}

func (suite *PortfolioTestSuite) TestFirstLast() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := EquityCurve{
		{Time: start, Value: 1},
		{Time: start.Add(time.Hour), Value: 2},
		{Time: start.Add(2 * time.Hour), Value: 3},
	}

	suite.Equal(1.0, curve.First().Value)
	suite.Equal(3.0, curve.Last().Value)
}
