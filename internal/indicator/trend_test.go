package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type TrendEstimatorTestSuite struct {
	suite.Suite
}

func TestTrendEstimatorSuite(t *testing.T) {
	suite.Run(t, new(TrendEstimatorTestSuite))
}

func (suite *TrendEstimatorTestSuite) TestInvalidAlpha() {
	tests := []struct {
		name  string
		alpha float64
	}{
		{"zero", 0},
		{"negative", -0.2},
		{"above one", 1.5},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			estimator, err := NewExponentialTrendEstimator(100, tc.alpha)
			suite.Nil(estimator)
			suite.Error(err)
			suite.True(errors.IsConstructionError(err))
			suite.Contains(err.Error(), "alpha")
		})
	}
}

func (suite *TrendEstimatorTestSuite) TestAlphaOneTracksInput() {
	estimator, err := NewExponentialTrendEstimator(0, 1)
	suite.Require().NoError(err)

	estimator.Update(42)
	suite.Equal(42.0, estimator.Trend())
}

func (suite *TrendEstimatorTestSuite) TestUpdate() {
	estimator, err := NewExponentialTrendEstimator(100, 0.5)
	suite.Require().NoError(err)

	estimator.Update(110)
	suite.InDelta(105.0, estimator.Trend(), 1e-12)

	estimator.Update(95)
	suite.InDelta(100.0, estimator.Trend(), 1e-12)
	suite.Equal(0.5, estimator.Alpha())

	estimator.Reset(10)
	suite.Equal(10.0, estimator.Trend())
	suite.Equal(0.5, estimator.Alpha())
}

func (suite *TrendEstimatorTestSuite) TestPeriodTrendEstimator() {
	estimator, err := NewPeriodTrendEstimator(0, 9)
	suite.Require().NoError(err)
	suite.InDelta(0.2, estimator.Alpha(), 1e-12)

	_, err = NewPeriodTrendEstimator(0, 0)
	suite.True(errors.IsConstructionError(err))
}
