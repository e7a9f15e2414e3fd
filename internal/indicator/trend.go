package indicator

import (
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// ExponentialTrendEstimator is a recursive exponential smoother:
//
//	trend = alpha*x + (1-alpha)*trend
type ExponentialTrendEstimator struct {
	trend float64
	alpha float64
}

// NewExponentialTrendEstimator creates a smoother seeded with initial. Alpha must be in (0, 1].
func NewExponentialTrendEstimator(initial, alpha float64) (*ExponentialTrendEstimator, error) {
	if !(alpha > 0 && alpha <= 1) {
		return nil, errors.NewInvalidParameterError("ExponentialTrendEstimator", "alpha", "must be in the range (0, 1]", alpha)
	}

	return &ExponentialTrendEstimator{
		trend: initial,
		alpha: alpha,
	}, nil
}

// NewPeriodTrendEstimator creates a smoother with the EMA smoothing factor 2/(period+1).
func NewPeriodTrendEstimator(initial float64, period int) (*ExponentialTrendEstimator, error) {
	if period <= 0 {
		return nil, errors.NewInvalidParameterError("ExponentialTrendEstimator", "period", "must be a positive integer", period)
	}

	return NewExponentialTrendEstimator(initial, smoothingFactor(period))
}

// Update folds x into the trend.
func (e *ExponentialTrendEstimator) Update(x float64) {
	e.trend = e.alpha*x + (1-e.alpha)*e.trend
}

// Trend returns the current smoothed value.
func (e *ExponentialTrendEstimator) Trend() float64 {
	return e.trend
}

// Alpha returns the smoothing factor.
func (e *ExponentialTrendEstimator) Alpha() float64 {
	return e.alpha
}

// Reset re-seeds the estimator. Alpha is unchanged.
func (e *ExponentialTrendEstimator) Reset(initial float64) {
	e.trend = initial
}

func smoothingFactor(period int) float64 {
	return 2.0 / float64(period+1)
}
