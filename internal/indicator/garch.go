package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// varianceFloor replaces a non-positive variance so sigma stays strictly positive.
const varianceFloor = 2.220446049250313e-16

// GARCHVolatilityEstimator tracks a GARCH(1,1) volatility:
//
//	sigma2 = omega + alpha*prevR2 + beta*prevSigma2
type GARCHVolatilityEstimator struct {
	initialSigma float64
	sigma        float64
	prevSigma2   float64
	prevR2       float64
	omega        float64
	alpha        float64
	beta         float64
	log          *logger.Logger
}

// NewGARCHVolatilityEstimator validates the parameters and seeds the variance with initialSigma².
// A warning is logged when alpha+beta >= 1 because the process may be non-stationary.
func NewGARCHVolatilityEstimator(initialSigma, omega, alpha, beta float64, log *logger.Logger) (*GARCHVolatilityEstimator, error) {
	const component = "GARCHVolatilityEstimator"

	if !(initialSigma > 0) {
		return nil, errors.NewInvalidParameterError(component, "initial_sigma", "must be positive", initialSigma)
	}

	if !(omega > 0) {
		return nil, errors.NewInvalidParameterError(component, "omega", "must be positive", omega)
	}

	if !(alpha > 0) {
		return nil, errors.NewInvalidParameterError(component, "alpha", "must be positive", alpha)
	}

	if !(beta > 0) {
		return nil, errors.NewInvalidParameterError(component, "beta", "must be positive", beta)
	}

	if alpha+beta >= 1 {
		log.Warn("GARCH parameters alpha + beta >= 1, may lead to non-stationarity",
			zap.Float64("alpha", alpha),
			zap.Float64("beta", beta),
		)
	}

	g := &GARCHVolatilityEstimator{
		initialSigma: initialSigma,
		omega:        omega,
		alpha:        alpha,
		beta:         beta,
		log:          log,
	}
	g.Reset()

	return g, nil
}

// Update feeds one return. NaN or infinite returns are rejected with
// ErrCodeInvalidInput and leave the estimator untouched.
func (g *GARCHVolatilityEstimator) Update(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return errors.Newf(errors.ErrCodeInvalidInput, "GARCHVolatilityEstimator: invalid return value %v", r)
	}

	sigma2 := g.omega + g.alpha*g.prevR2 + g.beta*g.prevSigma2
	if !(sigma2 > 0) {
		g.log.Warn("GARCH variance became non-positive, clamping to a small positive value",
			zap.Float64("sigma2", sigma2),
		)

		sigma2 = varianceFloor
	}

	g.prevSigma2 = sigma2
	g.prevR2 = r * r
	g.sigma = math.Sqrt(sigma2)

	return nil
}

// Sigma returns the current volatility estimate.
func (g *GARCHVolatilityEstimator) Sigma() float64 {
	return g.sigma
}

// Reset restores the state the estimator was constructed with.
func (g *GARCHVolatilityEstimator) Reset() {
	g.sigma = g.initialSigma
	g.prevSigma2 = g.initialSigma * g.initialSigma
	g.prevR2 = 0
}
