package indicator

import (
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// EMA computes the exponential moving average series of prices.
// The first output is seeded with the first input and every following value is
// smoothed with alpha = 2/(period+1), matching pandas ewm(span=period, adjust=False).
// A period longer than the series is allowed but logged.
func EMA(log *logger.Logger, prices []float64, period int) ([]float64, error) {
	if len(prices) == 0 {
		return []float64{}, nil
	}

	if period <= 0 {
		return nil, errors.NewInvalidParameterError("EMA", "period", "must be a positive integer", period)
	}

	if period > len(prices) {
		log.Warn("EMA period is longer than the price series, EMA may be unstable initially",
			zap.Int("period", period),
			zap.Int("length", len(prices)),
		)
	}

	alpha := smoothingFactor(period)
	ema := make([]float64, len(prices))
	ema[0] = prices[0]

	for i := 1; i < len(prices); i++ {
		ema[i] = alpha*prices[i] + (1-alpha)*ema[i-1]
	}

	return ema, nil
}
