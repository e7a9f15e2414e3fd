package indicator

import (
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// ValidateMACDPeriods checks the period triple shared by the batch MACD functions
// and the MACD strategy.
func ValidateMACDPeriods(component string, fastPeriod, slowPeriod, signalPeriod int) error {
	if fastPeriod <= 0 {
		return errors.NewInvalidParameterError(component, "fast_period", "must be a positive integer", fastPeriod)
	}

	if slowPeriod <= 0 {
		return errors.NewInvalidParameterError(component, "slow_period", "must be a positive integer", slowPeriod)
	}

	if signalPeriod <= 0 {
		return errors.NewInvalidParameterError(component, "signal_period", "must be a positive integer", signalPeriod)
	}

	if fastPeriod >= slowPeriod {
		return errors.NewInvalidParameterError(component, "fast_period", "must be smaller than slow_period", fastPeriod)
	}

	return nil
}

// MACD returns EMA(prices, fastPeriod) - EMA(prices, slowPeriod) element by element.
func MACD(log *logger.Logger, prices []float64, fastPeriod, slowPeriod int) ([]float64, error) {
	// signal period is irrelevant for the MACD line, pass a valid placeholder
	if err := ValidateMACDPeriods("MACD", fastPeriod, slowPeriod, 1); err != nil {
		return nil, err
	}

	if len(prices) == 0 {
		return []float64{}, nil
	}

	fast, err := EMA(log, prices, fastPeriod)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate fast EMA", err)
	}

	slow, err := EMA(log, prices, slowPeriod)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate slow EMA", err)
	}

	line := make([]float64, len(prices))
	for i := range prices {
		line[i] = fast[i] - slow[i]
	}

	return line, nil
}

// SignalLine is the EMA of a MACD line.
func SignalLine(log *logger.Logger, macdLine []float64, signalPeriod int) ([]float64, error) {
	if signalPeriod <= 0 {
		return nil, errors.NewInvalidParameterError("SignalLine", "signal_period", "must be a positive integer", signalPeriod)
	}

	return EMA(log, macdLine, signalPeriod)
}
