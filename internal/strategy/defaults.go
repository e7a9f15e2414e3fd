package strategy

import (
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// NewDefaultRegistry creates a registry holding every built-in strategy.
func NewDefaultRegistry(log *logger.Logger) (Registry, error) {
	registry := NewRegistry()

	builders := []func(*logger.Logger) (StrategyInfo, error){
		newMACDInfo,
		newMeanReversionInfo,
		newContrarianInfo,
		newFixedTimeInfo,
		newRandomInfo,
	}

	for _, build := range builders {
		info, err := build(log)
		if err != nil {
			return nil, err
		}

		if err := registry.Register(info); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

func newStrategyInfo[T any](id, name, description string, defaults T, factory Factory) (StrategyInfo, error) {
	params, err := describeParams(defaults)
	if err != nil {
		return StrategyInfo{}, errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "failed to describe parameters of %s", id)
	}

	schema, err := ToJSONSchema(defaults)
	if err != nil {
		return StrategyInfo{}, errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "failed to generate schema of %s", id)
	}

	return StrategyInfo{
		ID:          id,
		Name:        name,
		Description: description,
		Params:      params,
		Schema:      schema,
		Factory:     factory,
	}, nil
}
