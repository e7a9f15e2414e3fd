package strategy

import (
	"encoding/json"
	"testing"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
	registry Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) SetupTest() {
	registry, err := NewDefaultRegistry(logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.registry = registry
}

type stubStrategy struct {
	id string
}

func (s *stubStrategy) ID() string {
	return s.id
}

func (s *stubStrategy) Execute(_ types.MarketData, initialCash float64) types.SimulationResult {
	return types.EmptyResult(initialCash)
}

func stubInfo(id, name string) StrategyInfo {
	return StrategyInfo{
		ID:   id,
		Name: name,
		Factory: func(map[string]any) (Strategy, error) {
			return &stubStrategy{id: id}, nil
		},
	}
}

func (suite *RegistryTestSuite) TestEnumerateBuiltins() {
	infos := suite.registry.Enumerate()

	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ID)
		suite.NotEmpty(info.Name)
		suite.NotEmpty(info.Description)
		suite.NotEmpty(info.Params)
		suite.True(json.Valid([]byte(info.Schema)), "schema of %s", info.ID)
	}

	suite.Equal([]string{
		ContrarianStrategyID,
		FixedTimeStrategyID,
		MACDStrategyID,
		MeanReversionStrategyID,
		RandomStrategyID,
	}, ids)
}

func (suite *RegistryTestSuite) TestDuplicateRegistrationIsRejected() {
	registry := NewRegistry()

	suite.NoError(registry.Register(stubInfo("stub", "first")))

	err := registry.Register(stubInfo("stub", "second"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyAlreadyRegistered))

	info, err := registry.Get("stub")
	suite.NoError(err)
	suite.Equal("first", info.Name)
	suite.Len(registry.Enumerate(), 1)
}

func (suite *RegistryTestSuite) TestDuplicateBuiltinIsRejected() {
	err := suite.registry.Register(stubInfo(MACDStrategyID, "impostor"))
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyAlreadyRegistered))

	factory, err := suite.registry.Lookup(MACDStrategyID)
	suite.Require().NoError(err)

	strategy, err := factory(nil)
	suite.Require().NoError(err)
	suite.IsType(&MACDStrategy{}, strategy)
}

func (suite *RegistryTestSuite) TestRegisterInvalidInfo() {
	registry := NewRegistry()

	err := registry.Register(stubInfo("", "empty"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	err = registry.Register(StrategyInfo{ID: "nofactory"})
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyFactoryUnavailable))
	suite.Empty(registry.Enumerate())
}

func (suite *RegistryTestSuite) TestLookupUnknown() {
	factory, err := suite.registry.Lookup("does_not_exist")
	suite.Nil(factory)
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedStrategy))

	_, err = suite.registry.Get("does_not_exist")
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedStrategy))
}

func (suite *RegistryTestSuite) TestFactoriesReturnFreshInstances() {
	for _, info := range suite.registry.Enumerate() {
		suite.Run(info.ID, func() {
			a, err := info.Factory(nil)
			suite.Require().NoError(err)

			b, err := info.Factory(map[string]any{})
			suite.Require().NoError(err)

			suite.NotSame(a, b)
		})
	}
}

func (suite *RegistryTestSuite) TestParamsDescribeDefaults() {
	info, err := suite.registry.Get(MACDStrategyID)
	suite.Require().NoError(err)

	params := map[string]StrategyParam{}
	for _, param := range info.Params {
		params[param.Name] = param
	}

	suite.Equal(info.Params[0].Name, "vol_estimate")
	suite.Equal(0.02, params["vol_estimate"].Default)
	suite.Equal("number", params["vol_estimate"].Type)
	suite.Equal(12, params["fast_period"].Default)
	suite.Equal("integer", params["fast_period"].Type)
	suite.Equal(true, params["allow_short"].Default)
	suite.Equal("boolean", params["allow_short"].Type)
	suite.Equal("Period of the fast EMA", params["fast_period"].Description)

	info, err = suite.registry.Get(FixedTimeStrategyID)
	suite.Require().NoError(err)

	for _, param := range info.Params {
		if param.Name == "session_start" {
			suite.Equal("09:30", param.Default)
			suite.Equal("string", param.Type)
		}
	}
}

func (suite *RegistryTestSuite) TestFactoryParameterErrors() {
	tests := []struct {
		name      string
		id        string
		params    map[string]any
		code      errors.ErrorCode
		parameter string
	}{
		{"macd fast not below slow", MACDStrategyID, map[string]any{"fast_period": 30}, errors.ErrCodeInvalidParameter, "fast_period"},
		{"macd negative cost", MACDStrategyID, map[string]any{"transaction_cost": -0.1}, errors.ErrCodeInvalidParameter, "transaction_cost"},
		{"macd stop loss of one", MACDStrategyID, map[string]any{"stop_loss": 1.0}, errors.ErrCodeInvalidParameter, "stop_loss"},
		{"macd trend alpha above one", MACDStrategyID, map[string]any{"trend_alpha": 1.5}, errors.ErrCodeInvalidParameter, "trend_alpha"},
		{"mean reversion short lookback", MeanReversionStrategyID, map[string]any{"lookback_period": 2}, errors.ErrCodeInvalidParameter, "lookback_period"},
		{"mean reversion exit above entry", MeanReversionStrategyID, map[string]any{"exit_threshold": 2.0}, errors.ErrCodeInvalidParameter, "exit_threshold"},
		{"mean reversion profit target", MeanReversionStrategyID, map[string]any{"profit_target": 0}, errors.ErrCodeInvalidParameter, "profit_target"},
		{"contrarian zero moves", ContrarianStrategyID, map[string]any{"consecutive_moves": 0}, errors.ErrCodeInvalidParameter, "consecutive_moves"},
		{"contrarian position size", ContrarianStrategyID, map[string]any{"position_size": 1.5}, errors.ErrCodeInvalidParameter, "position_size"},
		{"fixed time zero holding", FixedTimeStrategyID, map[string]any{"holding_period_minutes": 0}, errors.ErrCodeInvalidParameter, "holding_period_minutes"},
		{"fixed time bad session", FixedTimeStrategyID, map[string]any{"session_start": "9h30"}, errors.ErrCodeInvalidParameter, "session_start"},
		{"fixed time inverted session", FixedTimeStrategyID, map[string]any{"session_start": "17:00"}, errors.ErrCodeInvalidParameter, "session_start"},
		{"random zero interval", RandomStrategyID, map[string]any{"time_step_interval": 0}, errors.ErrCodeInvalidParameter, "time_step_interval"},
		{"random inverted fractions", RandomStrategyID, map[string]any{"min_buy_fraction": 0.5}, errors.ErrCodeInvalidParameter, "min_buy_fraction"},
		{"unknown parameter", MACDStrategyID, map[string]any{"bogus": 1}, errors.ErrCodeStrategyConfigError, ""},
		{"wrong parameter type", MeanReversionStrategyID, map[string]any{"lookback_period": "twenty"}, errors.ErrCodeStrategyConfigError, ""},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			factory, err := suite.registry.Lookup(tc.id)
			suite.Require().NoError(err)

			strategy, err := factory(tc.params)
			suite.Nil(strategy)
			suite.Require().Error(err)
			suite.Equal(tc.code, errors.GetCode(err))

			if tc.parameter != "" {
				var paramErr *errors.InvalidParameterError
				suite.Require().True(errors.As(err, &paramErr))
				suite.Equal(tc.parameter, paramErr.Parameter)
				suite.Contains(err.Error(), tc.parameter)
			}
		})
	}
}

func (suite *RegistryTestSuite) TestFactoryAppliesOverrides() {
	factory, err := suite.registry.Lookup(MeanReversionStrategyID)
	suite.Require().NoError(err)

	strategy, err := factory(map[string]any{"lookback_period": 30, "entry_threshold": 2})
	suite.Require().NoError(err)

	config := strategy.(*MeanReversionStrategy).Config()
	suite.Equal(30, config.LookbackPeriod)
	suite.Equal(2.0, config.EntryThreshold)
	suite.Equal(DefaultMeanReversionConfig().ExitThreshold, config.ExitThreshold)
}
