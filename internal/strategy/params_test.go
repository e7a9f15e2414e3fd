package strategy

import (
	"testing"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ParamsTestSuite struct {
	suite.Suite
}

func TestParamsSuite(t *testing.T) {
	suite.Run(t, new(ParamsTestSuite))
}

func (suite *ParamsTestSuite) TestDecodeWithoutOverrides() {
	config, err := decodeParams("MACDStrategy", DefaultMACDConfig(), nil)
	suite.NoError(err)
	suite.Equal(DefaultMACDConfig(), config)
}

func (suite *ParamsTestSuite) TestDecodeOverrides() {
	config, err := decodeParams("MACDStrategy", DefaultMACDConfig(), map[string]any{
		"fast_period":          5,
		"garch_omega":          2e-6,
		"use_volatility_bands": true,
		"exit_on_band":         true,
	})
	suite.NoError(err)
	suite.Equal(5, config.FastPeriod)
	suite.Equal(2e-6, config.GarchOmega)
	suite.True(config.UseVolatilityBands)
	suite.True(config.ExitOnBand)
	suite.Equal(26, config.SlowPeriod)
}

func (suite *ParamsTestSuite) TestDecodeRejectsUnknownKeys() {
	config, err := decodeParams("RandomStrategy", DefaultRandomConfig(), map[string]any{"sed": 1})
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))
	suite.Equal(DefaultRandomConfig(), config)
}

func (suite *ParamsTestSuite) TestValidateConfigNamesTheParameter() {
	config := DefaultContrarianConfig()
	config.StopLoss = 0

	err := validateConfig("ContrarianStrategy", config)
	suite.Require().Error(err)
	suite.Equal("[100] ContrarianStrategy: stop_loss must be greater than 0 (got 0)", err.Error())
}
