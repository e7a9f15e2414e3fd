package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/mocks"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MACDStrategyTestSuite struct {
	suite.Suite
}

func TestMACDStrategySuite(t *testing.T) {
	suite.Run(t, new(MACDStrategyTestSuite))
}

// vShape falls linearly from 100 to 90 over 50 ticks and then rises to 110.
func vShape() types.MarketData {
	prices := make([]float64, 0, 101)
	for i := 0; i <= 50; i++ {
		prices = append(prices, 100-0.2*float64(i))
	}

	for i := 51; i <= 100; i++ {
		prices = append(prices, 90+0.4*float64(i-50))
	}

	return mocks.FromPrices("TEST", time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC), prices)
}

func (suite *MACDStrategyTestSuite) TestFastPeriodMustBeSmallerThanSlow() {
	config := DefaultMACDConfig()
	config.FastPeriod = 26
	config.SlowPeriod = 12

	strategy, err := NewMACDStrategy(config, logger.NewNopLogger())
	suite.Nil(strategy)
	suite.True(errors.IsConstructionError(err))
	suite.Contains(err.Error(), "fast_period must be smaller than slow_period")
}

func (suite *MACDStrategyTestSuite) TestNonStationaryGARCHWarns() {
	core, logs := observer.New(zapcore.WarnLevel)

	config := DefaultMACDConfig()
	config.GarchAlpha = 0.5
	config.GarchBeta = 0.6

	strategy, err := NewMACDStrategy(config, logger.Wrap(zap.New(core)))
	suite.NoError(err)
	suite.NotNil(strategy)
	suite.Equal(1, logs.FilterMessageSnippet("non-stationarity").Len())
}

func (suite *MACDStrategyTestSuite) TestCrossoversReverseThePosition() {
	strategy, err := NewMACDStrategy(DefaultMACDConfig(), logger.NewNopLogger())
	suite.Require().NoError(err)

	data := vShape()
	result := strategy.Execute(data, 10000)
	suite.Require().Len(result.Trades, 4)

	short := result.Trades[0]
	suite.Equal(types.TradeTypeShort, short.Type)
	suite.Equal(1, short.TimeStep)
	suite.InDelta(10000/(99.8*1.001), short.Quantity, 1e-9)

	cover := result.Trades[1]
	suite.Equal(types.TradeTypeExitShort, cover.Type)
	suite.Equal(51, cover.TimeStep)
	suite.Equal(types.TradeReasonSignal, cover.Reason)
	suite.Greater(cover.PnL, 0.0)

	long := result.Trades[2]
	suite.Equal(types.TradeTypeLong, long.Type)
	suite.Equal(51, long.TimeStep)

	exit := result.Trades[3]
	suite.Equal(types.TradeTypeExitLong, exit.Type)
	suite.Equal(100, exit.TimeStep)
	suite.Equal(types.TradeReasonEndOfRun, exit.Reason)

	cash := 10000 + short.Quantity*99.8*0.999 - short.Quantity*90.4*1.001
	suite.InDelta(cash/(90.4*1.001), long.Quantity, 1e-6)

	cash = cash - long.Quantity*90.4*1.001 + long.Quantity*110*0.999
	suite.InDelta(cash, result.FinalPortfolioValue, 1e-6)
	suite.Greater(result.ProfitLoss, 0.0)
}

func (suite *MACDStrategyTestSuite) TestLongOnly() {
	config := DefaultMACDConfig()
	config.AllowShort = false

	strategy, err := NewMACDStrategy(config, logger.NewNopLogger())
	suite.Require().NoError(err)

	result := strategy.Execute(vShape(), 10000)
	suite.Require().Len(result.Trades, 2)
	suite.Equal(types.TradeTypeLong, result.Trades[0].Type)
	suite.Equal(51, result.Trades[0].TimeStep)
	suite.Equal(types.TradeReasonEndOfRun, result.Trades[1].Reason)
}

func (suite *MACDStrategyTestSuite) TestStopLoss() {
	config := DefaultMACDConfig()
	config.AllowShort = false
	config.StopLoss = 0.01

	strategy, err := NewMACDStrategy(config, logger.NewNopLogger())
	suite.Require().NoError(err)

	// enter long on the turn and then crash through the stop
	data := vShape()
	data.Prices[53] = 85

	result := strategy.Execute(data, 10000)
	suite.Require().GreaterOrEqual(len(result.Trades), 2)
	suite.Equal(types.TradeTypeLong, result.Trades[0].Type)
	suite.Equal(types.TradeTypeExitLong, result.Trades[1].Type)
	suite.Equal(53, result.Trades[1].TimeStep)
	suite.Equal(types.TradeReasonStopLoss, result.Trades[1].Reason)
	suite.Less(result.Trades[1].PnL, 0.0)
}

func (suite *MACDStrategyTestSuite) TestHistoryReportsIndicators() {
	strategy, err := NewMACDStrategy(DefaultMACDConfig(), logger.NewNopLogger())
	suite.Require().NoError(err)

	result := strategy.Execute(vShape(), 10000)

	first := result.Historical[0]
	suite.Equal(0.0, first.MACD)
	suite.Equal(0.0, first.Signal)
	suite.Equal(100.0, first.Trend)
	suite.Equal(0.02, first.Volatility)

	for _, point := range result.Historical {
		suite.GreaterOrEqual(point.Volatility, 0.01)
		suite.False(math.IsNaN(point.MACD))
	}

	// the MACD line is negative while falling and positive at the end of the rise
	suite.Less(result.Historical[50].MACD, 0.0)
	suite.Greater(result.Historical[100].MACD, 0.0)
}

func (suite *MACDStrategyTestSuite) TestBandExitIsIndependentOfTheEntryGate() {
	tests := []struct {
		name       string
		exitOnBand bool
		gate       bool
	}{
		{name: "exits only", exitOnBand: true},
		{name: "exits and gate", exitOnBand: true, gate: true},
		{name: "gate only", gate: true},
		{name: "neither"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			config := DefaultMACDConfig()
			config.ExitOnBand = tt.exitOnBand
			config.UseVolatilityBands = tt.gate

			strategy, err := NewMACDStrategy(config, logger.NewNopLogger())
			suite.Require().NoError(err)

			result := strategy.Execute(vShape(), 10000)

			bandExits := 0
			for _, trade := range result.Trades {
				if trade.Reason == types.TradeReasonTakeProfit {
					bandExits++
					suite.True(trade.Type.IsExit())
				}
			}

			if tt.exitOnBand {
				suite.Positive(bandExits)
			} else {
				suite.Zero(bandExits)
			}
		})
	}
}

func (suite *MACDStrategyTestSuite) TestBandExitCoversTheShortOnTheFall() {
	config := DefaultMACDConfig()
	config.ExitOnBand = true

	strategy, err := NewMACDStrategy(config, logger.NewNopLogger())
	suite.Require().NoError(err)

	result := strategy.Execute(vShape(), 10000)
	suite.Require().GreaterOrEqual(len(result.Trades), 2)

	suite.Equal(types.TradeTypeShort, result.Trades[0].Type)
	suite.Equal(1, result.Trades[0].TimeStep)

	cover := result.Trades[1]
	suite.Equal(types.TradeTypeExitShort, cover.Type)
	suite.Equal(types.TradeReasonTakeProfit, cover.Reason)
	suite.Less(cover.TimeStep, 51)
	suite.Less(cover.Price, result.Historical[cover.TimeStep].Trend)
}
