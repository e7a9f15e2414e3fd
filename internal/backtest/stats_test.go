package backtest

import (
	"testing"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type StatsTestSuite struct {
	suite.Suite
}

func TestStatsSuite(t *testing.T) {
	suite.Run(t, new(StatsTestSuite))
}

func (suite *StatsTestSuite) TestComputeStats() {
	data := types.MarketData{
		Symbol:     "AAPL",
		Prices:     []float64{100, 105, 95, 110},
		Timestamps: []string{"t0", "t1", "t2", "t3"},
	}
	result := types.SimulationResult{
		FinalPortfolioValue: 1200,
		ProfitLoss:          200,
		Trades: []types.Trade{
			{TimeStep: 0, Type: types.TradeTypeLong, Side: types.PurchaseTypeBuy, Price: 100, Quantity: 8, Fee: 1},
			{TimeStep: 1, Type: types.TradeTypeExitLong, Side: types.PurchaseTypeSell, Price: 105, Quantity: 8, Fee: 1, PnL: 40},
			{TimeStep: 1, Type: types.TradeTypeShort, Side: types.PurchaseTypeSell, Price: 105, Quantity: 4, Fee: 0.5},
			{TimeStep: 3, Type: types.TradeTypeExitShort, Side: types.PurchaseTypeBuy, Price: 110, Quantity: 4, Fee: 0.5, PnL: -20},
		},
		Historical: []types.HistoricalDataPoint{
			{PortfolioValue: 1000},
			{PortfolioValue: 1100},
			{PortfolioValue: 990},
			{PortfolioValue: 1200},
		},
	}

	stats := ComputeStats(data, result, 1000)

	suite.Equal("AAPL", stats.Symbol)
	suite.Equal(4, stats.Ticks)

	suite.Equal(4, stats.TradeResult.NumberOfTrades)
	suite.Equal(1, stats.TradeResult.NumberOfWinningTrades)
	suite.Equal(1, stats.TradeResult.NumberOfLosingTrades)
	suite.InDelta(0.5, stats.TradeResult.WinRate, 1e-12)
	suite.InDelta(0.1, stats.TradeResult.MaxDrawdown, 1e-12)

	suite.InDelta(3.0, stats.TotalFees, 1e-12)

	suite.Equal(1, stats.TradeHoldingTime.Min)
	suite.Equal(2, stats.TradeHoldingTime.Max)
	suite.InDelta(1.5, stats.TradeHoldingTime.Avg, 1e-12)

	suite.InDelta(20.0, stats.TradePnl.RealizedPnL, 1e-12)
	suite.InDelta(200.0, stats.TradePnl.TotalPnL, 1e-12)
	suite.InDelta(-20.0, stats.TradePnl.MaximumLoss, 1e-12)
	suite.InDelta(40.0, stats.TradePnl.MaximumProfit, 1e-12)

	suite.InDelta(100.0, stats.BuyAndHoldPnl, 1e-9)
}

func (suite *StatsTestSuite) TestComputeStatsWithoutTrades() {
	data := types.MarketData{
		Prices:     []float64{100, 90},
		Timestamps: []string{"t0", "t1"},
	}
	result := types.SimulationResult{
		FinalPortfolioValue: 1000,
		Trades:              []types.Trade{},
		Historical: []types.HistoricalDataPoint{
			{PortfolioValue: 1000},
			{PortfolioValue: 1000},
		},
	}

	stats := ComputeStats(data, result, 1000)

	suite.Equal(0, stats.TradeResult.NumberOfTrades)
	suite.Zero(stats.TradeResult.WinRate)
	suite.Zero(stats.TradeResult.MaxDrawdown)
	suite.Zero(stats.TotalFees)
	suite.Equal(types.TradeHoldingTime{}, stats.TradeHoldingTime)
	suite.Zero(stats.TradePnl.MaximumLoss)
	suite.Zero(stats.TradePnl.MaximumProfit)
	suite.InDelta(-100.0, stats.BuyAndHoldPnl, 1e-9)
}

func (suite *StatsTestSuite) TestComputeStatsEmptySeries() {
	stats := ComputeStats(types.MarketData{}, types.EmptyResult(1000), 1000)

	suite.Equal(0, stats.Ticks)
	suite.Zero(stats.BuyAndHoldPnl)
	suite.Zero(stats.TradeResult.MaxDrawdown)
}

func (suite *StatsTestSuite) TestPartialExitsMeasuredFromEntry() {
	trades := []types.Trade{
		{TimeStep: 2, Type: types.TradeTypeLong},
		{TimeStep: 5, Type: types.TradeTypeExitLong},
		{TimeStep: 9, Type: types.TradeTypeExitLong},
	}

	holding := calculateHoldingTime(trades)

	suite.Equal(3, holding.Min)
	suite.Equal(7, holding.Max)
	suite.InDelta(5.0, holding.Avg, 1e-12)
}
