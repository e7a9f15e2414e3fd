package backtest

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ComputeStats summarizes a simulation result over the series it ran on.
func ComputeStats(data types.MarketData, result types.SimulationResult, initialCash float64) types.TradeStats {
	exits := lo.Filter(result.Trades, func(trade types.Trade, _ int) bool {
		return trade.Type.IsExit()
	})

	return types.TradeStats{
		Symbol:           data.Symbol,
		Ticks:            data.Len(),
		TradeResult:      calculateTradeResult(result, exits),
		TotalFees:        sumDecimal(result.Trades, func(trade types.Trade) float64 { return trade.Fee }),
		TradeHoldingTime: calculateHoldingTime(result.Trades),
		TradePnl:         calculateTradePnl(result, exits),
		BuyAndHoldPnl:    buyAndHoldPnl(data, initialCash),
	}
}

func calculateTradeResult(result types.SimulationResult, exits []types.Trade) types.TradeResult {
	winning := lo.CountBy(exits, func(trade types.Trade) bool { return trade.PnL > 0 })
	losing := lo.CountBy(exits, func(trade types.Trade) bool { return trade.PnL < 0 })

	winRate := 0.0
	if len(exits) > 0 {
		winRate = decimal.NewFromInt(int64(winning)).
			Div(decimal.NewFromInt(int64(len(exits)))).
			InexactFloat64()
	}

	return types.TradeResult{
		NumberOfTrades:        len(result.Trades),
		NumberOfWinningTrades: winning,
		NumberOfLosingTrades:  losing,
		WinRate:               winRate,
		MaxDrawdown:           maxDrawdown(result.Historical),
	}
}

func calculateTradePnl(result types.SimulationResult, exits []types.Trade) types.TradePnl {
	pnl := types.TradePnl{
		RealizedPnL: sumDecimal(exits, func(trade types.Trade) float64 { return trade.PnL }),
		TotalPnL:    result.ProfitLoss,
	}

	if len(exits) == 0 {
		return pnl
	}

	pnls := lo.Map(exits, func(trade types.Trade, _ int) float64 { return trade.PnL })
	pnl.MaximumLoss = lo.Min(pnls)
	pnl.MaximumProfit = lo.Max(pnls)

	return pnl
}

// calculateHoldingTime measures every exit against the entry that opened the position, in ticks.
func calculateHoldingTime(trades []types.Trade) types.TradeHoldingTime {
	var durations []int

	entryStep := -1

	for _, trade := range trades {
		switch {
		case trade.Type.IsEntry():
			entryStep = trade.TimeStep
		case trade.Type.IsExit() && entryStep >= 0:
			durations = append(durations, trade.TimeStep-entryStep)
		}
	}

	if len(durations) == 0 {
		return types.TradeHoldingTime{}
	}

	total := lo.Sum(durations)

	return types.TradeHoldingTime{
		Min: lo.Min(durations),
		Max: lo.Max(durations),
		Avg: decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(len(durations)))).InexactFloat64(),
	}
}

// maxDrawdown is the largest fall of the portfolio value from its running peak, as a fraction of the peak.
func maxDrawdown(history []types.HistoricalDataPoint) float64 {
	peak := math.Inf(-1)
	drawdown := 0.0

	for _, point := range history {
		peak = math.Max(peak, point.PortfolioValue)
		if peak <= 0 {
			continue
		}

		drawdown = math.Max(drawdown, (peak-point.PortfolioValue)/peak)
	}

	return drawdown
}

// buyAndHoldPnl is the result of spending initialCash on the first tick and holding to the last, without fees.
func buyAndHoldPnl(data types.MarketData, initialCash float64) float64 {
	if data.IsEmpty() || data.Prices[0] <= 0 {
		return 0
	}

	first := decimal.NewFromFloat(data.Prices[0])
	last := decimal.NewFromFloat(data.Prices[data.Len()-1])

	return decimal.NewFromFloat(initialCash).
		Div(first).
		Mul(last.Sub(first)).
		InexactFloat64()
}

func sumDecimal(trades []types.Trade, value func(types.Trade) float64) float64 {
	total := lo.Reduce(trades, func(acc decimal.Decimal, trade types.Trade, _ int) decimal.Decimal {
		return acc.Add(decimal.NewFromFloat(value(trade)))
	}, decimal.Zero)

	return total.InexactFloat64()
}
