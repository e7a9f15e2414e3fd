package strategy

import (
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/portfolio"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"go.uber.org/zap"
)

// Strategy is a trading policy that can be replayed over a price series.
//
// Execute resets every piece of run state, processes each tick once in input
// order, liquidates any open position at the last tick and returns the result.
// An instance can be reused for sequential runs but must not be shared by
// overlapping Execute calls.
type Strategy interface {
	// ID returns the registry id of the strategy
	ID() string
	Execute(data types.MarketData, initialCash float64) types.SimulationResult
}

// tickHandler is the per-tick state machine of a strategy variant.
type tickHandler interface {
	// reset re-seeds the indicator state for a new run over data. data is never empty.
	reset(data types.MarketData)
	// update folds the tick into the indicators and returns the values to record.
	update(tick types.Tick) types.Indicators
	// decide evaluates exits for an open position, then entries when flat.
	decide(tick types.Tick)
}

// simulate drives handler over data. Each tick is processed as:
// update indicators, record a pre-decision snapshot, decide.
func simulate(log *logger.Logger, ledger *portfolio.Ledger, handler tickHandler, data types.MarketData, initialCash float64) types.SimulationResult {
	ledger.Reset(initialCash, data.Len())

	if data.IsEmpty() {
		log.Debug("No price data to process")

		return types.EmptyResult(initialCash)
	}

	if err := data.Validate(); err != nil {
		log.Warn("Market data timestamps are not aligned with prices", zap.Error(err))
	}

	if initialCash <= 0 {
		log.Warn("Initial cash is not positive, simulation might not be meaningful", zap.Float64("initial_cash", initialCash))
	}

	log.Debug("Starting strategy execution",
		zap.Int("ticks", data.Len()),
		zap.Float64("initial_cash", initialCash),
	)

	handler.reset(data)

	for i := 0; i < data.Len(); i++ {
		tick := data.At(i)
		indicators := handler.update(tick)
		ledger.Snapshot(tick, indicators)
		handler.decide(tick)
	}

	last := data.At(data.Len() - 1)
	if ledger.Liquidate(last, types.TradeReasonEndOfRun) {
		log.Debug("Liquidated open position at the end of the run", zap.Float64("price", ledger.LastPrice()))
	}

	result := ledger.Result(initialCash)

	log.Debug("Strategy execution completed",
		zap.Int("trades", len(result.Trades)),
		zap.Float64("final_portfolio_value", result.FinalPortfolioValue),
	)

	return result
}

// stopLossHit reports whether price breached the stop of an open position.
func stopLossHit(ledger *portfolio.Ledger, price, stopLoss float64) bool {
	entry := ledger.EntryPrice()
	if entry <= 0 {
		return false
	}

	switch {
	case ledger.IsLong():
		return price < entry*(1-stopLoss)
	case ledger.IsShort():
		return price > entry*(1+stopLoss)
	default:
		return false
	}
}

// openWholeShares opens a position of fraction of the affordable whole units
// through open, which is Ledger.OpenLong or Ledger.OpenShort.
func openWholeShares(log *logger.Logger, ledger *portfolio.Ledger, tick types.Tick, fraction float64, open func(types.Tick, float64, string) bool) bool {
	quantity := ledger.MaxAffordableShares(tick.Price, fraction)
	if quantity <= 0 {
		log.Debug("Skipping entry, cannot afford a single share",
			zap.Int("time_step", tick.Index),
			zap.Float64("price", tick.Price),
		)

		return false
	}

	return open(tick, quantity, types.TradeReasonSignal)
}
