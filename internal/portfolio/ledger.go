package portfolio

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/portfolio/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"go.uber.org/zap"
)

// affordTolerance absorbs the rounding of quantity = cash / (price * (1 + rate)).
const affordTolerance = 1e-9

// Ledger is the cash, position and trade log of a single run.
//
// Buying charges quantity*price plus the commission fee, selling credits
// quantity*price minus the fee. A short is opened by selling and requires the
// cost of buying it back at the entry price as collateral.
// The ledger is not safe for concurrent use.
type Ledger struct {
	fee commission_fee.CommissionFee
	log *logger.Logger

	cash       float64
	position   float64
	entryPrice float64
	// cash paid (long) or received (short) per unit when the position was opened
	entryCash float64
	entryStep int
	// last finite positive price passed to Snapshot
	lastPrice float64

	trades  []types.Trade
	history []types.HistoricalDataPoint
}

// NewLedger creates an empty ledger. Call Reset before the first run.
func NewLedger(fee commission_fee.CommissionFee, log *logger.Logger) *Ledger {
	return &Ledger{
		fee:     fee,
		log:     log,
		trades:  []types.Trade{},
		history: []types.HistoricalDataPoint{},
	}
}

// Reset starts a new run with initialCash and no position.
// capacity pre-sizes the history for the number of ticks.
func (l *Ledger) Reset(initialCash float64, capacity int) {
	l.cash = initialCash
	l.position = 0
	l.entryPrice = 0
	l.entryCash = 0
	l.entryStep = 0
	l.lastPrice = 0
	l.trades = []types.Trade{}
	l.history = make([]types.HistoricalDataPoint, 0, capacity)
}

func (l *Ledger) Cash() float64 {
	return l.cash
}

// Position is signed: positive long, negative short, zero flat.
func (l *Ledger) Position() float64 {
	return l.position
}

// EntryPrice of the open position, 0 when flat.
func (l *Ledger) EntryPrice() float64 {
	return l.entryPrice
}

// EntryStep is the tick index the open position was entered on.
func (l *Ledger) EntryStep() int {
	return l.entryStep
}

func (l *Ledger) IsFlat() bool {
	return l.position == 0
}

func (l *Ledger) IsLong() bool {
	return l.position > 0
}

func (l *Ledger) IsShort() bool {
	return l.position < 0
}

// Value marks the portfolio to price.
func (l *Ledger) Value(price float64) float64 {
	return l.cash + l.position*price
}

// Trades returns the trade log.
func (l *Ledger) Trades() []types.Trade {
	return l.trades
}

// History returns the per-tick snapshots.
func (l *Ledger) History() []types.HistoricalDataPoint {
	return l.history
}

// MaxAffordableQuantity is the largest fractional quantity whose cost, fee
// included, fits in the available cash.
func (l *Ledger) MaxAffordableQuantity(price float64) float64 {
	if !(price > 0) || !(l.cash > 0) {
		return 0
	}

	return l.cash / (price * (1 + l.fee.Rate()))
}

// MaxAffordableShares is MaxAffordableQuantity scaled by fraction and rounded down to whole units.
func (l *Ledger) MaxAffordableShares(price float64, fraction float64) float64 {
	return math.Floor(l.MaxAffordableQuantity(price) * fraction)
}

// OpenLong buys quantity at the tick price. It returns false and leaves the
// ledger untouched when the ledger is not flat or the cash does not cover the cost.
func (l *Ledger) OpenLong(tick types.Tick, quantity float64, reason string) bool {
	if !l.IsFlat() || !l.validTrade(tick, quantity) {
		return false
	}

	fee := l.fee.Calculate(quantity, tick.Price)
	cost := quantity*tick.Price + fee

	if !l.canAfford(cost) {
		l.log.Debug("Skipping long entry, insufficient cash",
			zap.Int("time_step", tick.Index),
			zap.Float64("cost", cost),
			zap.Float64("cash", l.cash),
		)

		return false
	}

	l.cash = math.Max(0, l.cash-cost)
	l.position = quantity
	l.entryPrice = tick.Price
	l.entryCash = cost / quantity
	l.entryStep = tick.Index
	l.record(tick, types.TradeTypeLong, types.PurchaseTypeBuy, quantity, fee, 0, reason)

	return true
}

// OpenShort sells quantity at the tick price. The cash must cover buying the
// position back at the same price, fee included.
func (l *Ledger) OpenShort(tick types.Tick, quantity float64, reason string) bool {
	if !l.IsFlat() || !l.validTrade(tick, quantity) {
		return false
	}

	fee := l.fee.Calculate(quantity, tick.Price)
	collateral := quantity*tick.Price + fee

	if !l.canAfford(collateral) {
		l.log.Debug("Skipping short entry, insufficient collateral",
			zap.Int("time_step", tick.Index),
			zap.Float64("collateral", collateral),
			zap.Float64("cash", l.cash),
		)

		return false
	}

	proceeds := quantity*tick.Price - fee
	l.cash += proceeds
	l.position = -quantity
	l.entryPrice = tick.Price
	l.entryCash = proceeds / quantity
	l.entryStep = tick.Index
	l.record(tick, types.TradeTypeShort, types.PurchaseTypeSell, quantity, fee, 0, reason)

	return true
}

// CloseLong sells the whole long position.
func (l *Ledger) CloseLong(tick types.Tick, reason string) bool {
	if !l.IsLong() {
		return false
	}

	return l.ReduceLong(tick, l.position, reason)
}

// ReduceLong sells quantity of the long position, closing it when quantity
// covers the whole position. A partial sale is still logged as EXIT_LONG.
func (l *Ledger) ReduceLong(tick types.Tick, quantity float64, reason string) bool {
	if !l.IsLong() || !l.validTrade(tick, quantity) {
		return false
	}

	if quantity > l.position {
		quantity = l.position
	}

	fee := l.fee.Calculate(quantity, tick.Price)
	proceeds := quantity*tick.Price - fee
	pnl := proceeds - quantity*l.entryCash

	l.cash += proceeds
	l.position -= quantity

	if l.position <= 0 {
		l.flatten()
	}

	l.record(tick, types.TradeTypeExitLong, types.PurchaseTypeSell, quantity, fee, pnl, reason)

	return true
}

// CloseShort buys back the whole short position. It always executes, even
// when the cost drives the cash negative.
func (l *Ledger) CloseShort(tick types.Tick, reason string) bool {
	if !l.IsShort() || !validPrice(tick.Price) {
		return false
	}

	quantity := -l.position
	fee := l.fee.Calculate(quantity, tick.Price)
	cost := quantity*tick.Price + fee
	pnl := quantity*l.entryCash - cost

	l.cash -= cost
	l.flatten()
	l.record(tick, types.TradeTypeExitShort, types.PurchaseTypeBuy, quantity, fee, pnl, reason)

	return true
}

// Close exits whichever side is open. It returns false when flat.
func (l *Ledger) Close(tick types.Tick, reason string) bool {
	switch {
	case l.IsLong():
		return l.CloseLong(tick, reason)
	case l.IsShort():
		return l.CloseShort(tick, reason)
	default:
		return false
	}
}

// Liquidate closes the open position on tick. When the tick price is not a
// finite positive number the position is closed at the last valid price
// passed to Snapshot instead, still on the tick's time step.
func (l *Ledger) Liquidate(tick types.Tick, reason string) bool {
	if l.IsFlat() {
		return false
	}

	if !validPrice(tick.Price) {
		if l.lastPrice <= 0 {
			l.log.Warn("Cannot liquidate, no valid price seen",
				zap.Int("time_step", tick.Index),
				zap.Float64("position", l.position),
			)

			return false
		}

		l.log.Warn("Invalid price on the liquidation tick, using last valid price",
			zap.Int("time_step", tick.Index),
			zap.Float64("price", tick.Price),
			zap.Float64("last_price", l.lastPrice),
		)
		tick.Price = l.lastPrice
	}

	return l.Close(tick, reason)
}

// LastPrice is the last finite positive price passed to Snapshot, 0 if none.
func (l *Ledger) LastPrice() float64 {
	return l.lastPrice
}

// Snapshot appends the history point of tick. An invalid tick price is
// marked at the last valid price.
func (l *Ledger) Snapshot(tick types.Tick, indicators types.Indicators) {
	if validPrice(tick.Price) {
		l.lastPrice = tick.Price
	}

	l.history = append(l.history, types.HistoricalDataPoint{
		MACD:           indicators.MACD,
		Signal:         indicators.Signal,
		PortfolioValue: l.Value(l.lastPrice),
		Position:       l.position,
		Cash:           l.cash,
		Trend:          indicators.Trend,
		Volatility:     indicators.Volatility,
	})
}

// Result builds the simulation result. Call once the position is flat.
func (l *Ledger) Result(initialCash float64) types.SimulationResult {
	return types.SimulationResult{
		FinalPortfolioValue: l.cash,
		ProfitLoss:          l.cash - initialCash,
		Trades:              l.trades,
		Historical:          l.history,
	}
}

func (l *Ledger) validTrade(tick types.Tick, quantity float64) bool {
	return quantity > 0 && validPrice(tick.Price) && !math.IsInf(quantity, 0)
}

func validPrice(price float64) bool {
	return price > 0 && !math.IsInf(price, 1)
}

func (l *Ledger) canAfford(cost float64) bool {
	return cost <= l.cash+affordTolerance*math.Max(1, math.Abs(l.cash))
}

func (l *Ledger) flatten() {
	l.position = 0
	l.entryPrice = 0
	l.entryCash = 0
}

func (l *Ledger) record(tick types.Tick, tradeType types.TradeType, side types.PurchaseType, quantity, fee, pnl float64, reason string) {
	l.trades = append(l.trades, types.Trade{
		TimeStep: tick.Index,
		Type:     tradeType,
		Side:     side,
		Price:    tick.Price,
		Quantity: quantity,
		Fee:      fee,
		PnL:      pnl,
		Reason:   reason,
	})

	l.log.Debug("Trade executed",
		zap.Int("time_step", tick.Index),
		zap.String("type", string(tradeType)),
		zap.String("side", string(side)),
		zap.Float64("price", tick.Price),
		zap.Float64("quantity", quantity),
		zap.String("reason", reason),
	)
}
