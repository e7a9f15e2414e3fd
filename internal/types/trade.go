package types

// TradeType describes how a trade moves the position.
type TradeType string

// PurchaseType is the side of a trade.
type PurchaseType string

const (
	TradeTypeLong      TradeType = "LONG"
	TradeTypeShort     TradeType = "SHORT"
	TradeTypeExitLong  TradeType = "EXIT_LONG"
	TradeTypeExitShort TradeType = "EXIT_SHORT"
)

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

const (
	TradeReasonSignal      string = "signal"
	TradeReasonStopLoss    string = "stop_loss"
	TradeReasonTakeProfit  string = "take_profit"
	TradeReasonHoldingTime string = "holding_time"
	TradeReasonEndOfDay    string = "end_of_day"
	TradeReasonEndOfRun    string = "end_of_run"
	TradeReasonRandom      string = "random"
)

// IsEntry reports whether the trade opens a position.
func (t TradeType) IsEntry() bool {
	return t == TradeTypeLong || t == TradeTypeShort
}

// IsExit reports whether the trade closes (or reduces) a position.
func (t TradeType) IsExit() bool {
	return t == TradeTypeExitLong || t == TradeTypeExitShort
}

// Trade is created at the instant a strategy mutates its position.
type Trade struct {
	// TimeStep is the index of the tick the trade happened on.
	TimeStep int          `yaml:"time_step" json:"time_step" csv:"time_step"`
	Type     TradeType    `yaml:"type" json:"type" csv:"type"`
	Side     PurchaseType `yaml:"side" json:"side" csv:"side"`
	Price    float64      `yaml:"price" json:"price" csv:"price"`
	Quantity float64      `yaml:"quantity" json:"quantity" csv:"quantity"`
	// Fee is the transaction cost charged for this trade
	Fee float64 `yaml:"fee" json:"fee" csv:"fee"`
	// PnL is the realized profit and loss of an exit, net of the fees paid on
	// both legs for the exited quantity. Always 0 for entries.
	// For example, buying 100 shares at $10.00 with a 0.1% cost and selling them
	// at $11.00 realizes 100*11*0.999 - 100*10*1.001 = $97.90.
	PnL float64 `yaml:"pnl" json:"pnl" csv:"pnl"`
	// Reason explains why the trade was made (signal, stop_loss, end_of_run, ...)
	Reason string `yaml:"reason" json:"reason" csv:"reason"`
}
