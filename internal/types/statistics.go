package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TradeHoldingTime struct {
	// Minimum holding time of a round trip in ticks
	Min int `yaml:"min" json:"min"`
	// Maximum holding time of a round trip in ticks
	Max int `yaml:"max" json:"max"`
	// Average holding time of a round trip in ticks
	Avg float64 `yaml:"avg" json:"avg"`
}

type TradePnl struct {
	// Realized PnL. By adding all the exit trades' pnl.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
	// Total PnL. Final portfolio value minus initial capital.
	TotalPnL float64 `yaml:"total_pnl" json:"total_pnl"`
	// Maximum loss. Minimum realized pnl of a single exit.
	MaximumLoss float64 `yaml:"maximum_loss" json:"maximum_loss"`
	// Maximum profit. Maximum realized pnl of a single exit.
	MaximumProfit float64 `yaml:"maximum_profit" json:"maximum_profit"`
}

type TradeResult struct {
	// Count of all trades.
	NumberOfTrades int `yaml:"number_of_trades" json:"number_of_trades"`
	// Count of exit trades that has positive pnl.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades" json:"number_of_winning_trades"`
	// Count of exit trades that has negative pnl.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades" json:"number_of_losing_trades"`
	// Win rate over exit trades.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// Maximum drawdown of the portfolio value as a fraction of the running peak.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
}

// StrategyInfo identifies the strategy that generated stats.
type StrategyInfo struct {
	// ID is the registry id of the strategy (e.g., "mean_reversion")
	ID string `yaml:"id" json:"id"`
	// Name is the human-readable name of the strategy
	Name string `yaml:"name" json:"name"`
}

type TradeStats struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Symbol of the traded series.
	Symbol string `yaml:"symbol" json:"symbol"`
	// Number of ticks processed.
	Ticks int `yaml:"ticks" json:"ticks"`
	// Result of all trades.
	TradeResult TradeResult `yaml:"trade_result" json:"trade_result"`
	// Total fees.
	TotalFees float64 `yaml:"total_fees" json:"total_fees"`
	// Holding time of all round trips.
	TradeHoldingTime TradeHoldingTime `yaml:"trade_holding_time" json:"trade_holding_time"`
	// PnL of all trades.
	TradePnl TradePnl `yaml:"trade_pnl" json:"trade_pnl"`
	// Buy and hold PnL over the same series and capital.
	BuyAndHoldPnl float64 `yaml:"buy_and_hold_pnl" json:"buy_and_hold_pnl"`
	// Strategy contains metadata about the strategy that generated these stats.
	Strategy StrategyInfo `yaml:"strategy" json:"strategy"`
	// DataPath is the path to the market data file used for this backtest.
	DataPath string `yaml:"data_path" json:"data_path"`
}

func WriteTradeStats(path string, stats []TradeStats) error {
	// Marshal the struct to YAML
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal trade stats to YAML: %w", err)
	}

	// Write the YAML data to the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write trade stats to file: %w", err)
	}

	return nil
}
