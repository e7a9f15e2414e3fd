package strategy

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/portfolio"
	"github.com/rxtech-lab/argo-backtest/internal/portfolio/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

const MeanReversionStrategyID = "mean_reversion"

type MeanReversionConfig struct {
	LookbackPeriod  int     `yaml:"lookback_period" json:"lookback_period" jsonschema:"title=Lookback Period,description=Number of prices in the rolling window" validate:"gte=3"`
	EntryThreshold  float64 `yaml:"entry_threshold" json:"entry_threshold" jsonschema:"title=Entry Threshold,description=Absolute z-score that opens a position" validate:"gt=0"`
	ExitThreshold   float64 `yaml:"exit_threshold" json:"exit_threshold" jsonschema:"title=Exit Threshold,description=Absolute z-score below which the position is closed" validate:"gte=0"`
	StopLoss        float64 `yaml:"stop_loss" json:"stop_loss" jsonschema:"title=Stop Loss,description=Maximum adverse move from the entry price before exiting" validate:"gte=0,lt=1"`
	ProfitTarget    float64 `yaml:"profit_target" json:"profit_target" jsonschema:"title=Profit Target,description=Favorable move from the entry price that takes profit" validate:"gt=0,lt=1"`
	TransactionCost float64 `yaml:"transaction_cost" json:"transaction_cost" jsonschema:"title=Transaction Cost,description=Cost charged as a fraction of every trade" validate:"gte=0,lt=1"`
	PositionSize    float64 `yaml:"position_size" json:"position_size" jsonschema:"title=Position Size,description=Fraction of the affordable shares to trade" validate:"gt=0,lte=1"`
}

func DefaultMeanReversionConfig() MeanReversionConfig {
	return MeanReversionConfig{
		LookbackPeriod:  20,
		EntryThreshold:  1.5,
		ExitThreshold:   0.5,
		StopLoss:        0.02,
		ProfitTarget:    0.03,
		TransactionCost: 0.001,
		PositionSize:    0.95,
	}
}

func (c MeanReversionConfig) Validate() error {
	const component = "MeanReversionStrategy"

	if err := validateConfig(component, c); err != nil {
		return err
	}

	if c.ExitThreshold >= c.EntryThreshold {
		return errors.NewInvalidParameterError(component, "exit_threshold", "must be smaller than entry_threshold", c.ExitThreshold)
	}

	return nil
}

// MeanReversionStrategy fades large deviations of the price from its rolling mean.
// It enters long when the z-score falls below -entry and short when it rises
// above +entry, and exits on a stop-loss, a profit target or when the z-score
// comes back inside the exit band.
type MeanReversionStrategy struct {
	config MeanReversionConfig
	log    *logger.Logger
	ledger *portfolio.Ledger
	window *indicator.RollingWindow

	mean   float64
	stdDev float64
	zScore float64
}

func NewMeanReversionStrategy(config MeanReversionConfig, log *logger.Logger) (*MeanReversionStrategy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	window, err := indicator.NewRollingWindow(config.LookbackPeriod)
	if err != nil {
		return nil, err
	}

	log = log.Named(MeanReversionStrategyID)

	return &MeanReversionStrategy{
		config: config,
		log:    log,
		ledger: portfolio.NewLedger(commission_fee.NewCommissionFee(config.TransactionCost), log),
		window: window,
	}, nil
}

func (s *MeanReversionStrategy) ID() string {
	return MeanReversionStrategyID
}

func (s *MeanReversionStrategy) Config() MeanReversionConfig {
	return s.config
}

func (s *MeanReversionStrategy) Execute(data types.MarketData, initialCash float64) types.SimulationResult {
	return simulate(s.log, s.ledger, s, data, initialCash)
}

func (s *MeanReversionStrategy) reset(types.MarketData) {
	s.window.Reset()
	s.mean = 0
	s.stdDev = 0
	s.zScore = 0
}

func (s *MeanReversionStrategy) update(tick types.Tick) types.Indicators {
	s.window.Push(tick.Price)

	s.mean = s.window.Mean()
	s.stdDev = s.window.StdDev()
	s.zScore = s.window.ZScore(tick.Price)

	// z-score in the MACD slot, rolling mean as trend and stddev as volatility
	return types.Indicators{
		MACD:       s.zScore,
		Trend:      s.mean,
		Volatility: s.stdDev,
	}
}

func (s *MeanReversionStrategy) decide(tick types.Tick) {
	if !s.window.Full() {
		return
	}

	if !s.ledger.IsFlat() {
		if reason, ok := s.exitReason(tick.Price); ok {
			s.ledger.Close(tick, reason)
		}

		return
	}

	switch {
	case s.zScore < -s.config.EntryThreshold:
		openWholeShares(s.log, s.ledger, tick, s.config.PositionSize, s.ledger.OpenLong)
	case s.zScore > s.config.EntryThreshold:
		openWholeShares(s.log, s.ledger, tick, s.config.PositionSize, s.ledger.OpenShort)
	}
}

// exitReason checks the exit conditions of the open position, first match wins.
func (s *MeanReversionStrategy) exitReason(price float64) (string, bool) {
	entry := s.ledger.EntryPrice()

	if stopLossHit(s.ledger, price, s.config.StopLoss) {
		return types.TradeReasonStopLoss, true
	}

	if s.ledger.IsLong() && price > entry*(1+s.config.ProfitTarget) {
		return types.TradeReasonTakeProfit, true
	}

	if s.ledger.IsShort() && price < entry*(1-s.config.ProfitTarget) {
		return types.TradeReasonTakeProfit, true
	}

	if math.Abs(s.zScore) < s.config.ExitThreshold {
		return types.TradeReasonSignal, true
	}

	return "", false
}

func newMeanReversionInfo(log *logger.Logger) (StrategyInfo, error) {
	defaults := DefaultMeanReversionConfig()

	return newStrategyInfo(
		MeanReversionStrategyID,
		"Mean Reversion",
		"Enters against large z-scores of the price over a rolling window and exits when the price reverts or a stop-loss or profit target is hit.",
		defaults,
		func(params map[string]any) (Strategy, error) {
			config, err := decodeParams("MeanReversionStrategy", defaults, params)
			if err != nil {
				return nil, err
			}

			strategy, err := NewMeanReversionStrategy(config, log)
			if err != nil {
				return nil, err
			}

			return strategy, nil
		},
	)
}
