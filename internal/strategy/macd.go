package strategy

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/portfolio"
	"github.com/rxtech-lab/argo-backtest/internal/portfolio/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"go.uber.org/zap"
)

const MACDStrategyID = "macd"

// minimum sigma used for the volatility bands
const macdSigmaFloor = 0.01

// MACDConfig configures the MACD trend strategy.
type MACDConfig struct {
	VolEstimate          float64 `yaml:"vol_estimate" json:"vol_estimate" jsonschema:"title=Volatility Estimate,description=Initial volatility of the GARCH model" validate:"gt=0"`
	TrendAlpha           float64 `yaml:"trend_alpha" json:"trend_alpha" jsonschema:"title=Trend Alpha,description=Smoothing factor of the trend estimator" validate:"gt=0,lte=1"`
	GarchOmega           float64 `yaml:"garch_omega" json:"garch_omega" jsonschema:"title=GARCH Omega,description=Long run variance weight" validate:"gt=0"`
	GarchAlpha           float64 `yaml:"garch_alpha" json:"garch_alpha" jsonschema:"title=GARCH Alpha,description=Weight of the previous squared return" validate:"gt=0"`
	GarchBeta            float64 `yaml:"garch_beta" json:"garch_beta" jsonschema:"title=GARCH Beta,description=Weight of the previous variance" validate:"gt=0"`
	FastPeriod           int     `yaml:"fast_period" json:"fast_period" jsonschema:"title=Fast Period,description=Period of the fast EMA" validate:"gt=0"`
	SlowPeriod           int     `yaml:"slow_period" json:"slow_period" jsonschema:"title=Slow Period,description=Period of the slow EMA" validate:"gt=0"`
	SignalPeriod         int     `yaml:"signal_period" json:"signal_period" jsonschema:"title=Signal Period,description=Period of the signal line EMA" validate:"gt=0"`
	TradeThresholdFactor float64 `yaml:"trade_threshold_factor" json:"trade_threshold_factor" jsonschema:"title=Trade Threshold Factor,description=Width of the volatility bands in units of sigma" validate:"gte=0"`
	StopLoss             float64 `yaml:"stop_loss" json:"stop_loss" jsonschema:"title=Stop Loss,description=Maximum adverse move from the entry price before exiting" validate:"gte=0,lt=1"`
	TransactionCost      float64 `yaml:"transaction_cost" json:"transaction_cost" jsonschema:"title=Transaction Cost,description=Cost charged as a fraction of every trade" validate:"gte=0,lt=1"`
	UseVolatilityBands   bool    `yaml:"use_volatility_bands" json:"use_volatility_bands" jsonschema:"title=Use Volatility Bands,description=Only enter when the price is inside the trend volatility bands"`
	ExitOnBand           bool    `yaml:"exit_on_band" json:"exit_on_band" jsonschema:"title=Exit On Band,description=Exit a long above the sell band and a short below the buy band"`
	AllowShort           bool    `yaml:"allow_short" json:"allow_short" jsonschema:"title=Allow Short,description=Enter short positions on bearish crossovers"`
}

func DefaultMACDConfig() MACDConfig {
	return MACDConfig{
		VolEstimate:          0.02,
		TrendAlpha:           0.3,
		GarchOmega:           1e-6,
		GarchAlpha:           0.1,
		GarchBeta:            0.85,
		FastPeriod:           12,
		SlowPeriod:           26,
		SignalPeriod:         9,
		TradeThresholdFactor: 0.05,
		StopLoss:             0.02,
		TransactionCost:      0.001,
		UseVolatilityBands:   false,
		ExitOnBand:           false,
		AllowShort:           true,
	}
}

// Validate checks the ranges of every parameter.
func (c MACDConfig) Validate() error {
	const component = "MACDStrategy"

	if err := validateConfig(component, c); err != nil {
		return err
	}

	return indicator.ValidateMACDPeriods(component, c.FastPeriod, c.SlowPeriod, c.SignalPeriod)
}

// MACDStrategy trades crossovers of the MACD line and its signal line,
// optionally filtered by volatility bands around an exponential trend.
type MACDStrategy struct {
	config MACDConfig
	log    *logger.Logger
	ledger *portfolio.Ledger

	trend  *indicator.ExponentialTrendEstimator
	fast   *indicator.ExponentialTrendEstimator
	slow   *indicator.ExponentialTrendEstimator
	signal *indicator.ExponentialTrendEstimator
	garch  *indicator.GARCHVolatilityEstimator

	lastPrice float64
	macd      float64
	// macd - signal of the previous tick
	prevDiff      float64
	diff          float64
	buyThreshold  float64
	sellThreshold float64
}

func NewMACDStrategy(config MACDConfig, log *logger.Logger) (*MACDStrategy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	log = log.Named(MACDStrategyID)

	trend, err := indicator.NewExponentialTrendEstimator(0, config.TrendAlpha)
	if err != nil {
		return nil, err
	}

	fast, err := indicator.NewPeriodTrendEstimator(0, config.FastPeriod)
	if err != nil {
		return nil, err
	}

	slow, err := indicator.NewPeriodTrendEstimator(0, config.SlowPeriod)
	if err != nil {
		return nil, err
	}

	signal, err := indicator.NewPeriodTrendEstimator(0, config.SignalPeriod)
	if err != nil {
		return nil, err
	}

	garch, err := indicator.NewGARCHVolatilityEstimator(config.VolEstimate, config.GarchOmega, config.GarchAlpha, config.GarchBeta, log)
	if err != nil {
		return nil, err
	}

	return &MACDStrategy{
		config: config,
		log:    log,
		ledger: portfolio.NewLedger(commission_fee.NewCommissionFee(config.TransactionCost), log),
		trend:  trend,
		fast:   fast,
		slow:   slow,
		signal: signal,
		garch:  garch,
	}, nil
}

func (s *MACDStrategy) ID() string {
	return MACDStrategyID
}

// Config returns the parameters the strategy was built with.
func (s *MACDStrategy) Config() MACDConfig {
	return s.config
}

func (s *MACDStrategy) Execute(data types.MarketData, initialCash float64) types.SimulationResult {
	return simulate(s.log, s.ledger, s, data, initialCash)
}

func (s *MACDStrategy) reset(data types.MarketData) {
	first := data.Prices[0]

	s.trend.Reset(first)
	s.fast.Reset(first)
	s.slow.Reset(first)
	s.signal.Reset(0)
	s.garch.Reset()

	s.lastPrice = 0
	s.macd = 0
	s.prevDiff = 0
	s.diff = 0
}

func (s *MACDStrategy) update(tick types.Tick) types.Indicators {
	price := tick.Price

	s.trend.Update(price)
	s.fast.Update(price)
	s.slow.Update(price)

	s.macd = s.fast.Trend() - s.slow.Trend()
	s.signal.Update(s.macd)

	if tick.Index > 0 && s.lastPrice > 0 && price > 0 {
		if err := s.garch.Update(math.Log(price / s.lastPrice)); err != nil {
			s.log.Warn("Skipping volatility update", zap.Int("time_step", tick.Index), zap.Error(err))
		}
	}

	s.lastPrice = price

	sigma := math.Max(macdSigmaFloor, s.garch.Sigma())
	trend := s.trend.Trend()
	s.buyThreshold = trend * (1 - s.config.TradeThresholdFactor*sigma)
	s.sellThreshold = trend * (1 + s.config.TradeThresholdFactor*sigma)

	s.prevDiff = s.diff
	s.diff = s.macd - s.signal.Trend()

	return types.Indicators{
		MACD:       s.macd,
		Signal:     s.signal.Trend(),
		Trend:      trend,
		Volatility: sigma,
	}
}

func (s *MACDStrategy) decide(tick types.Tick) {
	// the first tick has no previous diff to cross from
	bullishCross := tick.Index > 0 && s.prevDiff <= 0 && s.diff > 0
	bearishCross := tick.Index > 0 && s.prevDiff >= 0 && s.diff < 0
	price := tick.Price

	switch {
	case s.ledger.IsLong():
		switch {
		case stopLossHit(s.ledger, price, s.config.StopLoss):
			s.ledger.CloseLong(tick, types.TradeReasonStopLoss)
		case bearishCross:
			s.ledger.CloseLong(tick, types.TradeReasonSignal)
		case s.config.ExitOnBand && price > s.sellThreshold:
			s.ledger.CloseLong(tick, types.TradeReasonTakeProfit)
		}
	case s.ledger.IsShort():
		switch {
		case stopLossHit(s.ledger, price, s.config.StopLoss):
			s.ledger.CloseShort(tick, types.TradeReasonStopLoss)
		case bullishCross:
			s.ledger.CloseShort(tick, types.TradeReasonSignal)
		case s.config.ExitOnBand && price < s.buyThreshold:
			s.ledger.CloseShort(tick, types.TradeReasonTakeProfit)
		}
	}

	if !s.ledger.IsFlat() {
		return
	}

	// a crossover that closed a position may open the opposite one on the same tick
	switch {
	case bullishCross && (!s.config.UseVolatilityBands || price >= s.buyThreshold):
		s.ledger.OpenLong(tick, s.ledger.MaxAffordableQuantity(price), types.TradeReasonSignal)
	case bearishCross && s.config.AllowShort && (!s.config.UseVolatilityBands || price <= s.sellThreshold):
		s.ledger.OpenShort(tick, s.ledger.MaxAffordableQuantity(price), types.TradeReasonSignal)
	}
}

func newMACDInfo(log *logger.Logger) (StrategyInfo, error) {
	defaults := DefaultMACDConfig()

	return newStrategyInfo(
		MACDStrategyID,
		"MACD Trend",
		"Trades MACD and signal line crossovers with a GARCH volatility band around an exponential trend and a percentage stop-loss.",
		defaults,
		func(params map[string]any) (Strategy, error) {
			config, err := decodeParams("MACDStrategy", defaults, params)
			if err != nil {
				return nil, err
			}

			strategy, err := NewMACDStrategy(config, log)
			if err != nil {
				return nil, err
			}

			return strategy, nil
		},
	)
}
