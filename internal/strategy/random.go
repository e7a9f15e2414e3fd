package strategy

import (
	"math"
	"math/rand"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/portfolio"
	"github.com/rxtech-lab/argo-backtest/internal/portfolio/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

const RandomStrategyID = "random"

const (
	minSellFraction = 0.5
	maxSellFraction = 1.0
)

type RandomConfig struct {
	TransactionCost  float64 `yaml:"transaction_cost" json:"transaction_cost" jsonschema:"title=Transaction Cost,description=Cost charged as a fraction of every trade" validate:"gte=0,lt=1"`
	TimeStepInterval int     `yaml:"time_step_interval" json:"time_step_interval" jsonschema:"title=Time Step Interval,description=Consider a trade every N ticks" validate:"gt=0"`
	ClearAtEndOfDay  bool    `yaml:"clear_at_end_of_day" json:"clear_at_end_of_day" jsonschema:"title=Clear At End Of Day,description=Sell all holdings when the trading day changes"`
	Seed             int64   `yaml:"seed" json:"seed" jsonschema:"title=Seed,description=Seed of the random number generator"`
	MinBuyFraction   float64 `yaml:"min_buy_fraction" json:"min_buy_fraction" jsonschema:"title=Minimum Buy Fraction,description=Lower bound of the fraction of affordable shares to buy" validate:"gt=0,lte=1"`
	MaxBuyFraction   float64 `yaml:"max_buy_fraction" json:"max_buy_fraction" jsonschema:"title=Maximum Buy Fraction,description=Upper bound of the fraction of affordable shares to buy" validate:"gt=0,lte=1"`
}

func DefaultRandomConfig() RandomConfig {
	return RandomConfig{
		TransactionCost:  0.001,
		TimeStepInterval: 10,
		ClearAtEndOfDay:  true,
		Seed:             42,
		MinBuyFraction:   0.01,
		MaxBuyFraction:   0.05,
	}
}

func (c RandomConfig) Validate() error {
	const component = "RandomStrategy"

	if err := validateConfig(component, c); err != nil {
		return err
	}

	if c.MinBuyFraction > c.MaxBuyFraction {
		return errors.NewInvalidParameterError(component, "min_buy_fraction", "must not exceed max_buy_fraction", c.MinBuyFraction)
	}

	return nil
}

// RandomStrategy is a reproducible baseline. Every TimeStepInterval ticks it
// buys a random fraction of the affordable shares when flat, or flips a coin
// to sell a random 50-100% of the position when long.
type RandomStrategy struct {
	config RandomConfig
	log    *logger.Logger
	ledger *portfolio.Ledger
	rng    *rand.Rand

	tickCounter int
	currentDay  string
}

func NewRandomStrategy(config RandomConfig, log *logger.Logger) (*RandomStrategy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	log = log.Named(RandomStrategyID)

	return &RandomStrategy{
		config: config,
		log:    log,
		ledger: portfolio.NewLedger(commission_fee.NewCommissionFee(config.TransactionCost), log),
		rng:    rand.New(rand.NewSource(config.Seed)),
	}, nil
}

func (s *RandomStrategy) ID() string {
	return RandomStrategyID
}

func (s *RandomStrategy) Config() RandomConfig {
	return s.config
}

func (s *RandomStrategy) Execute(data types.MarketData, initialCash float64) types.SimulationResult {
	return simulate(s.log, s.ledger, s, data, initialCash)
}

// reset re-seeds the generator so every run replays the same draws.
func (s *RandomStrategy) reset(types.MarketData) {
	s.rng.Seed(s.config.Seed)
	s.tickCounter = 0
	s.currentDay = ""
}

func (s *RandomStrategy) update(types.Tick) types.Indicators {
	return types.Indicators{}
}

func (s *RandomStrategy) decide(tick types.Tick) {
	day := tradingDay(tick.Timestamp)
	newDay := s.currentDay != "" && day != s.currentDay
	s.currentDay = day

	if s.config.ClearAtEndOfDay && newDay && s.ledger.IsLong() {
		s.ledger.CloseLong(tick, types.TradeReasonEndOfDay)
	}

	s.tickCounter++
	if s.tickCounter < s.config.TimeStepInterval {
		return
	}

	s.tickCounter = 0
	buyFraction := s.uniform(s.config.MinBuyFraction, s.config.MaxBuyFraction)

	if s.ledger.IsFlat() {
		maxShares := s.ledger.MaxAffordableShares(tick.Price, 1)
		quantity := math.Floor(maxShares * buyFraction)

		if quantity < 1 && maxShares >= 1 {
			quantity = 1
		}

		if quantity > 0 {
			s.ledger.OpenLong(tick, quantity, types.TradeReasonRandom)
		}

		return
	}

	if s.ledger.IsLong() && s.rng.Intn(2) == 1 {
		position := s.ledger.Position()
		quantity := math.Floor(position * s.uniform(minSellFraction, maxSellFraction))
		quantity = math.Min(math.Max(quantity, 1), position)

		s.ledger.ReduceLong(tick, quantity, types.TradeReasonRandom)
	}
}

// uniform draws from [low, high).
func (s *RandomStrategy) uniform(low, high float64) float64 {
	return low + (high-low)*s.rng.Float64()
}

func newRandomInfo(log *logger.Logger) (StrategyInfo, error) {
	defaults := DefaultRandomConfig()

	return newStrategyInfo(
		RandomStrategyID,
		"Random Baseline",
		"Trades randomly at a fixed tick interval with a seeded generator. Used as a reproducible performance baseline.",
		defaults,
		func(params map[string]any) (Strategy, error) {
			config, err := decodeParams("RandomStrategy", defaults, params)
			if err != nil {
				return nil, err
			}

			strategy, err := NewRandomStrategy(config, log)
			if err != nil {
				return nil, err
			}

			return strategy, nil
		},
	)
}
