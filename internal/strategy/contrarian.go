package strategy

import (
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/portfolio"
	"github.com/rxtech-lab/argo-backtest/internal/portfolio/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

const ContrarianStrategyID = "contrarian"

type ContrarianConfig struct {
	ConsecutiveMoves int     `yaml:"consecutive_moves" json:"consecutive_moves" jsonschema:"title=Consecutive Moves,description=Number of consecutive price moves in one direction that triggers a trade" validate:"gte=1"`
	PositionSize     float64 `yaml:"position_size" json:"position_size" jsonschema:"title=Position Size,description=Fraction of the available cash to use for each position" validate:"gt=0,lte=1"`
	StopLoss         float64 `yaml:"stop_loss" json:"stop_loss" jsonschema:"title=Stop Loss,description=Exit a position at this loss from the entry price" validate:"gt=0,lt=1"`
	TransactionCost  float64 `yaml:"transaction_cost" json:"transaction_cost" jsonschema:"title=Transaction Cost,description=Cost charged as a fraction of every trade" validate:"gte=0,lt=1"`
}

func DefaultContrarianConfig() ContrarianConfig {
	return ContrarianConfig{
		ConsecutiveMoves: 3,
		PositionSize:     0.90,
		StopLoss:         0.03,
		TransactionCost:  0.001,
	}
}

func (c ContrarianConfig) Validate() error {
	return validateConfig("ContrarianStrategy", c)
}

// ContrarianStrategy buys after a run of strictly falling prices and shorts
// after a run of strictly rising prices. Positions only exit on the stop-loss
// or at the end of the run.
type ContrarianStrategy struct {
	config ContrarianConfig
	log    *logger.Logger
	ledger *portfolio.Ledger

	lastPrice float64
	// streak counts consecutive moves: positive rising, negative falling
	streak int
}

func NewContrarianStrategy(config ContrarianConfig, log *logger.Logger) (*ContrarianStrategy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	log = log.Named(ContrarianStrategyID)

	return &ContrarianStrategy{
		config: config,
		log:    log,
		ledger: portfolio.NewLedger(commission_fee.NewCommissionFee(config.TransactionCost), log),
	}, nil
}

func (s *ContrarianStrategy) ID() string {
	return ContrarianStrategyID
}

func (s *ContrarianStrategy) Config() ContrarianConfig {
	return s.config
}

func (s *ContrarianStrategy) Execute(data types.MarketData, initialCash float64) types.SimulationResult {
	return simulate(s.log, s.ledger, s, data, initialCash)
}

func (s *ContrarianStrategy) reset(types.MarketData) {
	s.lastPrice = 0
	s.streak = 0
}

func (s *ContrarianStrategy) update(tick types.Tick) types.Indicators {
	price := tick.Price

	if tick.Index > 0 {
		switch {
		case price > s.lastPrice:
			s.streak = max(s.streak, 0) + 1
		case price < s.lastPrice:
			s.streak = min(s.streak, 0) - 1
		default:
			s.streak = 0
		}
	}

	s.lastPrice = price

	return types.Indicators{
		MACD:  float64(s.streak),
		Trend: price,
	}
}

func (s *ContrarianStrategy) decide(tick types.Tick) {
	if !s.ledger.IsFlat() {
		if stopLossHit(s.ledger, tick.Price, s.config.StopLoss) {
			s.ledger.Close(tick, types.TradeReasonStopLoss)
		}

		return
	}

	k := s.config.ConsecutiveMoves

	switch {
	case s.streak <= -k:
		openWholeShares(s.log, s.ledger, tick, s.config.PositionSize, s.ledger.OpenLong)
	case s.streak >= k:
		openWholeShares(s.log, s.ledger, tick, s.config.PositionSize, s.ledger.OpenShort)
	}
}

func newContrarianInfo(log *logger.Logger) (StrategyInfo, error) {
	defaults := DefaultContrarianConfig()

	return newStrategyInfo(
		ContrarianStrategyID,
		"Contrarian",
		"Goes against recent price movements: buys after consecutive decreases and shorts after consecutive increases with stop-loss protection.",
		defaults,
		func(params map[string]any) (Strategy, error) {
			config, err := decodeParams("ContrarianStrategy", defaults, params)
			if err != nil {
				return nil, err
			}

			strategy, err := NewContrarianStrategy(config, log)
			if err != nil {
				return nil, err
			}

			return strategy, nil
		},
	)
}
