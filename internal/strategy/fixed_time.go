package strategy

import (
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/portfolio"
	"github.com/rxtech-lab/argo-backtest/internal/portfolio/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

const FixedTimeStrategyID = "fixed_time"

type FixedTimeConfig struct {
	HoldingPeriodMinutes int     `yaml:"holding_period_minutes" json:"holding_period_minutes" jsonschema:"title=Holding Period,description=Minutes to hold a position before exiting" validate:"gt=0"`
	PositionSize         float64 `yaml:"position_size" json:"position_size" jsonschema:"title=Position Size,description=Fraction of the available cash to use for each position" validate:"gt=0,lte=1"`
	CooldownTicks        int     `yaml:"cooldown_ticks" json:"cooldown_ticks" jsonschema:"title=Cooldown,description=Ticks to wait after an exit before entering again" validate:"gte=0"`
	TransactionCost      float64 `yaml:"transaction_cost" json:"transaction_cost" jsonschema:"title=Transaction Cost,description=Cost charged as a fraction of every trade" validate:"gte=0,lt=1"`
	SessionStart         string  `yaml:"session_start" json:"session_start" jsonschema:"title=Session Start,description=Start of the trading hours window formatted as HH:MM" validate:"required"`
	SessionEnd           string  `yaml:"session_end" json:"session_end" jsonschema:"title=Session End,description=End of the trading hours window formatted as HH:MM" validate:"required"`
}

func DefaultFixedTimeConfig() FixedTimeConfig {
	return FixedTimeConfig{
		HoldingPeriodMinutes: 15,
		PositionSize:         0.90,
		CooldownTicks:        0,
		TransactionCost:      0.001,
		SessionStart:         "09:30",
		SessionEnd:           "16:00",
	}
}

func (c FixedTimeConfig) Validate() error {
	_, _, err := c.session()

	return err
}

// session returns the trading window in minutes since midnight.
func (c FixedTimeConfig) session() (int, int, error) {
	const component = "FixedTimeStrategy"

	if err := validateConfig(component, c); err != nil {
		return 0, 0, err
	}

	start, err := parseSessionTime(component, "session_start", c.SessionStart)
	if err != nil {
		return 0, 0, err
	}

	end, err := parseSessionTime(component, "session_end", c.SessionEnd)
	if err != nil {
		return 0, 0, err
	}

	if start >= end {
		return 0, 0, errors.NewInvalidParameterError(component, "session_start", "must be earlier than session_end", c.SessionStart)
	}

	return start, end, nil
}

// FixedTimeStrategy buys inside the trading session and sells once the
// position has been held for the holding period, regardless of price.
type FixedTimeStrategy struct {
	config       FixedTimeConfig
	log          *logger.Logger
	ledger       *portfolio.Ledger
	sessionStart int
	sessionEnd   int

	entryMinutes int64
	// index of the last exit, -1 before the first one
	lastExitStep int
}

func NewFixedTimeStrategy(config FixedTimeConfig, log *logger.Logger) (*FixedTimeStrategy, error) {
	start, end, err := config.session()
	if err != nil {
		return nil, err
	}

	log = log.Named(FixedTimeStrategyID)

	return &FixedTimeStrategy{
		config:       config,
		log:          log,
		ledger:       portfolio.NewLedger(commission_fee.NewCommissionFee(config.TransactionCost), log),
		sessionStart: start,
		sessionEnd:   end,
		lastExitStep: -1,
	}, nil
}

func (s *FixedTimeStrategy) ID() string {
	return FixedTimeStrategyID
}

func (s *FixedTimeStrategy) Config() FixedTimeConfig {
	return s.config
}

func (s *FixedTimeStrategy) Execute(data types.MarketData, initialCash float64) types.SimulationResult {
	return simulate(s.log, s.ledger, s, data, initialCash)
}

func (s *FixedTimeStrategy) reset(types.MarketData) {
	s.entryMinutes = 0
	s.lastExitStep = -1
}

// update has no indicator state, exits are driven by the clock only.
func (s *FixedTimeStrategy) update(types.Tick) types.Indicators {
	return types.Indicators{}
}

func (s *FixedTimeStrategy) decide(tick types.Tick) {
	clock, ok := readClock(tick.Timestamp)
	if !ok {
		s.log.Debug("Ignoring tick with unparseable timestamp",
			zap.Int("time_step", tick.Index),
			zap.String("timestamp", tick.Timestamp),
		)

		return
	}

	if s.ledger.IsLong() {
		held := clock.epochMinutes - s.entryMinutes
		if held >= int64(s.config.HoldingPeriodMinutes) && s.ledger.CloseLong(tick, types.TradeReasonHoldingTime) {
			s.lastExitStep = tick.Index
		}

		return
	}

	if !s.inSession(clock) || !s.pastCooldown(tick.Index) {
		return
	}

	if openWholeShares(s.log, s.ledger, tick, s.config.PositionSize, s.ledger.OpenLong) {
		s.entryMinutes = clock.epochMinutes
	}
}

func (s *FixedTimeStrategy) inSession(clock clockReading) bool {
	return clock.minuteOfDay >= s.sessionStart && clock.minuteOfDay < s.sessionEnd
}

func (s *FixedTimeStrategy) pastCooldown(step int) bool {
	return s.lastExitStep < 0 || step-s.lastExitStep >= s.config.CooldownTicks
}

func newFixedTimeInfo(log *logger.Logger) (StrategyInfo, error) {
	defaults := DefaultFixedTimeConfig()

	return newStrategyInfo(
		FixedTimeStrategyID,
		"Fixed Holding Time",
		"Buys during trading hours and sells after a fixed holding period. Exits ignore price signals entirely.",
		defaults,
		func(params map[string]any) (Strategy, error) {
			config, err := decodeParams("FixedTimeStrategy", defaults, params)
			if err != nil {
				return nil, err
			}

			strategy, err := NewFixedTimeStrategy(config, log)
			if err != nil {
				return nil, err
			}

			return strategy, nil
		},
	)
}
