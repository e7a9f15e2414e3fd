package backtest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/rxtech-lab/argo-backtest/pkg/marketdata"
	"go.uber.org/zap"
)

// OnProgressCallback is called after each strategy of a comparison finished.
type OnProgressCallback func(current int, total int, strategyID string)

// Runner executes registered strategies over market data loaded from a Source.
type Runner struct {
	registry strategy.Registry
	source   marketdata.Source
	writer   ResultWriter
	log      *logger.Logger
}

// NewRunner creates a runner writing results with a DuckDBResultWriter.
func NewRunner(registry strategy.Registry, source marketdata.Source, log *logger.Logger) *Runner {
	return &Runner{
		registry: registry,
		source:   source,
		writer:   NewDuckDBResultWriter(log),
		log:      log,
	}
}

// WithWriter replaces the result writer.
func (r *Runner) WithWriter(writer ResultWriter) *Runner {
	r.writer = writer

	return r
}

// Run executes the strategy of config and writes the results when a results folder is set.
func (r *Runner) Run(ctx context.Context, config Config) (Report, error) {
	if err := config.Validate(); err != nil {
		return Report{}, err
	}

	data, err := r.load(ctx, config)
	if err != nil {
		return Report{}, err
	}

	return r.execute(config, config.Strategy, data)
}

// Compare runs every strategy in ids over the same data with the parameters of config.
// Parameters only apply to the strategy named by config.Strategy, the others use their defaults.
// An empty ids runs every registered strategy.
func (r *Runner) Compare(ctx context.Context, config Config, ids []string, onProgress optional.Option[OnProgressCallback]) ([]Report, error) {
	if len(ids) == 0 {
		for _, info := range r.registry.Enumerate() {
			ids = append(ids, info.ID)
		}
	}

	if len(ids) == 0 {
		return nil, errors.New(errors.ErrCodeBacktestNoStrategies, "no strategies to compare")
	}

	if config.Strategy == "" {
		config.Strategy = ids[0]
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	data, err := r.load(ctx, config)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(ids))

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		runConfig := config
		if id != config.Strategy {
			runConfig.Params = nil
		}

		report, err := r.execute(runConfig, id, data)
		if err != nil {
			return reports, err
		}

		reports = append(reports, report)

		if onProgress.IsSome() {
			onProgress.Unwrap()(i+1, len(ids), id)
		}
	}

	return reports, nil
}

func (r *Runner) load(ctx context.Context, config Config) (types.MarketData, error) {
	data, err := r.source.Load(ctx, config.Query())
	if err != nil {
		r.log.Error("Failed to load market data",
			zap.String("path", config.DataPath),
			zap.Error(err),
		)

		return types.MarketData{}, err
	}

	if data.Symbol == "" {
		data.Symbol = config.Symbol.TakeOr(symbolFromPath(config.DataPath))
	}

	return data, nil
}

func (r *Runner) execute(config Config, id string, data types.MarketData) (Report, error) {
	info, err := r.registry.Get(id)
	if err != nil {
		return Report{}, err
	}

	instance, err := info.Factory(config.Params)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		ID:             uuid.New().String(),
		Timestamp:      time.Now(),
		StrategyID:     info.ID,
		StrategyName:   info.Name,
		Symbol:         data.Symbol,
		DataPath:       config.DataPath,
		InitialCapital: config.InitialCapital,
	}

	r.log.Info("Running strategy",
		zap.String("run_id", report.ID),
		zap.String("strategy", info.ID),
		zap.String("symbol", data.Symbol),
		zap.Int("ticks", data.Len()),
		zap.Float64("initial_capital", config.InitialCapital),
	)

	report.Result = instance.Execute(data, config.InitialCapital)

	report.Stats = ComputeStats(data, report.Result, config.InitialCapital)
	report.Stats.ID = report.ID
	report.Stats.Timestamp = report.Timestamp
	report.Stats.Strategy = types.StrategyInfo{ID: info.ID, Name: info.Name}
	report.Stats.DataPath = config.DataPath

	r.log.Info("Strategy finished",
		zap.String("run_id", report.ID),
		zap.String("strategy", info.ID),
		zap.Float64("final_portfolio_value", report.Result.FinalPortfolioValue),
		zap.Float64("profit_loss", report.Result.ProfitLoss),
		zap.Int("trades", len(report.Result.Trades)),
	)

	if config.ResultsFolder.IsSome() {
		folder := getResultFolder(config.ResultsFolder.Unwrap(), info.ID, config)
		if err := r.writer.Write(folder, report, data); err != nil {
			return Report{}, err
		}

		report.ResultFolder = folder
	}

	return report, nil
}
