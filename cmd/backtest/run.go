package main

import (
	"context"
	"fmt"
	"os"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/pkg/marketdata"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// runSummary is what `run` prints for a report.
type runSummary struct {
	ID                  string  `yaml:"id"`
	Strategy            string  `yaml:"strategy"`
	Symbol              string  `yaml:"symbol"`
	Ticks               int     `yaml:"ticks"`
	InitialCapital      float64 `yaml:"initial_capital"`
	FinalPortfolioValue float64 `yaml:"final_portfolio_value"`
	ProfitLoss          float64 `yaml:"profit_loss"`
	BuyAndHoldPnl       float64 `yaml:"buy_and_hold_pnl"`
	Trades              int     `yaml:"trades"`
	WinRate             float64 `yaml:"win_rate"`
	MaxDrawdown         float64 `yaml:"max_drawdown"`
	TotalFees           float64 `yaml:"total_fees"`
	ResultFolder        string  `yaml:"result_folder,omitempty"`
}

func summarize(report backtest.Report) runSummary {
	return runSummary{
		ID:                  report.ID,
		Strategy:            report.StrategyID,
		Symbol:              report.Symbol,
		Ticks:               report.Stats.Ticks,
		InitialCapital:      report.InitialCapital,
		FinalPortfolioValue: report.Result.FinalPortfolioValue,
		ProfitLoss:          report.Result.ProfitLoss,
		BuyAndHoldPnl:       report.Stats.BuyAndHoldPnl,
		Trades:              report.Stats.TradeResult.NumberOfTrades,
		WinRate:             report.Stats.TradeResult.WinRate,
		MaxDrawdown:         report.Stats.TradeResult.MaxDrawdown,
		TotalFees:           report.Stats.TotalFees,
		ResultFolder:        report.ResultFolder,
	}
}

// newRunner wires the default registry and a DuckDB source.
func newRunner(cmd *cli.Command) (*backtest.Runner, marketdata.Source, error) {
	log, err := newLogger(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	registry, err := strategy.NewDefaultRegistry(log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create strategy registry: %w", err)
	}

	source, err := marketdata.NewDuckDBSource(log)
	if err != nil {
		return nil, nil, err
	}

	return backtest.NewRunner(registry, source, log), source, nil
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	config, err := backtest.LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	if cmd.IsSet("results") {
		config.ResultsFolder = optional.Some(cmd.String("results"))
	}

	runner, source, err := newRunner(cmd)
	if err != nil {
		return err
	}
	defer source.Close()

	report, err := runner.Run(ctx, config)
	if err != nil {
		return err
	}

	return yaml.NewEncoder(os.Stdout).Encode(summarize(report))
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run one strategy described by a YAML config file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the run `FILE`",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "results",
				Aliases:  []string{"r"},
				Usage:    "Override the results folder of the config",
				Required: false,
			},
		},
		Action: runAction,
	}
}
