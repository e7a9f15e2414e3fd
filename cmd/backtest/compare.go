package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

func compareAction(ctx context.Context, cmd *cli.Command) error {
	config := backtest.EmptyConfig()
	config.DataPath = cmd.String("data")
	config.InitialCapital = cmd.Float("initial-capital")

	if cmd.IsSet("symbol") {
		config.Symbol = optional.Some(cmd.String("symbol"))
	}

	if cmd.IsSet("date") {
		config.Date = optional.Some(cmd.String("date"))
	}

	if cmd.IsSet("results") {
		config.ResultsFolder = optional.Some(cmd.String("results"))
	}

	ids := cmd.StringSlice("strategy")

	runner, source, err := newRunner(cmd)
	if err != nil {
		return err
	}
	defer source.Close()

	var bar *progressbar.ProgressBar

	onProgress := backtest.OnProgressCallback(func(current int, total int, strategyID string) {
		if bar == nil {
			bar = progressbar.NewOptions(total, progressbar.OptionSetDescription("Comparing strategies"), progressbar.OptionShowCount())
		}

		bar.Describe(fmt.Sprintf("Finished %s", strategyID))
		bar.Set(current)
	})

	reports, err := runner.Compare(ctx, config, ids, optional.Some(onProgress))
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(writer, "STRATEGY\tFINAL VALUE\tPNL\tBUY&HOLD\tTRADES\tWIN RATE\tMAX DRAWDOWN\tFEES")

	for _, report := range reports {
		fmt.Fprintf(writer, "%s\t%.2f\t%.2f\t%.2f\t%d\t%.2f%%\t%.2f%%\t%.2f\n",
			report.StrategyID,
			report.Result.FinalPortfolioValue,
			report.Result.ProfitLoss,
			report.Stats.BuyAndHoldPnl,
			report.Stats.TradeResult.NumberOfTrades,
			report.Stats.TradeResult.WinRate*100,
			report.Stats.TradeResult.MaxDrawdown*100,
			report.Stats.TotalFees,
		)
	}

	return writer.Flush()
}

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "Run several strategies with their default parameters over the same data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to a .csv or .parquet market data `FILE`",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "strategy",
				Aliases:  []string{"s"},
				Usage:    "Strategy id to compare, repeatable. Defaults to every registered strategy",
				Required: false,
			},
			&cli.FloatFlag{
				Name:     "initial-capital",
				Usage:    "Starting cash of every run",
				Value:    backtest.DefaultInitialCapital,
				Required: false,
			},
			&cli.StringFlag{
				Name:     "symbol",
				Usage:    "Only use the rows of this symbol",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "date",
				Usage:    "Only use the ticks of this `YYYY-MM-DD` trading day",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "results",
				Aliases:  []string{"r"},
				Usage:    "Folder to write trades, history and stats of every run",
				Required: false,
			},
		},
		Action: compareAction,
	}
}
