package main

import (
	"context"
	"log"
	"os"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/urfave/cli/v3"
)

func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	if cmd.Bool("verbose") {
		return logger.NewDevelopmentLogger()
	}

	return logger.NewLogger()
}

func main() {
	cmd := &cli.Command{
		Name:    "backtest",
		Usage:   "Backtest heuristic trading strategies over historical prices",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
				Value: false,
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			compareCommand(),
			strategiesCommand(),
			serveCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
