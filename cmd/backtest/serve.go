package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rxtech-lab/argo-backtest/internal/api"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/pkg/marketdata"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// stringFlagOrEnv prefers an explicit flag, then the environment, then the flag default.
func stringFlagOrEnv(cmd *cli.Command, flag, env string) string {
	if cmd.IsSet(flag) {
		return cmd.String(flag)
	}

	if value := os.Getenv(env); value != "" {
		return value
	}

	return cmd.String(flag)
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	// .env is optional
	_ = godotenv.Load()

	address := stringFlagOrEnv(cmd, "addr", "BACKTEST_ADDR")
	dataDir := stringFlagOrEnv(cmd, "data", "BACKTEST_DATA_DIR")

	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	registry, err := strategy.NewDefaultRegistry(log)
	if err != nil {
		return fmt.Errorf("failed to create strategy registry: %w", err)
	}

	source, err := marketdata.NewDuckDBSource(log)
	if err != nil {
		return err
	}
	defer source.Close()

	server := api.NewServer(registry, source, dataDir, log)
	if err := server.Start(address); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("Shutting down trading server", zap.String("address", server.Addr()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return server.Stop(shutdownCtx)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve /strategies and /simulate over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "addr",
				Aliases:  []string{"a"},
				Usage:    "Listen address, falls back to $BACKTEST_ADDR",
				Value:    api.DefaultAddress,
				Required: false,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Directory holding one <symbol>.parquet or <symbol>.csv file per symbol, falls back to $BACKTEST_DATA_DIR",
				Value:    "data",
				Required: false,
			},
		},
		Action: serveAction,
	}
}
