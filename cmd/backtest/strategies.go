package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/urfave/cli/v3"
)

func strategiesAction(_ context.Context, cmd *cli.Command) error {
	registry, err := strategy.NewDefaultRegistry(logger.NewNopLogger())
	if err != nil {
		return fmt.Errorf("failed to create strategy registry: %w", err)
	}

	for _, info := range registry.Enumerate() {
		if cmd.Bool("schema") {
			fmt.Fprintf(os.Stdout, "%s\n%s\n\n", info.ID, info.Schema)

			continue
		}

		fmt.Fprintf(os.Stdout, "%s (%s)\n  %s\n", info.ID, info.Name, info.Description)

		for _, param := range info.Params {
			fmt.Fprintf(os.Stdout, "  - %s [%s] default=%v: %s\n", param.Name, param.Type, param.Default, param.Description)
		}

		fmt.Fprintln(os.Stdout)
	}

	return nil
}

func strategiesCommand() *cli.Command {
	return &cli.Command{
		Name:  "strategies",
		Usage: "List the registered strategies and their parameters",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "schema",
				Usage: "Print the JSON schema of the parameters instead",
				Value: false,
			},
		},
		Action: strategiesAction,
	}
}
