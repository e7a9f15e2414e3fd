package backtest

import (
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Report is the outcome of one strategy run.
type Report struct {
	// ID is the unique identifier of the run
	ID             string                 `yaml:"id" json:"id"`
	Timestamp      time.Time              `yaml:"timestamp" json:"timestamp"`
	StrategyID     string                 `yaml:"strategy_id" json:"strategy_id"`
	StrategyName   string                 `yaml:"strategy_name" json:"strategy_name"`
	Symbol         string                 `yaml:"symbol" json:"symbol"`
	DataPath       string                 `yaml:"data_path" json:"data_path"`
	InitialCapital float64                `yaml:"initial_capital" json:"initial_capital"`
	Result         types.SimulationResult `yaml:"result" json:"result"`
	Stats          types.TradeStats       `yaml:"stats" json:"stats"`
	// ResultFolder is where the run was written, empty when nothing was written
	ResultFolder string `yaml:"result_folder,omitempty" json:"result_folder,omitempty"`
}
