package backtest

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/rxtech-lab/argo-backtest/pkg/marketdata"
	"gopkg.in/yaml.v3"
)

// DefaultInitialCapital is used when a run does not set initial_capital.
const DefaultInitialCapital = 100000.0

// Config describes a single backtest run.
type Config struct {
	// Strategy is the registry id of the strategy to run
	Strategy string `yaml:"strategy" json:"strategy" validate:"required"`
	// Params override the strategy defaults
	Params         map[string]any `yaml:"params" json:"params"`
	InitialCapital float64        `yaml:"initial_capital" json:"initial_capital" validate:"gt=0"`
	// DataPath is a .csv or .parquet market data file
	DataPath string `yaml:"data_path" json:"data_path" validate:"required"`
	// Symbol filters the rows of a multi symbol file
	Symbol optional.Option[string] `yaml:"symbol" json:"symbol"`
	// Date restricts the run to one trading day (YYYY-MM-DD)
	Date optional.Option[string] `yaml:"date" json:"date"`
	// ResultsFolder enables writing trades, history and stats to disk
	ResultsFolder optional.Option[string] `yaml:"results_folder" json:"results_folder"`
	// RequiredVersion is a semver constraint the backtester version must satisfy, e.g. "^1.0"
	RequiredVersion optional.Option[string] `yaml:"required_version" json:"required_version"`
}

// UnmarshalYAML implements custom unmarshaling for the optional fields.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type rawConfig struct {
		Strategy        string         `yaml:"strategy"`
		Params          map[string]any `yaml:"params"`
		InitialCapital  *float64       `yaml:"initial_capital"`
		DataPath        string         `yaml:"data_path"`
		Symbol          *string        `yaml:"symbol"`
		Date            *string        `yaml:"date"`
		ResultsFolder   *string        `yaml:"results_folder"`
		RequiredVersion *string        `yaml:"required_version"`
	}

	var raw rawConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*c = EmptyConfig()
	c.Strategy = raw.Strategy
	c.Params = raw.Params
	c.DataPath = raw.DataPath

	if raw.InitialCapital != nil {
		c.InitialCapital = *raw.InitialCapital
	}

	if raw.Symbol != nil {
		c.Symbol = optional.Some(*raw.Symbol)
	}

	if raw.Date != nil {
		c.Date = optional.Some(*raw.Date)
	}

	if raw.ResultsFolder != nil {
		c.ResultsFolder = optional.Some(*raw.ResultsFolder)
	}

	if raw.RequiredVersion != nil {
		c.RequiredVersion = optional.Some(*raw.RequiredVersion)
	}

	return nil
}

// Validate checks the required fields and the date format.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid backtest config", err)
	}

	if c.Date.IsSome() {
		if _, err := time.Parse(marketdata.DateLayout, c.Date.Unwrap()); err != nil {
			return errors.Newf(errors.ErrCodeBacktestConfigError, "invalid date %q, expected YYYY-MM-DD", c.Date.Unwrap())
		}
	}

	if c.RequiredVersion.IsSome() {
		if err := version.CheckConstraint(version.GetVersion(), c.RequiredVersion.Unwrap()); err != nil {
			return errors.Wrap(errors.ErrCodeBacktestConfigError, "backtest config requires another backtester version", err)
		}
	}

	return nil
}

// Query returns the market data query of the run.
func (c Config) Query() marketdata.Query {
	return marketdata.Query{
		Path:   c.DataPath,
		Symbol: c.Symbol,
		Date:   c.Date,
	}
}

// EmptyConfig returns a Config with default values.
func EmptyConfig() Config {
	return Config{
		Strategy:        "",
		Params:          nil,
		InitialCapital:  DefaultInitialCapital,
		DataPath:        "",
		Symbol:          optional.None[string](),
		Date:            optional.None[string](),
		ResultsFolder:   optional.None[string](),
		RequiredVersion: optional.None[string](),
	}
}

// ParseConfig decodes and validates a YAML run configuration.
func ParseConfig(content []byte) (Config, error) {
	config := EmptyConfig()
	if err := yaml.Unmarshal(content, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse backtest config", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// LoadConfig reads a YAML run configuration from path.
func LoadConfig(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeBacktestConfigError, err, "failed to read backtest config %s", path)
	}

	return ParseConfig(content)
}
