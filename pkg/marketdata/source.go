package marketdata

import (
	"context"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// DateLayout is the layout of Query.Date.
const DateLayout = "2006-01-02"

// Query selects the ticks to load from a market data file.
type Query struct {
	// Path of a .csv or .parquet file with time, close and optionally symbol columns
	Path string `validate:"required"`
	// Symbol keeps only the rows of this symbol
	Symbol optional.Option[string]
	// Date keeps only the rows of this trading day, formatted as YYYY-MM-DD
	Date optional.Option[string]
}

// Source loads a price series into memory.
type Source interface {
	// Load returns the ticks matching query ordered by time.
	Load(ctx context.Context, query Query) (types.MarketData, error)
	// Close releases the underlying resources.
	Close() error
}
