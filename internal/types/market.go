package types

import (
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// MarketData is an ordered price series with index-aligned timestamp strings.
// It is owned by the caller and never mutated by a strategy.
type MarketData struct {
	// Symbol is informational only. The core never reads it.
	Symbol     string    `yaml:"symbol" json:"symbol"`
	Prices     []float64 `yaml:"prices" json:"prices"`
	Timestamps []string  `yaml:"timestamps" json:"timestamps"`
}

// Len returns the number of ticks.
func (m MarketData) Len() int {
	return len(m.Prices)
}

// IsEmpty reports whether the series has no ticks.
func (m MarketData) IsEmpty() bool {
	return len(m.Prices) == 0
}

// Validate checks that prices and timestamps are index aligned.
func (m MarketData) Validate() error {
	if len(m.Prices) != len(m.Timestamps) {
		return errors.Newf(errors.ErrCodeInvalidInput, "market data misaligned: %d prices, %d timestamps", len(m.Prices), len(m.Timestamps))
	}

	return nil
}

// Tick is a single step of a MarketData series.
type Tick struct {
	// Index is the position of the tick in the series.
	Index     int
	Price     float64
	Timestamp string
}

// At returns the tick at index i. i must be a valid price index.
func (m MarketData) At(i int) Tick {
	return Tick{
		Index:     i,
		Price:     m.Prices[i],
		Timestamp: m.TimestampAt(i),
	}
}

// TimestampAt returns the timestamp of tick i, or "" when the timestamps
// are shorter than the prices.
func (m MarketData) TimestampAt(i int) string {
	if i < 0 || i >= len(m.Timestamps) {
		return ""
	}

	return m.Timestamps[i]
}
