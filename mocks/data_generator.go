package mocks

import (
	"encoding/csv"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// TimestampLayout is the layout of generated timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// DataGenerator generates realistic market data for testing and benchmarking.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how market data is generated.
type GeneratorConfig struct {
	// Symbol is the trading symbol (e.g., "AAPL", "SPY")
	Symbol string
	// StartTime is the beginning of the data series
	StartTime time.Time
	// Interval is the duration between each tick
	Interval time.Duration
	// Count is the number of ticks to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% per tick)
	Volatility float64
	// Trend is the total drift over the series (-0.01 to 0.01 for bearish to bullish)
	Trend float64
	// TicksPerDay wraps the clock to the next day's StartTime after that many ticks. 0 disables it.
	TicksPerDay int
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:       "TEST",
		StartTime:    time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC),
		Interval:     time.Minute,
		Count:        1000,
		InitialPrice: 100.0,
		Volatility:   0.002, // 0.2% per tick
		Trend:        0.0,   // neutral
		TicksPerDay:  390,
	}
}

// Generate creates a price series following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) types.MarketData {
	data := types.MarketData{
		Symbol:     config.Symbol,
		Prices:     make([]float64, config.Count),
		Timestamps: make([]string, config.Count),
	}

	currentPrice := config.InitialPrice
	dayStart := config.StartTime
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		if config.TicksPerDay > 0 && i > 0 && i%config.TicksPerDay == 0 {
			dayStart = dayStart.AddDate(0, 0, 1)
			currentTime = dayStart
		}

		data.Prices[i] = roundToDecimals(currentPrice, 4)
		data.Timestamps[i] = currentTime.Format(TimestampLayout)

		// Box-Muller transform for a normal draw
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := 0.0
		if config.Count > 0 {
			drift = config.Trend / float64(config.Count)
		}

		next := currentPrice * (1 + config.Volatility*z + drift)
		if next <= 0 {
			next = currentPrice * 0.99 // Prevent negative prices
		}

		currentPrice = next
		currentTime = currentTime.Add(config.Interval)
	}

	return data
}

// FromPrices builds MarketData with one-minute timestamps starting at start.
func FromPrices(symbol string, start time.Time, prices []float64) types.MarketData {
	timestamps := make([]string, len(prices))
	for i := range prices {
		timestamps[i] = start.Add(time.Duration(i) * time.Minute).Format(TimestampLayout)
	}

	return types.MarketData{
		Symbol:     symbol,
		Prices:     append([]float64{}, prices...),
		Timestamps: timestamps,
	}
}

// GenerateSeries is a convenience function to generate count ticks with
// default settings and a fixed seed.
func GenerateSeries(symbol string, count int) types.MarketData {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Symbol = symbol
	config.Count = count

	return gen.Generate(config)
}

// WriteCSV writes data as a time,symbol,close CSV file.
func WriteCSV(path string, data types.MarketData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"time", "symbol", "close"}); err != nil {
		return err
	}

	for i, price := range data.Prices {
		record := []string{data.TimestampAt(i), data.Symbol, strconv.FormatFloat(price, 'f', -1, 64)}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
