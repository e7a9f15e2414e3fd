package types

// Indicators is the per-tick indicator state a strategy reports for its history.
// Variants reuse the fields for their own statistics, e.g. mean reversion stores
// the z-score in MACD, the rolling mean in Trend and the rolling stddev in Volatility.
type Indicators struct {
	MACD       float64
	Signal     float64
	Trend      float64
	Volatility float64
}

// HistoricalDataPoint is the per-tick snapshot, index aligned with MarketData.
type HistoricalDataPoint struct {
	MACD           float64 `yaml:"macd" json:"macd" csv:"macd"`
	Signal         float64 `yaml:"signal" json:"signal" csv:"signal"`
	PortfolioValue float64 `yaml:"portfolio_value" json:"portfolio_value" csv:"portfolio_value"`
	// Position is signed: positive for long, negative for short, zero when flat.
	Position   float64 `yaml:"position" json:"position" csv:"position"`
	Cash       float64 `yaml:"cash" json:"cash" csv:"cash"`
	Trend      float64 `yaml:"trend" json:"trend" csv:"trend"`
	Volatility float64 `yaml:"volatility" json:"volatility" csv:"volatility"`
}

// SimulationResult is what a strategy run returns.
type SimulationResult struct {
	FinalPortfolioValue float64               `yaml:"final_portfolio_value" json:"final_portfolio_value"`
	ProfitLoss          float64               `yaml:"profit_loss" json:"profit_loss"`
	Trades              []Trade               `yaml:"trades" json:"trades"`
	Historical          []HistoricalDataPoint `yaml:"historical" json:"historical"`
}

// EmptyResult is the well-defined result of a run over no ticks.
func EmptyResult(initialCash float64) SimulationResult {
	return SimulationResult{
		FinalPortfolioValue: initialCash,
		ProfitLoss:          0,
		Trades:              []Trade{},
		Historical:          []HistoricalDataPoint{},
	}
}
