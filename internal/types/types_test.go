package types

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type TypesTestSuite struct {
	suite.Suite
}

func TestTypesSuite(t *testing.T) {
	suite.Run(t, new(TypesTestSuite))
}

func (suite *TypesTestSuite) TestMarketDataValidate() {
	data := MarketData{
		Prices:     []float64{1, 2},
		Timestamps: []string{"2024-01-02 09:30:00", "2024-01-02 09:31:00"},
	}
	suite.NoError(data.Validate())
	suite.Equal(2, data.Len())
	suite.False(data.IsEmpty())

	tick := data.At(1)
	suite.Equal(1, tick.Index)
	suite.Equal(2.0, tick.Price)
	suite.Equal("2024-01-02 09:31:00", tick.Timestamp)

	misaligned := MarketData{Prices: []float64{1, 2}, Timestamps: []string{"a"}}
	err := misaligned.Validate()
	suite.Error(err)
	suite.True(errors.IsNumericHazard(err))

	suite.Equal("a", misaligned.TimestampAt(0))
	suite.Equal("", misaligned.TimestampAt(1))
	suite.Equal("", misaligned.TimestampAt(-1))
	suite.Equal(Tick{Index: 1, Price: 2}, misaligned.At(1))
}

func (suite *TypesTestSuite) TestEmptyMarketData() {
	data := MarketData{}
	suite.True(data.IsEmpty())
	suite.NoError(data.Validate())
}

func (suite *TypesTestSuite) TestTradeTypeClassification() {
	tests := []struct {
		tradeType TradeType
		entry     bool
		exit      bool
	}{
		{TradeTypeLong, true, false},
		{TradeTypeShort, true, false},
		{TradeTypeExitLong, false, true},
		{TradeTypeExitShort, false, true},
	}

	for _, tc := range tests {
		suite.Run(string(tc.tradeType), func() {
			suite.Equal(tc.entry, tc.tradeType.IsEntry())
			suite.Equal(tc.exit, tc.tradeType.IsExit())
		})
	}
}

func (suite *TypesTestSuite) TestEmptyResult() {
	result := EmptyResult(10000)
	suite.Equal(10000.0, result.FinalPortfolioValue)
	suite.Equal(0.0, result.ProfitLoss)
	suite.NotNil(result.Trades)
	suite.Empty(result.Trades)
	suite.NotNil(result.Historical)
	suite.Empty(result.Historical)
}

func (suite *TypesTestSuite) TestWriteTradeStats() {
	path := filepath.Join(suite.T().TempDir(), "stats.yaml")
	stats := []TradeStats{
		{
			ID:     "run-1",
			Symbol: "AAPL",
			Ticks:  390,
			TradeResult: TradeResult{
				NumberOfTrades:        4,
				NumberOfWinningTrades: 1,
				NumberOfLosingTrades:  1,
				WinRate:               0.5,
			},
			Strategy: StrategyInfo{ID: "macd", Name: "MACD Trend Strategy"},
		},
	}

	suite.NoError(WriteTradeStats(path, stats))

	content, err := os.ReadFile(path)
	suite.NoError(err)

	var decoded []TradeStats
	suite.NoError(yaml.Unmarshal(content, &decoded))
	suite.Len(decoded, 1)
	suite.Equal("macd", decoded[0].Strategy.ID)
	suite.Equal(4, decoded[0].TradeResult.NumberOfTrades)
	suite.Contains(string(content), "number_of_winning_trades: 1")
}
