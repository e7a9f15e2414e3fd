package api

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/rxtech-lab/argo-backtest/pkg/marketdata"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	defaultSymbol   = "AAPL"
	defaultStrategy = "macd"
	defaultInterval = "1min"
)

// reservedParams are the query parameters that are not strategy parameters.
var reservedParams = map[string]bool{
	"strategy":        true,
	"symbol":          true,
	"date":            true,
	"interval":        true,
	"initial_capital": true,
}

// SimulateRequest is the decoded query of GET /simulate.
type SimulateRequest struct {
	Strategy       string
	Symbol         string
	Date           string
	Interval       string
	InitialCapital float64
	Params         map[string]any
}

// Indicators is the per-tick indicator state of a simulation.
type Indicators struct {
	MACD           float64 `json:"macd"`
	Signal         float64 `json:"signal"`
	PortfolioValue float64 `json:"portfolio_value"`
	Position       float64 `json:"position"`
	Cash           float64 `json:"cash"`
	Trend          float64 `json:"trend"`
	Volatility     float64 `json:"volatility"`
}

// TickTrade is the trade made on a tick.
type TickTrade struct {
	Type     types.TradeType    `json:"type"`
	Side     types.PurchaseType `json:"side"`
	Quantity float64            `json:"quantity"`
	Price    float64            `json:"price"`
}

// HistoricalData is one tick of a simulation.
type HistoricalData struct {
	Timestamp  string     `json:"timestamp"`
	Price      float64    `json:"price"`
	Indicators Indicators `json:"indicators"`
	// Trade is the first trade made on this tick, if any
	Trade *TickTrade `json:"trade,omitempty"`
}

// SimulateResponse is the body of a successful GET /simulate.
type SimulateResponse struct {
	Symbol              string           `json:"symbol"`
	Strategy            string           `json:"strategy"`
	Interval            string           `json:"interval"`
	Date                string           `json:"date"`
	InitialCapital      float64          `json:"initial_capital"`
	FinalPortfolioValue float64          `json:"final_portfolio_value"`
	ProfitLoss          float64          `json:"profit_loss"`
	NumTrades           int              `json:"num_trades"`
	Stats               types.TradeStats `json:"stats"`
	HistoricalData      []HistoricalData `json:"historical_data"`
	Trades              []types.Trade    `json:"trades"`
}

// parseSimulateRequest reads the query of GET /simulate.
// Strategy parameters are decoded as YAML scalars so numbers and booleans keep their type.
func parseSimulateRequest(query url.Values) (SimulateRequest, error) {
	request := SimulateRequest{
		Strategy:       valueOr(query, "strategy", defaultStrategy),
		Symbol:         valueOr(query, "symbol", defaultSymbol),
		Date:           query.Get("date"),
		Interval:       valueOr(query, "interval", defaultInterval),
		InitialCapital: backtest.DefaultInitialCapital,
		Params:         map[string]any{},
	}

	if query.Has("initial_capital") {
		capital, err := strconv.ParseFloat(query.Get("initial_capital"), 64)
		if err != nil || math.IsNaN(capital) || math.IsInf(capital, 0) {
			return SimulateRequest{}, errors.Newf(errors.ErrCodeInvalidParameter, "invalid 'initial_capital' parameter %q, must be a number", query.Get("initial_capital"))
		}

		request.InitialCapital = capital
	}

	if request.Date == "" {
		return SimulateRequest{}, errors.New(errors.ErrCodeMissingParameter, "please provide a 'date' parameter in YYYY-MM-DD format")
	}

	if _, err := time.Parse(marketdata.DateLayout, request.Date); err != nil {
		return SimulateRequest{}, errors.Newf(errors.ErrCodeInvalidParameter, "invalid 'date' parameter %q, expected YYYY-MM-DD", request.Date)
	}

	for key := range query {
		if reservedParams[key] {
			continue
		}

		var value any
		if err := yaml.Unmarshal([]byte(query.Get(key)), &value); err != nil {
			return SimulateRequest{}, errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "invalid value for parameter %s", key)
		}

		request.Params[key] = value
	}

	return request, nil
}

func valueOr(query url.Values, key, fallback string) string {
	if value := query.Get(key); value != "" {
		return value
	}

	return fallback
}

// handleSimulate handles GET /simulate
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	request, err := parseSimulateRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, err)

		return
	}

	info, err := s.registry.Get(request.Strategy)
	if err != nil {
		s.writeError(w, err)

		return
	}

	instance, err := info.Factory(request.Params)
	if err != nil {
		s.writeError(w, err)

		return
	}

	path, err := marketdata.ResolvePath(s.dataDir, request.Symbol)
	if err != nil {
		s.writeError(w, err)

		return
	}

	data, err := s.source.Load(r.Context(), marketdata.Query{
		Path:   path,
		Symbol: optional.None[string](),
		Date:   optional.Some(request.Date),
	})
	if err != nil {
		s.writeError(w, err)

		return
	}

	data.Symbol = request.Symbol

	s.log.Debug("Simulating",
		zap.String("strategy", info.ID),
		zap.String("symbol", request.Symbol),
		zap.String("date", request.Date),
		zap.Int("ticks", data.Len()),
	)

	result := instance.Execute(data, request.InitialCapital)

	writeJSON(w, http.StatusOK, SimulateResponse{
		Symbol:              request.Symbol,
		Strategy:            info.ID,
		Interval:            request.Interval,
		Date:                request.Date,
		InitialCapital:      request.InitialCapital,
		FinalPortfolioValue: result.FinalPortfolioValue,
		ProfitLoss:          result.ProfitLoss,
		NumTrades:           len(result.Trades),
		Stats:               backtest.ComputeStats(data, result, request.InitialCapital),
		HistoricalData:      historicalData(data, result),
		Trades:              result.Trades,
	})
}

func historicalData(data types.MarketData, result types.SimulationResult) []HistoricalData {
	tradesByStep := make(map[int]types.Trade, len(result.Trades))
	for _, trade := range result.Trades {
		if _, ok := tradesByStep[trade.TimeStep]; !ok {
			tradesByStep[trade.TimeStep] = trade
		}
	}

	points := make([]HistoricalData, 0, len(result.Historical))

	for i, point := range result.Historical {
		entry := HistoricalData{
			Timestamp: data.TimestampAt(i),
			Price:     data.Prices[i],
			Indicators: Indicators{
				MACD:           point.MACD,
				Signal:         point.Signal,
				PortfolioValue: point.PortfolioValue,
				Position:       point.Position,
				Cash:           point.Cash,
				Trend:          point.Trend,
				Volatility:     point.Volatility,
			},
			Trade: nil,
		}

		if trade, ok := tradesByStep[i]; ok {
			entry.Trade = &TickTrade{
				Type:     trade.Type,
				Side:     trade.Side,
				Quantity: trade.Quantity,
				Price:    trade.Price,
			}
		}

		points = append(points, entry)
	}

	return points
}
