package backtest

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

const (
	TradesFileName     = "trades.parquet"
	HistoricalFileName = "historical.parquet"
	StatsFileName      = "stats.yaml"
)

// ResultWriter persists a report.
type ResultWriter interface {
	// Write stores report and the series it ran on under folder.
	Write(folder string, report Report, data types.MarketData) error
}

// DuckDBResultWriter stages the run in an in-memory DuckDB and exports it to parquet.
type DuckDBResultWriter struct {
	log *logger.Logger
}

// NewDuckDBResultWriter creates a new DuckDBResultWriter.
func NewDuckDBResultWriter(log *logger.Logger) ResultWriter {
	return &DuckDBResultWriter{
		log: log,
	}
}

// Write implements ResultWriter.
func (w *DuckDBResultWriter) Write(folder string, report Report, data types.MarketData) error {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeBacktestNoResultsDir, err, "failed to create results folder %s", folder)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	if err := w.createTables(db); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to begin transaction", err)
	}

	if err := w.insertTrades(tx, report.Result.Trades, data); err != nil {
		tx.Rollback()

		return err
	}

	if err := w.insertHistorical(tx, report.Result.Historical, data); err != nil {
		tx.Rollback()

		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to commit transaction", err)
	}

	for table, fileName := range map[string]string{"trades": TradesFileName, "historical": HistoricalFileName} {
		if err := exportParquet(db, table, filepath.Join(folder, fileName)); err != nil {
			return err
		}
	}

	if err := types.WriteTradeStats(filepath.Join(folder, StatsFileName), []types.TradeStats{report.Stats}); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to write stats", err)
	}

	w.log.Debug("Results written",
		zap.String("folder", folder),
		zap.Int("trades", len(report.Result.Trades)),
		zap.Int("ticks", len(report.Result.Historical)),
	)

	return nil
}

func (w *DuckDBResultWriter) createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE trades (
			time_step INTEGER,
			tick_time TEXT,
			trade_type TEXT,
			side TEXT,
			price DOUBLE,
			quantity DOUBLE,
			fee DOUBLE,
			pnl DOUBLE,
			reason TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to create trades table", err)
	}

	_, err = db.Exec(`
		CREATE TABLE historical (
			time_step INTEGER,
			tick_time TEXT,
			price DOUBLE,
			macd DOUBLE,
			signal DOUBLE,
			trend DOUBLE,
			volatility DOUBLE,
			portfolio_value DOUBLE,
			position DOUBLE,
			cash DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to create historical table", err)
	}

	return nil
}

func (w *DuckDBResultWriter) insertTrades(tx *sql.Tx, trades []types.Trade, data types.MarketData) error {
	stmt, err := tx.Prepare(`
		INSERT INTO trades (time_step, tick_time, trade_type, side, price, quantity, fee, pnl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to prepare trades statement", err)
	}
	defer stmt.Close()

	for _, trade := range trades {
		_, err := stmt.Exec(
			trade.TimeStep,
			data.TimestampAt(trade.TimeStep),
			string(trade.Type),
			string(trade.Side),
			trade.Price,
			trade.Quantity,
			trade.Fee,
			trade.PnL,
			trade.Reason,
		)
		if err != nil {
			return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to insert trade", err)
		}
	}

	return nil
}

func (w *DuckDBResultWriter) insertHistorical(tx *sql.Tx, history []types.HistoricalDataPoint, data types.MarketData) error {
	stmt, err := tx.Prepare(`
		INSERT INTO historical (time_step, tick_time, price, macd, signal, trend, volatility, portfolio_value, position, cash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to prepare historical statement", err)
	}
	defer stmt.Close()

	for i, point := range history {
		price := 0.0
		if i < data.Len() {
			price = data.Prices[i]
		}

		_, err := stmt.Exec(
			i,
			data.TimestampAt(i),
			price,
			point.MACD,
			point.Signal,
			point.Trend,
			point.Volatility,
			point.PortfolioValue,
			point.Position,
			point.Cash,
		)
		if err != nil {
			return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to insert historical data point", err)
		}
	}

	return nil
}

func exportParquet(db *sql.DB, table, path string) error {
	_, err := db.Exec(fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, table, strings.ReplaceAll(path, "'", "''")))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeBacktestWriteFailed, err, "failed to export %s to parquet", table)
	}

	return nil
}
