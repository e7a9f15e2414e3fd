package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-playground/validator/v10"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// TimestampLayout is the layout of the timestamps returned by Load.
const TimestampLayout = "2006-01-02 15:04:05"

// DuckDBSource reads csv and parquet files through an in-memory DuckDB.
type DuckDBSource struct {
	db       *sql.DB
	logger   *logger.Logger
	sq       squirrel.StatementBuilderType
	validate *validator.Validate
}

// NewDuckDBSource opens an in-memory DuckDB connection.
func NewDuckDBSource(logger *logger.Logger) (Source, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB connection", err)
	}

	return &DuckDBSource{
		db:       db,
		logger:   logger,
		sq:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		validate: validator.New(),
	}, nil
}

// Load implements Source.
func (d *DuckDBSource) Load(ctx context.Context, query Query) (types.MarketData, error) {
	if err := d.validate.Struct(query); err != nil {
		return types.MarketData{}, errors.Wrap(errors.ErrCodeMissingParameter, "market data path is required", err)
	}

	format, err := GetFormatInfo(query.Path)
	if err != nil {
		return types.MarketData{}, err
	}

	if !fileExists(query.Path) {
		return types.MarketData{}, errors.Newf(errors.ErrCodeDataNotFound, "market data file %s does not exist", query.Path)
	}

	sqlQuery, args, err := d.buildQuery(format, query)
	if err != nil {
		return types.MarketData{}, err
	}

	d.logger.Debug("Loading market data",
		zap.String("path", query.Path),
		zap.String("format", format.Name),
		zap.String("query", sqlQuery),
	)

	rows, err := d.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return types.MarketData{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query %s", query.Path)
	}
	defer rows.Close()

	data := types.MarketData{
		Symbol:     query.Symbol.TakeOr(""),
		Prices:     []float64{},
		Timestamps: []string{},
	}

	for rows.Next() {
		var (
			timestamp string
			price     float64
		)

		if err := rows.Scan(&timestamp, &price); err != nil {
			return types.MarketData{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to scan market data row", err)
		}

		data.Timestamps = append(data.Timestamps, timestamp)
		data.Prices = append(data.Prices, price)
	}

	if err := rows.Err(); err != nil {
		return types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate market data rows", err)
	}

	if data.IsEmpty() {
		return types.MarketData{}, errors.Newf(errors.ErrCodeNoDataFound, "no market data found in %s for symbol %s on %s",
			query.Path, query.Symbol.TakeOr("*"), query.Date.TakeOr("*"))
	}

	d.logger.Debug("Loaded market data", zap.Int("ticks", data.Len()))

	return data, nil
}

func (d *DuckDBSource) buildQuery(format FormatInfo, query Query) (string, []any, error) {
	table := fmt.Sprintf("%s('%s')", format.tableFunction, strings.ReplaceAll(query.Path, "'", "''"))

	builder := d.sq.
		Select(
			"strftime(CAST(time AS TIMESTAMP), '%Y-%m-%d %H:%M:%S') AS ts",
			"CAST(close AS DOUBLE) AS price",
		).
		From(table).
		OrderBy("CAST(time AS TIMESTAMP) ASC")

	if query.Symbol.IsSome() {
		builder = builder.Where(squirrel.Eq{"symbol": query.Symbol.Unwrap()})
	}

	if query.Date.IsSome() {
		date := query.Date.Unwrap()
		if _, err := time.Parse(DateLayout, date); err != nil {
			return "", nil, errors.Newf(errors.ErrCodeInvalidParameter, "invalid date %q, expected YYYY-MM-DD", date)
		}

		builder = builder.Where("strftime(CAST(time AS TIMESTAMP), '%Y-%m-%d') = ?", date)
	}

	sqlQuery, args, err := builder.ToSql()
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build market data query", err)
	}

	return sqlQuery, args, nil
}

// Close implements Source.
func (d *DuckDBSource) Close() error {
	return d.db.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
