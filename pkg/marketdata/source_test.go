package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

const sampleCSV = `time,symbol,close
2024-01-02 09:32:00,AAPL,101.5
2024-01-02 09:30:00,AAPL,100
2024-01-02 09:31:00,AAPL,101
2024-01-02 09:30:00,MSFT,300
2024-01-03 09:30:00,AAPL,102
`

type DuckDBSourceTestSuite struct {
	suite.Suite
	tempDir string
	csvPath string
	source  Source
}

func TestDuckDBSourceSuite(t *testing.T) {
	suite.Run(t, new(DuckDBSourceTestSuite))
}

func (suite *DuckDBSourceTestSuite) SetupSuite() {
	tempDir, err := os.MkdirTemp("", "duckdb-source-test")
	suite.Require().NoError(err)
	suite.tempDir = tempDir

	suite.csvPath = filepath.Join(tempDir, "AAPL.csv")
	suite.Require().NoError(os.WriteFile(suite.csvPath, []byte(sampleCSV), 0644))
}

func (suite *DuckDBSourceTestSuite) TearDownSuite() {
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func (suite *DuckDBSourceTestSuite) SetupTest() {
	source, err := NewDuckDBSource(logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.source = source
}

func (suite *DuckDBSourceTestSuite) TearDownTest() {
	suite.NoError(suite.source.Close())
}

func (suite *DuckDBSourceTestSuite) TestLoadCSVBySymbol() {
	data, err := suite.source.Load(context.Background(), Query{
		Path:   suite.csvPath,
		Symbol: optional.Some("AAPL"),
	})
	suite.Require().NoError(err)

	suite.Equal("AAPL", data.Symbol)
	suite.Equal([]float64{100, 101, 101.5, 102}, data.Prices)
	suite.Equal([]string{
		"2024-01-02 09:30:00",
		"2024-01-02 09:31:00",
		"2024-01-02 09:32:00",
		"2024-01-03 09:30:00",
	}, data.Timestamps)
	suite.NoError(data.Validate())
}

func (suite *DuckDBSourceTestSuite) TestLoadCSVByDate() {
	data, err := suite.source.Load(context.Background(), Query{
		Path:   suite.csvPath,
		Symbol: optional.Some("AAPL"),
		Date:   optional.Some("2024-01-02"),
	})
	suite.Require().NoError(err)

	suite.Equal([]float64{100, 101, 101.5}, data.Prices)
}

func (suite *DuckDBSourceTestSuite) TestLoadAllSymbols() {
	data, err := suite.source.Load(context.Background(), Query{Path: suite.csvPath})
	suite.Require().NoError(err)

	suite.Equal(5, data.Len())
	suite.Empty(data.Symbol)
}

func (suite *DuckDBSourceTestSuite) TestLoadParquet() {
	parquetPath := filepath.Join(suite.tempDir, "prices.parquet")

	db, err := sql.Open("duckdb", ":memory:")
	suite.Require().NoError(err)
	defer db.Close()

	_, err = db.Exec(fmt.Sprintf("COPY (SELECT * FROM read_csv_auto('%s')) TO '%s' (FORMAT PARQUET)", suite.csvPath, parquetPath))
	suite.Require().NoError(err)

	data, err := suite.source.Load(context.Background(), Query{
		Path:   parquetPath,
		Symbol: optional.Some("MSFT"),
	})
	suite.Require().NoError(err)

	suite.Equal([]float64{300}, data.Prices)
	suite.Equal([]string{"2024-01-02 09:30:00"}, data.Timestamps)
}

func (suite *DuckDBSourceTestSuite) TestLoadErrors() {
	tests := []struct {
		name  string
		query Query
		code  errors.ErrorCode
	}{
		{
			name:  "missing path",
			query: Query{},
			code:  errors.ErrCodeMissingParameter,
		},
		{
			name:  "unsupported format",
			query: Query{Path: filepath.Join(suite.tempDir, "AAPL.json")},
			code:  errors.ErrCodeUnsupportedFormat,
		},
		{
			name:  "missing file",
			query: Query{Path: filepath.Join(suite.tempDir, "TSLA.csv")},
			code:  errors.ErrCodeDataNotFound,
		},
		{
			name:  "invalid date",
			query: Query{Path: suite.csvPath, Date: optional.Some("01/02/2024")},
			code:  errors.ErrCodeInvalidParameter,
		},
		{
			name:  "no rows for symbol",
			query: Query{Path: suite.csvPath, Symbol: optional.Some("GOOG")},
			code:  errors.ErrCodeNoDataFound,
		},
		{
			name:  "no rows for date",
			query: Query{Path: suite.csvPath, Date: optional.Some("2023-12-29")},
			code:  errors.ErrCodeNoDataFound,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := suite.source.Load(context.Background(), tc.query)
			suite.Require().Error(err)
			suite.Equal(tc.code, errors.GetCode(err))
		})
	}
}

func (suite *DuckDBSourceTestSuite) TestLoadCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.source.Load(ctx, Query{Path: suite.csvPath})
	suite.Error(err)
}

func (suite *DuckDBSourceTestSuite) TestResolvePath() {
	path, err := ResolvePath(suite.tempDir, "AAPL")
	suite.Require().NoError(err)
	suite.Equal(suite.csvPath, path)

	parquetPath := filepath.Join(suite.tempDir, "SPY.parquet")
	suite.Require().NoError(os.WriteFile(parquetPath, []byte{}, 0644))
	suite.Require().NoError(os.WriteFile(filepath.Join(suite.tempDir, "SPY.csv"), []byte(sampleCSV), 0644))

	path, err = ResolvePath(suite.tempDir, "SPY")
	suite.Require().NoError(err)
	suite.Equal(parquetPath, path)

	_, err = ResolvePath(suite.tempDir, "QQQ")
	suite.Equal(errors.ErrCodeDataNotFound, errors.GetCode(err))

	_, err = ResolvePath(suite.tempDir, "../AAPL")
	suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))
}

func (suite *DuckDBSourceTestSuite) TestFormats() {
	suite.Equal([]string{"csv", "parquet"}, GetSupportedFormats())

	info, err := GetFormatInfo("data/AAPL.PARQUET")
	suite.Require().NoError(err)
	suite.Equal("parquet", info.Name)

	_, err = GetFormatInfo("data/AAPL")
	suite.Equal(errors.ErrCodeUnsupportedFormat, errors.GetCode(err))
}
