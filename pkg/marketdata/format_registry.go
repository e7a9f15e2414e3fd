package marketdata

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// FormatType is a supported market data file format.
type FormatType string

const (
	FormatCSV     FormatType = "csv"
	FormatParquet FormatType = "parquet"
)

// FormatInfo contains metadata about a file format.
type FormatInfo struct {
	Name        string `json:"name"`
	Extension   string `json:"extension"`
	Description string `json:"description"`
	// tableFunction is the DuckDB table function reading the format
	tableFunction string
}

// formatRegistry holds metadata about all supported formats.
var formatRegistry = map[FormatType]FormatInfo{
	FormatCSV: {
		Name:          string(FormatCSV),
		Extension:     ".csv",
		Description:   "Comma separated values with a header row, column types are detected automatically",
		tableFunction: "read_csv_auto",
	},
	FormatParquet: {
		Name:          string(FormatParquet),
		Extension:     ".parquet",
		Description:   "Apache Parquet file as written by the result writer or other tooling",
		tableFunction: "read_parquet",
	},
}

// GetSupportedFormats returns the names of all supported formats, sorted.
func GetSupportedFormats() []string {
	formats := make([]string, 0, len(formatRegistry))
	for format := range formatRegistry {
		formats = append(formats, string(format))
	}

	sort.Strings(formats)

	return formats
}

// GetFormatInfo returns the format of a file from its extension.
func GetFormatInfo(path string) (FormatInfo, error) {
	extension := strings.ToLower(filepath.Ext(path))

	for _, info := range formatRegistry {
		if info.Extension == extension {
			return info, nil
		}
	}

	return FormatInfo{}, errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported market data format %q, expected one of %v", extension, GetSupportedFormats())
}

// ResolvePath finds the data file of symbol in dir, preferring parquet over csv.
func ResolvePath(dir, symbol string) (string, error) {
	if symbol == "" || strings.ContainsAny(symbol, `/\`) || strings.Contains(symbol, "..") {
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "invalid symbol %q", symbol)
	}

	for _, format := range []FormatType{FormatParquet, FormatCSV} {
		candidate := filepath.Join(dir, symbol+formatRegistry[format].Extension)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeDataNotFound, "no market data file for symbol %s in %s", symbol, dir)
}
