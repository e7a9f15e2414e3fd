package backtest

import (
	"path/filepath"
	"strings"
)

// getResultFolder lays results out as <root>/<strategy>/<data file>[/<date>].
func getResultFolder(root string, strategyID string, config Config) string {
	folder := filepath.Join(root, strategyID, symbolFromPath(config.DataPath))

	if config.Symbol.IsSome() {
		folder = filepath.Join(folder, config.Symbol.Unwrap())
	}

	if config.Date.IsSome() {
		folder = filepath.Join(folder, config.Date.Unwrap())
	}

	return folder
}

func symbolFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
