package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidInput         ErrorCode = 102
	ErrCodeInvalidType          ErrorCode = 107
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeMarketDataRequired   ErrorCode = 119

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNoDataFound           ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 302

	// Strategy errors (400-499)
	ErrCodeStrategyConfigError        ErrorCode = 401
	ErrCodeUnsupportedStrategy        ErrorCode = 403
	ErrCodeStrategyAlreadyRegistered  ErrorCode = 405
	ErrCodeStrategyFactoryUnavailable ErrorCode = 406

	// Backtest errors (600-699)
	ErrCodeBacktestInitFailed    ErrorCode = 601
	ErrCodeBacktestConfigError   ErrorCode = 602
	ErrCodeBacktestDataPathError ErrorCode = 603
	ErrCodeBacktestNoStrategies  ErrorCode = 604
	ErrCodeBacktestNoResultsDir  ErrorCode = 607
	ErrCodeBacktestWriteFailed   ErrorCode = 609

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeUnsupportedFormat     ErrorCode = 705
)
