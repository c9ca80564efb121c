package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeInsufficientData     ErrorCode = 108

	// Data errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 300

	// Backtest errors (400-499)
	ErrCodeBacktestStateNil    ErrorCode = 400
	ErrCodeBacktestInitFailed  ErrorCode = 401
	ErrCodeBacktestNoData      ErrorCode = 402
	ErrCodeBacktestWriteFailed ErrorCode = 403

	// Optimizer errors (500-599)
	ErrCodeTrialFailed ErrorCode = 501
)
