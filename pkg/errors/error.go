// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters and inputs, missing data, type mismatches
//   - Data/Resource errors (200-299): Data not found, query failures, unavailable resources
//   - Indicator errors (300-399): Technical indicator calculation errors
//   - Strategy errors (400-499): Strategy configuration and registry errors
//   - Backtest errors (600-699): Backtest runner and result writing errors
//   - Market data errors (700-799): Market data loading and parsing errors
//
// Two error classes matter to the simulation core. Construction errors
// (ErrCodeInvalidParameter, usually an *InvalidParameterError) are returned by
// strategy and estimator constructors before a run starts. Numeric hazards
// (ErrCodeInvalidInput) are returned by estimators fed NaN or infinite values;
// strategies recover from them locally and keep running.
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Name the offending parameter and the violated constraint
//	err := errors.NewInvalidParameterError("MACDStrategy", "fast_period", "must be smaller than slow_period", 26)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", originalErr)
//
//	// Check error class
//	if errors.IsConstructionError(err) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error or *InvalidParameterError.
// Returns ErrCodeUnknown otherwise.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var p *InvalidParameterError
	if errors.As(err, &p) {
		return ErrCodeInvalidParameter
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InvalidParameterError is returned by constructors when a parameter is outside its domain.
type InvalidParameterError struct {
	Component  string // Constructor that rejected the value, e.g. "GARCHVolatilityEstimator"
	Parameter  string // Offending parameter name
	Constraint string // Human-readable constraint, e.g. "must be positive"
	Value      any    // Rejected value
}

// NewInvalidParameterError creates a new InvalidParameterError.
func NewInvalidParameterError(component, parameter, constraint string, value any) *InvalidParameterError {
	return &InvalidParameterError{
		Component:  component,
		Parameter:  parameter,
		Constraint: constraint,
		Value:      value,
	}
}

// Error implements the error interface.
func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("[%d] %s: %s %s (got %v)", ErrCodeInvalidParameter, e.Component, e.Parameter, e.Constraint, e.Value)
}

// IsConstructionError reports whether err was raised while validating construction parameters.
func IsConstructionError(err error) bool {
	return HasCode(err, ErrCodeInvalidParameter)
}

// IsNumericHazard reports whether err signals an invalid numeric input such as NaN or Inf.
func IsNumericHazard(err error) bool {
	return HasCode(err, ErrCodeInvalidInput)
}
