package finsight

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned when no rows match a filter at all
	ErrNoData = errors.New("no data found")

	// ErrMonthNotFound is returned when a month is absent from a series
	ErrMonthNotFound = errors.New("month not found")

	// ErrInvalidMonth is returned for unparseable month strings
	ErrInvalidMonth = errors.New("invalid month")

	// ErrInvalidInput is returned for out-of-range parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData is returned when a calculation needs more history
	ErrInsufficientData = errors.New("insufficient data")
)

// Error represents a calculation error with a stable code
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}

	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Code == t.Code
}

// notFoundError builds a NotFound error with a human-readable message.
func notFoundError(format string, args ...interface{}) *Error {
	return &Error{
		Code:    "not_found",
		Message: fmt.Sprintf(format, args...),
		Err:     ErrNoData,
	}
}

// monthNotFoundError builds a NotFound error for a missing month.
func monthNotFoundError(format string, args ...interface{}) *Error {
	return &Error{
		Code:    "not_found",
		Message: fmt.Sprintf(format, args...),
		Err:     ErrMonthNotFound,
	}
}

// invalidInputError builds an InvalidInput error.
func invalidInputError(format string, args ...interface{}) *Error {
	return &Error{
		Code:    "invalid_input",
		Message: fmt.Sprintf(format, args...),
		Err:     ErrInvalidInput,
	}
}

// invalidMonthError wraps a month-parsing failure.
func invalidMonthError(err error) *Error {
	return &Error{
		Code:    "invalid_month",
		Message: err.Error(),
		Err:     ErrInvalidMonth,
	}
}

// insufficientDataError builds an InsufficientData error.
func insufficientDataError(format string, args ...interface{}) *Error {
	return &Error{
		Code:    "insufficient_data",
		Message: fmt.Sprintf(format, args...),
		Err:     ErrInsufficientData,
	}
}

// calculationError wraps an unexpected internal failure so nothing escapes
// a calculator as a panic or bare error.
func calculationError(calculation string, err error) *Error {
	return &Error{
		Code:    "calculation_failed",
		Message: fmt.Sprintf("unexpected error in %s: %v", calculation, err),
		Err:     err,
	}
}
