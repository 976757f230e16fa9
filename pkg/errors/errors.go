// Package errors provides structured error types for crmmap.
//
// Error codes let the CLI, the HTTP API and the interactive explorer react to
// a failed layout pass without string matching:
//   - INVALID_*: the caller supplied something the engine rejects
//   - NOT_FOUND: a company snapshot does not exist in the source
//   - SOLVER_*: the external layered-graph solver failed or was incomplete
//   - TIMEOUT: a caller-imposed deadline expired
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidHierarchy, "project %s references unknown client %s", p, c)
//	if errors.Is(err, errors.ErrCodeInvalidHierarchy) {
//	    // reject the snapshot, keep the previous layout
//	}
//
//	err := errors.Wrap(errors.ErrCodeSolverFailed, cause, "tree layout")
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput         Code = "INVALID_INPUT"
	ErrCodeInvalidHierarchy     Code = "INVALID_HIERARCHY"
	ErrCodeInvalidStrategy      Code = "INVALID_STRATEGY"
	ErrCodeInvalidConnectorMode Code = "INVALID_CONNECTOR_MODE"
	ErrCodeInvalidDensityMode   Code = "INVALID_DENSITY_MODE"
	ErrCodeInvalidConfig        Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat        Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Solver errors
	ErrCodeSolverFailed     Code = "SOLVER_FAILED"
	ErrCodeSolverIncomplete Code = "SOLVER_INCOMPLETE"
	ErrCodeTimeout          Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with the given code.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an error with the given code whose cause is err.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// Is reports whether GetCode(err) is code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage strips the code prefix and cause from coded errors. Other
// errors are returned as their Error string.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidHierarchy, ErrCodeInvalidStrategy,
		ErrCodeInvalidConnectorMode, ErrCodeInvalidDensityMode, ErrCodeInvalidConfig,
		ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeSolverFailed, ErrCodeSolverIncomplete:
		return http.StatusBadGateway
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
