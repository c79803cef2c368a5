package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Code classifies a QueryError
type Code string

const (
	InvalidColumn     Code = "INVALID_COLUMN"
	TypeMismatch      Code = "TYPE_MISMATCH"
	InitError         Code = "INIT_ERROR"
	ExecutionError    Code = "EXECUTION_ERROR"
	InvalidQuery      Code = "INVALID_QUERY"
	FileNotFound      Code = "FILE_NOT_FOUND"
	InvalidFileFormat Code = "INVALID_FILE_FORMAT"

	// RateLimited is produced by the TCP server only
	RateLimited Code = "RATE_LIMITED"
)

// QueryError is the single error type surfaced by the query engine.
// Cause holds the underlying failure, if any, and is reachable via errors.Unwrap.
type QueryError struct {
	Code    Code   // discriminating code
	Message string // human-readable explanation
	Cause   error  // wrapped failure (may be nil)
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Description())
}

// Description is the error text without the code prefix
func (e *QueryError) Description() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a QueryError with the same code.
// A target with an empty code matches any QueryError.
func (e *QueryError) Is(target error) bool {
	t, ok := target.(*QueryError)
	if !ok {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

func New(code Code, format string, args ...any) *QueryError {
	return &QueryError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func Wrap(code Code, cause error, format string, args ...any) *QueryError {
	return &QueryError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

func NewInvalidColumn(column string) *QueryError {
	return New(InvalidColumn, "column %q does not exist", column)
}

func NewTypeMismatch(column, expected, actual string) *QueryError {
	return New(TypeMismatch, "type mismatch on %q: expected %s, got %s", column, expected, actual)
}

func NewInvalidQuery(format string, args ...any) *QueryError {
	return New(InvalidQuery, format, args...)
}

// CodeOf returns the code of the first QueryError in err's chain,
// or an empty code when there is none.
func CodeOf(err error) Code {
	var qe *QueryError
	if stderrors.As(err, &qe) {
		return qe.Code
	}
	return ""
}

// HasCode reports whether err's chain carries a QueryError with the given code.
func HasCode(err error, code Code) bool {
	return stderrors.Is(err, &QueryError{Code: code})
}

// Normalize converts any error into a *QueryError. Errors that already carry a
// QueryError are returned as that QueryError; anything else becomes fallback.
func Normalize(err error, fallback Code) *QueryError {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if stderrors.As(err, &qe) {
		return qe
	}
	return &QueryError{Code: fallback, Cause: err}
}
