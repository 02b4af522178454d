// Package errors wraps the engine and server sentinel errors into
// AppErrors carrying an HTTP status code, so handlers can report a
// structured diagnostic instead of a bare 500.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kestrelindex/beindex/internal/beindex"
)

var (
	ErrCorpusNotFound  = errors.New("document corpus not found")
	ErrInvalidDocument = errors.New("invalid document")
	ErrIndexNotReady   = errors.New("index not built yet")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInternal        = errors.New("internal error")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the HTTP status a handler should report.
// Build's sentinel errors describe malformed input from the loader, so they
// map to 400; a correctly built index never fails at retrieve time.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrCorpusNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrIndexNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidDocument),
		errors.Is(err, beindex.ErrDocumentIDOverflow),
		errors.Is(err, beindex.ErrConjunctionIndexOverflow),
		errors.Is(err, beindex.ErrDuplicateField),
		errors.Is(err, beindex.ErrUnsupportedValueType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
