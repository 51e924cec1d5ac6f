// Package errors defines the application error contract shared by the
// query service and the HTTP delivery layer.
package errors

import (
	"net/http"

	"bertron/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails returns a copy of the error with detailed information attached
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// ErrEntityNotFound is returned when no stored entity matches the
	// requested logical id.
	ErrEntityNotFound = NewBaseError(
		http.StatusNotFound,
		"ENTITY_NOT_FOUND",
		"Entity not found",
		"",
	)

	// ErrCollectionNotFound distinguishes "collection never created" (a
	// setup error: the ingest job has not run) from an empty collection,
	// which is a valid zero-count result.
	ErrCollectionNotFound = NewBaseError(
		http.StatusNotFound,
		"COLLECTION_NOT_FOUND",
		"Entity collection not found; has the ingest job been run?",
		"",
	)

	// ErrInvalidFilter is returned for malformed structured filters, e.g.
	// unparsable filter_json on the geo endpoints.
	ErrInvalidFilter = NewBaseError(
		http.StatusBadRequest,
		"INVALID_FILTER",
		"Malformed filter document",
		"",
	)

	// ErrInvalidBoundingBox rejects boxes whose southwest corner is not
	// strictly south-west of the northeast corner. Boxes wrapping the
	// antimeridian or poles are not supported.
	ErrInvalidBoundingBox = NewBaseError(
		http.StatusBadRequest,
		"INVALID_BOUNDING_BOX",
		"Southwest latitude/longitude must be less than northeast latitude/longitude",
		"",
	)

	// ErrEntityCorrupt covers stored documents that no longer satisfy the
	// canonical model on read.
	ErrEntityCorrupt = NewBaseError(
		http.StatusInternalServerError,
		"ENTITY_CORRUPT",
		"Stored document does not satisfy the entity model",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)
)

// QueryError wraps an unexpected store failure during a query. The underlying
// message is echoed to the caller for diagnosability; stack traces are not.
type QueryError struct {
	err error
}

// NewQueryError creates a query-related error
func NewQueryError(err error) AppError {
	return &QueryError{err: err}
}

// Error implements the error interface
func (e *QueryError) Error() string {
	return errors.Wrap(e.err, "query failed").Error()
}

// Unwrap exposes the underlying store error.
func (e *QueryError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *QueryError) HTTPCode() int {
	return http.StatusBadRequest
}

// ErrorCode returns the business error code
func (e *QueryError) ErrorCode() string {
	return "QUERY_ERROR"
}

// Message returns the user-friendly error message
func (e *QueryError) Message() string {
	return "Query error: " + e.err.Error()
}

// Details returns detailed error information
func (e *QueryError) Details() string {
	return e.err.Error()
}
