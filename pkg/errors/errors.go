package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType classifies an error for the HTTP layer
type ErrorType string

const (
	// Caller errors
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeConflict   ErrorType = "CONFLICT"
	ErrorTypeRateLimit  ErrorType = "RATE_LIMIT"

	// Service errors
	ErrorTypeInternal    ErrorType = "INTERNAL"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"

	// Dependency errors
	ErrorTypeDatabase ErrorType = "DATABASE"
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

var statusByType = map[ErrorType]int{
	ErrorTypeValidation:  http.StatusBadRequest,
	ErrorTypeNotFound:    http.StatusNotFound,
	ErrorTypeConflict:    http.StatusConflict,
	ErrorTypeRateLimit:   http.StatusTooManyRequests,
	ErrorTypeInternal:    http.StatusInternalServerError,
	ErrorTypeUnavailable: http.StatusServiceUnavailable,
	ErrorTypeDatabase:    http.StatusInternalServerError,
	ErrorTypeExternal:    http.StatusBadGateway,
}

// Status returns the HTTP status for the type, 500 when unmapped
func (t ErrorType) Status() int {
	if status, ok := statusByType[t]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Retryable reports whether repeating the same request may succeed later
func (t ErrorType) Retryable() bool {
	switch t {
	case ErrorTypeRateLimit, ErrorTypeUnavailable, ErrorTypeDatabase, ErrorTypeExternal:
		return true
	default:
		return false
	}
}

// AppError carries a typed, optionally coded error through the layers
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func newError(t ErrorType, message string) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		HTTPStatus: t.Status(),
		StackTrace: captureStackTrace(),
	}
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode sets the domain code reported to clients
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails replaces the structured details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause records the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace starts at the caller of the exported constructor
func captureStackTrace() string {
	var pcs [32]uintptr
	n := runtime.Callers(4, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return b.String()
}

// NewValidationError is returned for malformed or out-of-range input
func NewValidationError(message string) *AppError {
	return newError(ErrorTypeValidation, message)
}

// NewNotFoundError names the resource that could not be found
func NewNotFoundError(resource string) *AppError {
	return newError(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource))
}

func NewConflictError(message string) *AppError {
	return newError(ErrorTypeConflict, message)
}

func NewInternalError(message string) *AppError {
	return newError(ErrorTypeInternal, message)
}

// NewUnavailableError is returned when a required service is not configured or down
func NewUnavailableError(service string) *AppError {
	return newError(ErrorTypeUnavailable, fmt.Sprintf("service '%s' is unavailable", service))
}

// NewRateLimitError is returned when a caller exceeds its request budget
func NewRateLimitError(key string) *AppError {
	return newError(ErrorTypeRateLimit, fmt.Sprintf("rate limit exceeded for '%s'", key))
}

// NewDatabaseError wraps a failed persistence operation
func NewDatabaseError(operation string, err error) *AppError {
	return newError(ErrorTypeDatabase, fmt.Sprintf("database operation '%s' failed", operation)).
		WithCause(err)
}

// NewExternalError wraps a failed call to an outside service
func NewExternalError(service string, err error) *AppError {
	return newError(ErrorTypeExternal, fmt.Sprintf("external service '%s' error", service)).
		WithCause(err)
}

// GetAppError extracts the first AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

func IsConflict(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// Wrap prefixes an AppError's message, or turns any other error into an
// internal error caused by it.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = message + ": " + appErr.Message
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
