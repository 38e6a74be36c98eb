// Package errors classifies failures so each transport can report them the
// same way. AppError covers application and infrastructure failures,
// DomainError covers canvas rules.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType is the broad category of an AppError.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "VALIDATION"
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeConflict    ErrorType = "CONFLICT"
	ErrorTypeInternal    ErrorType = "INTERNAL"
	ErrorTypeTimeout     ErrorType = "TIMEOUT"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrorTypeStorage     ErrorType = "STORAGE"
	// ErrorTypeExternal is a failure reported by the generation service.
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

var statusByType = map[ErrorType]int{
	ErrorTypeValidation:  http.StatusBadRequest,
	ErrorTypeNotFound:    http.StatusNotFound,
	ErrorTypeConflict:    http.StatusConflict,
	ErrorTypeInternal:    http.StatusInternalServerError,
	ErrorTypeTimeout:     http.StatusGatewayTimeout,
	ErrorTypeUnavailable: http.StatusServiceUnavailable,
	ErrorTypeStorage:     http.StatusInternalServerError,
	ErrorTypeExternal:    http.StatusBadGateway,
}

// AppError is a typed failure with the HTTP status it maps to.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func newAppError(t ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		Cause:      cause,
		HTTPStatus: statusByType[t],
		StackTrace: callers(4),
	}
}

func (e *AppError) Error() string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(string(e.Type)))
	if e.Code != "" {
		sb.WriteString("/" + e.Code)
	}
	sb.WriteString(": " + e.Message)
	if e.Cause != nil {
		sb.WriteString(": " + e.Cause.Error())
	}
	return sb.String()
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode sets a machine readable code such as "TEXT_REQUIRED".
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails replaces the details reported to clients.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithDetail adds one detail.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// callers renders the stack above the constructor, one frame per line.
func callers(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return sb.String()
}

// NewValidationError reports bad input.
func NewValidationError(message string) *AppError {
	return newAppError(ErrorTypeValidation, message, nil)
}

func NewInternalError(message string) *AppError {
	return newAppError(ErrorTypeInternal, message, nil)
}

// NewTimeoutError reports an operation that ran past its deadline.
func NewTimeoutError(operation string) *AppError {
	return newAppError(ErrorTypeTimeout, fmt.Sprintf("%s timed out", operation), nil)
}

// NewUnavailableError reports a dependency that cannot serve requests,
// either unconfigured or tripped open.
func NewUnavailableError(service string) *AppError {
	return newAppError(ErrorTypeUnavailable, fmt.Sprintf("%s is unavailable", service), nil)
}

// NewStorageError wraps a failure of the autosave store or a file.
func NewStorageError(operation string, err error) *AppError {
	return newAppError(ErrorTypeStorage, fmt.Sprintf("%s failed", operation), err)
}

// NewExternalError wraps an unusable response from service.
func NewExternalError(service string, err error) *AppError {
	return newAppError(ErrorTypeExternal, fmt.Sprintf("%s returned an error", service), err)
}

// GetAppError returns the first AppError in err's chain, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func IsAppError(err error) bool {
	return GetAppError(err) != nil
}

// IsType reports whether err's chain holds an AppError of type t.
func IsType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}
