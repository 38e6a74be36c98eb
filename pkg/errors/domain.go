package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// DomainErrorType says which canvas rule was broken.
type DomainErrorType string

const (
	// DomainValidationError is malformed input: a bad graph, file or field.
	DomainValidationError DomainErrorType = "VALIDATION_ERROR"
	// DomainBusinessRuleError is well formed input the canvas refuses.
	DomainBusinessRuleError DomainErrorType = "BUSINESS_RULE_ERROR"
	DomainNotFoundError     DomainErrorType = "NOT_FOUND"
)

// DomainError is a canvas rule violation. Package level values are
// sentinels: compare them with errors.Is and call New before adding details.
type DomainError struct {
	Type       DomainErrorType        `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StatusCode int                    `json:"status_code"`
}

// NewDomainError declares a sentinel.
func NewDomainError(t DomainErrorType, code, message string) *DomainError {
	status := http.StatusInternalServerError
	switch t {
	case DomainValidationError:
		status = http.StatusBadRequest
	case DomainBusinessRuleError:
		status = http.StatusUnprocessableEntity
	case DomainNotFoundError:
		status = http.StatusNotFound
	}
	return &DomainError{
		Type:       t,
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		StatusCode: status,
	}
}

// New copies the sentinel.
func (e *DomainError) New() *DomainError {
	return &DomainError{
		Type:       e.Type,
		Code:       e.Code,
		Message:    e.Message,
		Details:    make(map[string]interface{}),
		StatusCode: e.StatusCode,
	}
}

func (e *DomainError) Error() string {
	msg := e.Code + ": " + e.Message
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	e.Details[key] = value
	return e
}

// Is matches any error with the same type and code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Type == t.Type && e.Code == t.Code
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// ValidationErrors collects every problem found in one input.
type ValidationErrors struct {
	Errors []*DomainError `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make([]*DomainError, 0)}
}

// Add records a problem with a single field.
func (v *ValidationErrors) Add(field, message string) {
	v.AddError(NewDomainError(DomainValidationError, "FIELD_VALIDATION_ERROR", message).
		WithDetail("field", field))
}

func (v *ValidationErrors) AddError(err *DomainError) {
	v.Errors = append(v.Errors, err)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Is lets errors.Is find a sentinel among the collected errors.
func (v *ValidationErrors) Is(target error) bool {
	for _, err := range v.Errors {
		if err.Is(target) {
			return true
		}
	}
	return false
}

// ToMap groups messages by their "field" detail. Errors without one go
// under "general".
func (v *ValidationErrors) ToMap() map[string][]string {
	result := make(map[string][]string)
	for _, err := range v.Errors {
		field, ok := err.Details["field"].(string)
		if !ok {
			field = "general"
		}
		result[field] = append(result[field], err.Message)
	}
	return result
}
