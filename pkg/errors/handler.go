package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Fields    map[string][]string    `json:"fields,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorHandler writes errors as ErrorResponse bodies and logs them.
type ErrorHandler struct {
	logger *zap.Logger
	// debug exposes stack traces and unclassified messages to clients.
	debug bool
}

func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle reports err. A nil error writes nothing.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	status, resp := h.describe(err)
	resp.RequestID = middleware.GetReqID(r.Context())

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("requestID", resp.RequestID),
	}
	if resp.Code != "" {
		fields = append(fields, zap.String("errorCode", resp.Code))
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(resp.Message, append(fields, zap.Error(err))...)
	} else {
		h.logger.Warn(resp.Message, fields...)
	}

	h.write(w, status, resp)
}

// HandleStatus reports a failure that has no error value, such as an
// unknown route.
func (h *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.logger.Warn("HTTP error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	)
	h.write(w, status, ErrorResponse{
		Error:     true,
		Type:      string(typeForStatus(status)),
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func (h *ErrorHandler) describe(err error) (int, ErrorResponse) {
	var (
		valErrs *ValidationErrors
		domErr  *DomainError
		appErr  *AppError
	)

	switch {
	case errors.As(err, &valErrs):
		return http.StatusBadRequest, ErrorResponse{
			Error:   true,
			Type:    string(DomainValidationError),
			Message: valErrs.Error(),
			Code:    "VALIDATION_FAILED",
			Fields:  valErrs.ToMap(),
		}

	case errors.As(err, &domErr):
		return orInternal(domErr.StatusCode), ErrorResponse{
			Error:   true,
			Type:    string(domErr.Type),
			Message: domErr.Message,
			Code:    domErr.Code,
			Details: domErr.Details,
		}

	case errors.As(err, &appErr):
		resp := ErrorResponse{
			Error:   true,
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		}
		if h.debug && appErr.StackTrace != "" {
			details := make(map[string]interface{}, len(appErr.Details)+1)
			for k, v := range appErr.Details {
				details[k] = v
			}
			details["stack_trace"] = appErr.StackTrace
			resp.Details = details
		}
		return orInternal(appErr.HTTPStatus), resp
	}

	resp := ErrorResponse{
		Error:   true,
		Type:    string(ErrorTypeInternal),
		Message: "An internal error occurred",
	}
	if h.debug {
		resp.Message = err.Error()
	}
	return http.StatusInternalServerError, resp
}

func (h *ErrorHandler) write(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

func orInternal(status int) int {
	if status == 0 {
		return http.StatusInternalServerError
	}
	return status
}

func typeForStatus(status int) ErrorType {
	for t, s := range statusByType {
		if s == status && t != ErrorTypeStorage {
			return t
		}
	}
	if status == http.StatusRequestEntityTooLarge || status == http.StatusMethodNotAllowed {
		return ErrorTypeValidation
	}
	return ErrorTypeInternal
}
