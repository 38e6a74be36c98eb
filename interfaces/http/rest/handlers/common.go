// Package handlers contains the HTTP handlers for the canvas API.
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"mindcanvas/pkg/errors"
	"mindcanvas/pkg/utils"
)

// base carries what every handler needs.
type base struct {
	errors *errors.ErrorHandler
	logger *zap.Logger
}

// decode reads a JSON body into dst and validates it.
func (b base) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.NewValidationError("Invalid request body: " + err.Error()).
			WithCode("INVALID_BODY").
			WithCause(err)
	}
	return utils.ValidateStruct(dst)
}

func (b base) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		b.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (b base) respondError(w http.ResponseWriter, r *http.Request, err error) {
	b.errors.Handle(w, r, err)
}
