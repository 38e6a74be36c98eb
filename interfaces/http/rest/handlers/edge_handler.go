package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindcanvas/application/commands"
	"mindcanvas/application/services"
	"mindcanvas/pkg/errors"
)

// EdgeHandler handles edge-related HTTP requests
type EdgeHandler struct {
	base
	service *services.CanvasService
}

// NewEdgeHandler creates a new edge handler
func NewEdgeHandler(service *services.CanvasService, errorHandler *errors.ErrorHandler, logger *zap.Logger) *EdgeHandler {
	return &EdgeHandler{
		base:    base{errors: errorHandler, logger: logger},
		service: service,
	}
}

// CreateEdge handles POST /edges
func (h *EdgeHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var cmd commands.ConnectCommand
	if err := h.decode(r, &cmd); err != nil {
		h.respondError(w, r, err)
		return
	}

	edge, err := h.service.Connect(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, edge)
}

// DeleteEdge handles DELETE /edges/{edgeID}
func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteEdge(r.Context(), chi.URLParam(r, "edgeID")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
