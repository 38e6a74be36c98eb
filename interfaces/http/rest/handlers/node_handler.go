package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindcanvas/application/commands"
	"mindcanvas/application/services"
	"mindcanvas/pkg/errors"
)

// NodeHandler handles node-related HTTP requests
type NodeHandler struct {
	base
	service *services.CanvasService
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(service *services.CanvasService, errorHandler *errors.ErrorHandler, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{
		base:    base{errors: errorHandler, logger: logger},
		service: service,
	}
}

// CreateNode handles POST /nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var cmd commands.AddNodeCommand
	if err := h.decode(r, &cmd); err != nil {
		h.respondError(w, r, err)
		return
	}

	node, err := h.service.AddNode(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, node)
}

// UpdateNode handles PATCH /nodes/{nodeID}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	cmd := commands.UpdateNodeCommand{NodeID: chi.URLParam(r, "nodeID")}
	if err := h.decode(r, &cmd); err != nil {
		h.respondError(w, r, err)
		return
	}

	node, err := h.service.UpdateNode(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, node)
}

// MoveNode handles PUT /nodes/{nodeID}/position
func (h *NodeHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	cmd := commands.MoveNodeCommand{NodeID: chi.URLParam(r, "nodeID")}
	if err := h.decode(r, &cmd); err != nil {
		h.respondError(w, r, err)
		return
	}

	node, err := h.service.MoveNode(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, node)
}

// DeleteNode handles DELETE /nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteNode(r.Context(), chi.URLParam(r, "nodeID")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
