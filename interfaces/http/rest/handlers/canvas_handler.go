package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"mindcanvas/application/commands"
	"mindcanvas/application/services"
	"mindcanvas/pkg/errors"
)

// CanvasHandler handles whole-canvas requests.
type CanvasHandler struct {
	base
	service *services.CanvasService
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(service *services.CanvasService, errorHandler *errors.ErrorHandler, logger *zap.Logger) *CanvasHandler {
	return &CanvasHandler{
		base:    base{errors: errorHandler, logger: logger},
		service: service,
	}
}

// GetCanvas handles GET /canvas
func (h *CanvasHandler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.Snapshot())
}

// Generate handles POST /canvas/generate
func (h *CanvasHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var cmd commands.GenerateCommand
	if err := h.decode(r, &cmd); err != nil {
		h.respondError(w, r, err)
		return
	}

	view, err := h.service.GenerateFromText(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// Expand handles POST /canvas/expand
func (h *CanvasHandler) Expand(w http.ResponseWriter, r *http.Request) {
	var cmd commands.ExpandCommand
	if err := h.decode(r, &cmd); err != nil {
		h.respondError(w, r, err)
		return
	}

	view, err := h.service.ExpandSelection(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// Merge handles POST /canvas/merge
func (h *CanvasHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var cmd commands.MergeCommand
	if err := h.decode(r, &cmd); err != nil {
		h.respondError(w, r, err)
		return
	}

	view, err := h.service.MergeGraph(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// Layout handles POST /canvas/layout
func (h *CanvasHandler) Layout(w http.ResponseWriter, r *http.Request) {
	var cmd commands.LayoutCommand
	if r.ContentLength != 0 {
		if err := h.decode(r, &cmd); err != nil {
			h.respondError(w, r, err)
			return
		}
	}

	view, err := h.service.Relayout(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// Import handles POST /canvas/import. The body is an exported canvas file.
func (h *CanvasHandler) Import(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Import(r.Context(), r.Body)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// Export handles GET /canvas/export
func (h *CanvasHandler) Export(w http.ResponseWriter, r *http.Request) {
	// Buffer first so a failed encode can still produce an error response.
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.service.ExportFilename()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("Failed to write export", zap.Error(err))
	}
}

// Clear handles DELETE /canvas
func (h *CanvasHandler) Clear(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Clear(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// Select handles PUT /selection
func (h *CanvasHandler) Select(w http.ResponseWriter, r *http.Request) {
	var cmd commands.SelectCommand
	if err := h.decode(r, &cmd); err != nil {
		h.respondError(w, r, err)
		return
	}

	selected, err := h.service.Select(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"selected": selected,
	})
}
