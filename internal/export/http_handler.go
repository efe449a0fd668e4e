package export

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/rpattn/cabletrack/internal/repository"

	"github.com/google/uuid"
)

// Handler serves a snapshot as a downloadable workbook.
type Handler struct {
	service *Service
}

// NewHTTPHandler creates the export handler.
func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the export endpoint to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /uploads/{id}/export", h.export)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	uploadID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid upload id: %v", err), http.StatusBadRequest)
		return
	}

	// Buffer the workbook so a mid-write failure never leaks a torn download.
	var buf bytes.Buffer
	if err := h.service.WriteXLSX(r.Context(), uploadID, &buf); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", uploadID.String()+".xlsx"))
	_, _ = buf.WriteTo(w)
}
