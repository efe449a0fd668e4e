package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rpattn/cabletrack/internal/domain"
	"github.com/rpattn/cabletrack/internal/tabular"
)

// Handler exposes ingestion as an HTTP endpoint.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with a POST endpoint accepting a
// multipart spreadsheet upload plus the group metadata form fields.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		return
	}

	records, err := tabular.ParseRecords(header.Filename, payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := Request{
		Group: domain.GroupMetadata{
			ExplicitKey:    strings.TrimSpace(r.FormValue("groupKey")),
			ProjectCode:    strings.TrimSpace(r.FormValue("projectCode")),
			ContractCode:   strings.TrimSpace(r.FormValue("contractCode")),
			SubProjectCode: strings.TrimSpace(r.FormValue("subProjectCode")),
		},
		Records:     records,
		SourceLabel: header.Filename,
		ActorID:     strings.TrimSpace(r.FormValue("actorId")),
	}

	run, err := h.service.Ingest(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), statusForIngestError(err))
		return
	}

	writeJSON(w, http.StatusOK, run)
}

func statusForIngestError(err error) int {
	switch {
	case errors.Is(err, ErrEmptyGroupMetadata), errors.Is(err, ErrInvalidRecords), errors.Is(err, domain.ErrDuplicateCode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
