package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rpattn/cabletrack/internal/domain"
	"github.com/rpattn/cabletrack/internal/repository"

	"github.com/google/uuid"
)

// Handler exposes the read path over HTTP. Routes are registered on a mux by
// RegisterRoutes; each endpoint returns JSON and maps repository.ErrNotFound
// to 404.
type Handler struct {
	service *Service
}

// NewHTTPHandler creates the read-path handler.
func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the snapshot endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /groups/{key}/head", h.head)
	mux.HandleFunc("GET /groups/{key}/uploads", h.uploads)
	mux.HandleFunc("GET /groups/{key}/runs", h.runs)
	mux.HandleFunc("GET /groups/{key}/records", h.headRecords)
	mux.HandleFunc("GET /uploads/{id}/records", h.records)
	mux.HandleFunc("GET /runs/{id}/diff", h.diff)
}

func (h *Handler) head(w http.ResponseWriter, r *http.Request) {
	head, err := h.service.ResolveHead(r.Context(), r.PathValue("key"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, head)
}

func (h *Handler) uploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.service.ListUploads(r.Context(), r.PathValue("key"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uploads)
}

func (h *Handler) runs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid limit: %v", err), http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	runs, err := h.service.ListImportRuns(r.Context(), r.PathValue("key"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) headRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.HeadRecords(r.Context(), r.PathValue("key"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, applyRecordQuery(records, r))
}

func (h *Handler) records(w http.ResponseWriter, r *http.Request) {
	uploadID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid upload id: %v", err), http.StatusBadRequest)
		return
	}

	records, err := h.service.Records(r.Context(), uploadID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, applyRecordQuery(records, r))
}

// applyRecordQuery narrows and orders a record listing from query
// parameters: codePrefix, search, sortBy (attribute key), order (asc|desc).
func applyRecordQuery(records []domain.CableRecord, r *http.Request) []domain.CableRecord {
	query := r.URL.Query()

	filter := domain.RecordFilter{
		CodePrefix: query.Get("codePrefix"),
		TextSearch: query.Get("search"),
	}
	if filter.CodePrefix != "" || filter.TextSearch != "" {
		records = domain.FilterRecords(records, filter)
	}

	// Without explicit ordering the records keep their upload position.
	if sortBy, order := query.Get("sortBy"), query.Get("order"); sortBy != "" || order != "" {
		recordSort := domain.RecordSort{AttributeKey: sortBy}
		if order == "desc" {
			recordSort.Direction = domain.SortDirectionDesc
		}
		domain.SortRecords(records, recordSort)
	}

	return records
}

func (h *Handler) diff(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid run id: %v", err), http.StatusBadRequest)
		return
	}

	diff, err := h.service.GetDiff(r.Context(), runID)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, entry := range diff.Changed {
			_, _ = fmt.Fprintln(w, domain.RenderChange(entry))
		}
		return
	}

	writeJSON(w, http.StatusOK, diff)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
