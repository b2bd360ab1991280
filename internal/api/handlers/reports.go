package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"appscore-lab/internal/domain/models"
	"appscore-lab/internal/domain/services"
	"appscore-lab/pkg/logger"
)

// ReportsHandler handles report build, lookup and comparison requests
type ReportsHandler struct {
	service      *services.ReportService
	maxBodyBytes int64
	logger       *logger.Logger
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(service *services.ReportService, maxBodyBytes int64, log *logger.Logger) *ReportsHandler {
	return &ReportsHandler{
		service:      service,
		maxBodyBytes: maxBodyBytes,
		logger:       log.WithComponent("reports-handler"),
	}
}

// BuildRequest is the body of POST /reports/build
type BuildRequest struct {
	ContentHash string                    `json:"content_hash"`
	Payloads    map[string]map[string]any `json:"payloads"`
}

// CompareRequest is the body of POST /reports/compare
type CompareRequest struct {
	ReportA *models.Report `json:"report_a"`
	ReportB *models.Report `json:"report_b"`
}

// Build handles POST /api/v1/reports/build
func (h *ReportsHandler) Build(w http.ResponseWriter, r *http.Request) {
	var req BuildRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payloads := make(map[models.Tool]map[string]any, len(req.Payloads))
	for name, payload := range req.Payloads {
		tool, ok := models.ParseTool(name)
		if !ok {
			respondError(w, http.StatusBadRequest, "unsupported tool: "+name)
			return
		}
		payloads[tool] = payload
	}

	report, err := h.service.Build(r.Context(), services.BuildInput{
		ContentHash: req.ContentHash,
		Payloads:    payloads,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to build report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// PutPayload handles PUT /api/v1/reports/{hash}/payloads/{tool}
func (h *ReportsHandler) PutPayload(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	tool, ok := models.ParseTool(chi.URLParam(r, "tool"))
	if !ok {
		respondError(w, http.StatusBadRequest, "unsupported tool")
		return
	}

	var payload map[string]any
	if err := decodeJSON(w, r, h.maxBodyBytes, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "payload must be a JSON object")
		return
	}

	if err := h.service.IngestPayload(r.Context(), hash, tool, payload); err != nil {
		respondServiceError(w, h.logger, err, "failed to store payload")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /api/v1/reports/{hash}
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GetReport(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to load report")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Delete handles DELETE /api/v1/reports/{hash}
func (h *ReportsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteReport(r.Context(), chi.URLParam(r, "hash")); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete report")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Invalidate handles DELETE /api/v1/reports/{hash}/cache
func (h *ReportsHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.InvalidateReport(r.Context(), chi.URLParam(r, "hash")); err != nil {
		respondServiceError(w, h.logger, err, "failed to invalidate report")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /api/v1/reports/history/{package}
func (h *ReportsHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := h.service.History(r.Context(), chi.URLParam(r, "package"), limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list report history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"reports": records,
		"count":   len(records),
	})
}

// CompareByHash handles GET /api/v1/reports/compare?a={hash}&b={hash}
func (h *ReportsHandler) CompareByHash(w http.ResponseWriter, r *http.Request) {
	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")
	if a == "" || b == "" {
		respondError(w, http.StatusBadRequest, "query parameters a and b are required")
		return
	}

	result, err := h.service.CompareByHash(r.Context(), a, b)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to compare reports")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Compare handles POST /api/v1/reports/compare
func (h *ReportsHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Compare(r.Context(), req.ReportA, req.ReportB)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to compare reports")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
