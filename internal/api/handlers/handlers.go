package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"appscore-lab/internal/domain/services"
	"appscore-lab/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health      *HealthHandler
	Reports     *ReportsHandler
	Score       *ScoreHandler
	Permissions *PermissionsHandler
	Events      *EventsHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Reports      *services.ReportService
	Scorer       *services.Scorer
	Detector     *services.PermissionDetector
	Events       EventSource
	Checks       map[string]Pinger
	Version      string
	MaxBodyBytes int64
	Logger       *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(deps.Checks, deps.Version, deps.Logger),
		Reports:     NewReportsHandler(deps.Reports, deps.MaxBodyBytes, deps.Logger),
		Score:       NewScoreHandler(deps.Scorer, deps.MaxBodyBytes, deps.Logger),
		Permissions: NewPermissionsHandler(deps.Detector, deps.MaxBodyBytes, deps.Logger),
		Events:      NewEventsHandler(deps.Events, deps.Logger),
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps domain errors to status codes
func respondServiceError(w http.ResponseWriter, log *logger.Logger, err error, msg string) {
	var invalid *services.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		respondError(w, http.StatusBadRequest, invalid.Error())
	case errors.Is(err, services.ErrReportNotFound):
		respondError(w, http.StatusNotFound, "report not found")
	case errors.Is(err, services.ErrStorageUnavailable):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.WithError(err).Error().Msg(msg)
		respondError(w, http.StatusInternalServerError, msg)
	}
}

// decodeJSON decodes a request body capped at limit bytes
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dest any) error {
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	return json.NewDecoder(r.Body).Decode(dest)
}
