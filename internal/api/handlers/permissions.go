package handlers

import (
	"net/http"

	"appscore-lab/internal/domain/services"
	"appscore-lab/pkg/logger"
)

// PermissionsHandler exposes the dangerous-permission rule table
type PermissionsHandler struct {
	detector     *services.PermissionDetector
	maxBodyBytes int64
	logger       *logger.Logger
}

// NewPermissionsHandler creates a new permissions handler
func NewPermissionsHandler(detector *services.PermissionDetector, maxBodyBytes int64, log *logger.Logger) *PermissionsHandler {
	return &PermissionsHandler{
		detector:     detector,
		maxBodyBytes: maxBodyBytes,
		logger:       log.WithComponent("permissions-handler"),
	}
}

// Rules handles GET /api/v1/permissions/rules
func (h *PermissionsHandler) Rules(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.detector.Rules())
}

// Classify handles POST /api/v1/permissions/classify with a name -> descriptor object
func (h *PermissionsHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var perms map[string]any
	if err := decodeJSON(w, r, h.maxBodyBytes, &perms); err != nil {
		respondError(w, http.StatusBadRequest, "body must be an object of permission name to descriptor")
		return
	}

	dangerous := h.detector.Detect("", perms)
	respondJSON(w, http.StatusOK, map[string]any{
		"dangerous_permissions": dangerous,
		"count":                 len(dangerous),
		"total":                 len(perms),
	})
}
