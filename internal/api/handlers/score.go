package handlers

import (
	"net/http"

	"appscore-lab/internal/domain/models"
	"appscore-lab/internal/domain/services"
	"appscore-lab/pkg/logger"
)

// ScoreHandler exposes the two score entry points for what-if scoring
type ScoreHandler struct {
	scorer       *services.Scorer
	maxBodyBytes int64
	logger       *logger.Logger
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scorer *services.Scorer, maxBodyBytes int64, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		scorer:       scorer,
		maxBodyBytes: maxBodyBytes,
		logger:       log.WithComponent("score-handler"),
	}
}

// ScoreResponse carries the score under both wire keys
type ScoreResponse struct {
	SecurityScore      int              `json:"security_score"`
	SecurityScoreCamel int              `json:"securityScore"`
	ScoreMode          models.ScoreMode `json:"score_mode"`
}

func newScoreResponse(score int, mode models.ScoreMode) ScoreResponse {
	return ScoreResponse{SecurityScore: score, SecurityScoreCamel: score, ScoreMode: mode}
}

// Rich handles POST /api/v1/score/rich
func (h *ScoreHandler) Rich(w http.ResponseWriter, r *http.Request) {
	var in models.ScoreInput
	if err := decodeJSON(w, r, h.maxBodyBytes, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	score, err := h.scorer.Rich(in)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to compute score")
		return
	}
	respondJSON(w, http.StatusOK, newScoreResponse(score, models.ScoreModeRich))
}

// Summary handles POST /api/v1/score/summary
func (h *ScoreHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var in models.SummaryScoreInput
	if err := decodeJSON(w, r, h.maxBodyBytes, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	score, err := h.scorer.Summary(in)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to compute score")
		return
	}
	respondJSON(w, http.StatusOK, newScoreResponse(score, models.ScoreModeSummary))
}
