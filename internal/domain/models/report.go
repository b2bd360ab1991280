package models

import (
	"encoding/json"
	"time"
)

// ScoreMode records which score entry point produced a report's score
type ScoreMode string

const (
	ScoreModeRich    ScoreMode = "rich"
	ScoreModeSummary ScoreMode = "summary"
)

// Report is the unified, scored aggregate of all tool findings for one artifact.
// It carries no timestamps or generated IDs so that rebuilding from the same
// payloads produces identical JSON.
type Report struct {
	ContentHash      string        `json:"content_hash"`
	AppInfo          AppInfo       `json:"app_info"`
	ToolAvailability map[Tool]bool `json:"tool_availability"`
	Summary          Summary       `json:"summary"`
	Findings         []Finding     `json:"findings"`

	// Serialized as both securityScore and security_score
	SecurityScore int `json:"-"`

	ScoreMode         ScoreMode          `json:"score_mode"`
	ScoreInput        *ScoreInput        `json:"score_input,omitempty"`
	SummaryScoreInput *SummaryScoreInput `json:"summary_score_input,omitempty"`

	SecureCount          int                     `json:"secure_count"`
	DangerousPermissions []DangerousPermission   `json:"dangerous_permissions"`
	BinaryHardening      []Finding               `json:"binary_hardening"`
	RawPayloads          map[Tool]map[string]any `json:"raw_payloads,omitempty"`
}

type reportAlias Report

// MarshalJSON exposes the score under both keys older consumers read
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		reportAlias
		SecurityScoreCamel int `json:"securityScore"`
		SecurityScoreSnake int `json:"security_score"`
	}{
		reportAlias:        reportAlias(r),
		SecurityScoreCamel: r.SecurityScore,
		SecurityScoreSnake: r.SecurityScore,
	})
}

// UnmarshalJSON accepts either score key, preferring security_score
func (r *Report) UnmarshalJSON(data []byte) error {
	aux := struct {
		*reportAlias
		SecurityScoreCamel *int `json:"securityScore"`
		SecurityScoreSnake *int `json:"security_score"`
	}{reportAlias: (*reportAlias)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch {
	case aux.SecurityScoreSnake != nil:
		r.SecurityScore = *aux.SecurityScoreSnake
	case aux.SecurityScoreCamel != nil:
		r.SecurityScore = *aux.SecurityScoreCamel
	}
	return nil
}

// AvailableTools returns the tools that contributed a payload, in canonical order
func (r *Report) AvailableTools() []Tool {
	tools := make([]Tool, 0, len(r.ToolAvailability))
	for _, t := range AllTools() {
		if r.ToolAvailability[t] {
			tools = append(tools, t)
		}
	}
	return tools
}

// ReportRef is the slim view of a report embedded in comparisons and history listings
type ReportRef struct {
	ContentHash   string  `json:"content_hash"`
	AppInfo       AppInfo `json:"app_info"`
	SecurityScore int     `json:"security_score"`
}

// Ref returns the report's reference view
func (r *Report) Ref() ReportRef {
	return ReportRef{
		ContentHash:   r.ContentHash,
		AppInfo:       r.AppInfo,
		SecurityScore: r.SecurityScore,
	}
}

// ReportRecord is one stored entry in a package's report history
type ReportRecord struct {
	ContentHash   string    `json:"content_hash"`
	AppInfo       AppInfo   `json:"app_info"`
	SecurityScore int       `json:"security_score"`
	ScoreMode     ScoreMode `json:"score_mode"`
	Summary       Summary   `json:"summary"`
	FindingCount  int       `json:"finding_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Record returns the history entry for the report, stamped at createdAt
func (r *Report) Record(createdAt time.Time) ReportRecord {
	return ReportRecord{
		ContentHash:   r.ContentHash,
		AppInfo:       r.AppInfo,
		SecurityScore: r.SecurityScore,
		ScoreMode:     r.ScoreMode,
		Summary:       r.Summary,
		FindingCount:  len(r.Findings),
		CreatedAt:     createdAt,
	}
}
