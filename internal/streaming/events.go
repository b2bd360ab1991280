package streaming

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"appscore-lab/internal/domain/models"
)

// EventType represents the type of report event
type EventType string

const (
	EventTypeReportBuilt    EventType = "report_built"
	EventTypeReportCompared EventType = "report_compared"
)

// subject roots, all captured by the stream's "reports.>" filter
const (
	subjectRoot     = "reports"
	subjectBuilt    = "built"
	subjectCompared = "compared"
)

// Event is published whenever a report is built or two reports are compared
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// Report details
	ContentHash   string           `json:"content_hash"`
	Package       string           `json:"package,omitempty"`
	Version       string           `json:"version,omitempty"`
	SecurityScore int              `json:"security_score"`
	ScoreMode     models.ScoreMode `json:"score_mode,omitempty"`
	Summary       models.Summary   `json:"summary,omitempty"`
	FindingCount  int              `json:"finding_count,omitempty"`

	// Comparison details
	BaseContentHash  string       `json:"base_content_hash,omitempty"`
	ScoreDelta       int          `json:"score_delta,omitempty"`
	Trend            models.Trend `json:"trend,omitempty"`
	NewFindings      int          `json:"new_findings,omitempty"`
	ResolvedFindings int          `json:"resolved_findings,omitempty"`
	ChangedFindings  int          `json:"changed_findings,omitempty"`
}

// NewReportBuiltEvent creates an event for a freshly built report
func NewReportBuiltEvent(report *models.Report) *Event {
	return &Event{
		ID:            uuid.New().String(),
		Type:          EventTypeReportBuilt,
		Timestamp:     time.Now().UTC(),
		ContentHash:   report.ContentHash,
		Package:       report.AppInfo.Package,
		Version:       report.AppInfo.Version,
		SecurityScore: report.SecurityScore,
		ScoreMode:     report.ScoreMode,
		Summary:       report.Summary,
		FindingCount:  len(report.Findings),
	}
}

// NewReportComparedEvent creates an event for a comparison; the newer report is B
func NewReportComparedEvent(result *models.ComparisonResult) *Event {
	return &Event{
		ID:               uuid.New().String(),
		Type:             EventTypeReportCompared,
		Timestamp:        time.Now().UTC(),
		ContentHash:      result.ReportB.ContentHash,
		Package:          result.ReportB.AppInfo.Package,
		Version:          result.ReportB.AppInfo.Version,
		SecurityScore:    result.ReportB.SecurityScore,
		BaseContentHash:  result.ReportA.ContentHash,
		ScoreDelta:       result.ScoreDelta,
		Trend:            result.Trend,
		NewFindings:      len(result.NewFindings),
		ResolvedFindings: len(result.ResolvedFindings),
		ChangedFindings:  len(result.ChangedSeverityFindings),
	}
}

// Subject returns the NATS subject for the event:
// reports.built.<score_mode> or reports.compared.<trend>
func (e *Event) Subject() string {
	switch e.Type {
	case EventTypeReportBuilt:
		return fmt.Sprintf("%s.%s.%s", subjectRoot, subjectBuilt, orUnknown(string(e.ScoreMode)))
	case EventTypeReportCompared:
		return fmt.Sprintf("%s.%s.%s", subjectRoot, subjectCompared, orUnknown(string(e.Trend)))
	default:
		return fmt.Sprintf("%s.%s", subjectRoot, orUnknown(string(e.Type)))
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
