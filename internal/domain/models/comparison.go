package models

// Trend labels the direction of a score change between two reports
type Trend string

const (
	TrendImproved  Trend = "improved"
	TrendRegressed Trend = "regressed"
	TrendUnchanged Trend = "unchanged"
)

// TrendFromDelta maps a score delta (B - A) to a trend label
func TrendFromDelta(delta int) Trend {
	switch {
	case delta > 0:
		return TrendImproved
	case delta < 0:
		return TrendRegressed
	default:
		return TrendUnchanged
	}
}

// SeverityChange is a finding present in both reports with a different severity
type SeverityChange struct {
	Tool        Tool     `json:"tool"`
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	OldSeverity Severity `json:"old_severity"`
	NewSeverity Severity `json:"new_severity"`
}

// ComparisonResult is the structural diff of two reports. It is always
// recomputable from the two reports and is never the source of truth.
type ComparisonResult struct {
	ReportA                 ReportRef        `json:"report_a"`
	ReportB                 ReportRef        `json:"report_b"`
	NewFindings             []Finding        `json:"new_findings"`
	ResolvedFindings        []Finding        `json:"resolved_findings"`
	ChangedSeverityFindings []SeverityChange `json:"changed_severity_findings"`
	ScoreDelta              int              `json:"score_delta"`
	SummaryDelta            map[Severity]int `json:"summary_delta"`
	Trend                   Trend            `json:"trend"`
}
