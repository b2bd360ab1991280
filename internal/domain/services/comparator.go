package services

import (
	"fmt"

	"appscore-lab/internal/domain/models"
	"appscore-lab/internal/metrics"
	"appscore-lab/pkg/logger"
)

// CompareReports diffs two reports by finding identity (tool, category, title).
// Duplicate identities collapse to their first occurrence. Neither input is modified.
func CompareReports(a, b *models.Report) (*models.ComparisonResult, error) {
	if a == nil {
		return nil, &InvalidInputError{Field: "report_a", Reason: "report is required"}
	}
	if b == nil {
		return nil, &InvalidInputError{Field: "report_b", Reason: "report is required"}
	}
	if err := validateSeverities("report_a", a.Findings); err != nil {
		return nil, err
	}
	if err := validateSeverities("report_b", b.Findings); err != nil {
		return nil, err
	}

	aIndex, aOrder := indexFindings(a.Findings)
	bIndex, bOrder := indexFindings(b.Findings)

	result := &models.ComparisonResult{
		ReportA:                 a.Ref(),
		ReportB:                 b.Ref(),
		NewFindings:             make([]models.Finding, 0),
		ResolvedFindings:        make([]models.Finding, 0),
		ChangedSeverityFindings: make([]models.SeverityChange, 0),
		ScoreDelta:              b.SecurityScore - a.SecurityScore,
		SummaryDelta:            make(map[models.Severity]int, len(models.AllSeverities())),
	}

	for _, id := range bOrder {
		newer := bIndex[id]
		older, ok := aIndex[id]
		if !ok {
			result.NewFindings = append(result.NewFindings, newer)
			continue
		}
		if older.Severity != newer.Severity {
			result.ChangedSeverityFindings = append(result.ChangedSeverityFindings, models.SeverityChange{
				Tool:        id.Tool,
				Category:    id.Category,
				Title:       id.Title,
				OldSeverity: older.Severity,
				NewSeverity: newer.Severity,
			})
		}
	}

	for _, id := range aOrder {
		if _, ok := bIndex[id]; !ok {
			result.ResolvedFindings = append(result.ResolvedFindings, aIndex[id])
		}
	}

	for _, sev := range models.AllSeverities() {
		result.SummaryDelta[sev] = b.Summary[sev] - a.Summary[sev]
	}
	result.Trend = models.TrendFromDelta(result.ScoreDelta)

	return result, nil
}

// validateSeverities rejects findings whose severity is not a canonical wire value
func validateSeverities(field string, findings []models.Finding) error {
	for i, f := range findings {
		if _, ok := models.ParseSeverity(string(f.Severity)); !ok {
			return &InvalidInputError{
				Field:  fmt.Sprintf("%s.findings[%d].severity", field, i),
				Value:  string(f.Severity),
				Reason: "must be one of critical, high, medium, low, info",
			}
		}
	}
	return nil
}

func indexFindings(findings []models.Finding) (map[models.FindingIdentity]models.Finding, []models.FindingIdentity) {
	index := make(map[models.FindingIdentity]models.Finding, len(findings))
	order := make([]models.FindingIdentity, 0, len(findings))
	for _, f := range findings {
		id := f.Identity()
		if _, seen := index[id]; seen {
			continue
		}
		index[id] = f
		order = append(order, id)
	}
	return index, order
}

// Comparator wraps CompareReports with logging and metrics
type Comparator struct {
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewComparator creates a new Comparator; m may be nil
func NewComparator(log *logger.Logger, m *metrics.Metrics) *Comparator {
	return &Comparator{
		logger:  log.WithComponent("comparator"),
		metrics: m,
	}
}

// Compare diffs a against b
func (c *Comparator) Compare(a, b *models.Report) (*models.ComparisonResult, error) {
	result, err := CompareReports(a, b)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("report_a", result.ReportA.ContentHash).
		Str("report_b", result.ReportB.ContentHash).
		Int("new", len(result.NewFindings)).
		Int("resolved", len(result.ResolvedFindings)).
		Int("changed", len(result.ChangedSeverityFindings)).
		Int("score_delta", result.ScoreDelta).
		Msg("compared reports")

	c.metrics.Compared(string(result.Trend))
	return result, nil
}
