package services

import (
	"sort"

	"appscore-lab/internal/domain/models"
	"appscore-lab/pkg/logger"
)

// BuildInput is everything needed to build one report
type BuildInput struct {
	// ContentHash overrides any hash found in the payloads
	ContentHash string
	Payloads    map[models.Tool]map[string]any
}

// ReportBuilder composes extracted findings, permissions and the score into a Report
type ReportBuilder struct {
	extractor  *Extractor
	normalizer *SeverityNormalizer
	detector   *PermissionDetector
	scorer     *Scorer
	logger     *logger.Logger
}

// NewReportBuilder creates a new ReportBuilder
func NewReportBuilder(extractor *Extractor, normalizer *SeverityNormalizer, detector *PermissionDetector, scorer *Scorer, log *logger.Logger) *ReportBuilder {
	return &ReportBuilder{
		extractor:  extractor,
		normalizer: normalizer,
		detector:   detector,
		scorer:     scorer,
		logger:     log.WithComponent("report-builder"),
	}
}

// sectionCounts accumulates the rich score inputs from scored sections
type sectionCounts struct {
	high    int
	warning int
	info    int
	good    int
}

func (c *sectionCounts) add(sev models.Severity) {
	switch sev {
	case models.SeverityCritical, models.SeverityHigh:
		c.high++
	case models.SeverityMedium:
		c.warning++
	default:
		c.info++
	}
}

// Build runs extraction, normalization and detection for every available tool
// and scores the merged result. Tools are merged in canonical order.
func (b *ReportBuilder) Build(in BuildInput) (*models.Report, error) {
	available := 0
	for tool, payload := range in.Payloads {
		if _, ok := models.ParseTool(string(tool)); !ok {
			return nil, &InvalidInputError{Field: "payloads", Value: tool, Reason: "unsupported tool"}
		}
		if payload != nil {
			available++
		}
	}
	if available == 0 {
		return nil, &InvalidInputError{Field: "payloads", Reason: "no tool payload available"}
	}

	report := &models.Report{
		ToolAvailability:     make(map[models.Tool]bool, len(models.AllTools())),
		Summary:              models.NewSummary(),
		Findings:             make([]models.Finding, 0),
		DangerousPermissions: make([]models.DangerousPermission, 0),
		BinaryHardening:      make([]models.Finding, 0),
		RawPayloads:          make(map[models.Tool]map[string]any),
	}

	var (
		appInfo   models.AppInfo
		counts    sectionCounts
		sectioned bool
		flagged   = make(map[string]bool)
	)

	for _, tool := range models.AllTools() {
		payload := in.Payloads[tool]
		report.ToolAvailability[tool] = payload != nil
		if payload == nil {
			continue
		}
		report.RawPayloads[tool] = payload

		ext, err := b.extractor.Extract(tool, payload)
		if err != nil {
			return nil, err
		}
		sectioned = sectioned || ext.Sectioned
		appInfo = appInfo.Merge(ext.AppInfo)

		for _, rf := range ext.Findings {
			if IsSecure(rf.SeverityToken) {
				report.SecureCount++
				if rf.Section.IsScored() {
					counts.good++
				}
				continue
			}

			f := rf.Normalize(b.normalizer)
			b.addFinding(report, f)
			if f.Section.IsScored() {
				counts.add(f.Severity)
			}
		}

		for _, rf := range ext.BinaryHardening {
			report.BinaryHardening = append(report.BinaryHardening, rf.Normalize(b.normalizer))
		}

		dangerous := make([]models.DangerousPermission, 0)
		for _, dp := range b.detector.Detect(tool, ext.Permissions) {
			if flagged[dp.Name] {
				continue
			}
			flagged[dp.Name] = true
			dangerous = append(dangerous, dp)
		}
		report.DangerousPermissions = append(report.DangerousPermissions, dangerous...)
		for _, f := range PermissionFindings(dangerous) {
			b.addFinding(report, f)
		}

		b.logger.Debug().
			Str("tool", string(tool)).
			Int("findings", len(ext.Findings)).
			Int("binary_hardening", len(ext.BinaryHardening)).
			Int("dangerous_permissions", len(dangerous)).
			Msg("extracted tool payload")
	}

	sort.SliceStable(report.DangerousPermissions, func(i, j int) bool {
		return report.DangerousPermissions[i].Name < report.DangerousPermissions[j].Name
	})

	report.ContentHash = in.ContentHash
	if report.ContentHash == "" {
		report.ContentHash = appInfo.ContentHash
	}
	appInfo.ContentHash = report.ContentHash
	report.AppInfo = appInfo

	if err := b.score(report, counts, sectioned); err != nil {
		return nil, err
	}

	b.logger.Info().
		Str("content_hash", report.ContentHash).
		Str("score_mode", string(report.ScoreMode)).
		Int("findings", len(report.Findings)).
		Int("security_score", report.SecurityScore).
		Msg("built report")

	return report, nil
}

func (b *ReportBuilder) addFinding(report *models.Report, f models.Finding) {
	report.Findings = append(report.Findings, f)
	report.Summary[f.Severity]++
}

// score picks the rich variant whenever a sectioned tool contributed
func (b *ReportBuilder) score(report *models.Report, counts sectionCounts, sectioned bool) error {
	if sectioned {
		in := models.ScoreInput{
			EffectiveHigh:        counts.high + len(report.DangerousPermissions),
			TotalWarning:         counts.warning,
			TotalInfo:            counts.info,
			TotalGood:            counts.good,
			DangerousPermissions: len(report.DangerousPermissions),
		}
		score, err := b.scorer.Rich(in)
		if err != nil {
			return err
		}
		report.ScoreMode = models.ScoreModeRich
		report.ScoreInput = &in
		report.SecurityScore = score
		return nil
	}

	in := models.SummaryScoreInputFrom(report.Summary, report.SecureCount)
	score, err := b.scorer.Summary(in)
	if err != nil {
		return err
	}
	report.ScoreMode = models.ScoreModeSummary
	report.SummaryScoreInput = &in
	report.SecurityScore = score
	return nil
}
