package services

import (
	"fmt"

	"appscore-lab/internal/detection/permissions"
	"appscore-lab/internal/domain/models"
	"appscore-lab/pkg/logger"
)

// PermissionDetector flags dangerous permissions using a compiled rule table
type PermissionDetector struct {
	classifier *permissions.Classifier
	logger     *logger.Logger
}

// NewPermissionDetector creates a detector; a nil classifier uses the built-in table
func NewPermissionDetector(classifier *permissions.Classifier, log *logger.Logger) *PermissionDetector {
	if classifier == nil {
		classifier = permissions.Default()
	}
	return &PermissionDetector{
		classifier: classifier,
		logger:     log.WithComponent("permission-detector"),
	}
}

// Rules returns the active rule table
func (d *PermissionDetector) Rules() models.PermissionRuleSet {
	return d.classifier.Rules()
}

// Detect returns the dangerous subset of perms, sorted by name and tagged with tool
func (d *PermissionDetector) Detect(tool models.Tool, perms map[string]any) []models.DangerousPermission {
	dangerous := d.classifier.Classify(perms)
	for i := range dangerous {
		dangerous[i].Tool = tool
	}

	if len(dangerous) > 0 {
		d.logger.Debug().
			Str("tool", string(tool)).
			Int("permissions", len(perms)).
			Int("dangerous", len(dangerous)).
			Msg("classified permissions")
	}
	return dangerous
}

// PermissionFindings turns each dangerous permission into a high finding
func PermissionFindings(dangerous []models.DangerousPermission) []models.Finding {
	findings := make([]models.Finding, 0, len(dangerous))
	for _, dp := range dangerous {
		desc := fmt.Sprintf("Permission %s grants sensitive access", dp.Name)
		if dp.MatchedBy == permissions.MatchedByDescriptor {
			desc = fmt.Sprintf("Permission %s is declared %s", dp.Name, dp.Descriptor)
		}
		findings = append(findings, models.Finding{
			Tool:        dp.Tool,
			Category:    string(models.SectionPermissions),
			Section:     models.SectionPermissions,
			Title:       dp.Name,
			Severity:    models.SeverityHigh,
			Description: desc,
		})
	}
	return findings
}
