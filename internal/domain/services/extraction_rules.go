package services

import "appscore-lab/internal/domain/models"

// Alias tables shared by all tools
var (
	AppNameFields    = FieldTable{"name", "app_name", "APP_NAME", "file_name", "appName", "title", "project"}
	AppPackageFields = FieldTable{"package_name", "packagename", "package", "bundle_id", "identifier", "packageName"}
	AppVersionFields = FieldTable{"version_name", "version", "app_version", "versionName", "VERSION_NAME"}
	AppSizeFields    = FieldTable{"size", "file_size", "app_size", "SIZE"}
	AppHashFields    = FieldTable{"sha256", "content_hash", "hash", "SHA256", "md5", "MD5"}

	// AppInfoContainers are nested objects consulted after the payload root
	AppInfoContainers = FieldTable{"app_info", "appInfo", "metadata"}

	TitleFields       = FieldTable{"title", "name", "rule", "rule_id", "check", "issue", "key"}
	SeverityFields    = FieldTable{"severity", "level", "stat", "status", "risk", "vulnerabilityProbability"}
	DescriptionFields = FieldTable{"description", "desc", "message", "info", "detail", "details"}
	LocationFields    = FieldTable{"location", "component", "file", "path", "scope", "files", "line"}
	RemediationFields = FieldTable{"remediation", "fix", "solution", "recommendation"}
	CWEFields         = FieldTable{"cwe", "CWE", "cwe_id"}
	OWASPFields       = FieldTable{"owasp", "owasp-mobile", "owasp_mobile", "masvs", "OWASP"}
	TagFields         = FieldTable{"tags", "labels"}
	CategoryFields    = FieldTable{"category", "type", "rule_type"}

	// PermissionNameFields name a permission when permissions arrive as a list of objects
	PermissionNameFields = FieldTable{"name", "permission", "key"}

	metadataField = "metadata"
)

// SectionRule locates one section of a tool payload
type SectionRule struct {
	Section models.Section
	// Keys are the top-level aliases of the section
	Keys FieldTable
	// Container holds the findings when the section is an object wrapping a list
	Container FieldTable
	// SeverityFields overrides the shared severity aliases for this section
	SeverityFields FieldTable
	// CategoryFields overrides the shared category aliases for flat tools
	CategoryFields FieldTable
	// SideChannel sections are displayed but never counted
	SideChannel bool
	// Permissions sections feed the dangerous-permission detector
	Permissions bool
}

// ExtractionRules is the per-tool rule set used by the Extractor
type ExtractionRules struct {
	Tool models.Tool
	// Sectioned tools report per-section data and qualify for the rich score
	Sectioned bool
	// DefaultCategory applies to flat tools when an item names no category
	DefaultCategory string
	Sections        []SectionRule
}

// MobSFRules covers the sectioned scanner
func MobSFRules() ExtractionRules {
	return ExtractionRules{
		Tool:      models.ToolMobSF,
		Sectioned: true,
		Sections: []SectionRule{
			{
				Section:   models.SectionCertificate,
				Keys:      FieldTable{"certificate_analysis", "certificate"},
				Container: FieldTable{"certificate_findings"},
			},
			{
				Section:   models.SectionManifest,
				Keys:      FieldTable{"manifest_analysis", "manifest"},
				Container: FieldTable{"manifest_findings"},
			},
			{
				Section:   models.SectionCode,
				Keys:      FieldTable{"code_analysis", "code"},
				Container: FieldTable{"findings"},
			},
			{
				Section:   models.SectionNetwork,
				Keys:      FieldTable{"network_security", "network_analysis", "network"},
				Container: FieldTable{"network_findings"},
			},
			{
				Section: models.SectionAPI,
				Keys:    FieldTable{"android_api", "api_findings", "api"},
			},
			{
				Section:     models.SectionPermissions,
				Keys:        FieldTable{"permissions", "permission_analysis"},
				Permissions: true,
			},
			{
				Section:     models.SectionBinaryHardening,
				Keys:        FieldTable{"binary_analysis", "binaryanalysis", "binary_hardening"},
				Container:   FieldTable{"findings"},
				SideChannel: true,
			},
		},
	}
}

// SonarRules covers the flat issue-list scanner
func SonarRules() ExtractionRules {
	return ExtractionRules{
		Tool:            models.ToolSonar,
		DefaultCategory: "code",
		Sections: []SectionRule{
			{
				Section: models.SectionIssues,
				Keys:    FieldTable{"issues", "findings", "vulnerabilities", "results"},
			},
			{
				Section:        models.SectionHotspots,
				Keys:           FieldTable{"hotspots", "security_hotspots"},
				SeverityFields: FieldTable{"vulnerabilityProbability", "severity", "level", "risk"},
				CategoryFields: FieldTable{"securityCategory", "category", "type", "rule_type"},
			},
			{
				Section:     models.SectionPermissions,
				Keys:        FieldTable{"permissions"},
				Permissions: true,
			},
		},
	}
}

// DefaultExtractionRules returns the rule sets for every supported tool
func DefaultExtractionRules() []ExtractionRules {
	return []ExtractionRules{MobSFRules(), SonarRules()}
}
