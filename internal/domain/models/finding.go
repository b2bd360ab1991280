package models

// Tool identifies the analysis tool a finding came from
type Tool string

const (
	// ToolMobSF produces sectioned reports (certificate, manifest, code, network, ...)
	ToolMobSF Tool = "mobsf"
	// ToolSonar produces a flat issue list with blocker/major/minor severities
	ToolSonar Tool = "sonar"
)

// AllTools returns the supported tools in canonical merge order
func AllTools() []Tool {
	return []Tool{ToolMobSF, ToolSonar}
}

// ParseTool validates a wire tool name
func ParseTool(v string) (Tool, bool) {
	for _, t := range AllTools() {
		if string(t) == v {
			return t, true
		}
	}
	return "", false
}

// Section is the report section a finding was extracted from
type Section string

const (
	SectionCertificate     Section = "certificate"
	SectionManifest        Section = "manifest"
	SectionCode            Section = "code"
	SectionNetwork         Section = "network"
	SectionAPI             Section = "api"
	SectionPermissions     Section = "permissions"
	SectionBinaryHardening Section = "binary_hardening"
	SectionIssues          Section = "issues"
	SectionHotspots        Section = "hotspots"
)

// ScoredSections are the sections whose counts feed the rich score
func ScoredSections() []Section {
	return []Section{SectionCertificate, SectionManifest, SectionCode, SectionNetwork}
}

// IsScored reports whether the section contributes to the rich score
func (s Section) IsScored() bool {
	for _, scored := range ScoredSections() {
		if s == scored {
			return true
		}
	}
	return false
}

// Finding is a single normalized issue reported by one tool
type Finding struct {
	Tool        Tool     `json:"tool"`
	Category    string   `json:"category"`
	Section     Section  `json:"section,omitempty"`
	Title       string   `json:"title"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Location    string   `json:"location,omitempty"`
	Remediation string   `json:"remediation,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CWE         string   `json:"cwe,omitempty"`
	OWASP       string   `json:"owasp,omitempty"`
}

// FindingIdentity is the cross-run matching key
type FindingIdentity struct {
	Tool     Tool
	Category string
	Title    string
}

// Identity returns the (tool, category, title) key used by the comparator
func (f Finding) Identity() FindingIdentity {
	return FindingIdentity{Tool: f.Tool, Category: f.Category, Title: f.Title}
}

// DangerousPermission is a permission flagged by the detector
type DangerousPermission struct {
	Name       string `json:"name"`
	Descriptor string `json:"descriptor,omitempty"`
	MatchedBy  string `json:"matched_by"` // "descriptor" or "name"
	Tool       Tool   `json:"tool,omitempty"`
}
