package services

import (
	"strings"

	"appscore-lab/internal/domain/models"
)

// SeverityRule maps any token containing Token to Severity
type SeverityRule struct {
	Token    string
	Severity models.Severity
}

// DefaultSeverityRules is the shared rule table, evaluated in order
var DefaultSeverityRules = []SeverityRule{
	{Token: "critical", Severity: models.SeverityCritical},
	{Token: "blocker", Severity: models.SeverityCritical},
	{Token: "high", Severity: models.SeverityHigh},
	{Token: "major", Severity: models.SeverityHigh},
	{Token: "warn", Severity: models.SeverityMedium},
	{Token: "medium", Severity: models.SeverityMedium},
	{Token: "minor", Severity: models.SeverityMedium},
	{Token: "low", Severity: models.SeverityLow},
}

var secureTokens = map[string]bool{
	"secure": true,
	"good":   true,
}

// SeverityNormalizer maps tool-native severity tokens to the canonical scale.
// It holds no mutable state; per-tool rules are consulted before the shared table.
type SeverityNormalizer struct {
	shared    []SeverityRule
	overrides map[models.Tool][]SeverityRule
}

// NewSeverityNormalizer creates a normalizer over the shared rule table
func NewSeverityNormalizer() *SeverityNormalizer {
	return &SeverityNormalizer{
		shared:    DefaultSeverityRules,
		overrides: map[models.Tool][]SeverityRule{},
	}
}

// WithToolRules returns a copy of n with rules prepended for one tool
func (n *SeverityNormalizer) WithToolRules(tool models.Tool, rules ...SeverityRule) *SeverityNormalizer {
	overrides := make(map[models.Tool][]SeverityRule, len(n.overrides)+1)
	for t, r := range n.overrides {
		overrides[t] = r
	}
	merged := make([]SeverityRule, 0, len(rules)+len(overrides[tool]))
	merged = append(merged, rules...)
	merged = append(merged, overrides[tool]...)
	overrides[tool] = merged

	return &SeverityNormalizer{shared: n.shared, overrides: overrides}
}

// Normalize maps a token for the given tool. Unknown tokens become info.
func (n *SeverityNormalizer) Normalize(tool models.Tool, token string) models.Severity {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return models.SeverityInfo
	}

	if sev, ok := matchSeverity(n.overrides[tool], token); ok {
		return sev
	}
	if sev, ok := matchSeverity(n.shared, token); ok {
		return sev
	}
	return models.SeverityInfo
}

func matchSeverity(rules []SeverityRule, token string) (models.Severity, bool) {
	for _, r := range rules {
		if strings.Contains(token, r.Token) {
			return r.Severity, true
		}
	}
	return "", false
}

// NormalizeSeverity maps a token with the shared table only
func NormalizeSeverity(token string) models.Severity {
	sev, ok := matchSeverity(DefaultSeverityRules, strings.ToLower(strings.TrimSpace(token)))
	if !ok {
		return models.SeverityInfo
	}
	return sev
}

// IsSecure reports whether a token marks a passed check rather than an issue
func IsSecure(token string) bool {
	return secureTokens[strings.ToLower(strings.TrimSpace(token))]
}
