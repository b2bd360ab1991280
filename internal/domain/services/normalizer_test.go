package services

import (
	"testing"

	"appscore-lab/internal/domain/models"
)

func TestNormalizeSeverity(t *testing.T) {
	tests := []struct {
		token string
		want  models.Severity
	}{
		{"CRITICAL", models.SeverityCritical},
		{"Blocker", models.SeverityCritical},
		{"high", models.SeverityHigh},
		{" HIGH ", models.SeverityHigh},
		{"MAJOR", models.SeverityHigh},
		{"warning", models.SeverityMedium},
		{"Medium", models.SeverityMedium},
		{"minor", models.SeverityMedium},
		{"low", models.SeverityLow},
		{"info", models.SeverityInfo},
		{"hotspot", models.SeverityInfo},
		{"", models.SeverityInfo},
	}

	n := NewSeverityNormalizer()
	for _, tt := range tests {
		if got := NormalizeSeverity(tt.token); got != tt.want {
			t.Errorf("NormalizeSeverity(%q) = %s, want %s", tt.token, got, tt.want)
		}
		if got := n.Normalize(models.ToolMobSF, tt.token); got != tt.want {
			t.Errorf("Normalize(mobsf, %q) = %s, want %s", tt.token, got, tt.want)
		}
	}
}

func TestSeverityNormalizerToolRules(t *testing.T) {
	base := NewSeverityNormalizer()
	sonar := base.WithToolRules(models.ToolSonar, SeverityRule{Token: "to_review", Severity: models.SeverityMedium})

	if got := sonar.Normalize(models.ToolSonar, "TO_REVIEW"); got != models.SeverityMedium {
		t.Errorf("sonar override = %s, want medium", got)
	}
	if got := sonar.Normalize(models.ToolMobSF, "TO_REVIEW"); got != models.SeverityInfo {
		t.Errorf("override leaked to mobsf: %s", got)
	}
	if got := base.Normalize(models.ToolSonar, "TO_REVIEW"); got != models.SeverityInfo {
		t.Errorf("base normalizer was modified: %s", got)
	}
	// shared rules still apply behind the override
	if got := sonar.Normalize(models.ToolSonar, "MAJOR"); got != models.SeverityHigh {
		t.Errorf("sonar MAJOR = %s, want high", got)
	}
}

func TestIsSecure(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"secure", true},
		{"GOOD", true},
		{" good ", true},
		{"insecure", false},
		{"not good", false},
		{"goodness", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSecure(tt.token); got != tt.want {
			t.Errorf("IsSecure(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}
