package services

import (
	"bytes"
	"encoding/json"
	"testing"

	"appscore-lab/internal/domain/models"
)

func TestBuildMobSFReport(t *testing.T) {
	report, err := newTestBuilder().Build(BuildInput{
		Payloads: map[models.Tool]map[string]any{models.ToolMobSF: decodePayload(t, mobsfFixture)},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if report.ScoreMode != models.ScoreModeRich {
		t.Errorf("ScoreMode = %s, want rich", report.ScoreMode)
	}
	wantInput := models.ScoreInput{EffectiveHigh: 5, TotalWarning: 2, TotalInfo: 2, TotalGood: 2, DangerousPermissions: 2}
	if report.ScoreInput == nil || *report.ScoreInput != wantInput {
		t.Errorf("ScoreInput = %+v, want %+v", report.ScoreInput, wantInput)
	}
	if report.SecurityScore != 39 {
		t.Errorf("SecurityScore = %d, want 39", report.SecurityScore)
	}
	if report.SecureCount != 2 {
		t.Errorf("SecureCount = %d, want 2", report.SecureCount)
	}
	if report.ContentHash != "abc123" || report.AppInfo.ContentHash != "abc123" {
		t.Errorf("content hash = %q / %q, want payload hash", report.ContentHash, report.AppInfo.ContentHash)
	}
	if !report.ToolAvailability[models.ToolMobSF] || report.ToolAvailability[models.ToolSonar] {
		t.Errorf("ToolAvailability = %v", report.ToolAvailability)
	}

	if len(report.DangerousPermissions) != 2 {
		t.Fatalf("DangerousPermissions = %+v", report.DangerousPermissions)
	}
	camera, sms := report.DangerousPermissions[0], report.DangerousPermissions[1]
	if camera.Name != "android.permission.CAMERA" || camera.MatchedBy != "descriptor" || camera.Descriptor != "dangerous" {
		t.Errorf("camera = %+v", camera)
	}
	if sms.Name != "android.permission.READ_SMS" || sms.MatchedBy != "name" || sms.Tool != models.ToolMobSF {
		t.Errorf("sms = %+v", sms)
	}

	wantSummary := models.Summary{
		models.SeverityCritical: 0,
		models.SeverityHigh:     5,
		models.SeverityMedium:   2,
		models.SeverityLow:      0,
		models.SeverityInfo:     2,
	}
	for sev, n := range wantSummary {
		if report.Summary[sev] != n {
			t.Errorf("Summary[%s] = %d, want %d", sev, report.Summary[sev], n)
		}
	}
	if report.Summary.Total() != len(report.Findings) {
		t.Errorf("summary total %d != %d findings", report.Summary.Total(), len(report.Findings))
	}

	for _, f := range report.Findings {
		if f.Title == "NX" {
			t.Error("binary hardening leaked into findings")
		}
		if f.Title == "APK signature v2" || f.Title == "Cleartext disabled" {
			t.Errorf("secure entry %q counted as a finding", f.Title)
		}
	}
	if len(report.BinaryHardening) != 1 || report.BinaryHardening[0].Severity != models.SeverityHigh {
		t.Errorf("BinaryHardening = %+v", report.BinaryHardening)
	}
}

func TestBuildSonarOnlyUsesSummaryScore(t *testing.T) {
	report, err := newTestBuilder().Build(BuildInput{
		ContentHash: "sonar-hash",
		Payloads:    map[models.Tool]map[string]any{models.ToolSonar: decodePayload(t, sonarFixture)},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if report.ScoreMode != models.ScoreModeSummary || report.ScoreInput != nil {
		t.Errorf("mode = %s, rich input = %+v", report.ScoreMode, report.ScoreInput)
	}
	wantInput := models.SummaryScoreInput{High: 4, Warning: 1}
	if report.SummaryScoreInput == nil || *report.SummaryScoreInput != wantInput {
		t.Errorf("SummaryScoreInput = %+v, want %+v", report.SummaryScoreInput, wantInput)
	}
	if report.SecurityScore != 10 {
		t.Errorf("SecurityScore = %d, want 10", report.SecurityScore)
	}
	if report.ToolAvailability[models.ToolMobSF] || !report.ToolAvailability[models.ToolSonar] {
		t.Errorf("ToolAvailability = %v", report.ToolAvailability)
	}
	if report.AppInfo.ContentHash != "sonar-hash" {
		t.Errorf("AppInfo.ContentHash = %q", report.AppInfo.ContentHash)
	}
}

func TestBuildMergesToolsInCanonicalOrder(t *testing.T) {
	report, err := newTestBuilder().Build(BuildInput{
		ContentHash: "override",
		Payloads: map[models.Tool]map[string]any{
			models.ToolSonar: decodePayload(t, sonarFixture),
			models.ToolMobSF: decodePayload(t, mobsfFixture),
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if report.ContentHash != "override" || report.AppInfo.ContentHash != "override" {
		t.Errorf("explicit hash not applied: %q / %q", report.ContentHash, report.AppInfo.ContentHash)
	}
	if len(report.Findings) != 13 {
		t.Fatalf("got %d findings, want 13", len(report.Findings))
	}
	if report.Findings[0].Tool != models.ToolMobSF || report.Findings[len(report.Findings)-1].Tool != models.ToolSonar {
		t.Error("mobsf findings should precede sonar findings")
	}
	if report.Summary.Total() != len(report.Findings) {
		t.Errorf("summary total %d != %d findings", report.Summary.Total(), len(report.Findings))
	}

	var names []string
	for _, dp := range report.DangerousPermissions {
		names = append(names, dp.Name+"@"+string(dp.Tool))
	}
	want := []string{
		"android.permission.CAMERA@mobsf",
		"android.permission.READ_SMS@mobsf",
		"android.permission.RECORD_AUDIO@sonar",
	}
	if len(names) != len(want) {
		t.Fatalf("dangerous permissions = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("dangerous[%d] = %s, want %s", i, names[i], want[i])
		}
	}

	if report.ScoreMode != models.ScoreModeRich || report.SecurityScore != 30 {
		t.Errorf("mode %s score %d, want rich 30", report.ScoreMode, report.SecurityScore)
	}
}

func TestBuildIsByteIdentical(t *testing.T) {
	b := newTestBuilder()
	build := func() []byte {
		report, err := b.Build(BuildInput{
			Payloads: map[models.Tool]map[string]any{
				models.ToolMobSF: decodePayload(t, mobsfFixture),
				models.ToolSonar: decodePayload(t, sonarFixture),
			},
		})
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		data, err := json.Marshal(report)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		return data
	}

	first := build()
	for i := 0; i < 5; i++ {
		if next := build(); !bytes.Equal(first, next) {
			t.Fatalf("build %d differs:\n%s\n%s", i, first, next)
		}
	}
}

func TestBuildIgnoresBinaryHardeningInScore(t *testing.T) {
	b := newTestBuilder()
	score := func(binarySeverity string) int {
		payload := decodePayload(t, mobsfFixture)
		payload["binary_analysis"] = []any{
			map[string]any{"name": "PIE", "severity": binarySeverity},
			map[string]any{"name": "Canary", "severity": binarySeverity},
		}
		report, err := b.Build(BuildInput{Payloads: map[models.Tool]map[string]any{models.ToolMobSF: payload}})
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		return report.SecurityScore
	}

	if high, info := score("high"), score("info"); high != info {
		t.Errorf("binary hardening changed the score: %d vs %d", high, info)
	}
}

func TestBuildRejectsMissingPayloads(t *testing.T) {
	tests := []struct {
		name     string
		payloads map[models.Tool]map[string]any
	}{
		{"nil map", nil},
		{"only nil payloads", map[models.Tool]map[string]any{models.ToolMobSF: nil}},
		{"unknown tool", map[models.Tool]map[string]any{"ghidra": {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestBuilder().Build(BuildInput{Payloads: tt.payloads})
			if !IsInvalidInput(err) {
				t.Errorf("err = %v, want InvalidInputError", err)
			}
		})
	}
}

func TestBuildEmptyPayloadScoresPerfect(t *testing.T) {
	report, err := newTestBuilder().Build(BuildInput{
		ContentHash: "empty",
		Payloads:    map[models.Tool]map[string]any{models.ToolMobSF: {}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.SecurityScore != 100 {
		t.Errorf("SecurityScore = %d, want 100", report.SecurityScore)
	}
	if report.Findings == nil || report.DangerousPermissions == nil || report.BinaryHardening == nil {
		t.Error("empty collections must be non-nil")
	}
}
