package services

import (
	"encoding/json"
	"testing"

	"appscore-lab/pkg/logger"
)

const mobsfFixture = `{
  "app_name": "Demo",
  "package_name": "com.demo.app",
  "version_name": "1.2.0",
  "size": "4.2MB",
  "sha256": "abc123",
  "certificate_analysis": {
    "certificate_findings": [
      ["high", "Signed with SHA1withRSA", "Weak signature algorithm"],
      ["secure", "Signed with v2 scheme", "APK signature v2"],
      ["info", "Certificate info"]
    ]
  },
  "manifest_analysis": {
    "manifest_findings": [
      {"title": "Debug enabled", "severity": "high", "description": "android:debuggable is true"},
      {"rule": "allow_backup", "severity": "warning", "description": "Backup allowed"}
    ]
  },
  "code_analysis": {
    "android_logging": {"metadata": {"severity": "info", "description": "Logs data"}},
    "android_insecure_random": {
      "metadata": {"severity": "warning", "description": "Insecure RNG", "cwe": "CWE-330"},
      "files": {"b.java": "3", "a.java": "1"}
    }
  },
  "network_security": [
    {"scope": ["*"], "severity": "good", "description": "Cleartext disabled"},
    {"scope": ["example.com"], "severity": "high", "description": "Cleartext allowed for domain"}
  ],
  "binary_analysis": [
    {"name": "NX", "severity": "high", "description": "NX disabled"}
  ],
  "permissions": {
    "android.permission.CAMERA": {"status": "dangerous", "info": "take pictures"},
    "android.permission.INTERNET": {"status": "normal"},
    "android.permission.READ_SMS": {"status": "normal"}
  }
}`

const sonarFixture = `{
  "issues": [
    {"rule": "java:S2068", "severity": "BLOCKER", "message": "Hard-coded password",
     "component": "app:src/Login.java", "type": "VULNERABILITY", "tags": ["cwe", "owasp-a2"]},
    {"key": "AX1", "rule": "java:S1234", "severity": "MINOR", "message": "Minor smell",
     "component": "app:src/Util.java"}
  ],
  "hotspots": [
    {"ruleKey": "java:S5332", "message": "Using http protocol", "vulnerabilityProbability": "HIGH",
     "status": "TO_REVIEW", "securityCategory": "insecure-conf", "component": "app:src/Net.java"}
  ],
  "permissions": ["android.permission.CAMERA", "android.permission.RECORD_AUDIO"]
}`

func decodePayload(t *testing.T, raw string) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return payload
}

func newTestBuilder() *ReportBuilder {
	log := logger.NewNop()
	return NewReportBuilder(
		NewExtractor(),
		NewSeverityNormalizer(),
		NewPermissionDetector(nil, log),
		NewScorer(log, nil),
		log,
	)
}
