package models

// Severity is the canonical 5-level risk scale every tool vocabulary maps into
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// AllSeverities returns the canonical severities from most to least risky
func AllSeverities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
}

// Rank orders severities by risk: critical=5 ... info=1, unknown=0
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether s is one of the canonical wire values
func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity accepts exactly the lowercase wire values
func ParseSeverity(v string) (Severity, bool) {
	s := Severity(v)
	return s, s.IsValid()
}

// Summary counts findings per canonical severity
type Summary map[Severity]int

// NewSummary returns a summary with every severity bucket present at zero
func NewSummary() Summary {
	s := make(Summary, 5)
	for _, sev := range AllSeverities() {
		s[sev] = 0
	}
	return s
}

// Total returns the number of counted findings
func (s Summary) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}
