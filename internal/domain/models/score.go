package models

// ScoreInput feeds the rich, per-section score
type ScoreInput struct {
	EffectiveHigh        int `json:"effective_high"`
	TotalWarning         int `json:"total_warning"`
	TotalInfo            int `json:"total_info"`
	TotalGood            int `json:"total_good"`
	DangerousPermissions int `json:"dangerous_permissions"`
}

// TotalItems is the number of counted issues (good entries excluded)
func (in ScoreInput) TotalItems() int {
	return in.EffectiveHigh + in.TotalWarning + in.TotalInfo
}

// SummaryScoreInput feeds the fallback score for callers with aggregate counts only
type SummaryScoreInput struct {
	High    int `json:"high"`
	Warning int `json:"warning"`
	Info    int `json:"info"`
	Good    int `json:"good"`
}

// TotalItems is the number of counted issues (good entries excluded)
func (in SummaryScoreInput) TotalItems() int {
	return in.High + in.Warning + in.Info
}

// SummaryScoreInputFrom folds a canonical summary into fallback score buckets
func SummaryScoreInputFrom(s Summary, good int) SummaryScoreInput {
	return SummaryScoreInput{
		High:    s[SeverityCritical] + s[SeverityHigh],
		Warning: s[SeverityMedium],
		Info:    s[SeverityLow] + s[SeverityInfo],
		Good:    good,
	}
}
