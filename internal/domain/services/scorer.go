package services

import (
	"math"

	"appscore-lab/internal/domain/models"
	"appscore-lab/internal/metrics"
	"appscore-lab/pkg/logger"
)

// Rich score tuning. The values are part of the scoring contract.
const (
	perfectScore = 100

	highWeight    = 10
	warningWeight = 5
	infoWeight    = 1
	goodCredit    = 3

	rescaleThreshold = 20
	rescaleMinimum   = 20
	rescaleSpan      = 80
	rescaleDamping   = 10
)

type threshold struct {
	min   int
	value float64
}

// dangerous permission count -> upper bound on the score
var dangerousCaps = []threshold{
	{min: 10, value: 35},
	{min: 5, value: 55},
	{min: 3, value: 70},
}

// effective high count -> points subtracted
var highDeductions = []threshold{
	{min: 15, value: 25},
	{min: 10, value: 15},
	{min: 5, value: 5},
}

// total items (upper bound, inclusive) -> minimum score
var itemFloors = []threshold{
	{min: 2, value: 70},
	{min: 5, value: 50},
	{min: 10, value: 30},
}

// RichScore computes the per-section security score
func RichScore(in models.ScoreInput) (int, error) {
	if err := validateScoreInput(in); err != nil {
		return 0, err
	}

	totalItems := in.TotalItems()
	if totalItems == 0 {
		return perfectScore, nil
	}

	penalty := in.EffectiveHigh*highWeight + in.TotalWarning*warningWeight + in.TotalInfo*infoWeight - in.TotalGood*goodCredit
	score := float64(perfectScore - penalty)

	if score < rescaleThreshold {
		ratio := float64(totalItems) / float64(maxInt(totalItems+rescaleDamping, 1))
		score = math.Max(rescaleMinimum, perfectScore-ratio*rescaleSpan)
	}

	capValue := float64(perfectScore)
	for _, c := range dangerousCaps {
		if in.DangerousPermissions >= c.min {
			capValue = c.value
			break
		}
	}
	score = math.Min(score, capValue)

	for _, d := range highDeductions {
		if in.EffectiveHigh >= d.min {
			score = math.Max(score-d.value, 0)
			break
		}
	}

	// the floor never lifts a score above its permission cap
	for _, f := range itemFloors {
		if totalItems <= f.min {
			score = math.Max(score, math.Min(f.value, capValue))
			break
		}
	}

	return roundScore(score), nil
}

// SummaryScore computes the fallback score from aggregate counts only
func SummaryScore(in models.SummaryScoreInput) (int, error) {
	if err := validateSummaryScoreInput(in); err != nil {
		return 0, err
	}

	penalty := float64(in.High*highWeight + in.Warning*warningWeight + in.Info*infoWeight - in.Good*goodCredit)
	maxPenalty := float64(maxInt(in.TotalItems()*highWeight, 1))

	return roundScore(perfectScore - penalty/maxPenalty*perfectScore), nil
}

func validateScoreInput(in models.ScoreInput) error {
	checks := []struct {
		field string
		value int
	}{
		{"effective_high", in.EffectiveHigh},
		{"total_warning", in.TotalWarning},
		{"total_info", in.TotalInfo},
		{"total_good", in.TotalGood},
		{"dangerous_permissions", in.DangerousPermissions},
	}
	for _, c := range checks {
		if err := requireCount(c.field, c.value); err != nil {
			return err
		}
	}
	return nil
}

func validateSummaryScoreInput(in models.SummaryScoreInput) error {
	checks := []struct {
		field string
		value int
	}{
		{"high", in.High},
		{"warning", in.Warning},
		{"info", in.Info},
		{"good", in.Good},
	}
	for _, c := range checks {
		if err := requireCount(c.field, c.value); err != nil {
			return err
		}
	}
	return nil
}

// roundScore clamps to [0, 100] then rounds half away from zero
func roundScore(score float64) int {
	return int(math.Round(clamp(score, 0, perfectScore)))
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Scorer wraps the score functions with logging and metrics. It exposes the
// two variants separately and never blends them.
type Scorer struct {
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewScorer creates a new Scorer; m may be nil
func NewScorer(log *logger.Logger, m *metrics.Metrics) *Scorer {
	return &Scorer{
		logger:  log.WithComponent("scorer"),
		metrics: m,
	}
}

// Rich scores per-section input
func (s *Scorer) Rich(in models.ScoreInput) (int, error) {
	score, err := RichScore(in)
	if err != nil {
		s.logger.Warn().Err(err).Msg("rejected rich score input")
		return 0, err
	}

	s.logger.Debug().
		Int("effective_high", in.EffectiveHigh).
		Int("total_warning", in.TotalWarning).
		Int("total_info", in.TotalInfo).
		Int("total_good", in.TotalGood).
		Int("dangerous_permissions", in.DangerousPermissions).
		Int("score", score).
		Msg("computed rich score")

	s.metrics.ObserveScore(string(models.ScoreModeRich), score)
	return score, nil
}

// Summary scores aggregate-only input
func (s *Scorer) Summary(in models.SummaryScoreInput) (int, error) {
	score, err := SummaryScore(in)
	if err != nil {
		s.logger.Warn().Err(err).Msg("rejected summary score input")
		return 0, err
	}

	s.logger.Debug().
		Int("high", in.High).
		Int("warning", in.Warning).
		Int("info", in.Info).
		Int("good", in.Good).
		Int("score", score).
		Msg("computed summary score")

	s.metrics.ObserveScore(string(models.ScoreModeSummary), score)
	return score, nil
}
