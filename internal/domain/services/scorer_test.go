package services

import (
	"testing"

	"appscore-lab/internal/domain/models"
	"appscore-lab/pkg/logger"
)

func TestRichScore(t *testing.T) {
	tests := []struct {
		name string
		in   models.ScoreInput
		want int
	}{
		{"no items", models.ScoreInput{}, 100},
		{"only good entries", models.ScoreInput{TotalGood: 7}, 100},
		{"three highs", models.ScoreInput{EffectiveHigh: 3}, 70},
		{"three highs with twelve dangerous permissions", models.ScoreInput{EffectiveHigh: 3, DangerousPermissions: 12}, 35},
		{"sixteen highs rescaled", models.ScoreInput{EffectiveHigh: 16}, 26},
		{"single high above floor", models.ScoreInput{EffectiveHigh: 1}, 90},
		{"warning under three-permission cap", models.ScoreInput{TotalWarning: 1, DangerousPermissions: 3}, 70},
		{"five-permission cap", models.ScoreInput{TotalInfo: 1, DangerousPermissions: 5}, 55},
		{"good credit clamps at 100", models.ScoreInput{EffectiveHigh: 1, TotalGood: 10}, 100},
		{"floor lifts deducted score", models.ScoreInput{EffectiveHigh: 8}, 30},
		{"rescale with high deduction", models.ScoreInput{EffectiveHigh: 9}, 57},
		{"mixed counts", models.ScoreInput{EffectiveHigh: 2, TotalWarning: 4, TotalInfo: 6, TotalGood: 2}, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RichScore(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("RichScore(%+v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestSummaryScore(t *testing.T) {
	tests := []struct {
		name string
		in   models.SummaryScoreInput
		want int
	}{
		{"no items", models.SummaryScoreInput{}, 100},
		{"good only", models.SummaryScoreInput{Good: 4}, 100},
		{"one high", models.SummaryScoreInput{High: 1}, 0},
		{"two warnings", models.SummaryScoreInput{Warning: 2}, 50},
		{"high and warning", models.SummaryScoreInput{High: 1, Warning: 1}, 25},
		{"good outweighs info", models.SummaryScoreInput{Info: 1, Good: 1}, 100},
		{"info only", models.SummaryScoreInput{Info: 4}, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SummaryScore(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("SummaryScore(%+v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestScoreRejectsNegativeCounts(t *testing.T) {
	richInputs := []models.ScoreInput{
		{EffectiveHigh: -1},
		{TotalWarning: -1},
		{TotalInfo: -2},
		{TotalGood: -1},
		{DangerousPermissions: -3},
	}
	for _, in := range richInputs {
		if _, err := RichScore(in); !IsInvalidInput(err) {
			t.Errorf("RichScore(%+v) error = %v, want InvalidInputError", in, err)
		}
	}

	summaryInputs := []models.SummaryScoreInput{
		{High: -1},
		{Warning: -1},
		{Info: -1},
		{Good: -1},
	}
	for _, in := range summaryInputs {
		if _, err := SummaryScore(in); !IsInvalidInput(err) {
			t.Errorf("SummaryScore(%+v) error = %v, want InvalidInputError", in, err)
		}
	}
}

func TestScoreRejectsOversizedCounts(t *testing.T) {
	huge := MaxCount + 1
	richInputs := []models.ScoreInput{
		{EffectiveHigh: huge},
		{TotalWarning: huge},
		{TotalInfo: huge},
		{TotalGood: huge},
		{DangerousPermissions: huge},
	}
	for _, in := range richInputs {
		if _, err := RichScore(in); !IsInvalidInput(err) {
			t.Errorf("RichScore(%+v) error = %v, want InvalidInputError", in, err)
		}
	}

	summaryInputs := []models.SummaryScoreInput{
		{High: huge},
		{Warning: huge},
		{Info: huge},
		{Good: huge},
	}
	for _, in := range summaryInputs {
		if _, err := SummaryScore(in); !IsInvalidInput(err) {
			t.Errorf("SummaryScore(%+v) error = %v, want InvalidInputError", in, err)
		}
	}
}

func TestScoreAtMaxCountStaysMonotone(t *testing.T) {
	small, err := RichScore(models.ScoreInput{EffectiveHigh: 20})
	if err != nil {
		t.Fatal(err)
	}
	large, err := RichScore(models.ScoreInput{EffectiveHigh: MaxCount, TotalWarning: MaxCount, TotalInfo: MaxCount})
	if err != nil {
		t.Fatalf("RichScore at MaxCount: %v", err)
	}
	if large > small {
		t.Errorf("RichScore at MaxCount = %d, above %d for 20 highs", large, small)
	}

	summarySmall, err := SummaryScore(models.SummaryScoreInput{High: 20})
	if err != nil {
		t.Fatal(err)
	}
	summaryLarge, err := SummaryScore(models.SummaryScoreInput{High: MaxCount})
	if err != nil {
		t.Fatalf("SummaryScore at MaxCount: %v", err)
	}
	if summaryLarge > summarySmall {
		t.Errorf("SummaryScore at MaxCount = %d, above %d", summaryLarge, summarySmall)
	}
}

func TestRichScoreBounds(t *testing.T) {
	for high := 0; high <= 30; high++ {
		for warning := 0; warning <= 12; warning += 3 {
			for good := 0; good <= 20; good += 5 {
				for dangerous := 0; dangerous <= 12; dangerous += 4 {
					in := models.ScoreInput{EffectiveHigh: high, TotalWarning: warning, TotalInfo: warning, TotalGood: good, DangerousPermissions: dangerous}
					got, err := RichScore(in)
					if err != nil {
						t.Fatalf("RichScore(%+v): %v", in, err)
					}
					if got < 0 || got > 100 {
						t.Fatalf("RichScore(%+v) = %d, out of range", in, got)
					}
				}
			}
		}
	}
}

func TestRichScoreMonotoneInDangerousPermissions(t *testing.T) {
	for high := 0; high <= 20; high++ {
		for warning := 0; warning <= 6; warning += 2 {
			prev := 101
			for dangerous := 0; dangerous <= 15; dangerous++ {
				got, err := RichScore(models.ScoreInput{EffectiveHigh: high, TotalWarning: warning, DangerousPermissions: dangerous})
				if err != nil {
					t.Fatal(err)
				}
				if got > prev {
					t.Fatalf("high=%d warning=%d: score rose from %d to %d at dangerous=%d", high, warning, prev, got, dangerous)
				}
				prev = got
			}
		}
	}
}

// Within the unrescaled regime (base score >= 20) more issues never raise the score.
func TestRichScoreMonotoneBeforeRescale(t *testing.T) {
	prev := 101
	for high := 0; high <= 8; high++ {
		got, err := RichScore(models.ScoreInput{EffectiveHigh: high})
		if err != nil {
			t.Fatal(err)
		}
		if got > prev {
			t.Fatalf("score rose from %d to %d at high=%d", prev, got, high)
		}
		prev = got
	}

	prev = 101
	for warning := 0; warning <= 14; warning++ {
		got, err := RichScore(models.ScoreInput{EffectiveHigh: 1, TotalWarning: warning})
		if err != nil {
			t.Fatal(err)
		}
		if got > prev {
			t.Fatalf("score rose from %d to %d at warning=%d", prev, got, warning)
		}
		prev = got
	}
}

func TestRichScoreMonotoneAfterRescale(t *testing.T) {
	prev := 101
	for high := 9; high <= 40; high++ {
		got, err := RichScore(models.ScoreInput{EffectiveHigh: high})
		if err != nil {
			t.Fatal(err)
		}
		if got > prev {
			t.Fatalf("score rose from %d to %d at high=%d", prev, got, high)
		}
		prev = got
	}
}

func TestScorerIsDeterministic(t *testing.T) {
	s := NewScorer(logger.NewNop(), nil)
	in := models.ScoreInput{EffectiveHigh: 16, TotalWarning: 3, TotalInfo: 2, TotalGood: 1, DangerousPermissions: 4}

	first, err := s.Rich(in)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		got, err := s.Rich(in)
		if err != nil {
			t.Fatal(err)
		}
		if got != first {
			t.Fatalf("run %d: got %d, want %d", i, got, first)
		}
	}

	if _, err := s.Summary(models.SummaryScoreInput{High: -1}); !IsInvalidInput(err) {
		t.Errorf("Summary negative input error = %v, want InvalidInputError", err)
	}
}
