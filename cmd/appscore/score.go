package main

import (
	"github.com/spf13/cobra"

	"appscore-lab/internal/domain/models"
	"appscore-lab/internal/domain/services"
)

type scoreOutput struct {
	SecurityScore int              `json:"security_score"`
	ScoreMode     models.ScoreMode `json:"score_mode"`
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute a security score from raw counts",
}

var richInput models.ScoreInput

var scoreRichCmd = &cobra.Command{
	Use:   "rich",
	Short: "Score per-section counts with the dangerous-permission penalty",
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := services.NewScorer(newLogger(), nil).Rich(richInput)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), scoreOutput{SecurityScore: score, ScoreMode: models.ScoreModeRich})
	},
}

var summaryInput models.SummaryScoreInput

var scoreSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Score aggregate counts without per-section detail",
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := services.NewScorer(newLogger(), nil).Summary(summaryInput)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), scoreOutput{SecurityScore: score, ScoreMode: models.ScoreModeSummary})
	},
}

func init() {
	f := scoreRichCmd.Flags()
	f.IntVar(&richInput.EffectiveHigh, "high", 0, "critical and high findings, dangerous permissions included")
	f.IntVar(&richInput.TotalWarning, "warning", 0, "medium findings")
	f.IntVar(&richInput.TotalInfo, "info", 0, "low and info findings")
	f.IntVar(&richInput.TotalGood, "good", 0, "secure entries")
	f.IntVar(&richInput.DangerousPermissions, "dangerous", 0, "dangerous permission count")

	f = scoreSummaryCmd.Flags()
	f.IntVar(&summaryInput.High, "high", 0, "critical and high findings")
	f.IntVar(&summaryInput.Warning, "warning", 0, "medium findings")
	f.IntVar(&summaryInput.Info, "info", 0, "low and info findings")
	f.IntVar(&summaryInput.Good, "good", 0, "secure entries")

	scoreCmd.AddCommand(scoreRichCmd, scoreSummaryCmd)
	rootCmd.AddCommand(scoreCmd)
}
