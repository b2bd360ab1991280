package main

import (
	"github.com/spf13/cobra"

	"appscore-lab/internal/domain/models"
	"appscore-lab/internal/domain/services"
)

var compareCmd = &cobra.Command{
	Use:   "compare <report-a.json> <report-b.json>",
	Short: "Diff two built reports (A is the baseline)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var a, b models.Report
		if err := readJSONFile(args[0], &a); err != nil {
			return err
		}
		if err := readJSONFile(args[1], &b); err != nil {
			return err
		}

		result, err := services.NewComparator(newLogger(), nil).Compare(&a, &b)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
