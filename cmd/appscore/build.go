package main

import (
	"github.com/spf13/cobra"

	"appscore-lab/internal/domain/models"
	"appscore-lab/internal/domain/services"
)

var (
	buildMobSF string
	buildSonar string
	buildHash  string
	buildRules string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a unified report from tool payload files",
	Example: `  appscore build --mobsf mobsf.json --sonar sonar.json --hash 9f2c...
  appscore build --sonar sonar.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		payloads := map[models.Tool]map[string]any{}
		for tool, path := range map[models.Tool]string{
			models.ToolMobSF: buildMobSF,
			models.ToolSonar: buildSonar,
		} {
			if path == "" {
				continue
			}
			var payload map[string]any
			if err := readJSONFile(path, &payload); err != nil {
				return err
			}
			payloads[tool] = payload
		}

		builder, err := newBuilder(log, buildRules)
		if err != nil {
			return err
		}

		report, err := builder.Build(services.BuildInput{
			ContentHash: buildHash,
			Payloads:    payloads,
		})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), report)
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildMobSF, "mobsf", "", "MobSF JSON report")
	buildCmd.Flags().StringVar(&buildSonar, "sonar", "", "Sonar JSON report")
	buildCmd.Flags().StringVar(&buildHash, "hash", "", "content hash of the scanned binary")
	buildCmd.Flags().StringVar(&buildRules, "rules", "", "permission rules YAML file")
	rootCmd.AddCommand(buildCmd)
}
