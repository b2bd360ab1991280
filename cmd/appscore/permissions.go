package main

import (
	"github.com/spf13/cobra"

	"appscore-lab/internal/detection/permissions"
	"appscore-lab/internal/domain/models"
)

var permissionsRules string

var permissionsCmd = &cobra.Command{
	Use:   "permissions [permissions.json]",
	Short: "Print the active rule table, or classify a permission map",
	Long: `With no argument, prints the active dangerous-permission rule table.
With a file holding a JSON object of permission name to descriptor,
prints the permissions the rules flag as dangerous.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		rulesFile := permissionsRules
		if rulesFile == "" {
			if cfg := loadConfig(log); cfg != nil {
				rulesFile = cfg.Permissions.RulesFile
			}
		}

		classifier, err := permissions.NewLoader(log).Load(rulesFile)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return writeJSON(cmd.OutOrStdout(), classifier.Rules())
		}

		var perms map[string]any
		if err := readJSONFile(args[0], &perms); err != nil {
			return err
		}
		dangerous := classifier.Classify(perms)
		return writeJSON(cmd.OutOrStdout(), struct {
			DangerousPermissions []models.DangerousPermission `json:"dangerous_permissions"`
			Count                int                          `json:"count"`
			Total                int                          `json:"total"`
		}{dangerous, len(dangerous), len(perms)})
	},
}

func init() {
	permissionsCmd.Flags().StringVar(&permissionsRules, "rules", "", "permission rules YAML file")
	rootCmd.AddCommand(permissionsCmd)
}
