package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"appscore-lab/internal/config"
	"appscore-lab/internal/detection/permissions"
	"appscore-lab/internal/domain/services"
	"appscore-lab/pkg/logger"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "appscore",
	Short: "Build, score and compare mobile app security reports",
	Long: `appscore merges MobSF and Sonar scan payloads into a unified report,
scores it, and diffs reports across builds of the same app.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
}

// newLogger writes console logs to stderr so stdout stays machine-readable
func newLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: os.Stderr,
	})
}

// loadConfig returns the config when one is present; a CLI run needs none
func loadConfig(log *logger.Logger) *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Warn().Err(err).Msg("config not loaded, using defaults")
		return nil
	}
	return cfg
}

// newBuilder wires the report pipeline, honoring a rules file override
func newBuilder(log *logger.Logger, rulesFile string) (*services.ReportBuilder, error) {
	if rulesFile == "" {
		if cfg := loadConfig(log); cfg != nil {
			rulesFile = cfg.Permissions.RulesFile
		}
	}
	classifier, err := permissions.NewLoader(log).Load(rulesFile)
	if err != nil {
		return nil, err
	}
	scorer := services.NewScorer(log, nil)
	detector := services.NewPermissionDetector(classifier, log)
	return services.NewReportBuilder(services.NewExtractor(), services.NewSeverityNormalizer(), detector, scorer, log), nil
}

func readJSONFile(path string, dest any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
