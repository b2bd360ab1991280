package permissions

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"appscore-lab/internal/domain/models"
	"appscore-lab/pkg/logger"
)

// Loader loads permission rule tables from YAML files
type Loader struct {
	logger *logger.Logger
}

// NewLoader creates a new rule loader
func NewLoader(log *logger.Logger) *Loader {
	return &Loader{
		logger: log.WithComponent("permission-loader"),
	}
}

// LoadFile reads a rule table from a YAML file. Sections omitted from the file
// keep the built-in defaults.
func (l *Loader) LoadFile(filePath string) (models.PermissionRuleSet, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return models.PermissionRuleSet{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	rs, err := ParseRules(content)
	if err != nil {
		return models.PermissionRuleSet{}, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Str("version", rs.Version).
		Int("keywords", len(rs.NameKeywords)).
		Int("descriptor_patterns", len(rs.DescriptorPatterns)).
		Msg("loaded permission rules")

	return rs, nil
}

// ParseRules decodes a YAML rule table, filling omitted sections from defaults
func ParseRules(content []byte) (models.PermissionRuleSet, error) {
	var rs models.PermissionRuleSet
	if err := yaml.Unmarshal(content, &rs); err != nil {
		return models.PermissionRuleSet{}, err
	}

	def := models.DefaultPermissionRuleSet()
	if rs.Version == "" {
		rs.Version = "custom"
	}
	if len(rs.DescriptorPatterns) == 0 {
		rs.DescriptorPatterns = def.DescriptorPatterns
	}
	if len(rs.DescriptorFields) == 0 {
		rs.DescriptorFields = def.DescriptorFields
	}
	if len(rs.NameKeywords) == 0 {
		rs.NameKeywords = def.NameKeywords
	}
	return rs, nil
}

// Load returns the compiled classifier for a rules file, or the built-in
// table when path is empty
func (l *Loader) Load(path string) (*Classifier, error) {
	if path == "" {
		return Default(), nil
	}

	rs, err := l.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(rs)
}
