package permissions

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"appscore-lab/internal/domain/models"
)

// Match sources recorded on a DangerousPermission
const (
	MatchedByDescriptor = "descriptor"
	MatchedByName       = "name"
)

type keywordRule struct {
	keyword string
	re      *regexp.Regexp
}

// Classifier is a compiled permission rule table
type Classifier struct {
	rules       models.PermissionRuleSet
	descriptors []*regexp.Regexp
	keywords    []keywordRule
}

// Compile validates and compiles a rule set. Descriptor patterns and keywords
// always match case-insensitively and unanchored.
func Compile(rs models.PermissionRuleSet) (*Classifier, error) {
	c := &Classifier{rules: rs}

	for _, p := range rs.DescriptorPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid descriptor pattern %q: %w", p, err)
		}
		c.descriptors = append(c.descriptors, re)
	}

	for _, kw := range rs.NameKeywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + keywordPattern(kw))
		if err != nil {
			return nil, fmt.Errorf("invalid name keyword %q: %w", kw, err)
		}
		c.keywords = append(c.keywords, keywordRule{keyword: kw, re: re})
	}

	if len(c.rules.DescriptorFields) == 0 {
		c.rules.DescriptorFields = models.DefaultPermissionRuleSet().DescriptorFields
	}

	return c, nil
}

// Default returns the classifier for the built-in rule table
func Default() *Classifier {
	c, err := Compile(models.DefaultPermissionRuleSet())
	if err != nil {
		panic(err)
	}
	return c
}

// keywordPattern quotes a keyword and turns each * into a word-character run
func keywordPattern(kw string) string {
	parts := strings.Split(kw, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(parts, `\w*`)
}

// Rules returns the rule table the classifier was compiled from
func (c *Classifier) Rules() models.PermissionRuleSet {
	return c.rules
}

// Descriptor resolves the descriptor string for a permission entry. Objects
// use the first configured descriptor field holding a non-empty string.
func (c *Classifier) Descriptor(v any) string {
	switch d := v.(type) {
	case string:
		return d
	case map[string]any:
		for _, field := range c.rules.DescriptorFields {
			if s, ok := d[field].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// Match classifies a single permission. ok is false when it is not dangerous.
func (c *Classifier) Match(name string, descriptor any) (models.DangerousPermission, bool) {
	desc := c.Descriptor(descriptor)

	if desc != "" {
		for _, re := range c.descriptors {
			if re.MatchString(desc) {
				return models.DangerousPermission{Name: name, Descriptor: desc, MatchedBy: MatchedByDescriptor}, true
			}
		}
	}

	for _, kw := range c.keywords {
		if kw.re.MatchString(name) {
			return models.DangerousPermission{Name: name, Descriptor: desc, MatchedBy: MatchedByName}, true
		}
	}

	return models.DangerousPermission{}, false
}

// Classify returns the dangerous subset of a permission-name to descriptor
// mapping, sorted by name
func (c *Classifier) Classify(perms map[string]any) []models.DangerousPermission {
	names := make([]string, 0, len(perms))
	for name := range perms {
		names = append(names, name)
	}
	sort.Strings(names)

	dangerous := make([]models.DangerousPermission, 0)
	for _, name := range names {
		if dp, ok := c.Match(name, perms[name]); ok {
			dangerous = append(dangerous, dp)
		}
	}
	return dangerous
}
