package services

import (
	"sort"
	"strings"

	"appscore-lab/internal/domain/models"
)

// RawFinding is an extracted item before severity normalization
type RawFinding struct {
	Tool          models.Tool
	Section       models.Section
	Category      string
	Title         string
	SeverityToken string
	Description   string
	Location      string
	Remediation   string
	Tags          []string
	CWE           string
	OWASP         string
}

// Normalize converts the raw item into a canonical Finding
func (r RawFinding) Normalize(n *SeverityNormalizer) models.Finding {
	return models.Finding{
		Tool:        r.Tool,
		Category:    r.Category,
		Section:     r.Section,
		Title:       r.Title,
		Severity:    n.Normalize(r.Tool, r.SeverityToken),
		Description: r.Description,
		Location:    r.Location,
		Remediation: r.Remediation,
		Tags:        r.Tags,
		CWE:         r.CWE,
		OWASP:       r.OWASP,
	}
}

// Extraction is everything pulled out of one tool payload
type Extraction struct {
	Tool      models.Tool
	Sectioned bool
	AppInfo   models.AppInfo
	// Findings are in extraction order and exclude side-channel sections
	Findings        []RawFinding
	BinaryHardening []RawFinding
	// Permissions maps permission name to its descriptor (string, object or nil)
	Permissions map[string]any
}

// Extractor pulls structured findings out of raw tool payloads
type Extractor struct {
	rules map[models.Tool]ExtractionRules
}

// NewExtractor creates an extractor; with no rule sets the defaults are used
func NewExtractor(rules ...ExtractionRules) *Extractor {
	if len(rules) == 0 {
		rules = DefaultExtractionRules()
	}
	e := &Extractor{rules: make(map[models.Tool]ExtractionRules, len(rules))}
	for _, r := range rules {
		e.rules[r.Tool] = r
	}
	return e
}

// Rules returns the rule set for a tool
func (e *Extractor) Rules(tool models.Tool) (ExtractionRules, bool) {
	r, ok := e.rules[tool]
	return r, ok
}

// Extract runs a tool's rule set over its payload. Malformed or missing
// sections contribute nothing; only an unknown tool is an error.
func (e *Extractor) Extract(tool models.Tool, payload map[string]any) (*Extraction, error) {
	rules, ok := e.rules[tool]
	if !ok {
		return nil, &InvalidInputError{Field: "tool", Value: tool, Reason: "no extraction rules registered"}
	}

	out := &Extraction{
		Tool:        tool,
		Sectioned:   rules.Sectioned,
		AppInfo:     ExtractAppInfo(payload),
		Findings:    make([]RawFinding, 0),
		Permissions: make(map[string]any),
	}

	for _, sr := range rules.Sections {
		v, ok := sr.Keys.Value(payload)
		if !ok {
			continue
		}

		if sr.Permissions {
			collectPermissions(v, out.Permissions)
			continue
		}

		items := sectionItems(v, sr)
		for _, it := range items {
			rf := buildRawFinding(rules, sr, it)
			if sr.SideChannel {
				out.BinaryHardening = append(out.BinaryHardening, rf)
				continue
			}
			out.Findings = append(out.Findings, rf)
		}
	}

	return out, nil
}

// ExtractAppInfo resolves AppInfo from the payload root, then from nested
// app-info objects for fields the root leaves empty
func ExtractAppInfo(payload map[string]any) models.AppInfo {
	info := appInfoFrom(payload)
	for _, alias := range AppInfoContainers {
		if nested, ok := payload[alias].(map[string]any); ok {
			info = info.Merge(appInfoFrom(nested))
		}
	}
	return info
}

func appInfoFrom(m map[string]any) models.AppInfo {
	return models.AppInfo{
		Name:        AppNameFields.Scalar(m),
		Package:     AppPackageFields.Scalar(m),
		Version:     AppVersionFields.Scalar(m),
		Size:        AppSizeFields.Scalar(m),
		ContentHash: AppHashFields.Scalar(m),
	}
}

// sectionItem is one finding candidate; key is the map key it was found under
type sectionItem struct {
	key      string
	fields   map[string]any
	position []any
}

// sectionItems flattens every accepted section shape into items
func sectionItems(v any, sr SectionRule) []sectionItem {
	switch t := v.(type) {
	case []any:
		return listItems(t)
	case map[string]any:
		if inner, ok := sr.Container.Value(t); ok {
			return sectionItems(inner, SectionRule{SeverityFields: sr.SeverityFields})
		}
		if looksLikeFinding(t) {
			return []sectionItem{{fields: t}}
		}
		return keyedItems(t, sectionSeverityFields(sr))
	default:
		return nil
	}
}

func listItems(list []any) []sectionItem {
	items := make([]sectionItem, 0, len(list))
	for _, el := range list {
		switch t := el.(type) {
		case map[string]any:
			items = append(items, sectionItem{fields: withMetadata(t)})
		case []any:
			if len(t) > 0 {
				items = append(items, sectionItem{position: t})
			}
		}
	}
	return items
}

// keyedItems handles objects keyed by rule id. Keys are visited in sorted
// order since decoded JSON objects carry no order. Values without any finding
// text, such as count summaries, are skipped.
func keyedItems(m map[string]any, severity FieldTable) []sectionItem {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]sectionItem, 0, len(keys))
	for _, k := range keys {
		fields, ok := m[k].(map[string]any)
		if !ok {
			continue
		}
		fields = withMetadata(fields)
		if !hasFindingText(fields, severity) {
			continue
		}
		items = append(items, sectionItem{key: k, fields: fields})
	}
	return items
}

// looksLikeFinding detects a section that is itself a single finding object
func looksLikeFinding(m map[string]any) bool {
	return SeverityFields.Scalar(m) != "" && TitleFields.Scalar(m) != ""
}

// hasFindingText reports whether a title, severity or description alias holds
// a non-empty string. Numeric values do not count: {"high": 1, "info": 2} is
// a summary, not a finding.
func hasFindingText(m map[string]any, severity FieldTable) bool {
	for _, ft := range []FieldTable{TitleFields, severity, DescriptionFields} {
		for _, alias := range ft {
			if s, ok := m[alias].(string); ok && strings.TrimSpace(s) != "" {
				return true
			}
		}
	}
	return false
}

func sectionSeverityFields(sr SectionRule) FieldTable {
	if len(sr.SeverityFields) > 0 {
		return sr.SeverityFields
	}
	return SeverityFields
}

// withMetadata overlays an item's own fields on its metadata sub-object
func withMetadata(fields map[string]any) map[string]any {
	meta, ok := fields[metadataField].(map[string]any)
	if !ok {
		return fields
	}
	merged := make(map[string]any, len(meta)+len(fields))
	for k, v := range meta {
		merged[k] = v
	}
	for k, v := range fields {
		if k == metadataField {
			continue
		}
		merged[k] = v
	}
	return merged
}

func buildRawFinding(rules ExtractionRules, sr SectionRule, it sectionItem) RawFinding {
	rf := RawFinding{
		Tool:     rules.Tool,
		Section:  sr.Section,
		Category: string(sr.Section),
	}

	if it.position != nil {
		// [severity, description, title]
		rf.SeverityToken = positional(it.position, 0)
		rf.Description = positional(it.position, 1)
		rf.Title = positional(it.position, 2)
		if rf.Title == "" {
			rf.Title = rf.Description
		}
		return rf
	}

	severity := sectionSeverityFields(sr)

	rf.Title = TitleFields.Scalar(it.fields)
	rf.SeverityToken = severity.Scalar(it.fields)
	rf.Description = DescriptionFields.String(it.fields)
	rf.Location = LocationFields.String(it.fields)
	rf.Remediation = RemediationFields.String(it.fields)
	rf.Tags = TagFields.Strings(it.fields)
	rf.CWE = CWEFields.String(it.fields)
	rf.OWASP = OWASPFields.String(it.fields)

	if rf.Title == "" {
		rf.Title = it.key
	}
	if rf.Title == "" {
		rf.Title = rf.Description
	}

	if !rules.Sectioned {
		category := CategoryFields
		if len(sr.CategoryFields) > 0 {
			category = sr.CategoryFields
		}
		rf.Category = category.Scalar(it.fields)
		if rf.Category == "" {
			rf.Category = rules.DefaultCategory
		}
	}

	return rf
}

func positional(list []any, i int) string {
	if i >= len(list) {
		return ""
	}
	return scalarString(list[i])
}

// collectPermissions accepts name->descriptor objects, lists of names and
// lists of permission objects
func collectPermissions(v any, into map[string]any) {
	switch t := v.(type) {
	case map[string]any:
		for name, desc := range t {
			if name != "" {
				into[name] = desc
			}
		}
	case []any:
		for _, el := range t {
			switch p := el.(type) {
			case string:
				if p != "" {
					into[p] = nil
				}
			case map[string]any:
				if name := PermissionNameFields.Scalar(p); name != "" {
					into[name] = p
				}
			}
		}
	}
}
