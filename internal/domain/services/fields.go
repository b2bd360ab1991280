package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FieldTable is an ordered list of aliases for one semantic field. The first
// alias holding a usable value wins.
type FieldTable []string

// String resolves the field as a string. Numbers and booleans are formatted,
// lists of scalars are joined with ", ", and objects contribute their sorted
// keys. Anything else is treated as absent.
func (ft FieldTable) String(m map[string]any) string {
	if m == nil {
		return ""
	}
	for _, alias := range ft {
		v, ok := m[alias]
		if !ok {
			continue
		}
		if s := stringValue(v); s != "" {
			return s
		}
	}
	return ""
}

// Scalar resolves the field as a single scalar value, ignoring lists and objects
func (ft FieldTable) Scalar(m map[string]any) string {
	if m == nil {
		return ""
	}
	for _, alias := range ft {
		if s := scalarString(m[alias]); s != "" {
			return s
		}
	}
	return ""
}

// Strings resolves the field as a list of strings, preserving order and
// dropping duplicates. A single string is split on commas.
func (ft FieldTable) Strings(m map[string]any) []string {
	if m == nil {
		return nil
	}
	for _, alias := range ft {
		v, ok := m[alias]
		if !ok {
			continue
		}
		var raw []string
		switch t := v.(type) {
		case string:
			raw = strings.Split(t, ",")
		case []string:
			raw = t
		case []any:
			for _, item := range t {
				if s := scalarString(item); s != "" {
					raw = append(raw, s)
				}
			}
		}
		if out := orderedSet(raw); len(out) > 0 {
			return out
		}
	}
	return nil
}

// Map resolves the field as a nested object
func (ft FieldTable) Map(m map[string]any) (map[string]any, bool) {
	if m == nil {
		return nil, false
	}
	for _, alias := range ft {
		if nested, ok := m[alias].(map[string]any); ok {
			return nested, true
		}
	}
	return nil, false
}

// Value returns the first alias present with a non-nil value
func (ft FieldTable) Value(m map[string]any) (any, bool) {
	if m == nil {
		return nil, false
	}
	for _, alias := range ft {
		if v, ok := m[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringValue(v any) string {
	switch t := v.(type) {
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := scalarString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return strings.Join(keys, ", ")
	default:
		return scalarString(v)
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return ""
	}
}

func orderedSet(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
