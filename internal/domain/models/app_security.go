package models

// AppInfo identifies the scanned application binary
type AppInfo struct {
	Name        string `json:"name"`
	Package     string `json:"package"`
	Version     string `json:"version"`
	Size        string `json:"size"`
	ContentHash string `json:"content_hash"`
}

// Merge fills empty fields of a from b, leaving populated fields untouched
func (a AppInfo) Merge(b AppInfo) AppInfo {
	if a.Name == "" {
		a.Name = b.Name
	}
	if a.Package == "" {
		a.Package = b.Package
	}
	if a.Version == "" {
		a.Version = b.Version
	}
	if a.Size == "" {
		a.Size = b.Size
	}
	if a.ContentHash == "" {
		a.ContentHash = b.ContentHash
	}
	return a
}

// PermissionRuleSet is the versioned rule table for dangerous-permission detection
type PermissionRuleSet struct {
	Version            string   `json:"version" yaml:"version"`
	DescriptorPatterns []string `json:"descriptor_patterns" yaml:"descriptor_patterns"`
	DescriptorFields   []string `json:"descriptor_fields" yaml:"descriptor_fields"`
	NameKeywords       []string `json:"name_keywords" yaml:"name_keywords"`
}

// DefaultPermissionRuleSet is the built-in rule table
func DefaultPermissionRuleSet() PermissionRuleSet {
	return PermissionRuleSet{
		Version:            "1",
		DescriptorPatterns: []string{`(dangerous|danger|privileged)`},
		DescriptorFields:   []string{"status", "protection_level", "protectionLevel", "level", "type"},
		NameKeywords: []string{
			"WRITE_*",
			"RECORD_AUDIO",
			"CALL_*",
			"SMS",
			"LOCATION",
			"CAMERA",
			"STORAGE",
			"CONTACTS",
			"READ_EXTERNAL_STORAGE",
			"WRITE_EXTERNAL_STORAGE",
			"SYSTEM_ALERT_WINDOW",
			"GET_ACCOUNTS",
			"AUTHENTICATE_ACCOUNTS",
			"REQUEST_INSTALL_PACKAGES",
		},
	}
}
