package model

import "fmt"

// ToolKind classifies a scanner by what it audits.
type ToolKind string

const (
	KindDependency ToolKind = "dependency"
	KindCode       ToolKind = "code"
)

// Finding represents a normalized security finding from one scanner.
// Dependency findings carry Package/InstalledVersion, code findings File/Line.
type Finding struct {
	Source           string         `json:"source"`
	Severity         Severity       `json:"severity"`
	ID               string         `json:"id"`
	Package          string         `json:"package,omitempty"`
	InstalledVersion string         `json:"installed_version,omitempty"`
	FixedVersion     *string        `json:"fixed_version,omitempty"`
	File             string         `json:"file,omitempty"`
	Line             int            `json:"line,omitempty"`
	Description      string         `json:"description,omitempty"`
	URL              *string        `json:"url,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// Subject returns the affected subject of the finding, either
// "package version" or "file:line".
func (f Finding) Subject() string {
	if f.Package != "" {
		if f.InstalledVersion != "" {
			return f.Package + " " + f.InstalledVersion
		}
		return f.Package
	}
	if f.File != "" {
		if f.Line > 0 {
			return fmt.Sprintf("%s:%d", f.File, f.Line)
		}
		return f.File
	}
	return ""
}
