package model

import "time"

// SchemaVersion identifies the report wire format.
const SchemaVersion = "1"

// ToolName is the value of the top-level "tool" key in emitted reports.
const ToolName = "secagent"

// ScanResult is one scanner's complete output for one run, including
// failure state. Produced by a scanner adapter, consumed by the merger.
type ScanResult struct {
	Tool     string        `json:"tool"`
	Kind     ToolKind      `json:"kind"`
	Args     []string      `json:"args,omitempty"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"-"`
	Stderr   string        `json:"stderr,omitempty"`
	Failed   bool          `json:"failed,omitempty"`
	Error    string        `json:"error,omitempty"`
	Findings []Finding     `json:"findings"`
}

// ScannerMeta summarizes one scanner invocation inside the report meta block.
type ScannerMeta struct {
	ExitCode     int      `json:"exit_code"`
	Args         []string `json:"args,omitempty"`
	Stderr       string   `json:"stderr,omitempty"`
	FindingCount int      `json:"finding_count"`
	DurationMS   int64    `json:"duration_ms,omitempty"`
	Failed       bool     `json:"failed"`
	Error        string   `json:"error,omitempty"`
}

type Meta struct {
	GeneratedBy string                 `json:"generated_by"`
	Scanners    map[string]ScannerMeta `json:"scanners"`
}

type Summary struct {
	DependencyVulnerabilities int `json:"dependency_vulnerabilities"`
	CodeIssues                int `json:"code_issues"`
}

// Report is the unified output document merging all scan results.
// Summary counts are always derived from Results; nothing maintains
// them independently.
type Report struct {
	Tool          string       `json:"tool"`
	SchemaVersion string       `json:"schema_version"`
	GeneratedAt   time.Time    `json:"generated_at"`
	Target        string       `json:"target"`
	Meta          Meta         `json:"meta"`
	Results       []ScanResult `json:"results"`
	Summary       Summary      `json:"summary"`
	RiskScore     *float64     `json:"risk_score,omitempty"`
}

// Degraded reports whether any scanner failed during the run.
func (r Report) Degraded() bool {
	for _, res := range r.Results {
		if res.Failed {
			return true
		}
	}
	return false
}

// FindingCount returns the total number of findings across all results.
func (r Report) FindingCount() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Findings)
	}
	return n
}

// MaxSeverity returns the highest severity across all findings, or
// SeverityUnknown when there are none.
func (r Report) MaxSeverity() Severity {
	max := SeverityUnknown
	for _, res := range r.Results {
		for _, f := range res.Findings {
			if f.Severity.Rank() > max.Rank() {
				max = f.Severity
			}
		}
	}
	return max
}
