package pipaudit

import (
	"encoding/json"
	"fmt"
	"strings"

	"secagent/internal/model"
)

// auditReport is the object form emitted by recent pip-audit versions.
// Older versions emit the dependency list directly.
type auditReport struct {
	Dependencies []auditDependency `json:"dependencies"`
	Fixes        []json.RawMessage `json:"fixes"`
}

type auditDependency struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Vulns   []auditVuln `json:"vulns"`
}

type auditVuln struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	FixVersions []string `json:"fix_versions"`
	Aliases     []string `json:"aliases"`
	// Severity is not guaranteed by pip-audit; when present it can be a
	// level string or a numeric CVSS score depending on the data source.
	Severity any `json:"severity"`
	Cvss     any `json:"cvss_score"`
}

// ParseAudit parses pip-audit JSON output, accepting both output shapes:
// a top-level dependency list (older versions) and an object with
// "dependencies" and "fixes" keys.
func ParseAudit(jsonOutput string) ([]model.Finding, error) {
	trimmed := strings.TrimSpace(jsonOutput)
	if trimmed == "" {
		return nil, nil
	}

	var report auditReport
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &report.Dependencies); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pip-audit json list: %w", err)
		}
	} else {
		if err := json.Unmarshal([]byte(trimmed), &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pip-audit json: %w", err)
		}
	}

	var findings []model.Finding
	for _, dep := range report.Dependencies {
		for _, v := range dep.Vulns {
			var fixedPtr *string
			if len(v.FixVersions) > 0 {
				fixed := v.FixVersions[0]
				fixedPtr = &fixed
			}

			f := model.Finding{
				Source:           toolName,
				Severity:         extractSeverity(v),
				ID:               v.ID,
				Package:          dep.Name,
				InstalledVersion: dep.Version,
				FixedVersion:     fixedPtr,
				Description:      v.Description,
			}
			if len(v.Aliases) > 0 {
				f.Metadata = map[string]any{"aliases": v.Aliases}
			}
			findings = append(findings, f)
		}
	}

	return findings, nil
}

// extractSeverity derives a severity level from whatever the advisory
// carries: a numeric CVSS score is bucketed, a level string is parsed,
// and anything else defaults to medium.
func extractSeverity(v auditVuln) model.Severity {
	for _, raw := range []any{v.Severity, v.Cvss} {
		switch val := raw.(type) {
		case float64:
			return model.SeverityFromScore(val)
		case string:
			if sev, err := model.ParseSeverity(val); err == nil {
				return sev
			}
		}
	}
	return model.SeverityMedium
}
