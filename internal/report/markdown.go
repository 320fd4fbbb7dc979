package report

import (
	"fmt"
	"sort"
	"strings"

	"secagent/internal/model"
)

// Markdown renders the report as a human-readable Markdown document.
func Markdown(rep model.Report) string {
	var sb strings.Builder

	sb.WriteString("# Security Scan Report\n\n")
	sb.WriteString(fmt.Sprintf("**Target:** `%s`\n", rep.Target))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n", rep.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	if rep.RiskScore != nil {
		sb.WriteString(fmt.Sprintf("**Risk Score:** %.2f / 10\n", *rep.RiskScore))
	}
	sb.WriteString("\n")

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Category | Count |\n")
	sb.WriteString("| :--- | :--- |\n")
	sb.WriteString(fmt.Sprintf("| Dependency vulnerabilities | %d |\n", rep.Summary.DependencyVulnerabilities))
	sb.WriteString(fmt.Sprintf("| Code issues | %d |\n", rep.Summary.CodeIssues))
	sb.WriteString("\n")

	counts := make(map[model.Severity]int)
	for _, res := range rep.Results {
		for _, f := range res.Findings {
			counts[f.Severity]++
		}
	}
	sb.WriteString("| Severity | Count |\n")
	sb.WriteString("| :--- | :--- |\n")
	sb.WriteString(fmt.Sprintf("| Critical | %d |\n", counts[model.SeverityCritical]))
	sb.WriteString(fmt.Sprintf("| High | %d |\n", counts[model.SeverityHigh]))
	sb.WriteString(fmt.Sprintf("| Medium | %d |\n", counts[model.SeverityMedium]))
	sb.WriteString(fmt.Sprintf("| Low | %d |\n", counts[model.SeverityLow]))
	sb.WriteString("\n")

	for _, res := range rep.Results {
		if len(res.Findings) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s Findings (%d)\n\n", res.Tool, len(res.Findings))
		fmt.Fprintf(&sb, "| Severity | ID | Subject | Description |\n")
		fmt.Fprintf(&sb, "|---|---|---|---|\n")
		for _, f := range res.Findings {
			desc := strings.ReplaceAll(f.Description, "|", "\\|")
			desc = strings.ReplaceAll(desc, "\n", " ")
			if len(desc) > 120 {
				desc = desc[:117] + "..."
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", f.Severity, f.ID, f.Subject(), desc)
		}
		sb.WriteString("\n")
	}

	// Scanner failures section
	var failedTools []string
	for name, meta := range rep.Meta.Scanners {
		if meta.Failed {
			failedTools = append(failedTools, name)
		}
	}
	if len(failedTools) > 0 {
		sort.Strings(failedTools)
		fmt.Fprintf(&sb, "## ⚠️ Scanner Errors (%d)\n\n", len(failedTools))
		fmt.Fprintf(&sb, "> [!WARNING]\n")
		fmt.Fprintf(&sb, "> The following scanners failed. Results are partial.\n\n")
		fmt.Fprintf(&sb, "| Scanner | Exit Code | Error |\n")
		fmt.Fprintf(&sb, "|---|---|---|\n")
		for _, name := range failedTools {
			meta := rep.Meta.Scanners[name]
			msg := strings.ReplaceAll(meta.Error, "|", "\\|")
			msg = strings.ReplaceAll(msg, "\n", " ")
			fmt.Fprintf(&sb, "| %s | %d | %s |\n", name, meta.ExitCode, msg)
		}
	}

	return sb.String()
}
