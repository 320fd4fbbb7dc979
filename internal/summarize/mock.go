package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"secagent/internal/model"
)

// MockSummarizer builds a synopsis from the report alone, with no network
// calls. Identical reports always produce identical summaries, which makes
// it suitable for CI and demo output.
type MockSummarizer struct{}

func (MockSummarizer) Summarize(_ context.Context, rep model.Report, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return mockJSON(rep)
	default:
		return mockMarkdown(rep), nil
	}
}

func mockMarkdown(rep model.Report) string {
	var sb strings.Builder

	sb.WriteString("## Scan Summary\n\n")
	if rep.RiskScore != nil {
		fmt.Fprintf(&sb, "Overall risk score: **%.2f / 10** (max severity: %s).\n\n", *rep.RiskScore, rep.MaxSeverity())
	}
	fmt.Fprintf(&sb, "Found %d dependency vulnerabilit(ies) and %d code issue(s) in `%s`.\n\n",
		rep.Summary.DependencyVulnerabilities, rep.Summary.CodeIssues, rep.Target)

	top := topFindings(rep, 5)
	if len(top) > 0 {
		sb.WriteString("Top issues:\n")
		for _, f := range top {
			fmt.Fprintf(&sb, "- [%s] %s (%s): %s\n", f.Severity, f.ID, f.Subject(), firstLine(f.Description))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No issues found. Good to merge.\n")
	}

	if rep.Degraded() {
		sb.WriteString("Note: one or more scanners failed; results are partial.\n")
	}

	return sb.String()
}

type mockSummaryJSON struct {
	RiskScore    float64  `json:"risk_score"`
	Overview     string   `json:"overview"`
	Dependencies int      `json:"dependency_vulnerabilities"`
	CodeIssues   int      `json:"code_issues"`
	TopIssues    []string `json:"top_issues"`
	Degraded     bool     `json:"degraded"`
}

func mockJSON(rep model.Report) (string, error) {
	score := 0.0
	if rep.RiskScore != nil {
		score = *rep.RiskScore
	}

	var top []string
	for _, f := range topFindings(rep, 5) {
		top = append(top, fmt.Sprintf("[%s] %s %s", f.Severity, f.ID, f.Subject()))
	}

	payload := mockSummaryJSON{
		RiskScore:    score,
		Overview:     fmt.Sprintf("Scan of %s", rep.Target),
		Dependencies: rep.Summary.DependencyVulnerabilities,
		CodeIssues:   rep.Summary.CodeIssues,
		TopIssues:    top,
		Degraded:     rep.Degraded(),
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// topFindings returns up to n findings across all tools, worst first.
// Findings are only severity-sorted per tool in the report, so a pile of
// medium issues from one tool must not crowd out a critical from another.
func topFindings(rep model.Report, n int) []model.Finding {
	var out []model.Finding
	for _, res := range rep.Results {
		out = append(out, res.Findings...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() > out[j].Severity.Rank()
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
