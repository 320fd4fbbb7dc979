package bandit

import (
	"encoding/json"
	"fmt"
	"strings"

	"secagent/internal/model"
)

type banditReport struct {
	Results []banditResult `json:"results"`
	Errors  []banditError  `json:"errors"`
}

type banditResult struct {
	Filename        string `json:"filename"`
	LineNumber      int    `json:"line_number"`
	TestID          string `json:"test_id"`
	TestName        string `json:"test_name"`
	IssueSeverity   string `json:"issue_severity"` // LOW|MEDIUM|HIGH
	IssueConfidence string `json:"issue_confidence"`
	IssueText       string `json:"issue_text"`
	MoreInfo        string `json:"more_info"`
}

type banditError struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// ParseBandit parses bandit JSON output into normalized findings.
func ParseBandit(jsonOutput string) ([]model.Finding, error) {
	trimmed := strings.TrimSpace(jsonOutput)
	if trimmed == "" {
		return nil, nil
	}

	var report banditReport
	if err := json.Unmarshal([]byte(trimmed), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bandit json: %w", err)
	}

	var findings []model.Finding
	for _, r := range report.Results {
		sev, _ := model.ParseSeverity(r.IssueSeverity)

		var urlPtr *string
		if r.MoreInfo != "" {
			url := r.MoreInfo
			urlPtr = &url
		}

		f := model.Finding{
			Source:      toolName,
			Severity:    sev,
			ID:          r.TestID,
			File:        r.Filename,
			Line:        r.LineNumber,
			Description: r.IssueText,
			URL:         urlPtr,
			Metadata: map[string]any{
				"test_name":  r.TestName,
				"confidence": strings.ToLower(r.IssueConfidence),
			},
		}
		findings = append(findings, f)
	}

	return findings, nil
}
