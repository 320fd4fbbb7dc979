package merge

import (
	"encoding/json"
	"testing"
	"time"

	"secagent/internal/model"
)

func depResult(findings ...model.Finding) model.ScanResult {
	return model.ScanResult{
		Tool:     "pip-audit",
		Kind:     model.KindDependency,
		Findings: findings,
	}
}

func codeResult(findings ...model.Finding) model.ScanResult {
	return model.ScanResult{
		Tool:     "bandit",
		Kind:     model.KindCode,
		Findings: findings,
	}
}

func depFinding(id string, sev model.Severity) model.Finding {
	return model.Finding{
		Source:           "pip-audit",
		Severity:         sev,
		ID:               id,
		Package:          "pkg-" + id,
		InstalledVersion: "1.0.0",
	}
}

func codeFinding(id string, sev model.Severity) model.Finding {
	return model.Finding{
		Source:   "bandit",
		Severity: sev,
		ID:       id,
		File:     "app.py",
		Line:     10,
	}
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMerge_SummaryMatchesFindings(t *testing.T) {
	results := []model.ScanResult{
		depResult(depFinding("CVE-1", model.SeverityHigh), depFinding("CVE-2", model.SeverityLow)),
		codeResult(codeFinding("B101", model.SeverityMedium)),
	}

	rep := Merge(results, "/tmp/project", fixedNow)

	if rep.Summary.DependencyVulnerabilities != 2 {
		t.Errorf("expected 2 dependency vulnerabilities, got %d", rep.Summary.DependencyVulnerabilities)
	}
	if rep.Summary.CodeIssues != 1 {
		t.Errorf("expected 1 code issue, got %d", rep.Summary.CodeIssues)
	}
	if rep.FindingCount() != 3 {
		t.Errorf("expected 3 findings total, got %d", rep.FindingCount())
	}

	// Meta counts must agree with the findings actually in the report
	for _, res := range rep.Results {
		meta := rep.Meta.Scanners[res.Tool]
		if meta.FindingCount != len(res.Findings) {
			t.Errorf("meta count for %s is %d, findings are %d", res.Tool, meta.FindingCount, len(res.Findings))
		}
	}
}

func TestMerge_OrderIndependent(t *testing.T) {
	a := depResult(depFinding("CVE-1", model.SeverityHigh), depFinding("CVE-2", model.SeverityCritical))
	b := codeResult(codeFinding("B602", model.SeverityHigh), codeFinding("B105", model.SeverityMedium))

	rep1 := Merge([]model.ScanResult{a, b}, "/t", fixedNow)
	rep2 := Merge([]model.ScanResult{b, a}, "/t", fixedNow)

	j1, err := json.Marshal(rep1)
	if err != nil {
		t.Fatal(err)
	}
	j2, err := json.Marshal(rep2)
	if err != nil {
		t.Fatal(err)
	}
	if string(j1) != string(j2) {
		t.Error("permuting scan results changed the merged report")
	}

	// Findings within a tool are sorted severity desc
	for _, res := range rep1.Results {
		for i := 1; i < len(res.Findings); i++ {
			if res.Findings[i-1].Severity.Rank() < res.Findings[i].Severity.Rank() {
				t.Errorf("findings for %s not sorted by severity", res.Tool)
			}
		}
	}
}

func TestMerge_Dedupe(t *testing.T) {
	f := depFinding("CVE-1", model.SeverityHigh)
	rep := Merge([]model.ScanResult{depResult(f, f, f)}, "/t", fixedNow)

	if rep.Summary.DependencyVulnerabilities != 1 {
		t.Errorf("expected duplicates collapsed to 1, got %d", rep.Summary.DependencyVulnerabilities)
	}
}

func TestMerge_ZeroFindings(t *testing.T) {
	rep := Merge([]model.ScanResult{depResult(), codeResult()}, "/t", fixedNow)

	if rep.Summary.DependencyVulnerabilities != 0 || rep.Summary.CodeIssues != 0 {
		t.Errorf("expected empty summary, got %+v", rep.Summary)
	}
	if rep.RiskScore == nil || *rep.RiskScore != 0 {
		t.Errorf("expected risk score 0, got %v", rep.RiskScore)
	}
	if rep.Degraded() {
		t.Error("clean run should not be degraded")
	}
}

func TestMerge_FailedScannerInMeta(t *testing.T) {
	failed := model.ScanResult{
		Tool:     "bandit",
		Kind:     model.KindCode,
		ExitCode: 124,
		Failed:   true,
		Error:    "bandit timed out",
	}
	rep := Merge([]model.ScanResult{depResult(depFinding("CVE-1", model.SeverityHigh)), failed}, "/t", fixedNow)

	meta, ok := rep.Meta.Scanners["bandit"]
	if !ok {
		t.Fatal("failed scanner missing from meta")
	}
	if !meta.Failed || meta.Error == "" {
		t.Errorf("failed scanner not flagged in meta: %+v", meta)
	}
	if !rep.Degraded() {
		t.Error("report with a failed scanner should be degraded")
	}
	// The surviving scanner still counts
	if rep.Summary.DependencyVulnerabilities != 1 {
		t.Errorf("expected 1 dependency vulnerability, got %d", rep.Summary.DependencyVulnerabilities)
	}
}

func TestMerge_SingleHighDependency(t *testing.T) {
	rep := Merge([]model.ScanResult{
		depResult(depFinding("CVE-1", model.SeverityHigh)),
		codeResult(),
	}, "/t", fixedNow)

	if rep.Summary.DependencyVulnerabilities != 1 || rep.Summary.CodeIssues != 0 {
		t.Errorf("unexpected summary: %+v", rep.Summary)
	}
	if rep.RiskScore == nil || *rep.RiskScore <= 0 {
		t.Errorf("expected positive risk score, got %v", rep.RiskScore)
	}
}
