package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"secagent/internal/model"
)

func gateReport(findings ...model.Finding) model.Report {
	score := 1.0
	return model.Report{
		Tool:          model.ToolName,
		SchemaVersion: model.SchemaVersion,
		GeneratedAt:   time.Now().UTC(),
		Target:        "/tmp/project",
		Results: []model.ScanResult{
			{Tool: "pip-audit", Kind: model.KindDependency, Findings: findings},
		},
		Summary:   model.Summary{DependencyVulnerabilities: len(findings)},
		RiskScore: &score,
	}
}

func TestGateExit_Clean(t *testing.T) {
	err := gateExit(zap.NewNop().Sugar(), gateReport(), model.SeverityHigh)
	if err != nil {
		t.Errorf("expected nil for clean report, got %v", err)
	}
}

func TestGateExit_FailOn(t *testing.T) {
	rep := gateReport(model.Finding{Source: "pip-audit", Severity: model.SeverityCritical, ID: "CVE-1"})
	err := gateExit(zap.NewNop().Sugar(), rep, model.SeverityHigh)

	var ee *exitError
	if !errors.As(err, &ee) {
		t.Fatalf("expected exitError, got %v", err)
	}
	if ee.code != exitFailOn {
		t.Errorf("expected exit code %d, got %d", exitFailOn, ee.code)
	}
}

func TestGateExit_Degraded(t *testing.T) {
	rep := gateReport()
	rep.Results = append(rep.Results, model.ScanResult{
		Tool: "bandit", Kind: model.KindCode, Failed: true, Error: "timed out",
	})
	err := gateExit(zap.NewNop().Sugar(), rep, model.SeverityHigh)

	var ee *exitError
	if !errors.As(err, &ee) {
		t.Fatalf("expected exitError, got %v", err)
	}
	if ee.code != exitDegraded {
		t.Errorf("expected exit code %d, got %d", exitDegraded, ee.code)
	}
}

func TestGateExit_FailOnBeatsDegraded(t *testing.T) {
	rep := gateReport(model.Finding{Source: "pip-audit", Severity: model.SeverityHigh, ID: "CVE-1"})
	rep.Results = append(rep.Results, model.ScanResult{
		Tool: "bandit", Kind: model.KindCode, Failed: true, Error: "timed out",
	})
	err := gateExit(zap.NewNop().Sugar(), rep, model.SeverityHigh)

	var ee *exitError
	if !errors.As(err, &ee) {
		t.Fatalf("expected exitError, got %v", err)
	}
	if ee.code != exitFailOn {
		t.Errorf("severity gate should take priority, got code %d", ee.code)
	}
}

func TestEmit_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	opts := scanOptions{
		output:   filepath.Join(dir, "report.json"),
		markdown: filepath.Join(dir, "report.md"),
	}

	if err := emit(gateReport(), opts); err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	for _, name := range []string{"report.json", "report.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := newVersionCmd()
	var sb strings.Builder
	cmd.SetOut(&sb)
	cmd.Run(cmd, nil)
	if !strings.Contains(sb.String(), "secagent") {
		t.Errorf("unexpected version output: %q", sb.String())
	}
}
