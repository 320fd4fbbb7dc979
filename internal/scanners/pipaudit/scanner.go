package pipaudit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"secagent/internal/execx"
	"secagent/internal/model"
	"secagent/internal/scanners"
)

const toolName = "pip-audit"

// Scanner wraps the pip-audit dependency auditor.
type Scanner struct{}

func New() Scanner { return Scanner{} }

func (Scanner) Name() string         { return toolName }
func (Scanner) Kind() model.ToolKind { return model.KindDependency }

// Scan runs pip-audit with JSON output and parses its findings.
// Exit code 1 means "vulnerabilities found" and is not a failure;
// anything else non-zero is.
func (s Scanner) Scan(ctx context.Context, target scanners.Target) model.ScanResult {
	if !execx.LookPath(toolName) {
		return scanners.Failed(toolName, s.Kind(), nil, execx.ExitNotFound, "",
			fmt.Errorf("pip-audit executable not found in PATH"))
	}

	args := []string{"-f", "json"}
	mode := "environment"
	if target.Requirements != "" {
		args = append(args, "-r", target.Requirements)
		mode = "requirements"
	}

	res, err := execx.Run(ctx, toolName, args, target.Path)

	if target.OutDir != "" {
		saveRaw(target.OutDir, res.Stdout)
	}

	if res.ExitCode == execx.ExitTimeout {
		return scanners.Failed(toolName, s.Kind(), args, res.ExitCode, res.Stderr,
			fmt.Errorf("pip-audit timed out"))
	}
	if res.ExitCode != 0 && res.ExitCode != 1 {
		return scanners.Failed(toolName, s.Kind(), args, res.ExitCode, res.Stderr,
			fmt.Errorf("pip-audit failed (exit %d): %v", res.ExitCode, err))
	}

	findings, parseErr := ParseAudit(res.Stdout)
	if parseErr != nil {
		return scanners.Failed(toolName, s.Kind(), args, res.ExitCode, res.Stderr,
			fmt.Errorf("parse error: %w", parseErr))
	}

	return model.ScanResult{
		Tool:     toolName,
		Kind:     s.Kind(),
		Args:     args,
		ExitCode: res.ExitCode,
		Duration: res.Duration,
		Stderr:   strings.TrimSpace(res.Stderr),
		Findings: withMode(findings, mode),
	}
}

func withMode(findings []model.Finding, mode string) []model.Finding {
	for i := range findings {
		if findings[i].Metadata == nil {
			findings[i].Metadata = map[string]any{}
		}
		findings[i].Metadata["mode"] = mode
	}
	return findings
}

func saveRaw(outDir, stdout string) {
	rawOutDir := filepath.Join(outDir, "raw")
	if err := os.MkdirAll(rawOutDir, 0755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(rawOutDir, "pip-audit.json"), []byte(stdout), 0644)
}
