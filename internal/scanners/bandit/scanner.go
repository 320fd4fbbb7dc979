package bandit

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

const toolName = "bandit"

// Scanner wraps the bandit static analyzer.
type Scanner struct{}

func New() Scanner { return Scanner{} }

func (Scanner) Name() string         { return toolName }
func (Scanner) Kind() model.ToolKind { return model.KindCode }

// Scan runs bandit recursively over the target with JSON output.
// Exit code 1 means "issues found" and is not a failure.
func (s Scanner) Scan(ctx context.Context, target scanners.Target) model.ScanResult {
	if !execx.LookPath(toolName) {
		return scanners.Failed(toolName, s.Kind(), nil, execx.ExitNotFound, "",
			fmt.Errorf("bandit executable not found in PATH"))
	}

	args := []string{"-r", target.Path, "-f", "json"}
	res, err := execx.Run(ctx, toolName, args, "")

	if target.OutDir != "" {
		saveRaw(target.OutDir, res.Stdout)
	}

	if res.ExitCode == execx.ExitTimeout {
		return scanners.Failed(toolName, s.Kind(), args, res.ExitCode, res.Stderr,
			fmt.Errorf("bandit timed out"))
	}
	if res.ExitCode != 0 && res.ExitCode != 1 {
		return scanners.Failed(toolName, s.Kind(), args, res.ExitCode, res.Stderr,
			fmt.Errorf("bandit failed (exit %d): %v", res.ExitCode, err))
	}

	findings, parseErr := ParseBandit(res.Stdout)
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
		Findings: findings,
	}
}

func saveRaw(outDir, stdout string) {
	rawOutDir := filepath.Join(outDir, "raw")
	if err := os.MkdirAll(rawOutDir, 0755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(rawOutDir, "bandit.json"), []byte(stdout), 0644)
}
