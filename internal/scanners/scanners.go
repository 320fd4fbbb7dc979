package scanners

import (
	"context"
	"sort"

	"secagent/internal/model"
)

// Target describes what a scanner should look at.
type Target struct {
	// Path is the project directory under scan.
	Path string
	// Requirements is an optional explicit requirements file for
	// dependency audits. Empty means "audit the environment".
	Requirements string
	// OutDir receives raw tool output for debugging. Empty disables it.
	OutDir string
}

// Scanner adapts one external tool. Implementations own their subprocess
// and output buffers exclusively; they must never mutate the environment.
type Scanner interface {
	Name() string
	Kind() model.ToolKind
	Scan(ctx context.Context, target Target) model.ScanResult
}

// Failed builds a failed ScanResult for a scanner, preserving whatever
// the subprocess managed to report.
func Failed(name string, kind model.ToolKind, args []string, exitCode int, stderr string, err error) model.ScanResult {
	res := model.ScanResult{
		Tool:     name,
		Kind:     kind,
		Args:     args,
		ExitCode: exitCode,
		Stderr:   stderr,
		Failed:   true,
		Findings: []model.Finding{},
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// RunAll runs every scanner against the target, isolating failures: a
// scanner that fails produces a failed ScanResult and never aborts the
// others. Results come back sorted by tool name so downstream output is
// deterministic regardless of registration order.
func RunAll(ctx context.Context, scs []Scanner, target Target) []model.ScanResult {
	results := make([]model.ScanResult, 0, len(scs))
	for _, s := range scs {
		res := s.Scan(ctx, target)
		if res.Tool == "" {
			res.Tool = s.Name()
		}
		if res.Kind == "" {
			res.Kind = s.Kind()
		}
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Tool < results[j].Tool
	})
	return results
}

// AllFailed reports whether every scanner in the run failed.
func AllFailed(results []model.ScanResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if !r.Failed {
			return false
		}
	}
	return true
}
