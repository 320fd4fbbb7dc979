package merge

import (
	"fmt"
	"sort"
	"time"

	"secagent/internal/model"
)

// Merge combines per-scanner results into a single Report. It is
// order-independent: permuting the input yields an identical Report,
// because results are sorted by tool name and findings within each
// result are deduplicated and sorted deterministically. Summary counts
// are always derived from the merged findings.
func Merge(results []model.ScanResult, target string, now time.Time) model.Report {
	merged := make([]model.ScanResult, len(results))
	copy(merged, results)

	for i := range merged {
		merged[i].Findings = normalizeFindings(merged[i].Findings)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Tool < merged[j].Tool
	})

	scanners := make(map[string]model.ScannerMeta, len(merged))
	var summary model.Summary
	for _, res := range merged {
		scanners[res.Tool] = model.ScannerMeta{
			ExitCode:     res.ExitCode,
			Args:         res.Args,
			Stderr:       res.Stderr,
			FindingCount: len(res.Findings),
			DurationMS:   res.Duration.Milliseconds(),
			Failed:       res.Failed,
			Error:        res.Error,
		}
		switch res.Kind {
		case model.KindDependency:
			summary.DependencyVulnerabilities += len(res.Findings)
		case model.KindCode:
			summary.CodeIssues += len(res.Findings)
		}
	}

	score := Score(merged)

	return model.Report{
		Tool:          model.ToolName,
		SchemaVersion: model.SchemaVersion,
		GeneratedAt:   now.UTC(),
		Target:        target,
		Meta: model.Meta{
			GeneratedBy: model.ToolName,
			Scanners:    scanners,
		},
		Results:   merged,
		Summary:   summary,
		RiskScore: &score,
	}
}

// normalizeFindings deduplicates and sorts one scanner's findings so the
// per-tool ordering is stable across runs.
func normalizeFindings(findings []model.Finding) []model.Finding {
	unique := make(map[string]model.Finding, len(findings))
	for _, f := range findings {
		key := dedupeKey(f)
		if _, exists := unique[key]; !exists {
			unique[key] = f
		}
	}

	result := make([]model.Finding, 0, len(unique))
	for _, f := range unique {
		result = append(result, f)
	}

	sort.Slice(result, func(i, j int) bool {
		fi, fj := result[i], result[j]

		// Severity DESC (Critical > High ...)
		ri := fi.Severity.Rank()
		rj := fj.Severity.Rank()
		if ri != rj {
			return ri > rj
		}

		if fi.ID != fj.ID {
			return fi.ID < fj.ID
		}

		return fi.Subject() < fj.Subject()
	})

	return result
}

func dedupeKey(f model.Finding) string {
	return fmt.Sprintf("%s|%s|%s|%s", f.Source, f.ID, f.Subject(), f.Severity)
}
