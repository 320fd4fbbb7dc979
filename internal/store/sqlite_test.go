package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"secagent/internal/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "secagent.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func storedReport(score float64, deps, code int) model.Report {
	return model.Report{
		Tool:          model.ToolName,
		SchemaVersion: model.SchemaVersion,
		GeneratedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Target:        "/tmp/project",
		Results: []model.ScanResult{
			{Tool: "pip-audit", Kind: model.KindDependency, Findings: []model.Finding{}},
		},
		Summary:   model.Summary{DependencyVulnerabilities: deps, CodeIssues: code},
		RiskScore: &score,
	}
}

func TestSQLiteStore_SaveAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, storedReport(4.2, 2, 1), "billing", "main")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty scan id")
	}

	det, err := s.ByID(ctx, id)
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if det == nil {
		t.Fatal("expected stored scan, got nil")
	}
	if det.Project != "billing" || det.Branch != "main" {
		t.Errorf("unexpected keys: %s/%s", det.Project, det.Branch)
	}
	if det.RiskScore != 4.2 {
		t.Errorf("expected risk score 4.2, got %v", det.RiskScore)
	}
	if det.DependencyVulnerabilities != 2 || det.CodeIssues != 1 {
		t.Errorf("unexpected counts: %+v", det.ScanSummary)
	}
	if det.Report.Tool != model.ToolName {
		t.Errorf("report round-trip lost the tool name: %q", det.Report.Tool)
	}
}

func TestSQLiteStore_ByID_Missing(t *testing.T) {
	s := openTestStore(t)

	det, err := s.ByID(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if det != nil {
		t.Error("expected nil for missing scan id")
	}
}

func TestSQLiteStore_RecentAndStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Save(ctx, storedReport(2.0, 1, 0), "billing", "main"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, storedReport(8.0, 5, 3), "billing", "main"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, storedReport(1.0, 0, 1), "web", "dev"); err != nil {
		t.Fatal(err)
	}

	all, err := s.Recent(ctx, 10, "")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 scans, got %d", len(all))
	}

	billing, err := s.Recent(ctx, 10, "billing")
	if err != nil {
		t.Fatal(err)
	}
	if len(billing) != 2 {
		t.Errorf("expected 2 billing scans, got %d", len(billing))
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalScans != 3 {
		t.Errorf("expected 3 total scans, got %d", stats.TotalScans)
	}
	if stats.HighRiskScans != 1 {
		t.Errorf("expected 1 high risk scan, got %d", stats.HighRiskScans)
	}
	if stats.LastScanAt == nil {
		t.Error("expected last scan timestamp")
	}
}

func TestSQLiteStore_Trends(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	today := func(score float64) model.Report {
		rep := storedReport(score, 1, 0)
		rep.GeneratedAt = time.Now().UTC()
		return rep
	}
	ancient := storedReport(9.0, 5, 5)
	ancient.GeneratedAt = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

	if _, err := s.Save(ctx, today(2.0), "billing", "main"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, today(6.0), "billing", "main"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, ancient, "billing", "main"); err != nil {
		t.Fatal(err)
	}

	trends, err := s.Trends(ctx, 30)
	if err != nil {
		t.Fatalf("Trends failed: %v", err)
	}
	if len(trends) != 1 {
		t.Fatalf("expected 1 trend point inside the window, got %d", len(trends))
	}
	if trends[0].Scans != 2 {
		t.Errorf("expected 2 scans on the day, got %d", trends[0].Scans)
	}
	if trends[0].AverageRiskScore != 4.0 {
		t.Errorf("expected average risk 4.0, got %v", trends[0].AverageRiskScore)
	}
}

func TestSQLiteStore_StatsEmpty(t *testing.T) {
	s := openTestStore(t)

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalScans != 0 || stats.AverageRiskScore != 0 || stats.LastScanAt != nil {
		t.Errorf("unexpected empty stats: %+v", stats)
	}
}
