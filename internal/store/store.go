package store

import (
	"context"
	"time"

	"secagent/internal/model"
)

// ReportStore is the narrow persistence boundary of the pipeline: the
// core only appends reports; queries belong to the dashboard.
type ReportStore interface {
	Save(ctx context.Context, rep model.Report, project, branch string) (string, error)
	Close() error
}

// ScanSummary is one stored scan in list views.
type ScanSummary struct {
	ScanID                    string    `json:"scan_id"`
	Project                   string    `json:"project"`
	Branch                    string    `json:"branch"`
	Target                    string    `json:"target"`
	CreatedAt                 time.Time `json:"created_at"`
	RiskScore                 float64   `json:"risk_score"`
	DependencyVulnerabilities int       `json:"dependency_vulnerabilities"`
	CodeIssues                int       `json:"code_issues"`
	Degraded                  bool      `json:"degraded"`
}

// ScanDetails is a stored scan including the full report document.
type ScanDetails struct {
	ScanSummary
	Report model.Report `json:"report"`
}

// TrendPoint is one day's aggregated risk in a trend series.
type TrendPoint struct {
	Day              string  `json:"day"`
	AverageRiskScore float64 `json:"average_risk_score"`
	Scans            int     `json:"scans"`
}

// Stats aggregates the store for the dashboard landing page.
type Stats struct {
	TotalScans       int        `json:"total_scans"`
	AverageRiskScore float64    `json:"average_risk_score"`
	HighRiskScans    int        `json:"high_risk_scans"`
	LastScanAt       *time.Time `json:"last_scan_at,omitempty"`
}

// Reader is the query side used by the dashboard.
type Reader interface {
	Recent(ctx context.Context, limit int, project string) ([]ScanSummary, error)
	ByID(ctx context.Context, scanID string) (*ScanDetails, error)
	Stats(ctx context.Context) (Stats, error)
	Trends(ctx context.Context, days int) ([]TrendPoint, error)
}
