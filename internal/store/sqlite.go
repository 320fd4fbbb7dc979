package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"secagent/internal/model"
)

// created_at is stored as UTC RFC 3339 text so ordering and parsing stay
// driver-independent.
const timeFormat = time.RFC3339Nano

const schema = `
CREATE TABLE IF NOT EXISTS scan_records (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	scan_id     TEXT NOT NULL UNIQUE,
	project     TEXT NOT NULL DEFAULT '',
	branch      TEXT NOT NULL DEFAULT '',
	target      TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	risk_score  REAL NOT NULL DEFAULT 0,
	dependency_vulnerabilities INTEGER NOT NULL DEFAULT 0,
	code_issues INTEGER NOT NULL DEFAULT 0,
	degraded    INTEGER NOT NULL DEFAULT 0,
	report      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scan_records_project ON scan_records(project, branch, created_at);
`

// SQLiteStore persists reports to a local SQLite database, keyed by
// (project, branch, timestamp).
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initializes) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan database: %w", err)
	}
	// modernc sqlite handles one writer; keep the pool small.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize scan database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save appends a report and returns the generated scan id.
func (s *SQLiteStore) Save(ctx context.Context, rep model.Report, project, branch string) (string, error) {
	scanID, err := newScanID()
	if err != nil {
		return "", err
	}

	raw, err := json.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("failed to serialize report: %w", err)
	}

	score := 0.0
	if rep.RiskScore != nil {
		score = *rep.RiskScore
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scan_records
			(scan_id, project, branch, target, created_at, risk_score,
			 dependency_vulnerabilities, code_issues, degraded, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scanID, project, branch, rep.Target, rep.GeneratedAt.UTC().Format(timeFormat), score,
		rep.Summary.DependencyVulnerabilities, rep.Summary.CodeIssues,
		boolToInt(rep.Degraded()), string(raw),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save scan record: %w", err)
	}
	return scanID, nil
}

// Recent returns the newest scans, optionally filtered by project.
func (s *SQLiteStore) Recent(ctx context.Context, limit int, project string) ([]ScanSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT scan_id, project, branch, target, created_at, risk_score,
		       dependency_vulnerabilities, code_issues, degraded
		FROM scan_records`
	args := []any{}
	if project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScanSummary
	for rows.Next() {
		var sum ScanSummary
		var degraded int
		var created string
		if err := rows.Scan(&sum.ScanID, &sum.Project, &sum.Branch, &sum.Target,
			&created, &sum.RiskScore, &sum.DependencyVulnerabilities,
			&sum.CodeIssues, &degraded); err != nil {
			return nil, err
		}
		sum.CreatedAt, _ = time.Parse(timeFormat, created)
		sum.Degraded = degraded != 0
		out = append(out, sum)
	}
	return out, rows.Err()
}

// ByID returns one stored scan with its full report, or nil when absent.
func (s *SQLiteStore) ByID(ctx context.Context, scanID string) (*ScanDetails, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT scan_id, project, branch, target, created_at, risk_score,
		       dependency_vulnerabilities, code_issues, degraded, report
		FROM scan_records WHERE scan_id = ?`, scanID)

	var det ScanDetails
	var degraded int
	var raw, created string
	err := row.Scan(&det.ScanID, &det.Project, &det.Branch, &det.Target,
		&created, &det.RiskScore, &det.DependencyVulnerabilities,
		&det.CodeIssues, &degraded, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	det.CreatedAt, _ = time.Parse(timeFormat, created)
	det.Degraded = degraded != 0

	if err := json.Unmarshal([]byte(raw), &det.Report); err != nil {
		return nil, fmt.Errorf("stored report is corrupt: %w", err)
	}
	return &det, nil
}

// Stats aggregates the whole store.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var avg sql.NullFloat64
	var last sql.NullString

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       AVG(risk_score),
		       SUM(CASE WHEN risk_score > 7 THEN 1 ELSE 0 END),
		       MAX(created_at)
		FROM scan_records`)

	var highRisk sql.NullInt64
	if err := row.Scan(&st.TotalScans, &avg, &highRisk, &last); err != nil {
		return st, err
	}
	if avg.Valid {
		st.AverageRiskScore = avg.Float64
	}
	if highRisk.Valid {
		st.HighRiskScans = int(highRisk.Int64)
	}
	if last.Valid {
		if t, err := time.Parse(timeFormat, last.String); err == nil {
			t = t.UTC()
			st.LastScanAt = &t
		}
	}
	return st, nil
}

// Trends returns daily average risk over the last days days, oldest
// first. Days outside (0, 365] fall back to 30.
func (s *SQLiteStore) Trends(ctx context.Context, days int) ([]TrendPoint, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	// created_at is RFC 3339 UTC text, so its first ten bytes are the day.
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")

	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(created_at, 1, 10) AS day,
		       AVG(risk_score),
		       COUNT(*)
		FROM scan_records
		WHERE substr(created_at, 1, 10) >= ?
		GROUP BY day
		ORDER BY day`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Day, &p.AverageRiskScore, &p.Scans); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func newScanID() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ReportStore = (*SQLiteStore)(nil)
var _ Reader = (*SQLiteStore)(nil)
