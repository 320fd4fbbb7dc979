package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"secagent/internal/model"
)

// JSON serializes the report with stable field ordering.
func JSON(rep model.Report) ([]byte, error) {
	return json.MarshalIndent(rep, "", "  ")
}

// WriteJSON writes the report JSON to path atomically.
func WriteJSON(rep model.Report, path string) error {
	data, err := JSON(rep)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// WriteMarkdown renders the report as Markdown and writes it atomically.
func WriteMarkdown(rep model.Report, path string) error {
	return writeAtomic(path, []byte(Markdown(rep)))
}

// writeAtomic writes data to a temp file in the destination directory and
// renames it into place, so a partial write never clobbers a prior valid
// report.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize report: %w", err)
	}
	return nil
}

// Gate reports whether any finding is at or above the severity floor.
// It is what makes the pipeline usable as a CI gate.
func Gate(rep model.Report, floor model.Severity) bool {
	for _, res := range rep.Results {
		for _, f := range res.Findings {
			if f.Severity.Rank() >= floor.Rank() {
				return true
			}
		}
	}
	return false
}
