package detect

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectTarget(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		"requirements.txt",
		"requirements-dev.txt",
		"app/main.py",
		"app/util.py",
		"docs/readme.md",
		".venv/lib/requirements.txt", // Should be ignored
		"venv/pip.py",                // Should be ignored
		"__pycache__/main.cpython-312.pyc",
		".git/config", // Should be ignored
	}

	for _, f := range files {
		path := filepath.Join(tmpDir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(""), 0644); err != nil {
			t.Fatal(err)
		}
	}

	res, err := DetectTarget(tmpDir)
	if err != nil {
		t.Fatalf("DetectTarget failed: %v", err)
	}

	if len(res.Requirements) != 2 {
		t.Errorf("expected 2 requirements files, got %d: %v", len(res.Requirements), res.Requirements)
	}
	if res.PythonFiles != 2 {
		t.Errorf("expected 2 python files, got %d", res.PythonFiles)
	}

	for _, path := range res.Requirements {
		if filepath.Base(filepath.Dir(path)) == "lib" {
			t.Error("found requirements file in .venv that should be ignored")
		}
	}
}

func TestPrimaryRequirements(t *testing.T) {
	tmpDir := t.TempDir()

	for _, f := range []string{"extras/requirements.txt", "requirements.txt"} {
		path := filepath.Join(tmpDir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(""), 0644); err != nil {
			t.Fatal(err)
		}
	}

	res, err := DetectTarget(tmpDir)
	if err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(tmpDir, "requirements.txt")
	if got := res.PrimaryRequirements(tmpDir); got != want {
		t.Errorf("expected root requirements.txt to win, got %s", got)
	}
}

func TestPrimaryRequirements_Empty(t *testing.T) {
	var res DetectionResult
	if got := res.PrimaryRequirements("."); got != "" {
		t.Errorf("expected empty string for no requirements, got %s", got)
	}
}
