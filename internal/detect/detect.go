package detect

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DetectionResult describes the Python surface of a target directory.
type DetectionResult struct {
	Requirements []string `json:"requirements"`
	PythonFiles  int      `json:"python_files"`
}

// Ignored directories (exact match on folder name)
var ignoredDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	".venv":        {},
	"venv":         {},
	"__pycache__":  {},
	".tox":         {},
}

// DetectTarget scans the root directory for requirements files and Python
// sources. It skips ignored directories and returns sorted absolute paths.
func DetectTarget(root string) (DetectionResult, error) {
	var res DetectionResult
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return res, err
	}

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if _, ok := ignoredDirs[info.Name()]; ok {
				return filepath.SkipDir
			}
			return nil
		}

		filename := strings.ToLower(info.Name())

		// requirements.txt, requirements-dev.txt, requirements/base.txt style names
		if strings.HasPrefix(filename, "requirements") && strings.HasSuffix(filename, ".txt") {
			res.Requirements = append(res.Requirements, path)
		}

		if strings.HasSuffix(filename, ".py") {
			res.PythonFiles++
		}

		return nil
	})

	if err != nil {
		return res, err
	}

	// Ensure deterministic order
	sort.Strings(res.Requirements)

	return res, nil
}

// PrimaryRequirements returns the requirements file the dependency audit
// should use: an exact requirements.txt at the target root wins, otherwise
// the first detected requirements file, otherwise "".
func (d DetectionResult) PrimaryRequirements(root string) string {
	absRoot, err := filepath.Abs(root)
	if err == nil {
		rootReq := filepath.Join(absRoot, "requirements.txt")
		for _, r := range d.Requirements {
			if r == rootReq {
				return r
			}
		}
	}
	if len(d.Requirements) > 0 {
		return d.Requirements[0]
	}
	return ""
}
