package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is looked up in the scan target first, then the working
// directory.
const FileName = ".secagent.yaml"

// Config carries defaults for the scan pipeline. Every field can be
// overridden by a CLI flag; zero values mean "use the built-in default".
type Config struct {
	TimeoutSec    int    `yaml:"timeout"`
	FailOn        string `yaml:"fail_on"`
	Output        string `yaml:"output"`
	LLMProvider   string `yaml:"llm_provider"`
	LLMModel      string `yaml:"llm_model"`
	SummaryFormat string `yaml:"summary_format"`
	DBPath        string `yaml:"db_path"`
	Project       string `yaml:"project"`
	Branch        string `yaml:"branch"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		TimeoutSec:    600,
		FailOn:        "high",
		Output:        "",
		LLMProvider:   "openai",
		LLMModel:      "gpt-4o-mini",
		SummaryFormat: "md",
		DBPath:        "secagent.db",
	}
}

// Load reads configuration for the given target directory: built-in
// defaults overlaid with the first .secagent.yaml found in the target or
// the working directory. A missing file is not an error.
func Load(target string) (Config, error) {
	cfg := Defaults()

	for _, dir := range []string{target, "."} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, FileName)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return cfg, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return cfg, nil
	}

	return cfg, nil
}
