package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"secagent/internal/config"
	"secagent/internal/detect"
	"secagent/internal/logging"
	"secagent/internal/merge"
	"secagent/internal/model"
	"secagent/internal/report"
	"secagent/internal/scanners"
	"secagent/internal/scanners/bandit"
	"secagent/internal/scanners/pipaudit"
	"secagent/internal/store"
	"secagent/internal/summarize"
)

type scanOptions struct {
	target        string
	requirements  string
	output        string
	markdown      string
	outDir        string
	failOn        string
	timeoutSec    int
	withLLM       bool
	llmProvider   string
	llmModel      string
	summaryFormat string
	summaryOutput string
	save          bool
	project       string
	branch        string
	dbPath        string
	quiet         bool
	debug         bool
}

func newScanCmd() *cobra.Command {
	opts := scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run pip-audit and bandit and emit a combined JSON report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.target, "target", "t", ".", "Project directory to scan")
	f.StringVarP(&opts.requirements, "requirements", "r", "", "Explicit requirements file to audit (default: autodetect)")
	f.StringVarP(&opts.output, "output", "o", "", "Write the JSON report to a file (default: stdout)")
	f.StringVar(&opts.markdown, "markdown", "", "Also write a Markdown report to a file")
	f.StringVar(&opts.outDir, "raw-out", "", "Directory for raw scanner output (debugging)")
	f.StringVar(&opts.failOn, "fail-on", "", "Severity floor for the CI gate (low, medium, high, critical)")
	f.IntVar(&opts.timeoutSec, "timeout", 0, "Scan timeout in seconds")
	f.BoolVar(&opts.withLLM, "with-llm", false, "Generate an LLM summary")
	f.StringVar(&opts.llmProvider, "llm-provider", "", "Summarizer provider: openai|mock")
	f.StringVar(&opts.llmModel, "llm-model", "", "LLM model name")
	f.StringVar(&opts.summaryFormat, "summary-format", "", "Summary format: md|json")
	f.StringVar(&opts.summaryOutput, "summary-output", "", "Write the summary to a file (default: stdout)")
	f.BoolVar(&opts.save, "save", false, "Persist the report to the scan history database")
	f.StringVar(&opts.project, "project", "", "Project name for persistence")
	f.StringVar(&opts.branch, "branch", "", "Branch name for persistence")
	f.StringVar(&opts.dbPath, "db", "", "Scan history database path")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Only log errors")
	f.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	return cmd
}

func runScan(cmd *cobra.Command, opts scanOptions) error {
	log, err := logging.New(opts.debug, opts.quiet)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := config.Load(opts.target)
	if err != nil {
		return err
	}
	applyConfig(cmd, &opts, cfg)

	floor, err := model.ParseSeverity(opts.failOn)
	if err != nil {
		return fmt.Errorf("invalid fail-on value: %w", err)
	}
	sumFormat, err := summarize.ParseFormat(opts.summaryFormat)
	if err != nil {
		return err
	}

	absTarget, err := filepath.Abs(opts.target)
	if err != nil {
		return fmt.Errorf("invalid target path: %w", err)
	}
	if info, err := os.Stat(absTarget); err != nil || !info.IsDir() {
		return fmt.Errorf("target is not a directory: %s", absTarget)
	}

	det, err := detect.DetectTarget(absTarget)
	if err != nil {
		return fmt.Errorf("target detection failed: %w", err)
	}
	requirements := opts.requirements
	if requirements == "" {
		requirements = det.PrimaryRequirements(absTarget)
	}
	log.Infow("scanning", "target", absTarget,
		"requirements", requirements, "python_files", det.PythonFiles)

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(opts.timeoutSec)*time.Second)
	defer cancel()

	results := scanners.RunAll(ctx, []scanners.Scanner{
		pipaudit.New(),
		bandit.New(),
	}, scanners.Target{
		Path:         absTarget,
		Requirements: requirements,
		OutDir:       opts.outDir,
	})

	for _, res := range results {
		if res.Failed {
			log.Warnw("scanner failed", "tool", res.Tool, "exit_code", res.ExitCode, "error", res.Error)
		} else {
			log.Infow("scanner finished", "tool", res.Tool, "findings", len(res.Findings))
		}
	}

	if scanners.AllFailed(results) {
		return fmt.Errorf("all scanners failed; no report produced")
	}

	rep := merge.Merge(results, absTarget, time.Now())

	if err := emit(rep, opts); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if opts.withLLM {
		summarizeReport(ctx, log, rep, opts, sumFormat)
	}

	if opts.save {
		if err := persist(ctx, log, rep, opts); err != nil {
			return err
		}
	}

	return gateExit(log, rep, floor)
}

// applyConfig fills options the user did not set explicitly from the
// config file (or its defaults).
func applyConfig(cmd *cobra.Command, opts *scanOptions, cfg config.Config) {
	flags := cmd.Flags()
	if opts.timeoutSec <= 0 {
		opts.timeoutSec = cfg.TimeoutSec
	}
	if opts.failOn == "" {
		opts.failOn = cfg.FailOn
	}
	if !flags.Changed("output") && cfg.Output != "" {
		opts.output = cfg.Output
	}
	if opts.llmProvider == "" {
		opts.llmProvider = cfg.LLMProvider
	}
	if opts.llmModel == "" {
		opts.llmModel = cfg.LLMModel
	}
	if opts.summaryFormat == "" {
		opts.summaryFormat = cfg.SummaryFormat
	}
	if opts.dbPath == "" {
		opts.dbPath = cfg.DBPath
	}
	if opts.project == "" {
		opts.project = cfg.Project
	}
	if opts.branch == "" {
		opts.branch = cfg.Branch
	}
}

func emit(rep model.Report, opts scanOptions) error {
	if opts.output != "" {
		if err := report.WriteJSON(rep, opts.output); err != nil {
			return err
		}
	} else {
		data, err := report.JSON(rep)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	}

	if opts.markdown != "" {
		if err := report.WriteMarkdown(rep, opts.markdown); err != nil {
			return err
		}
	}
	return nil
}

// summarizeReport never fails the run: summarizer problems degrade to a
// warning and an absent summary.
func summarizeReport(ctx context.Context, log *zap.SugaredLogger, rep model.Report, opts scanOptions, format summarize.Format) {
	s, err := summarize.Select(opts.llmProvider, os.Getenv("OPENAI_API_KEY"), opts.llmModel)
	if err != nil {
		log.Warnw("summary skipped", "error", err)
		return
	}

	text, err := s.Summarize(ctx, rep, format)
	if err != nil {
		log.Warnw("summary skipped", "error", err)
		return
	}

	if opts.summaryOutput != "" {
		if err := os.WriteFile(opts.summaryOutput, []byte(text), 0644); err != nil {
			log.Warnw("failed to write summary file", "error", err)
			return
		}
		log.Infow("wrote summary", "path", opts.summaryOutput)
		return
	}
	fmt.Println(text)
}

func persist(ctx context.Context, log *zap.SugaredLogger, rep model.Report, opts scanOptions) error {
	st, err := store.OpenSQLite(opts.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	scanID, err := st.Save(ctx, rep, opts.project, opts.branch)
	if err != nil {
		return err
	}
	log.Infow("saved scan", "scan_id", scanID, "project", opts.project, "branch", opts.branch)
	return nil
}

func gateExit(log *zap.SugaredLogger, rep model.Report, floor model.Severity) error {
	if report.Gate(rep, floor) {
		return &exitError{
			code: exitFailOn,
			msg:  fmt.Sprintf("FAILURE: found severity %s or higher", floor),
		}
	}
	if rep.Degraded() {
		return &exitError{
			code: exitDegraded,
			msg:  "COMPLETED WITH ERRORS: one or more scanners failed",
		}
	}
	log.Infow("scan clean",
		"dependency_vulnerabilities", rep.Summary.DependencyVulnerabilities,
		"code_issues", rep.Summary.CodeIssues)
	return nil
}
