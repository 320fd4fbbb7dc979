package execx

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Reserved exit codes reported by Run for execution failures that
// never came from the tool itself.
const (
	ExitTimeout  = 124
	ExitFailure  = 126
	ExitNotFound = 127
)

// Result holds the execution result.
type Result struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
	ExitCode int
}

// Run executes a command with context/timeout, capturing output and duration.
// The argument vector is passed through verbatim; nothing is ever routed
// through a shell. It returns exit code 124 for timeout, 127 when the
// binary is not found, and 126 for any other failure where the process
// never produced an exit code of its own.
func Run(ctx context.Context, name string, args []string, dir string) (Result, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
		ExitCode: 0,
	}

	if err != nil {
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			res.ExitCode = ExitTimeout
		case errors.Is(err, exec.ErrNotFound):
			res.ExitCode = ExitNotFound
		default:
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				res.ExitCode = exitErr.ExitCode()
			} else {
				// Start failed (permissions, bad binary, ...); there is
				// no real exit code to report.
				res.ExitCode = ExitFailure
			}
		}
	}

	return res, err
}

// LookPath reports whether the named binary is resolvable on PATH.
func LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
