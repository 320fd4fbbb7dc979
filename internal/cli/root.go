package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped by the build.
var Version = "dev"

// Exit codes: 0 clean, 1 fatal error, 2 findings at/above the severity
// floor, 3 completed with scanner errors.
const (
	exitOK       = 0
	exitFatal    = 1
	exitFailOn   = 2
	exitDegraded = 3
)

var rootCmd = &cobra.Command{
	Use:   "secagent",
	Short: "secagent - orchestrates security scanners and summarizes findings",
	Long: "secagent runs pip-audit and bandit against a project, merges their findings\n" +
		"into a single JSON report, and can summarize and persist the result.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintf(os.Stderr, "%s\n", ee.msg)
		}
		return ee.code
	}

	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return exitFatal
}

// exitError carries a specific process exit code out of a command.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the secagent version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "secagent", Version)
		},
	}
}
