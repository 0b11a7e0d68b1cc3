// Package shell runs the external processes the provisioning pipeline
// depends on: the package manager, git, make, and asset tooling. All
// invocations go through the Runner interface so tests can observe or
// suppress process execution.
package shell

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/arthur-debert/dotrig/pkg/errors"
	"github.com/arthur-debert/dotrig/pkg/logging"
	"github.com/rs/zerolog"
)

// Runner executes an external command and waits for it to finish.
// A non-zero exit status is returned as an error.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) error
}

// ExecRunner is the exec-backed Runner used outside of tests
type ExecRunner struct {
	logger zerolog.Logger

	// Stdout/Stderr receive the subprocess output streams. When nil the
	// output is captured and attached to the error on failure only.
	Stdout *os.File
	Stderr *os.File
}

// NewExecRunner creates a Runner that executes real processes
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		logger: logging.GetLogger("shell"),
	}
}

// NewConsoleRunner creates a Runner that streams subprocess output to the
// invoking terminal, the way an interactive provisioning run expects.
func NewConsoleRunner() *ExecRunner {
	return &ExecRunner{
		logger: logging.GetLogger("shell"),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes name with args in dir. An empty dir runs in the current
// working directory. The context cancels the subprocess.
func (r *ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "empty command")
	}

	logging.LogCommand(name, args)
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin

	var captured bytes.Buffer
	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	} else {
		cmd.Stdout = &captured
	}
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	} else {
		cmd.Stderr = &captured
	}

	err := cmd.Run()

	r.logger.Debug().
		Str("command", name).
		Strs("args", args).
		Str("dir", dir).
		Dur("duration", time.Since(start)).
		Bool("success", err == nil).
		Msg("Command finished")

	if err != nil {
		rigErr := errors.Wrapf(err, errors.ErrInternal, "command %q failed", commandLine(name, args))
		if out := strings.TrimSpace(captured.String()); out != "" {
			rigErr = rigErr.WithDetail("output", out)
		}
		return rigErr
	}

	return nil
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
