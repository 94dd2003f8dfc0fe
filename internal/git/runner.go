package git

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mrz1836/go-prreview/internal/logging"
)

// Result carries the captured output of one git invocation. A non-zero
// exit status is reported here, not as an error, so callers decide handling.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the command exited with status zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// CommandRunner executes git commands in a working directory, capturing
// stdout, stderr and the exit status. Implementations never retry.
type CommandRunner interface {
	Run(ctx context.Context, dir string, args ...string) (*Result, error)
}

// realCommandRunner spawns actual git processes.
type realCommandRunner struct {
	logger *logrus.Logger
	redact *logging.RedactionService
}

// NewCommandRunner creates a runner that executes the git binary.
func NewCommandRunner(logger *logrus.Logger) CommandRunner {
	return &realCommandRunner{
		logger: logger,
		redact: logging.NewRedactionService(),
	}
}

// Run executes git with the given arguments in dir. A non-zero exit status
// is returned inside Result with a nil error; the error return is reserved
// for spawn-level failures (binary missing, context canceled).
func (r *realCommandRunner) Run(ctx context.Context, dir string, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, "git", args...) //nolint:gosec // argument lists are built from validated identifiers
	cmd.Dir = dir
	// Fail fast on missing credentials instead of hanging on a prompt.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.logger != nil && r.logger.IsLevelEnabled(logrus.DebugLevel) {
		r.logger.WithFields(logrus.Fields{
			"command": r.redact.RedactSensitive("git " + strings.Join(args, " ")),
			"dir":     dir,
		}).Debug("Executing git command")
	}

	err := cmd.Run()

	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		result.ExitCode = exitErr.ExitCode()
	}

	if !result.Success() && r.logger != nil {
		r.logger.WithFields(logrus.Fields{
			"command":   r.redact.RedactSensitive("git " + strings.Join(args, " ")),
			"exit_code": result.ExitCode,
			"stderr":    result.Stderr,
		}).Debug("Git command exited non-zero")
	}

	return result, nil
}
