package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"

	"github.com/mrz1836/go-prreview/internal/logging"
)

// Common errors
var (
	ErrGitNotFound    = errors.New("git command not found in PATH")
	ErrNotARepository = errors.New("not a git repository")
	ErrGitCommand     = errors.New("git command failed")
	ErrAuthFailed     = errors.New("git authentication failed")
)

// minGitVersion is the oldest git known to support every invocation the
// client issues (three-dot diff ranges, clean -fd, credential helpers).
const minGitVersion = "2.20.0"

// gitClient implements the Client interface using git commands.
type gitClient struct {
	runner CommandRunner
	logger *logrus.Logger
	redact *logging.RedactionService
}

// NewClient creates a new Git client. It verifies the git binary is on PATH
// and warns when the installed version is older than the supported floor.
func NewClient(ctx context.Context, runner CommandRunner, logger *logrus.Logger) (Client, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, ErrGitNotFound
	}

	c := &gitClient{
		runner: runner,
		logger: logger,
		redact: logging.NewRedactionService(),
	}

	c.checkVersion(ctx)

	return c, nil
}

// checkVersion parses `git version` output and warns on unsupported
// versions. Parse failures are only debug-logged; an odd version string
// is no reason to refuse to run.
func (g *gitClient) checkVersion(ctx context.Context) {
	res, err := g.runner.Run(ctx, "", "version")
	if err != nil || !res.Success() {
		return
	}

	// "git version 2.39.2" or "git version 2.39.2.windows.1"
	fields := strings.Fields(strings.TrimSpace(res.Stdout))
	if len(fields) < 3 {
		return
	}

	parts := strings.SplitN(fields[2], ".", 4)
	if len(parts) < 3 {
		return
	}

	installed, err := semver.NewVersion(strings.Join(parts[:3], "."))
	if err != nil {
		if g.logger != nil {
			g.logger.WithField("version", fields[2]).Debug("Could not parse git version")
		}
		return
	}

	if installed.LessThan(semver.MustParse(minGitVersion)) && g.logger != nil {
		g.logger.WithFields(logrus.Fields{
			"installed": installed.String(),
			"required":  minGitVersion,
		}).Warn("Installed git is older than the supported minimum")
	}
}

// Clone clones a repository from url into path.
func (g *gitClient) Clone(ctx context.Context, url, path string) error {
	res, err := g.runner.Run(ctx, "", "clone", url, path)
	if err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}
	if !res.Success() {
		if isAuthFailure(res.Stderr) {
			return fmt.Errorf("%w: %s", ErrAuthFailed, g.redact.RedactSensitive(res.Stderr))
		}
		return g.commandError("clone", res)
	}
	return nil
}

// IsRepository reports whether path contains a git working copy.
func (g *gitClient) IsRepository(ctx context.Context, path string) bool {
	res, err := g.runner.Run(ctx, path, "rev-parse", "--git-dir")
	return err == nil && res.Success()
}

// Fetch downloads all remote branches, plus tags when requested.
func (g *gitClient) Fetch(ctx context.Context, repoPath string, tags bool) error {
	args := []string{"fetch", "--all"}
	if tags {
		args = append(args, "--tags")
	}

	res, err := g.runner.Run(ctx, repoPath, args...)
	if err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	if !res.Success() {
		return g.commandError("fetch", res)
	}
	return nil
}

// BehindCount returns how many commits HEAD is behind origin/<branch>.
func (g *gitClient) BehindCount(ctx context.Context, repoPath, branch string) (int, error) {
	res, err := g.runner.Run(ctx, repoPath, "rev-list", "--count", "HEAD..origin/"+branch)
	if err != nil {
		return 0, fmt.Errorf("failed to count commits behind: %w", err)
	}
	if !res.Success() {
		return 0, g.commandError("rev-list", res)
	}

	count, err := strconv.Atoi(strings.TrimSpace(res.Stdout))
	if err != nil {
		return 0, fmt.Errorf("unexpected rev-list output %q: %w", strings.TrimSpace(res.Stdout), err)
	}
	return count, nil
}

// ResetHard forces the working copy to exactly match ref.
func (g *gitClient) ResetHard(ctx context.Context, repoPath, ref string) error {
	res, err := g.runner.Run(ctx, repoPath, "reset", "--hard", ref)
	if err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}
	if !res.Success() {
		return g.commandError("reset", res)
	}
	return nil
}

// CleanUntracked removes untracked files and directories.
func (g *gitClient) CleanUntracked(ctx context.Context, repoPath string) error {
	res, err := g.runner.Run(ctx, repoPath, "clean", "-fd")
	if err != nil {
		return fmt.Errorf("failed to clean working copy: %w", err)
	}
	if !res.Success() {
		return g.commandError("clean", res)
	}
	return nil
}

// Checkout switches the working copy to the specified branch.
func (g *gitClient) Checkout(ctx context.Context, repoPath, branch string) error {
	res, err := g.runner.Run(ctx, repoPath, "checkout", branch)
	if err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", branch, err)
	}
	if !res.Success() {
		return g.commandError("checkout", res)
	}
	return nil
}

// Pull updates the current branch from remote/branch.
func (g *gitClient) Pull(ctx context.Context, repoPath, remote, branch string) error {
	res, err := g.runner.Run(ctx, repoPath, "pull", remote, branch)
	if err != nil {
		return fmt.Errorf("failed to pull: %w", err)
	}
	if !res.Success() {
		return g.commandError("pull", res)
	}
	return nil
}

// SetCredentialHelper installs a transient credential helper scoped to the
// working copy. The helper echoes the token as username and password so
// fetch and pull authenticate without the token appearing in the remote URL
// stored in .git/config. The helper line itself contains the token; it is
// constructed only here and never logged.
func (g *gitClient) SetCredentialHelper(ctx context.Context, repoPath, token string) error {
	helper := fmt.Sprintf("!echo 'username=%s'; echo 'password=%s'", token, token)

	res, err := g.runner.Run(ctx, repoPath, "config", "credential.helper", helper)
	if err != nil {
		return fmt.Errorf("failed to configure credential helper: %w", err)
	}
	if !res.Success() {
		return g.commandError("config credential.helper", res)
	}
	return nil
}

// Diff returns the three-dot diff between baseRef and headRef.
func (g *gitClient) Diff(ctx context.Context, repoPath, baseRef, headRef string) (string, error) {
	res, err := g.runner.Run(ctx, repoPath, "diff", baseRef+"..."+headRef)
	if err != nil {
		return "", fmt.Errorf("failed to diff: %w", err)
	}
	if !res.Success() {
		return "", g.commandError("diff", res)
	}
	return res.Stdout, nil
}

// DiffStat returns the three-dot diff summarized per file.
func (g *gitClient) DiffStat(ctx context.Context, repoPath, baseRef, headRef string) (string, error) {
	res, err := g.runner.Run(ctx, repoPath, "diff", "--stat", baseRef+"..."+headRef)
	if err != nil {
		return "", fmt.Errorf("failed to diff stat: %w", err)
	}
	if !res.Success() {
		return "", g.commandError("diff --stat", res)
	}
	return res.Stdout, nil
}

// Log returns one line per commit reachable from headRef but not baseRef.
func (g *gitClient) Log(ctx context.Context, repoPath, baseRef, headRef string) (string, error) {
	res, err := g.runner.Run(ctx, repoPath, "log", "--oneline", baseRef+".."+headRef)
	if err != nil {
		return "", fmt.Errorf("failed to get commit log: %w", err)
	}
	if !res.Success() {
		return "", g.commandError("log", res)
	}
	return res.Stdout, nil
}

// ChangedFiles returns the paths touched between baseRef and headRef.
func (g *gitClient) ChangedFiles(ctx context.Context, repoPath, baseRef, headRef string) ([]string, error) {
	res, err := g.runner.Run(ctx, repoPath, "diff", "--name-only", baseRef+"..."+headRef)
	if err != nil {
		return nil, fmt.Errorf("failed to list changed files: %w", err)
	}
	if !res.Success() {
		return nil, g.commandError("diff --name-only", res)
	}

	var files []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			files = append(files, trimmed)
		}
	}
	return files, nil
}

// commandError converts a failed Result into an error carrying the redacted
// stderr. Common stderr patterns map to sentinel errors.
func (g *gitClient) commandError(operation string, res *Result) error {
	stderr := g.redact.RedactSensitive(strings.TrimSpace(res.Stderr))

	if strings.Contains(stderr, "not a git repository") {
		return ErrNotARepository
	}

	if stderr != "" {
		return fmt.Errorf("%w: %s: %s", ErrGitCommand, operation, stderr)
	}
	return fmt.Errorf("%w: %s: exit status %d", ErrGitCommand, operation, res.ExitCode)
}

// isAuthFailure reports whether stderr indicates a rejected or missing
// credential rather than some other clone failure.
func isAuthFailure(stderr string) bool {
	return strings.Contains(stderr, "Authentication failed") ||
		strings.Contains(stderr, "could not read Username") ||
		strings.Contains(stderr, "Invalid username or password")
}

// IsAuthError reports whether err stems from rejected credentials, so the
// caller can surface a token-scope hint to the operator.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}
