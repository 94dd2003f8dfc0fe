// Package git provides Git repository operations by shelling out to the
// git binary through a swappable command runner.
package git

import "context"

// Client defines the interface for Git operations against a local working copy.
type Client interface {
	// Clone clones a repository from url into path. The parent of path must
	// exist; path itself must not.
	Clone(ctx context.Context, url, path string) error

	// IsRepository reports whether path is a git working copy. Any failure
	// to query repository metadata counts as "not a repository".
	IsRepository(ctx context.Context, path string) bool

	// Fetch downloads all remote branches, and tags when tags is true.
	Fetch(ctx context.Context, repoPath string, tags bool) error

	// BehindCount returns how many commits HEAD is behind origin/<branch>.
	BehindCount(ctx context.Context, repoPath, branch string) (int, error)

	// ResetHard forces the working copy to exactly match ref, discarding
	// local modifications to tracked files.
	ResetHard(ctx context.Context, repoPath, ref string) error

	// CleanUntracked removes untracked files and directories.
	CleanUntracked(ctx context.Context, repoPath string) error

	// Checkout switches the working copy to the specified branch.
	Checkout(ctx context.Context, repoPath, branch string) error

	// Pull updates the current branch from remote/branch.
	Pull(ctx context.Context, repoPath, remote, branch string) error

	// SetCredentialHelper installs a transient credential helper scoped to
	// the working copy that supplies token as both username and password.
	// The token never reaches the persisted remote URL configuration.
	SetCredentialHelper(ctx context.Context, repoPath, token string) error

	// Diff returns the three-dot (merge-base) diff between baseRef and headRef.
	Diff(ctx context.Context, repoPath, baseRef, headRef string) (string, error)

	// DiffStat returns the three-dot diff summarized as a per-file change table.
	DiffStat(ctx context.Context, repoPath, baseRef, headRef string) (string, error)

	// Log returns one line per commit reachable from headRef but not baseRef.
	Log(ctx context.Context, repoPath, baseRef, headRef string) (string, error)

	// ChangedFiles returns the paths touched between baseRef and headRef.
	ChangedFiles(ctx context.Context, repoPath, baseRef, headRef string) ([]string, error)
}
