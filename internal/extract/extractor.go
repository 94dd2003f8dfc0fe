// Package extract derives diff text, diff statistics, and commit logs from
// a synchronized working copy.
//
// All comparisons run against remote-tracking refs (origin/<branch>), never
// local branch state, so results reflect exactly what the last fetch saw.
// Every operation is best-effort: a failure degrades to empty content with
// a diagnostic, and the other operations remain unaffected.
package extract

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mrz1836/go-prreview/internal/git"
)

// Extractor produces diff artifacts between two branches of a working copy.
type Extractor struct {
	git    git.Client
	logger *logrus.Logger
}

// New creates an Extractor over the given git client.
func New(gitClient git.Client, logger *logrus.Logger) *Extractor {
	return &Extractor{
		git:    gitClient,
		logger: logger,
	}
}

// prepare positions the working copy on the base branch and brings it level
// with its remote counterpart. It runs before every extraction so each call
// is independently retryable even if branch state drifted in between.
func (e *Extractor) prepare(ctx context.Context, path, base string) error {
	if err := e.git.Fetch(ctx, path, false); err != nil {
		return err
	}
	if err := e.git.Checkout(ctx, path, base); err != nil {
		return err
	}
	return e.git.Pull(ctx, path, "origin", base)
}

// Diff returns the unified three-dot diff between origin/base and
// origin/head, or empty text on failure.
func (e *Extractor) Diff(ctx context.Context, path, base, head string) string {
	if err := e.prepare(ctx, path, base); err != nil {
		e.warn("diff", base, head, err)
		return ""
	}

	diff, err := e.git.Diff(ctx, path, "origin/"+base, "origin/"+head)
	if err != nil {
		e.warn("diff", base, head, err)
		return ""
	}
	return diff
}

// DiffStat returns the per-file change-count table for the same comparison,
// or empty text on failure.
func (e *Extractor) DiffStat(ctx context.Context, path, base, head string) string {
	if err := e.prepare(ctx, path, base); err != nil {
		e.warn("diff stat", base, head, err)
		return ""
	}

	stat, err := e.git.DiffStat(ctx, path, "origin/"+base, "origin/"+head)
	if err != nil {
		e.warn("diff stat", base, head, err)
		return ""
	}
	return stat
}

// CommitHistory returns one line per commit reachable from origin/head but
// not origin/base (two-dot), or empty text on failure.
func (e *Extractor) CommitHistory(ctx context.Context, path, base, head string) string {
	if err := e.prepare(ctx, path, base); err != nil {
		e.warn("commit history", base, head, err)
		return ""
	}

	log, err := e.git.Log(ctx, path, "origin/"+base, "origin/"+head)
	if err != nil {
		e.warn("commit history", base, head, err)
		return ""
	}
	return log
}

// ChangedFiles returns the list of paths touched between the two branches,
// or nil on failure.
func (e *Extractor) ChangedFiles(ctx context.Context, path, base, head string) []string {
	if err := e.prepare(ctx, path, base); err != nil {
		e.warn("changed files", base, head, err)
		return nil
	}

	files, err := e.git.ChangedFiles(ctx, path, "origin/"+base, "origin/"+head)
	if err != nil {
		e.warn("changed files", base, head, err)
		return nil
	}
	return files
}

func (e *Extractor) warn(operation, base, head string, err error) {
	if e.logger == nil {
		return
	}
	e.logger.WithFields(logrus.Fields{
		"operation": operation,
		"base":      base,
		"head":      head,
		"error":     err.Error(),
	}).Warn("Diff extraction degraded to empty content")
}
