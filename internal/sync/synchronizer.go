// Package sync ensures a valid, up-to-date local working copy exists for a
// repository identifier, cloning on first use and fetch/resetting on reuse.
//
// The cache is read-only scratch space: an update hard-resets the working
// copy to the remote default branch and removes untracked files, trading
// any local state for a guaranteed clean, remote-matching copy.
package sync

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mrz1836/go-prreview/internal/cache"
	apperrors "github.com/mrz1836/go-prreview/internal/errors"
	"github.com/mrz1836/go-prreview/internal/git"
)

// state describes a cache entry during synchronization.
type state int

const (
	// stateAbsent means no valid working copy exists; only a clone helps.
	stateAbsent state = iota
	// stateValid means a working copy exists and can be updated in place.
	stateValid
	// stateUpdateFailed means an in-place update failed and the entry must
	// be re-cloned.
	stateUpdateFailed
)

// Options configures a Synchronizer.
type Options struct {
	// RemoteBase is the platform URL prefix, e.g. "https://github.com".
	RemoteBase string
	// Token is embedded in the clone URL and supplied through a transient
	// credential helper for updates. Optional for public repositories.
	Token string
	// DefaultBranch is the branch compared against its remote tip to decide
	// whether an existing working copy is stale. Defaults to "main".
	DefaultBranch string
}

// Synchronizer materializes and refreshes cached working copies.
type Synchronizer struct {
	store  *cache.Store
	git    git.Client
	logger *logrus.Logger
	opts   Options
}

// New creates a Synchronizer over the given cache store and git client.
func New(store *cache.Store, gitClient git.Client, logger *logrus.Logger, opts Options) *Synchronizer {
	if opts.RemoteBase == "" {
		opts.RemoteBase = "https://github.com"
	}
	if opts.DefaultBranch == "" {
		opts.DefaultBranch = "main"
	}

	return &Synchronizer{
		store:  store,
		git:    gitClient,
		logger: logger,
		opts:   opts,
	}
}

// Sync returns the path of a valid, up-to-date working copy for the
// identifier. An existing entry is fetch/reset in place; a failed update
// deletes the entry and falls back to a fresh clone exactly once. Clone
// failure, and a second consecutive update failure, are fatal.
func (s *Synchronizer) Sync(ctx context.Context, identifier string) (string, error) {
	path, err := s.store.Resolve(identifier)
	if err != nil {
		return "", err
	}

	current := stateAbsent
	if s.store.ExistsAndValid(ctx, identifier) {
		current = stateValid
	}

	// recovered tracks whether the one-time re-clone recovery has already
	// run, so a second failure terminates instead of looping.
	recovered := false

	for {
		switch current {
		case stateValid:
			if err := s.update(ctx, path); err != nil {
				s.logger.WithFields(logrus.Fields{
					"repo":  identifier,
					"error": err.Error(),
				}).Warn("Update failed, re-cloning repository")
				current = stateUpdateFailed
				continue
			}
			return path, nil

		case stateUpdateFailed:
			if recovered {
				return "", fmt.Errorf("%w: recovery re-clone also failed for %s", apperrors.ErrSyncFailed, identifier)
			}
			recovered = true
			if err := s.store.PurgeOne(path); err != nil {
				return "", apperrors.WrapWithContext(err, "remove unrecoverable cache entry")
			}
			current = stateAbsent

		case stateAbsent:
			if err := s.clone(ctx, identifier, path); err != nil {
				if recovered {
					return "", fmt.Errorf("%w: recovery re-clone also failed for %s: %w", apperrors.ErrSyncFailed, identifier, err)
				}
				return "", err
			}
			return path, nil
		}
	}
}

// clone performs a fresh clone into path, removing any stale non-repository
// directory first. Authentication failures carry a token-scope hint.
func (s *Synchronizer) clone(ctx context.Context, identifier, path string) error {
	if _, err := os.Stat(path); err == nil {
		if err := s.store.PurgeOne(path); err != nil {
			return apperrors.WrapWithContext(err, "remove stale cache directory")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"repo": identifier,
		"path": path,
	}).Info("Cloning repository")

	if err := s.git.Clone(ctx, s.remoteURL(identifier), path); err != nil {
		if git.IsAuthError(err) {
			return fmt.Errorf("%w: %w (the repository may be private; ensure the token has 'repo' scope)", apperrors.ErrCloneFailed, err)
		}
		return fmt.Errorf("%w: %w", apperrors.ErrCloneFailed, err)
	}

	return nil
}

// update refreshes an existing working copy: optional transient credential
// helper, fetch everything, then hard-reset to the remote default branch tip
// only when the local tip is behind.
func (s *Synchronizer) update(ctx context.Context, path string) error {
	if s.opts.Token != "" {
		if err := s.git.SetCredentialHelper(ctx, path, s.opts.Token); err != nil {
			return err
		}
	}

	if err := s.git.Fetch(ctx, path, true); err != nil {
		return err
	}

	behind, err := s.git.BehindCount(ctx, path, s.opts.DefaultBranch)
	if err != nil {
		return err
	}

	if behind == 0 {
		s.logger.WithField("path", path).Debug("Repository is up to date")
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"path":   path,
		"behind": behind,
	}).Info("Repository is behind remote, resetting")

	if err := s.git.ResetHard(ctx, path, "origin/"+s.opts.DefaultBranch); err != nil {
		return err
	}

	return s.git.CleanUntracked(ctx, path)
}

// remoteURL builds the clone URL for an identifier, embedding the token as
// URL userinfo when present. This is the only place the authenticated URL
// is constructed; it must never be logged in full.
func (s *Synchronizer) remoteURL(identifier string) string {
	base := strings.TrimSuffix(s.opts.RemoteBase, "/")

	if s.opts.Token != "" {
		if scheme, host, ok := strings.Cut(base, "://"); ok {
			return fmt.Sprintf("%s://%s@%s/%s.git", scheme, s.opts.Token, host, identifier)
		}
	}

	return fmt.Sprintf("%s/%s.git", base, identifier)
}
