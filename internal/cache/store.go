// Package cache maps repository identifiers to local working-copy
// directories under a shared cache root.
//
// One directory per identifier, reused across runs. Entries are refreshed
// in place by the synchronizer and deleted either on operator request or as
// a recovery step when an update leaves them unusable.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	apperrors "github.com/mrz1836/go-prreview/internal/errors"
	"github.com/mrz1836/go-prreview/internal/git"
)

// Common errors
var (
	// ErrOutsideRoot is returned when a purge target does not live under
	// the cache root.
	ErrOutsideRoot = fmt.Errorf("path is outside the cache root")
)

// DefaultRoot returns the fallback cache location under the user's home
// directory, used when no override is configured.
func DefaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory: fall back to a path relative to the working dir.
		return ".prreview-cache"
	}
	return filepath.Join(home, ".prreview-cache")
}

// Store locates cache entries under a single root directory.
type Store struct {
	root   string
	git    git.Client
	logger *logrus.Logger
}

// NewStore creates a Store rooted at root, creating the directory if it
// does not exist. The root always exists before any entry is resolved
// into it.
func NewStore(root string, gitClient git.Client, logger *logrus.Logger) (*Store, error) {
	if root == "" {
		return nil, apperrors.EmptyFieldError("cache root")
	}

	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache root %s: %w", root, err)
	}

	return &Store{
		root:   root,
		git:    gitClient,
		logger: logger,
	}, nil
}

// Root returns the cache root directory.
func (s *Store) Root() string {
	return s.root
}

// Resolve derives the cache path for an identifier without touching the
// filesystem. Underscores in the name are doubled before the separator is
// replaced with a single underscore; Split guarantees the owner contains no
// underscore, so the first underscore in an entry is always the separator
// and distinct identifiers never collide: "octo/demo" becomes "octo_demo"
// while "a/b_x" becomes "a_b__x".
func (s *Store) Resolve(identifier string) (string, error) {
	owner, name, err := Split(identifier)
	if err != nil {
		return "", err
	}

	entry := owner + "_" + escape(name)
	return filepath.Join(s.root, entry), nil
}

// ExistsAndValid reports whether the identifier's cache entry exists on
// disk and is a usable git working copy. Any failure counts as invalid.
func (s *Store) ExistsAndValid(ctx context.Context, identifier string) bool {
	path, err := s.Resolve(identifier)
	if err != nil {
		return false
	}

	if _, err := os.Stat(path); err != nil {
		return false
	}

	return s.git.IsRepository(ctx, path)
}

// PurgeAll recursively deletes every cache entry, then recreates the empty
// root so the existence invariant holds for subsequent calls.
func (s *Store) PurgeAll() error {
	if err := os.RemoveAll(s.root); err != nil {
		return fmt.Errorf("failed to remove cache root %s: %w", s.root, err)
	}

	if s.logger != nil {
		s.logger.WithField("cache_root", s.root).Info("Cache cleaned")
	}

	return os.MkdirAll(s.root, 0o750)
}

// PurgeOne recursively deletes a single cache entry. The path must resolve
// to a directory under the cache root; anything else is refused.
func (s *Store) PurgeOne(path string) error {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove cache entry %s: %w", path, err)
	}

	if s.logger != nil {
		s.logger.WithField("path", path).Debug("Cache entry removed")
	}

	return nil
}

// ownerPattern matches valid GitHub account names: letters, digits and
// hyphens only. Keeping underscores out of the owner makes the cache path
// encoding unambiguous.
var ownerPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Split validates an owner/name identifier and returns its components.
func Split(identifier string) (owner, name string, err error) {
	parts := strings.Split(identifier, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", apperrors.ErrInvalidRepoFormat, identifier)
	}
	if !ownerPattern.MatchString(parts[0]) {
		return "", "", fmt.Errorf("%w: %q", apperrors.ErrInvalidRepoFormat, identifier)
	}
	return parts[0], parts[1], nil
}

func escape(component string) string {
	return strings.ReplaceAll(component, "_", "__")
}
