// Package config loads tool configuration from a YAML file with
// environment variable overrides.
//
// The GitHub token is read exclusively from the GITHUB_TOKEN environment
// variable and is never written to or read from a file on disk.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/go-prreview/internal/cache"
	apperrors "github.com/mrz1836/go-prreview/internal/errors"
)

// Environment variables consulted by Load.
const (
	EnvToken      = "GITHUB_TOKEN"
	EnvRepository = "GITHUB_REPOSITORY"
	EnvCacheDir   = "PR_REVIEWER_CACHE_DIR"
)

// Config holds the complete tool configuration.
type Config struct {
	// Repo is the repository identifier in owner/name form.
	Repo string `yaml:"repo"`

	// CacheDir is the root directory for cached working copies.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// OutputDir is where review files are written. The CLI flag wins.
	OutputDir string `yaml:"output_dir,omitempty"`

	// DefaultBranch is compared against its remote tip when deciding
	// whether a cached copy is stale.
	DefaultBranch string `yaml:"default_branch,omitempty"`

	// RemoteBase is the clone URL prefix.
	RemoteBase string `yaml:"remote_base,omitempty"`

	// HistoryDB is the path of the snapshot history database.
	HistoryDB string `yaml:"history_db,omitempty"`

	// Token is the GitHub access token. Environment only, never persisted.
	Token string `yaml:"-"`
}

// Load reads the config file at path, applies environment overrides, and
// fills defaults. A missing file is not an error; environment variables
// alone can carry a complete configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path) //nolint:gosec // path is the user-provided config file
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Fall through to environment and defaults.
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if repo := os.Getenv(EnvRepository); repo != "" {
		cfg.Repo = repo
	}
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		cfg.CacheDir = dir
	}
	cfg.Token = os.Getenv(EnvToken)

	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.CacheDir == "" {
		c.CacheDir = cache.DefaultRoot()
	}
	if c.OutputDir == "" {
		c.OutputDir = "./reviews"
	}
	if c.DefaultBranch == "" {
		c.DefaultBranch = "main"
	}
	if c.RemoteBase == "" {
		c.RemoteBase = "https://github.com"
	}
	if c.HistoryDB == "" {
		c.HistoryDB = filepath.Join(c.CacheDir, "history.db")
	}
}

// Validate checks that every required setting is present and well-formed.
func (c *Config) Validate() error {
	if c.Repo == "" {
		return apperrors.RequiredFieldError("repo (or " + EnvRepository + ")")
	}
	if _, _, err := cache.Split(c.Repo); err != nil {
		return apperrors.FormatError("repo", c.Repo, "owner/name")
	}
	if c.Token == "" {
		return fmt.Errorf("%w: set %s", apperrors.ErrMissingToken, EnvToken)
	}
	return nil
}
