// Package errors defines common error types and utilities used throughout the application
package errors

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Configuration errors
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrMissingToken    = errors.New("GitHub token is not set")
	ErrMissingPRNumber = errors.New("pull request number is required")

	// Repository identifier errors
	ErrInvalidRepoFormat = errors.New("invalid repository format, expected owner/name")

	// Cache and sync errors
	ErrCacheEntryInvalid = errors.New("cache entry is not a valid git working copy")
	ErrCloneFailed       = errors.New("clone failed")
	ErrSyncFailed        = errors.New("repository synchronization failed")

	// GitHub API errors
	ErrConnection = errors.New("GitHub connection failed")
	ErrPRNotFound = errors.New("pull request not found")

	// Git errors
	ErrGitCommand = errors.New("git command failed")

	// Test errors (only used in tests)
	ErrTest = errors.New("test error")
)

// Error templates for static error definitions (satisfies err113 linter)
var (
	errCommandFailedTemplate    = errors.New("command failed")
	errValidationFailedTemplate = errors.New("validation failed")
	errEmptyFieldTemplate       = errors.New("field cannot be empty")
	errRequiredFieldTemplate    = errors.New("field is required")
	errInvalidFormatTemplate    = errors.New("invalid format")
)

// WrapWithContext wraps an error with operation context using consistent formatting.
// This replaces manual fmt.Errorf("failed to %s: %w", operation, err) patterns.
func WrapWithContext(err error, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}

// CommandFailedError creates a standardized command failure error.
// This standardizes command execution error reporting across the git package.
func CommandFailedError(cmd string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: '%s': %w", errCommandFailedTemplate, cmd, err)
}

// ValidationError creates a standardized validation error.
func ValidationError(item, reason string) error {
	return fmt.Errorf("%w for %s: %s", errValidationFailedTemplate, item, reason)
}

// EmptyFieldError creates a standardized empty field validation error.
func EmptyFieldError(field string) error {
	return fmt.Errorf("%w: %s", errEmptyFieldTemplate, field)
}

// RequiredFieldError creates a standardized required field error.
func RequiredFieldError(field string) error {
	return fmt.Errorf("%w: %s", errRequiredFieldTemplate, field)
}

// FormatError creates a standardized format validation error.
func FormatError(field, value, expectedFormat string) error {
	return fmt.Errorf("%w: %s '%s': expected %s", errInvalidFormatTemplate, field, value, expectedFormat)
}
