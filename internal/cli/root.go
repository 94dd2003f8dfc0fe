// Package cli implements the command-line interface for go-prreview.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mrz1836/go-prreview/internal/logging"
	"github.com/mrz1836/go-prreview/internal/output"
)

// loggerContextKey is a type for context keys to avoid collisions
type loggerContextKey struct{}

// NewRootCmd creates an isolated root command instance. Each invocation
// gets its own flag set, so tests never race on shared state.
func NewRootCmd() *cobra.Command {
	flags := newFlags()

	cmd := &cobra.Command{
		Use:   "go-prreview [pr-number]",
		Short: "Generate a self-contained review file for a GitHub pull request",
		Long: `go-prreview fetches pull request metadata from GitHub, derives the diff
and commit history from a locally cached clone of the repository, and
writes everything into one plain-text file for offline review or
downstream text analysis.

Repeated runs against the same repository reuse a shared clone cache,
refreshing it with fetch and hard-reset instead of re-cloning.`,
		Example: `  # Snapshot PR 123 using .prreview.yaml and GITHUB_TOKEN
  go-prreview 123

  # Flag form of the PR number, custom output directory
  go-prreview --pr 456 --output-dir ./reviews

  # Include conversation and inline review comments
  go-prreview 789 --include-comments --include-review-comments

  # Metadata only, skip the local diff (useful for very large PRs)
  go-prreview 123 --skip-diff

  # Drop every cached clone before running
  go-prreview 123 --clean-cache`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: createSetupLogging(flags),
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE:              createRunReview(flags),
	}

	cmd.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", ".prreview.yaml", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&flags.JSONLog, "json-log", false, "Emit logs as JSON")

	cmd.Flags().IntVar(&flags.PR, "pr", 0, "Pull request number (alternative to the positional argument)")
	cmd.Flags().StringVar(&flags.OutputDir, "output-dir", "", "Output directory for review files (default ./reviews)")
	cmd.Flags().BoolVar(&flags.IncludeComments, "include-comments", false, "Include PR conversation comments in the review file")
	cmd.Flags().BoolVar(&flags.IncludeReviewComments, "include-review-comments", false, "Include inline review comments in the review file")
	cmd.Flags().BoolVar(&flags.SkipDiff, "skip-diff", false, "Skip diff generation (useful for large PRs)")
	cmd.Flags().BoolVar(&flags.CleanCache, "clean-cache", false, "Clean the repository cache before running")

	cmd.AddCommand(createHistoryCmd(flags))
	cmd.AddCommand(createVersionCmd())

	return cmd
}

// Execute runs the CLI.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		output.Warn("Interrupt received, canceling...")
		cancel()
	}()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		output.Error(err.Error())
		os.Exit(1)
	}
}

// createSetupLogging builds the logger for this invocation and stores it in
// the command context.
func createSetupLogging(flags *Flags) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logger, err := logging.NewLogger(logging.Config{
			Level: strings.ToLower(flags.LogLevel),
			JSON:  flags.JSONLog,
		}, os.Stderr)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", flags.LogLevel, err)
		}

		cmd.SetContext(context.WithValue(cmd.Context(), loggerContextKey{}, logger))
		return nil
	}
}

// loggerFromContext returns the per-invocation logger, falling back to the
// standard logger when the pre-run hook did not run (direct RunE calls in
// tests).
func loggerFromContext(ctx context.Context) *logrus.Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(*logrus.Logger); ok {
		return logger
	}
	return logrus.StandardLogger()
}
