package cli

import (
	"context"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/go-prreview/internal/cache"
	"github.com/mrz1836/go-prreview/internal/config"
	"github.com/mrz1836/go-prreview/internal/db"
	apperrors "github.com/mrz1836/go-prreview/internal/errors"
	"github.com/mrz1836/go-prreview/internal/extract"
	"github.com/mrz1836/go-prreview/internal/gh"
	"github.com/mrz1836/go-prreview/internal/git"
	"github.com/mrz1836/go-prreview/internal/output"
	"github.com/mrz1836/go-prreview/internal/report"
	reposync "github.com/mrz1836/go-prreview/internal/sync"
)

// createRunReview wires the real collaborators and runs the review flow.
func createRunReview(flags *Flags) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := loggerFromContext(ctx)

		number, err := resolvePRNumber(flags, args)
		if err != nil {
			return err
		}

		cfg, err := config.Load(flags.ConfigFile)
		if err != nil {
			return err
		}
		if flags.OutputDir != "" {
			cfg.OutputDir = flags.OutputDir
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		github, err := gh.NewClient(ctx, cfg.Token, logger)
		if err != nil {
			return err
		}

		var gitClient git.Client
		if !flags.SkipDiff {
			gitClient, err = git.NewClient(ctx, git.NewCommandRunner(logger), logger)
			if err != nil {
				return err
			}
		}

		return runReview(ctx, cfg, flags, number, github, gitClient, logger)
	}
}

// resolvePRNumber accepts the PR number either as the positional argument
// or via --pr, the flag winning when both are given.
func resolvePRNumber(flags *Flags, args []string) (int, error) {
	if flags.PR > 0 {
		return flags.PR, nil
	}

	if len(args) == 1 {
		number, err := strconv.Atoi(args[0])
		if err != nil || number <= 0 {
			return 0, apperrors.FormatError("pr-number", args[0], "a positive integer")
		}
		return number, nil
	}

	return 0, apperrors.ErrMissingPRNumber
}

// runReview executes the full review flow with injected collaborators.
// gitClient may be nil only when flags.SkipDiff is set.
func runReview(ctx context.Context, cfg *config.Config, flags *Flags, number int, github gh.Client, gitClient git.Client, logger *logrus.Logger) error {
	if err := github.VerifyConnection(ctx); err != nil {
		return err
	}

	output.Infof("Fetching PR #%d from %s...", number, cfg.Repo)

	pr, err := github.GetPullRequest(ctx, cfg.Repo, number)
	if err != nil {
		return err
	}
	meta := gh.ExtractMetadata(pr)

	output.Plainf("PR Title: %s", meta.Title)
	output.Plainf("Author: %s", meta.AuthorName)
	output.Plainf("Changes: +%d -%d lines", meta.Additions, meta.Deletions)

	data := report.Data{Metadata: meta}

	// The two comment listings are independent API reads; fetch them
	// concurrently. Failures degrade to an absent section.
	g, gctx := errgroup.WithContext(ctx)
	if flags.IncludeComments {
		g.Go(func() error {
			comments, err := github.ListComments(gctx, cfg.Repo, number)
			if err != nil {
				logger.WithError(err).Warn("Could not fetch PR comments")
				return nil
			}
			data.Comments = comments
			return nil
		})
	}
	if flags.IncludeReviewComments {
		g.Go(func() error {
			comments, err := github.ListReviewComments(gctx, cfg.Repo, number)
			if err != nil {
				logger.WithError(err).Warn("Could not fetch review comments")
				return nil
			}
			data.ReviewComments = comments
			return nil
		})
	}
	_ = g.Wait()

	if !flags.SkipDiff {
		if err := extractDiffArtifacts(ctx, cfg, flags, gitClient, meta, &data, logger); err != nil {
			return err
		}
	}

	writer, err := report.NewWriter(cfg.OutputDir)
	if err != nil {
		return err
	}

	path, err := writer.Write(cfg.Repo, data)
	if err != nil {
		return err
	}

	recordHistory(ctx, cfg, meta, path, logger)

	output.Successf("Review file generated: %s (%s)", path, report.HumanSize(path))
	return nil
}

// extractDiffArtifacts synchronizes the cached clone and fills the diff,
// stat, commit history and file list. Synchronization failure is fatal;
// each extraction degrades independently.
func extractDiffArtifacts(ctx context.Context, cfg *config.Config, flags *Flags, gitClient git.Client, meta gh.Metadata, data *report.Data, logger *logrus.Logger) error {
	store, err := cache.NewStore(cfg.CacheDir, gitClient, logger)
	if err != nil {
		return err
	}

	if flags.CleanCache {
		output.Info("Cleaning repository cache...")
		if err := store.PurgeAll(); err != nil {
			return err
		}
	}

	syncer := reposync.New(store, gitClient, logger, reposync.Options{
		RemoteBase:    cfg.RemoteBase,
		Token:         cfg.Token,
		DefaultBranch: cfg.DefaultBranch,
	})

	output.Info("Preparing repository for diff generation...")

	path, err := syncer.Sync(ctx, cfg.Repo)
	if err != nil {
		return err
	}

	extractor := extract.New(gitClient, logger)
	data.Diff = extractor.Diff(ctx, path, meta.BaseBranch, meta.HeadBranch)
	data.DiffStat = extractor.DiffStat(ctx, path, meta.BaseBranch, meta.HeadBranch)
	data.CommitHistory = extractor.CommitHistory(ctx, path, meta.BaseBranch, meta.HeadBranch)
	data.FilesChanged = extractor.ChangedFiles(ctx, path, meta.BaseBranch, meta.HeadBranch)

	if data.Diff == "" && data.DiffStat == "" {
		output.Warn("Diff could not be generated; the review file will omit code changes")
	}

	return nil
}

// recordHistory appends the generated file to the snapshot history.
// Best-effort: any failure is logged and ignored.
func recordHistory(ctx context.Context, cfg *config.Config, meta gh.Metadata, path string, logger *logrus.Logger) {
	store, err := db.Open(cfg.HistoryDB)
	if err != nil {
		logger.WithError(err).Debug("History database unavailable")
		return
	}
	defer func() { _ = store.Close() }()

	var size int64
	if info, statErr := os.Stat(path); statErr == nil {
		size = info.Size()
	}

	if err := store.Record(ctx, &db.Review{
		Repo:      cfg.Repo,
		PRNumber:  meta.Number,
		Title:     meta.Title,
		Path:      path,
		SizeBytes: size,
	}); err != nil {
		logger.WithError(err).Debug("Could not record review in history")
	}
}
