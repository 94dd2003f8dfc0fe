package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v67/github"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/go-prreview/internal/config"
	"github.com/mrz1836/go-prreview/internal/db"
	apperrors "github.com/mrz1836/go-prreview/internal/errors"
	"github.com/mrz1836/go-prreview/internal/gh"
	"github.com/mrz1836/go-prreview/internal/git"
	"github.com/mrz1836/go-prreview/internal/output"
)

// recordingWriter captures user-facing output for assertions.
type recordingWriter struct {
	mu    sync.Mutex
	lines []string
}

func (w *recordingWriter) record(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = append(w.lines, msg)
}

func (w *recordingWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return strings.Join(w.lines, "\n")
}

func (w *recordingWriter) Success(msg string) { w.record(msg) }
func (w *recordingWriter) Successf(format string, args ...interface{}) {
	w.record(fmt.Sprintf(format, args...))
}
func (w *recordingWriter) Info(msg string) { w.record(msg) }
func (w *recordingWriter) Infof(format string, args ...interface{}) {
	w.record(fmt.Sprintf(format, args...))
}
func (w *recordingWriter) Warn(msg string) { w.record(msg) }
func (w *recordingWriter) Warnf(format string, args ...interface{}) {
	w.record(fmt.Sprintf(format, args...))
}
func (w *recordingWriter) Error(msg string) { w.record(msg) }
func (w *recordingWriter) Errorf(format string, args ...interface{}) {
	w.record(fmt.Sprintf(format, args...))
}
func (w *recordingWriter) Plain(msg string) { w.record(msg) }
func (w *recordingWriter) Plainf(format string, args ...interface{}) {
	w.record(fmt.Sprintf(format, args...))
}

func captureOutput(t *testing.T) *recordingWriter {
	t.Helper()

	w := &recordingWriter{}
	restore := output.SetDefault(w)
	t.Cleanup(func() { output.SetDefault(restore) })
	return w
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()
	return &config.Config{
		Repo:          "octo/demo",
		CacheDir:      filepath.Join(base, "cache"),
		OutputDir:     filepath.Join(base, "reviews"),
		DefaultBranch: "main",
		RemoteBase:    "https://github.com",
		HistoryDB:     filepath.Join(base, "history.db"),
		Token:         "ghp_testToken1234",
	}
}

func testPullRequest() *github.PullRequest {
	return &github.PullRequest{
		Number: github.Int(42),
		Title:  github.String("Add login flow"),
		Body:   github.String("Implements the login form."),
		State:  github.String("open"),
		User:   &github.User{Login: github.String("octocat")},
		Base: &github.PullRequestBranch{
			Ref: github.String("main"),
			SHA: github.String("aaaabbbb"),
		},
		Head: &github.PullRequestBranch{
			Ref: github.String("feature/login"),
			SHA: github.String("eeeeffff"),
		},
		Additions: github.Int(120),
		Deletions: github.Int(30),
	}
}

func reviewFiles(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	var files []string
	for _, e := range entries {
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files
}

// TestResolvePRNumber tests PR number resolution from flag and argument
func TestResolvePRNumber(t *testing.T) {
	tests := []struct {
		name    string
		flags   Flags
		args    []string
		want    int
		wantErr bool
	}{
		{name: "positional argument", args: []string{"123"}, want: 123},
		{name: "flag", flags: Flags{PR: 456}, want: 456},
		{name: "flag wins over argument", flags: Flags{PR: 456}, args: []string{"123"}, want: 456},
		{name: "missing entirely", wantErr: true},
		{name: "non-numeric argument", args: []string{"abc"}, wantErr: true},
		{name: "zero argument", args: []string{"0"}, wantErr: true},
		{name: "negative argument", args: []string{"-5"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolvePRNumber(&tt.flags, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestRunReviewSkipDiff tests the metadata-only flow
func TestRunReviewSkipDiff(t *testing.T) {
	ctx := context.Background()

	t.Run("writes a review file", func(t *testing.T) {
		out := captureOutput(t)
		cfg := testConfig(t)

		mockGH := &gh.MockClient{}
		mockGH.On("VerifyConnection", mock.Anything).Return(nil)
		mockGH.On("GetPullRequest", mock.Anything, "octo/demo", 42).Return(testPullRequest(), nil)

		flags := &Flags{SkipDiff: true}
		require.NoError(t, runReview(ctx, cfg, flags, 42, mockGH, nil, quietLogger()))

		files := reviewFiles(t, cfg.OutputDir)
		require.Len(t, files, 1)

		content, err := os.ReadFile(files[0]) //nolint:gosec // test-owned path
		require.NoError(t, err)
		assert.Contains(t, string(content), "PR #42: Add login flow")
		assert.NotContains(t, string(content), "CODE CHANGES")

		assert.Contains(t, out.String(), "Review file generated")
		mockGH.AssertExpectations(t)
	})

	t.Run("records the run in history", func(t *testing.T) {
		captureOutput(t)
		cfg := testConfig(t)

		mockGH := &gh.MockClient{}
		mockGH.On("VerifyConnection", mock.Anything).Return(nil)
		mockGH.On("GetPullRequest", mock.Anything, "octo/demo", 42).Return(testPullRequest(), nil)

		require.NoError(t, runReview(ctx, cfg, &Flags{SkipDiff: true}, 42, mockGH, nil, quietLogger()))

		store, err := db.Open(cfg.HistoryDB)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		reviews, err := store.Recent(ctx, 0)
		require.NoError(t, err)
		require.Len(t, reviews, 1)
		assert.Equal(t, "octo/demo", reviews[0].Repo)
		assert.Equal(t, 42, reviews[0].PRNumber)
		assert.Equal(t, "Add login flow", reviews[0].Title)
	})

	t.Run("connection failure is fatal", func(t *testing.T) {
		captureOutput(t)
		cfg := testConfig(t)

		mockGH := &gh.MockClient{}
		mockGH.On("VerifyConnection", mock.Anything).Return(apperrors.ErrConnection)

		err := runReview(ctx, cfg, &Flags{SkipDiff: true}, 42, mockGH, nil, quietLogger())
		require.ErrorIs(t, err, apperrors.ErrConnection)
		assert.Empty(t, reviewFiles(t, cfg.OutputDir))
	})

	t.Run("missing PR is fatal", func(t *testing.T) {
		captureOutput(t)
		cfg := testConfig(t)

		mockGH := &gh.MockClient{}
		mockGH.On("VerifyConnection", mock.Anything).Return(nil)
		mockGH.On("GetPullRequest", mock.Anything, "octo/demo", 42).
			Return(nil, apperrors.ErrPRNotFound)

		err := runReview(ctx, cfg, &Flags{SkipDiff: true}, 42, mockGH, nil, quietLogger())
		require.ErrorIs(t, err, apperrors.ErrPRNotFound)
	})
}

// TestRunReviewComments tests optional comment inclusion
func TestRunReviewComments(t *testing.T) {
	ctx := context.Background()

	t.Run("comments appear in the file when requested", func(t *testing.T) {
		captureOutput(t)
		cfg := testConfig(t)

		mockGH := &gh.MockClient{}
		mockGH.On("VerifyConnection", mock.Anything).Return(nil)
		mockGH.On("GetPullRequest", mock.Anything, "octo/demo", 42).Return(testPullRequest(), nil)
		mockGH.On("ListComments", mock.Anything, "octo/demo", 42).
			Return([]gh.Comment{{Author: "alice", Body: "Ship it"}}, nil)
		mockGH.On("ListReviewComments", mock.Anything, "octo/demo", 42).
			Return([]gh.ReviewComment{{Author: "bob", Body: "Rename this", Path: "x.go", Line: 3}}, nil)

		flags := &Flags{SkipDiff: true, IncludeComments: true, IncludeReviewComments: true}
		require.NoError(t, runReview(ctx, cfg, flags, 42, mockGH, nil, quietLogger()))

		files := reviewFiles(t, cfg.OutputDir)
		require.Len(t, files, 1)
		content, err := os.ReadFile(files[0]) //nolint:gosec // test-owned path
		require.NoError(t, err)
		assert.Contains(t, string(content), "Ship it")
		assert.Contains(t, string(content), "Rename this")
	})

	t.Run("comment fetch failure degrades", func(t *testing.T) {
		captureOutput(t)
		cfg := testConfig(t)

		mockGH := &gh.MockClient{}
		mockGH.On("VerifyConnection", mock.Anything).Return(nil)
		mockGH.On("GetPullRequest", mock.Anything, "octo/demo", 42).Return(testPullRequest(), nil)
		mockGH.On("ListComments", mock.Anything, "octo/demo", 42).
			Return(nil, apperrors.ErrConnection)

		flags := &Flags{SkipDiff: true, IncludeComments: true}
		require.NoError(t, runReview(ctx, cfg, flags, 42, mockGH, nil, quietLogger()))
		require.Len(t, reviewFiles(t, cfg.OutputDir), 1)
	})

	t.Run("comments are not fetched unless requested", func(t *testing.T) {
		captureOutput(t)
		cfg := testConfig(t)

		mockGH := &gh.MockClient{}
		mockGH.On("VerifyConnection", mock.Anything).Return(nil)
		mockGH.On("GetPullRequest", mock.Anything, "octo/demo", 42).Return(testPullRequest(), nil)

		require.NoError(t, runReview(ctx, cfg, &Flags{SkipDiff: true}, 42, mockGH, nil, quietLogger()))
		mockGH.AssertNotCalled(t, "ListComments")
		mockGH.AssertNotCalled(t, "ListReviewComments")
	})
}

// TestRunReviewWithDiff tests the full flow including cache sync and
// diff extraction
func TestRunReviewWithDiff(t *testing.T) {
	ctx := context.Background()

	t.Run("diff artifacts land in the file", func(t *testing.T) {
		captureOutput(t)
		cfg := testConfig(t)

		mockGH := &gh.MockClient{}
		mockGH.On("VerifyConnection", mock.Anything).Return(nil)
		mockGH.On("GetPullRequest", mock.Anything, "octo/demo", 42).Return(testPullRequest(), nil)

		mockGit := &git.MockClient{}
		mockGit.On("Clone", mock.Anything, "https://ghp_testToken1234@github.com/octo/demo.git", mock.Anything).Return(nil)
		mockGit.On("Fetch", mock.Anything, mock.Anything, false).Return(nil)
		mockGit.On("Checkout", mock.Anything, mock.Anything, "main").Return(nil)
		mockGit.On("Pull", mock.Anything, mock.Anything, "origin", "main").Return(nil)
		mockGit.On("Diff", mock.Anything, mock.Anything, "origin/main", "origin/feature/login").
			Return("diff --git a/x b/x\n+added line\n", nil)
		mockGit.On("DiffStat", mock.Anything, mock.Anything, "origin/main", "origin/feature/login").
			Return(" x | 1 +\n 1 file changed\n", nil)
		mockGit.On("Log", mock.Anything, mock.Anything, "origin/main", "origin/feature/login").
			Return("abc1234 Add login form\n", nil)
		mockGit.On("ChangedFiles", mock.Anything, mock.Anything, "origin/main", "origin/feature/login").
			Return([]string{"x.go"}, nil)

		require.NoError(t, runReview(ctx, cfg, &Flags{}, 42, mockGH, mockGit, quietLogger()))

		files := reviewFiles(t, cfg.OutputDir)
		require.Len(t, files, 1)
		content, err := os.ReadFile(files[0]) //nolint:gosec // test-owned path
		require.NoError(t, err)
		assert.Contains(t, string(content), "+added line")
		assert.Contains(t, string(content), "abc1234 Add login form")
		assert.Contains(t, string(content), "1 file changed")
	})

	t.Run("sync failure is fatal", func(t *testing.T) {
		captureOutput(t)
		cfg := testConfig(t)

		mockGH := &gh.MockClient{}
		mockGH.On("VerifyConnection", mock.Anything).Return(nil)
		mockGH.On("GetPullRequest", mock.Anything, "octo/demo", 42).Return(testPullRequest(), nil)

		mockGit := &git.MockClient{}
		mockGit.On("Clone", mock.Anything, mock.Anything, mock.Anything).Return(apperrors.ErrTest)

		err := runReview(ctx, cfg, &Flags{}, 42, mockGH, mockGit, quietLogger())
		require.ErrorIs(t, err, apperrors.ErrCloneFailed)
		assert.Empty(t, reviewFiles(t, cfg.OutputDir))
	})

	t.Run("degraded diff still produces a file", func(t *testing.T) {
		out := captureOutput(t)
		cfg := testConfig(t)

		mockGH := &gh.MockClient{}
		mockGH.On("VerifyConnection", mock.Anything).Return(nil)
		mockGH.On("GetPullRequest", mock.Anything, "octo/demo", 42).Return(testPullRequest(), nil)

		mockGit := &git.MockClient{}
		mockGit.On("Clone", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mockGit.On("Fetch", mock.Anything, mock.Anything, false).Return(apperrors.ErrTest)

		require.NoError(t, runReview(ctx, cfg, &Flags{}, 42, mockGH, mockGit, quietLogger()))

		require.Len(t, reviewFiles(t, cfg.OutputDir), 1)
		assert.Contains(t, out.String(), "Diff could not be generated")
	})

	t.Run("clean-cache purges before syncing", func(t *testing.T) {
		captureOutput(t)
		cfg := testConfig(t)

		leftover := filepath.Join(cfg.CacheDir, "old_entry")
		require.NoError(t, os.MkdirAll(leftover, 0o750))

		mockGH := &gh.MockClient{}
		mockGH.On("VerifyConnection", mock.Anything).Return(nil)
		mockGH.On("GetPullRequest", mock.Anything, "octo/demo", 42).Return(testPullRequest(), nil)

		mockGit := &git.MockClient{}
		mockGit.On("Clone", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		mockGit.On("Fetch", mock.Anything, mock.Anything, false).Return(apperrors.ErrTest)

		require.NoError(t, runReview(ctx, cfg, &Flags{CleanCache: true}, 42, mockGH, mockGit, quietLogger()))
		assert.NoDirExists(t, leftover)
	})
}
