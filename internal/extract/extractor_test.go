package extract

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mrz1836/go-prreview/internal/errors"
	"github.com/mrz1836/go-prreview/internal/git"
)

const (
	testPath = "/cache/octo_demo"
	testBase = "main"
	testHead = "feature/login"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// expectPrepare registers the fetch, checkout and pull calls every
// extraction issues before its git command.
func expectPrepare(m *git.MockClient) {
	m.On("Fetch", mock.Anything, testPath, false).Return(nil)
	m.On("Checkout", mock.Anything, testPath, testBase).Return(nil)
	m.On("Pull", mock.Anything, testPath, "origin", testBase).Return(nil)
}

// TestDiff tests three-dot diff extraction
func TestDiff(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns diff text", func(t *testing.T) {
		mockGit := &git.MockClient{}
		expectPrepare(mockGit)
		mockGit.On("Diff", mock.Anything, testPath, "origin/main", "origin/feature/login").
			Return("diff --git a/x b/x\n+added\n", nil)

		e := New(mockGit, quietLogger())
		diff := e.Diff(ctx, testPath, testBase, testHead)

		assert.Contains(t, diff, "+added")
		mockGit.AssertExpectations(t)
	})

	t.Run("diff failure degrades to empty", func(t *testing.T) {
		mockGit := &git.MockClient{}
		expectPrepare(mockGit)
		mockGit.On("Diff", mock.Anything, testPath, "origin/main", "origin/feature/login").
			Return("", apperrors.ErrTest)

		e := New(mockGit, quietLogger())
		assert.Empty(t, e.Diff(ctx, testPath, testBase, testHead))
	})

	t.Run("prepare failure skips the diff command", func(t *testing.T) {
		mockGit := &git.MockClient{}
		mockGit.On("Fetch", mock.Anything, testPath, false).Return(apperrors.ErrTest)

		e := New(mockGit, quietLogger())
		assert.Empty(t, e.Diff(ctx, testPath, testBase, testHead))
		mockGit.AssertNotCalled(t, "Diff")
	})
}

// TestDiffStat tests the per-file summary extraction
func TestDiffStat(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockGit := &git.MockClient{}
		expectPrepare(mockGit)
		mockGit.On("DiffStat", mock.Anything, testPath, "origin/main", "origin/feature/login").
			Return(" x.go | 2 +-\n 1 file changed\n", nil)

		e := New(mockGit, quietLogger())
		assert.Contains(t, e.DiffStat(ctx, testPath, testBase, testHead), "1 file changed")
	})

	t.Run("failure degrades to empty", func(t *testing.T) {
		mockGit := &git.MockClient{}
		expectPrepare(mockGit)
		mockGit.On("DiffStat", mock.Anything, testPath, "origin/main", "origin/feature/login").
			Return("", apperrors.ErrTest)

		e := New(mockGit, quietLogger())
		assert.Empty(t, e.DiffStat(ctx, testPath, testBase, testHead))
	})
}

// TestCommitHistory tests two-dot commit log extraction
func TestCommitHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockGit := &git.MockClient{}
		expectPrepare(mockGit)
		mockGit.On("Log", mock.Anything, testPath, "origin/main", "origin/feature/login").
			Return("abc1234 Add login form\n", nil)

		e := New(mockGit, quietLogger())
		assert.Contains(t, e.CommitHistory(ctx, testPath, testBase, testHead), "Add login form")
	})

	t.Run("checkout failure degrades to empty", func(t *testing.T) {
		mockGit := &git.MockClient{}
		mockGit.On("Fetch", mock.Anything, testPath, false).Return(nil)
		mockGit.On("Checkout", mock.Anything, testPath, testBase).Return(apperrors.ErrTest)

		e := New(mockGit, quietLogger())
		assert.Empty(t, e.CommitHistory(ctx, testPath, testBase, testHead))
		mockGit.AssertNotCalled(t, "Log")
	})
}

// TestChangedFiles tests changed file listing
func TestChangedFiles(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockGit := &git.MockClient{}
		expectPrepare(mockGit)
		mockGit.On("ChangedFiles", mock.Anything, testPath, "origin/main", "origin/feature/login").
			Return([]string{"internal/login.go", "internal/login_test.go"}, nil)

		e := New(mockGit, quietLogger())
		files := e.ChangedFiles(ctx, testPath, testBase, testHead)
		require.Len(t, files, 2)
		assert.Equal(t, "internal/login.go", files[0])
	})

	t.Run("failure degrades to nil", func(t *testing.T) {
		mockGit := &git.MockClient{}
		expectPrepare(mockGit)
		mockGit.On("ChangedFiles", mock.Anything, testPath, "origin/main", "origin/feature/login").
			Return(nil, apperrors.ErrTest)

		e := New(mockGit, quietLogger())
		assert.Nil(t, e.ChangedFiles(ctx, testPath, testBase, testHead))
	})
}

// TestFailureIsolation verifies one failing extraction leaves the others
// untouched.
func TestFailureIsolation(t *testing.T) {
	ctx := context.Background()

	mockGit := &git.MockClient{}
	expectPrepare(mockGit)
	mockGit.On("Diff", mock.Anything, testPath, "origin/main", "origin/feature/login").
		Return("", apperrors.ErrTest)
	mockGit.On("Log", mock.Anything, testPath, "origin/main", "origin/feature/login").
		Return("abc1234 Still works\n", nil)

	e := New(mockGit, quietLogger())
	assert.Empty(t, e.Diff(ctx, testPath, testBase, testHead))
	assert.Contains(t, e.CommitHistory(ctx, testPath, testBase, testHead), "Still works")
}
