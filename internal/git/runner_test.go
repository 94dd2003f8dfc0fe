package git

import (
	"context"
	"io"
	"os/exec"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireGit skips tests that need a real git binary.
func requireGit(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping git integration test in short mode")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// TestRealRunner exercises the process-spawning runner against a real git
func TestRealRunner(t *testing.T) {
	requireGit(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	runner := NewCommandRunner(logger)
	ctx := context.Background()

	t.Run("successful command", func(t *testing.T) {
		res, err := runner.Run(ctx, "", "version")
		require.NoError(t, err)
		assert.True(t, res.Success())
		assert.Contains(t, res.Stdout, "git version")
	})

	t.Run("non-zero exit comes back in the result", func(t *testing.T) {
		res, err := runner.Run(ctx, t.TempDir(), "rev-parse", "--git-dir")
		require.NoError(t, err)
		assert.False(t, res.Success())
		assert.NotZero(t, res.ExitCode)
		assert.NotEmpty(t, res.Stderr)
	})

	t.Run("canceled context is a spawn error", func(t *testing.T) {
		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := runner.Run(canceled, "", "version")
		require.Error(t, err)
	})
}

// TestClientAgainstRealRepository exercises the client against an actual
// working copy created on the fly.
func TestClientAgainstRealRepository(t *testing.T) {
	requireGit(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	runner := NewCommandRunner(logger)
	ctx := context.Background()

	client, err := NewClient(ctx, runner, logger)
	require.NoError(t, err)

	dir := t.TempDir()
	for _, args := range [][]string{
		{"init"},
		{"config", "user.email", "tester@example.com"},
		{"config", "user.name", "Tester"},
	} {
		res, runErr := runner.Run(ctx, dir, args...)
		require.NoError(t, runErr)
		require.True(t, res.Success(), "git %v failed: %s", args, res.Stderr)
	}

	t.Run("recognizes a working copy", func(t *testing.T) {
		assert.True(t, client.IsRepository(ctx, dir))
	})

	t.Run("rejects a plain directory", func(t *testing.T) {
		assert.False(t, client.IsRepository(ctx, t.TempDir()))
	})
}
