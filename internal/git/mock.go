package git

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRunner is a mock implementation of the CommandRunner interface.
type MockRunner struct {
	mock.Mock
}

// Run mock implementation
func (m *MockRunner) Run(ctx context.Context, dir string, args ...string) (*Result, error) {
	called := m.Called(ctx, dir, args)

	var res *Result
	if called.Get(0) != nil {
		res = called.Get(0).(*Result)
	}
	return res, called.Error(1)
}

// MockClient is a mock implementation of the Client interface.
type MockClient struct {
	mock.Mock
}

// Clone mock implementation
func (m *MockClient) Clone(ctx context.Context, url, path string) error {
	return m.Called(ctx, url, path).Error(0)
}

// IsRepository mock implementation
func (m *MockClient) IsRepository(ctx context.Context, path string) bool {
	return m.Called(ctx, path).Bool(0)
}

// Fetch mock implementation
func (m *MockClient) Fetch(ctx context.Context, repoPath string, tags bool) error {
	return m.Called(ctx, repoPath, tags).Error(0)
}

// BehindCount mock implementation
func (m *MockClient) BehindCount(ctx context.Context, repoPath, branch string) (int, error) {
	called := m.Called(ctx, repoPath, branch)
	return called.Int(0), called.Error(1)
}

// ResetHard mock implementation
func (m *MockClient) ResetHard(ctx context.Context, repoPath, ref string) error {
	return m.Called(ctx, repoPath, ref).Error(0)
}

// CleanUntracked mock implementation
func (m *MockClient) CleanUntracked(ctx context.Context, repoPath string) error {
	return m.Called(ctx, repoPath).Error(0)
}

// Checkout mock implementation
func (m *MockClient) Checkout(ctx context.Context, repoPath, branch string) error {
	return m.Called(ctx, repoPath, branch).Error(0)
}

// Pull mock implementation
func (m *MockClient) Pull(ctx context.Context, repoPath, remote, branch string) error {
	return m.Called(ctx, repoPath, remote, branch).Error(0)
}

// SetCredentialHelper mock implementation
func (m *MockClient) SetCredentialHelper(ctx context.Context, repoPath, token string) error {
	return m.Called(ctx, repoPath, token).Error(0)
}

// Diff mock implementation
func (m *MockClient) Diff(ctx context.Context, repoPath, baseRef, headRef string) (string, error) {
	called := m.Called(ctx, repoPath, baseRef, headRef)
	return called.String(0), called.Error(1)
}

// DiffStat mock implementation
func (m *MockClient) DiffStat(ctx context.Context, repoPath, baseRef, headRef string) (string, error) {
	called := m.Called(ctx, repoPath, baseRef, headRef)
	return called.String(0), called.Error(1)
}

// Log mock implementation
func (m *MockClient) Log(ctx context.Context, repoPath, baseRef, headRef string) (string, error) {
	called := m.Called(ctx, repoPath, baseRef, headRef)
	return called.String(0), called.Error(1)
}

// ChangedFiles mock implementation
func (m *MockClient) ChangedFiles(ctx context.Context, repoPath, baseRef, headRef string) ([]string, error) {
	called := m.Called(ctx, repoPath, baseRef, headRef)

	var files []string
	if called.Get(0) != nil {
		files = called.Get(0).([]string)
	}
	return files, called.Error(1)
}
