package gh

import (
	"context"

	"github.com/google/go-github/v67/github"
	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of the Client interface.
type MockClient struct {
	mock.Mock
}

// VerifyConnection mock implementation
func (m *MockClient) VerifyConnection(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// GetPullRequest mock implementation
func (m *MockClient) GetPullRequest(ctx context.Context, repo string, number int) (*github.PullRequest, error) {
	called := m.Called(ctx, repo, number)

	var pr *github.PullRequest
	if called.Get(0) != nil {
		pr = called.Get(0).(*github.PullRequest)
	}
	return pr, called.Error(1)
}

// ListComments mock implementation
func (m *MockClient) ListComments(ctx context.Context, repo string, number int) ([]Comment, error) {
	called := m.Called(ctx, repo, number)

	var comments []Comment
	if called.Get(0) != nil {
		comments = called.Get(0).([]Comment)
	}
	return comments, called.Error(1)
}

// ListReviewComments mock implementation
func (m *MockClient) ListReviewComments(ctx context.Context, repo string, number int) ([]ReviewComment, error) {
	called := m.Called(ctx, repo, number)

	var comments []ReviewComment
	if called.Get(0) != nil {
		comments = called.Get(0).([]ReviewComment)
	}
	return comments, called.Error(1)
}
