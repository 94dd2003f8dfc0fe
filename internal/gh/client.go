package gh

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v67/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/mrz1836/go-prreview/internal/cache"
	apperrors "github.com/mrz1836/go-prreview/internal/errors"
)

// commentPageSize is the page size used when listing comments.
const commentPageSize = 100

// Client defines the GitHub operations the orchestrator consumes.
type Client interface {
	// VerifyConnection checks that the token authenticates against the API.
	VerifyConnection(ctx context.Context) error

	// GetPullRequest fetches a pull request by repository identifier
	// (owner/name) and number.
	GetPullRequest(ctx context.Context, repo string, number int) (*github.PullRequest, error)

	// ListComments returns all conversation comments on the pull request.
	ListComments(ctx context.Context, repo string, number int) ([]Comment, error)

	// ListReviewComments returns all inline review comments.
	ListReviewComments(ctx context.Context, repo string, number int) ([]ReviewComment, error)
}

// githubClient implements Client using the go-github SDK with a client-side
// rate limiter in front of every call.
type githubClient struct {
	client  *github.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// NewClient creates a GitHub client authenticated with the given token.
func NewClient(ctx context.Context, token string, logger *logrus.Logger) (Client, error) {
	if token == "" {
		return nil, apperrors.ErrMissingToken
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)

	return NewClientWithGitHub(github.NewClient(tc), logger), nil
}

// NewClientWithGitHub wraps an existing go-github client. Used by tests to
// point the client at an httptest server.
func NewClientWithGitHub(ghc *github.Client, logger *logrus.Logger) Client {
	return &githubClient{
		client: ghc,
		// Stay well under GitHub's secondary rate limits: 5 req/s sustained.
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		logger:  logger,
	}
}

// VerifyConnection checks token validity by fetching the authenticated user.
func (g *githubClient) VerifyConnection(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	user, _, err := g.client.Users.Get(ctx, "")
	if err != nil {
		return g.wrapError(err, "verify GitHub connection")
	}

	if g.logger != nil {
		g.logger.WithField("user", user.GetLogin()).Debug("GitHub connection verified")
	}
	return nil
}

// GetPullRequest fetches one pull request.
func (g *githubClient) GetPullRequest(ctx context.Context, repo string, number int) (*github.PullRequest, error) {
	owner, name, err := cache.Split(repo)
	if err != nil {
		return nil, err
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	pr, resp, err := g.client.PullRequests.Get(ctx, owner, name, number)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s#%d", apperrors.ErrPRNotFound, repo, number)
		}
		return nil, g.wrapError(err, fmt.Sprintf("fetch PR %s#%d", repo, number))
	}

	return pr, nil
}

// ListComments returns every conversation comment, paginating until done.
func (g *githubClient) ListComments(ctx context.Context, repo string, number int) ([]Comment, error) {
	owner, name, err := cache.Split(repo)
	if err != nil {
		return nil, err
	}

	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: commentPageSize},
	}

	var comments []Comment
	for {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, resp, err := g.client.Issues.ListComments(ctx, owner, name, number, opts)
		if err != nil {
			return nil, g.wrapError(err, "list PR comments")
		}

		for _, c := range page {
			comments = append(comments, Comment{
				Author:    c.GetUser().GetLogin(),
				Body:      c.GetBody(),
				CreatedAt: c.GetCreatedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

// ListReviewComments returns every inline review comment, paginating until done.
func (g *githubClient) ListReviewComments(ctx context.Context, repo string, number int) ([]ReviewComment, error) {
	owner, name, err := cache.Split(repo)
	if err != nil {
		return nil, err
	}

	opts := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: commentPageSize},
	}

	var comments []ReviewComment
	for {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, resp, err := g.client.PullRequests.ListComments(ctx, owner, name, number, opts)
		if err != nil {
			return nil, g.wrapError(err, "list review comments")
		}

		for _, c := range page {
			comments = append(comments, ReviewComment{
				Author:    c.GetUser().GetLogin(),
				Body:      c.GetBody(),
				Path:      c.GetPath(),
				Line:      c.GetLine(),
				CreatedAt: c.GetCreatedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

// wrapError maps SDK errors onto the application error taxonomy. Rejected
// tokens and unreachable hosts both surface as connectivity errors.
func (g *githubClient) wrapError(err error, operation string) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrConnection, operation, ghErr.Message)
		}
		return apperrors.WrapWithContext(err, operation)
	}

	// Transport-level failure: DNS, TLS, refused connection.
	return fmt.Errorf("%w: %s: %w", apperrors.ErrConnection, operation, err)
}
