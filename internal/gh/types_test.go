package gh

import (
	"testing"
	"time"

	"github.com/google/go-github/v67/github"
	"github.com/stretchr/testify/assert"
)

// TestExtractMetadata tests flattening of pull request responses
func TestExtractMetadata(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := time.Date(2025, 3, 2, 11, 30, 0, 0, time.UTC)

	t.Run("full pull request", func(t *testing.T) {
		pr := &github.PullRequest{
			Number:    github.Int(42),
			Title:     github.String("Add login flow"),
			Body:      github.String("Implements the login form."),
			State:     github.String("open"),
			CreatedAt: &github.Timestamp{Time: created},
			UpdatedAt: &github.Timestamp{Time: updated},
			User: &github.User{
				Login: github.String("octocat"),
				Name:  github.String("Octo Cat"),
			},
			Base: &github.PullRequestBranch{
				Ref: github.String("main"),
				SHA: github.String("aaaabbbbccccdddd"),
			},
			Head: &github.PullRequestBranch{
				Ref: github.String("feature/login"),
				SHA: github.String("eeeeffff00001111"),
			},
			Additions:      github.Int(120),
			Deletions:      github.Int(30),
			ChangedFiles:   github.Int(5),
			Commits:        github.Int(3),
			HTMLURL:        github.String("https://github.com/octo/demo/pull/42"),
			Draft:          github.Bool(true),
			Mergeable:      github.Bool(true),
			MergeableState: github.String("clean"),
			Comments:       github.Int(2),
			ReviewComments: github.Int(4),
			Labels: []*github.Label{
				{Name: github.String("bug")},
				{Name: github.String("auth")},
			},
			Assignees: []*github.User{
				{Login: github.String("alice")},
			},
			RequestedReviewers: []*github.User{
				{Login: github.String("bob")},
			},
		}

		meta := ExtractMetadata(pr)

		assert.Equal(t, 42, meta.Number)
		assert.Equal(t, "Add login flow", meta.Title)
		assert.Equal(t, "Implements the login form.", meta.Description)
		assert.Equal(t, "octocat", meta.Author)
		assert.Equal(t, "Octo Cat", meta.AuthorName)
		assert.Equal(t, "open", meta.State)
		assert.Equal(t, created, meta.CreatedAt)
		assert.Equal(t, updated, meta.UpdatedAt)
		assert.Equal(t, "main", meta.BaseBranch)
		assert.Equal(t, "feature/login", meta.HeadBranch)
		assert.Equal(t, "aaaabbbbccccdddd", meta.BaseSHA)
		assert.Equal(t, "eeeeffff00001111", meta.HeadSHA)
		assert.Equal(t, 120, meta.Additions)
		assert.Equal(t, 30, meta.Deletions)
		assert.Equal(t, 5, meta.ChangedFiles)
		assert.Equal(t, 3, meta.Commits)
		assert.Equal(t, "https://github.com/octo/demo/pull/42", meta.URL)
		assert.True(t, meta.Draft)
		if assert.NotNil(t, meta.Mergeable) {
			assert.True(t, *meta.Mergeable)
		}
		assert.Equal(t, "clean", meta.MergeableState)
		assert.Equal(t, 2, meta.Comments)
		assert.Equal(t, 4, meta.ReviewComments)
		assert.Equal(t, []string{"bug", "auth"}, meta.Labels)
		assert.Equal(t, []string{"alice"}, meta.Assignees)
		assert.Equal(t, []string{"bob"}, meta.Reviewers)
	})

	t.Run("empty body gets placeholder", func(t *testing.T) {
		meta := ExtractMetadata(&github.PullRequest{Number: github.Int(1)})
		assert.Equal(t, "No description provided", meta.Description)
	})

	t.Run("author name falls back to login", func(t *testing.T) {
		meta := ExtractMetadata(&github.PullRequest{
			User: &github.User{Login: github.String("octocat")},
		})
		assert.Equal(t, "octocat", meta.AuthorName)
	})

	t.Run("unknown mergeability stays nil", func(t *testing.T) {
		meta := ExtractMetadata(&github.PullRequest{Number: github.Int(1)})
		assert.Nil(t, meta.Mergeable)
	})
}
