// Package gh provides GitHub API access for pull request metadata.
package gh

import (
	"time"

	"github.com/google/go-github/v67/github"
)

// Metadata is the flattened set of pull request fields the report consumes.
type Metadata struct {
	Number      int
	Title       string
	Description string
	Author      string
	AuthorName  string
	State       string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	BaseBranch string
	HeadBranch string
	BaseSHA    string
	HeadSHA    string

	Additions    int
	Deletions    int
	ChangedFiles int
	Commits      int

	Labels    []string
	Assignees []string
	Reviewers []string

	URL            string
	Draft          bool
	Mergeable      *bool
	MergeableState string

	Comments       int
	ReviewComments int
}

// Comment is a conversation comment on the pull request.
type Comment struct {
	Author    string
	Body      string
	CreatedAt time.Time
}

// ReviewComment is an inline review comment anchored to a file and line.
type ReviewComment struct {
	Author    string
	Body      string
	Path      string
	Line      int
	CreatedAt time.Time
}

// ExtractMetadata flattens a GitHub pull request into the Metadata record.
// A missing description is replaced with a fixed placeholder so the report
// never renders an empty section body.
func ExtractMetadata(pr *github.PullRequest) Metadata {
	description := pr.GetBody()
	if description == "" {
		description = "No description provided"
	}

	authorName := pr.GetUser().GetName()
	if authorName == "" {
		authorName = pr.GetUser().GetLogin()
	}

	meta := Metadata{
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		Description:    description,
		Author:         pr.GetUser().GetLogin(),
		AuthorName:     authorName,
		State:          pr.GetState(),
		CreatedAt:      pr.GetCreatedAt().Time,
		UpdatedAt:      pr.GetUpdatedAt().Time,
		BaseBranch:     pr.GetBase().GetRef(),
		HeadBranch:     pr.GetHead().GetRef(),
		BaseSHA:        pr.GetBase().GetSHA(),
		HeadSHA:        pr.GetHead().GetSHA(),
		Additions:      pr.GetAdditions(),
		Deletions:      pr.GetDeletions(),
		ChangedFiles:   pr.GetChangedFiles(),
		Commits:        pr.GetCommits(),
		URL:            pr.GetHTMLURL(),
		Draft:          pr.GetDraft(),
		Mergeable:      pr.Mergeable,
		MergeableState: pr.GetMergeableState(),
		Comments:       pr.GetComments(),
		ReviewComments: pr.GetReviewComments(),
	}

	for _, label := range pr.Labels {
		meta.Labels = append(meta.Labels, label.GetName())
	}
	for _, assignee := range pr.Assignees {
		meta.Assignees = append(meta.Assignees, assignee.GetLogin())
	}
	for _, reviewer := range pr.RequestedReviewers {
		meta.Reviewers = append(meta.Reviewers, reviewer.GetLogin())
	}

	return meta
}
