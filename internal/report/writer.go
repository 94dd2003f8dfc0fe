// Package report formats pull request metadata and diff artifacts into a
// single plain-text review file.
//
// Sections are separated by 80-character rules for readability in editors
// and for downstream text analysis. A section with no content is omitted
// entirely, header included.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrz1836/go-prreview/internal/gh"
)

const (
	ruleMajor = "================================================================================"
	ruleMinor = "----------------------------------------"
)

// Data carries everything that can appear in a review file. All fields
// besides Metadata are optional; empty ones drop their section.
type Data struct {
	Metadata       gh.Metadata
	CommitHistory  string
	Diff           string
	DiffStat       string
	FilesChanged   []string
	Comments       []gh.Comment
	ReviewComments []gh.ReviewComment
}

// Writer writes review files into an output directory.
type Writer struct {
	outputDir string
	now       func() time.Time
}

// NewWriter creates a Writer, creating the output directory if missing.
func NewWriter(outputDir string) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	return &Writer{
		outputDir: outputDir,
		now:       time.Now,
	}, nil
}

// Write renders the review file for repo and returns its path.
func (w *Writer) Write(repo string, data Data) (string, error) {
	timestamp := w.now().Format("20060102_150405")
	filename := fmt.Sprintf("pr_review_%s_%d_%s.txt",
		strings.ReplaceAll(repo, "/", "_"), data.Metadata.Number, timestamp)
	path := filepath.Join(w.outputDir, filename)

	var b strings.Builder
	b.WriteString(metadataSection(data.Metadata))

	if data.CommitHistory != "" {
		b.WriteString(commitHistorySection(data.CommitHistory))
	}
	if data.Diff != "" || data.DiffStat != "" {
		b.WriteString(changesSection(data.Diff, data.DiffStat))
	}
	if len(data.FilesChanged) > 0 {
		b.WriteString(filesSection(data.FilesChanged))
	}
	if len(data.Comments) > 0 {
		b.WriteString(commentsSection(data.Comments))
	}
	if len(data.ReviewComments) > 0 {
		b.WriteString(reviewCommentsSection(data.ReviewComments))
	}

	b.WriteString(footer(repo, data.Metadata.Number, w.now()))

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return "", fmt.Errorf("failed to write review file: %w", err)
	}

	return path, nil
}

func sectionHeader(title string) string {
	return ruleMajor + "\n" + title + "\n" + ruleMajor + "\n\n"
}

func metadataSection(m gh.Metadata) string {
	var b strings.Builder
	b.WriteString(sectionHeader("PULL REQUEST METADATA"))

	fmt.Fprintf(&b, "PR #%d: %s\n", m.Number, m.Title)
	fmt.Fprintf(&b, "Author: %s (@%s)\n", m.AuthorName, m.Author)
	fmt.Fprintf(&b, "State: %s\n", strings.ToUpper(m.State))
	if m.Draft {
		b.WriteString("Draft: yes\n")
	}
	fmt.Fprintf(&b, "URL: %s\n\n", m.URL)

	fmt.Fprintf(&b, "Base Branch: %s\n", m.BaseBranch)
	fmt.Fprintf(&b, "Head Branch: %s\n", m.HeadBranch)
	fmt.Fprintf(&b, "Base SHA: %s\n", shortSHA(m.BaseSHA))
	fmt.Fprintf(&b, "Head SHA: %s\n\n", shortSHA(m.HeadSHA))

	fmt.Fprintf(&b, "Changes: +%d -%d lines\n", m.Additions, m.Deletions)
	fmt.Fprintf(&b, "Files Changed: %d\n", m.ChangedFiles)
	fmt.Fprintf(&b, "Commits: %d\n", m.Commits)
	fmt.Fprintf(&b, "Comments: %d\n", m.Comments)
	fmt.Fprintf(&b, "Review Comments: %d\n", m.ReviewComments)
	if m.Mergeable != nil {
		fmt.Fprintf(&b, "Mergeable: %t (%s)\n", *m.Mergeable, m.MergeableState)
	}
	b.WriteString("\n")

	if len(m.Labels) > 0 {
		fmt.Fprintf(&b, "Labels: %s\n", strings.Join(m.Labels, ", "))
	}
	if len(m.Assignees) > 0 {
		fmt.Fprintf(&b, "Assignees: %s\n", strings.Join(m.Assignees, ", "))
	}
	if len(m.Reviewers) > 0 {
		fmt.Fprintf(&b, "Reviewers: %s\n", strings.Join(m.Reviewers, ", "))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Created: %s\n", m.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Updated: %s\n\n", m.UpdatedAt.Format(time.RFC3339))

	b.WriteString("DESCRIPTION:\n")
	b.WriteString(ruleMinor + "\n")
	b.WriteString(m.Description + "\n\n")

	return b.String()
}

func commitHistorySection(history string) string {
	var b strings.Builder
	b.WriteString(sectionHeader("COMMIT HISTORY"))
	b.WriteString(strings.TrimRight(history, "\n") + "\n\n")
	return b.String()
}

func changesSection(diff, stat string) string {
	var b strings.Builder
	b.WriteString(sectionHeader("CODE CHANGES"))

	if stat != "" {
		b.WriteString("CHANGE SUMMARY:\n")
		b.WriteString(ruleMinor + "\n")
		b.WriteString(strings.TrimRight(stat, "\n") + "\n\n")
	}

	if diff != "" {
		b.WriteString("DETAILED DIFF:\n")
		b.WriteString(ruleMinor + "\n")
		b.WriteString(strings.TrimRight(diff, "\n") + "\n\n")
	}

	return b.String()
}

func filesSection(files []string) string {
	var b strings.Builder
	b.WriteString(sectionHeader("FILES CHANGED"))
	for _, f := range files {
		b.WriteString(f + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func commentsSection(comments []gh.Comment) string {
	var b strings.Builder
	b.WriteString(sectionHeader("COMMENTS"))

	for i, c := range comments {
		fmt.Fprintf(&b, "Comment #%d by @%s:\n", i+1, c.Author)
		fmt.Fprintf(&b, "Posted: %s\n", c.CreatedAt.Format(time.RFC3339))
		b.WriteString(ruleMinor + "\n")
		b.WriteString(c.Body + "\n\n")
	}

	return b.String()
}

func reviewCommentsSection(comments []gh.ReviewComment) string {
	var b strings.Builder
	b.WriteString(sectionHeader("REVIEW COMMENTS"))

	for i, c := range comments {
		fmt.Fprintf(&b, "Review Comment #%d by @%s:\n", i+1, c.Author)
		fmt.Fprintf(&b, "File: %s\n", c.Path)
		fmt.Fprintf(&b, "Line: %d\n", c.Line)
		fmt.Fprintf(&b, "Posted: %s\n", c.CreatedAt.Format(time.RFC3339))
		b.WriteString(ruleMinor + "\n")
		b.WriteString(c.Body + "\n\n")
	}

	return b.String()
}

func footer(repo string, number int, at time.Time) string {
	var b strings.Builder
	b.WriteString(ruleMajor + "\n")
	fmt.Fprintf(&b, "Review generated on: %s\n", at.Format(time.RFC3339))
	fmt.Fprintf(&b, "Repository: %s\n", repo)
	fmt.Fprintf(&b, "Pull Request: #%d\n", number)
	b.WriteString(ruleMajor + "\n")
	return b.String()
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

// HumanSize returns the size of the file at path in a human-readable unit.
func HumanSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "unknown"
	}

	size := float64(info.Size())
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024.0 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.1f TB", size)
}
