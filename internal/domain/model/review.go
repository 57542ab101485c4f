package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// IssueCategory classifies a single finding reported for a file.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type IssueCategory string

const (
	// IssueCategoryStyle covers formatting and readability findings.
	IssueCategoryStyle IssueCategory = "style"
	// IssueCategoryBug covers likely defects.
	IssueCategoryBug IssueCategory = "bug"
	// IssueCategoryPerformance covers inefficient code.
	IssueCategoryPerformance IssueCategory = "performance"
	// IssueCategoryBestPractice covers deviations from accepted conventions.
	IssueCategoryBestPractice IssueCategory = "best_practice"
)

// Valid returns true if the IssueCategory is one of the known categories.
func (c IssueCategory) Valid() bool {
	switch c {
	case IssueCategoryStyle, IssueCategoryBug, IssueCategoryPerformance, IssueCategoryBestPractice:
		return true
	}
	return false
}

// UnmarshalText normalizes case and the "best practice"/"best-practice" spellings.
func (c *IssueCategory) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	v = strings.NewReplacer(" ", "_", "-", "_").Replace(v)
	ic := IssueCategory(v)
	if !ic.Valid() {
		return fmt.Errorf("invalid issue category: %q", string(text))
	}
	*c = ic
	return nil
}

// Issue is one finding reported by the analysis provider for a file.
type Issue struct {
	Category    IssueCategory `json:"category"`
	Line        int           `json:"line"`
	Description string        `json:"description"`
	Suggestion  string        `json:"suggestion"`
}

// Validate checks the fields an issue must carry.
func (i *Issue) Validate() error {
	if !i.Category.Valid() {
		return fmt.Errorf("invalid issue category: %q", i.Category)
	}
	if i.Line < 0 {
		return fmt.Errorf("line must be >= 0, got %d", i.Line)
	}
	if strings.TrimSpace(i.Description) == "" {
		return errors.New("description is required")
	}
	return nil
}

// FileReview groups the issues found in one file.
type FileReview struct {
	FileName string  `json:"file_name"`
	Issues   []Issue `json:"issues"`
}

// ReviewSummary holds counts derived from the per-file reviews.
type ReviewSummary struct {
	FileCount  int `json:"file_count"`
	IssueCount int `json:"issue_count"`
	BugCount   int `json:"bug_count"`
}

// Summarize counts files, issues and bugs across reviews.
func Summarize(reviews []FileReview) ReviewSummary {
	s := ReviewSummary{FileCount: len(reviews)}
	for _, fr := range reviews {
		s.IssueCount += len(fr.Issues)
		for _, is := range fr.Issues {
			if is.Category == IssueCategoryBug {
				s.BugCount++
			}
		}
	}
	return s
}

// ReviewResult is the output of one pipeline run.
//
// Summary is always derived from PerFileReviews; use NewReviewResult to build
// values and rely on UnmarshalJSON to recompute it when reading stored results.
type ReviewResult struct {
	PerFileReviews []FileReview         `json:"per_file_reviews"`
	Summary        ReviewSummary        `json:"summary"`
	PullRequest    *PullRequestMetadata `json:"pull_request,omitempty"`
}

// NewReviewResult builds a result with a summary computed from reviews.
func NewReviewResult(reviews []FileReview, meta *PullRequestMetadata) *ReviewResult {
	if reviews == nil {
		reviews = []FileReview{}
	}
	return &ReviewResult{
		PerFileReviews: reviews,
		Summary:        Summarize(reviews),
		PullRequest:    meta,
	}
}

type reviewResultAlias ReviewResult

// UnmarshalJSON decodes a result and discards any stored summary in favor of a recount.
func (r *ReviewResult) UnmarshalJSON(b []byte) error {
	var a reviewResultAlias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if a.PerFileReviews == nil {
		a.PerFileReviews = []FileReview{}
	}
	a.Summary = Summarize(a.PerFileReviews)
	*r = ReviewResult(a)
	return nil
}

// PullRequestMetadata describes the reviewed change as reported by the source provider.
type PullRequestMetadata struct {
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	State     string    `json:"state"`
	HeadSHA   string    `json:"head_sha,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
