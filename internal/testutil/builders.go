// Package testutil provides testing utilities and helpers for the review job system.
package testutil

import (
	"fmt"

	"github.com/target/prreview-api/internal/domain/model"
)

// JobRequestBuilder provides a fluent interface for building CreateJobRequest objects for testing.
type JobRequestBuilder struct {
	req *model.CreateJobRequest
}

// NewJobRequest creates a new JobRequestBuilder with sensible defaults.
func NewJobRequest() *JobRequestBuilder {
	return &JobRequestBuilder{
		req: &model.CreateJobRequest{
			RepositoryReference: "github.com/octo/widgets",
			ChangeIdentifier:    "1",
		},
	}
}

// WithRepository sets the repository reference.
func (b *JobRequestBuilder) WithRepository(ref string) *JobRequestBuilder {
	b.req.RepositoryReference = ref
	return b
}

// WithChange sets the change identifier from a pull request number.
func (b *JobRequestBuilder) WithChange(number int) *JobRequestBuilder {
	b.req.ChangeIdentifier = fmt.Sprintf("%d", number)
	return b
}

// Build returns the built CreateJobRequest.
func (b *JobRequestBuilder) Build() *model.CreateJobRequest {
	out := *b.req
	return &out
}

// SampleReviewResult returns a completed result with one issue per given file.
func SampleReviewResult(files ...string) *model.ReviewResult {
	reviews := make([]model.FileReview, 0, len(files))
	for i, f := range files {
		reviews = append(reviews, model.FileReview{
			FileName: f,
			Issues: []model.Issue{{
				Category:    model.IssueCategoryBug,
				Line:        i + 1,
				Description: "possible nil dereference",
				Suggestion:  "check for nil first",
			}},
		})
	}
	return model.NewReviewResult(reviews, nil)
}
