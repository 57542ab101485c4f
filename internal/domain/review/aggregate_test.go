package review

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/prreview-api/internal/domain/model"
)

func ok(name string, issues ...model.Issue) FileOutcome {
	return FileOutcome{FileName: name, Review: &model.FileReview{FileName: name, Issues: issues}}
}

func failed(name string, stage FileStage) FileOutcome {
	return FileOutcome{FileName: name, Stage: stage, Err: errors.New(name + " failed")}
}

func TestAggregate(t *testing.T) {
	bug := model.Issue{Category: model.IssueCategoryBug, Line: 1, Description: "bug"}

	t.Run("no files is an empty success", func(t *testing.T) {
		res, err := Aggregate(nil, nil)
		require.NoError(t, err)
		assert.Empty(t, res.PerFileReviews)
		assert.Equal(t, model.ReviewSummary{}, res.Summary)
	})

	t.Run("partial fetch failure keeps order", func(t *testing.T) {
		res, err := Aggregate([]FileOutcome{ok("a.go", bug), failed("b.go", StageFetch), ok("c.go")}, nil)
		require.NoError(t, err)
		require.Len(t, res.PerFileReviews, 2)
		assert.Equal(t, "a.go", res.PerFileReviews[0].FileName)
		assert.Equal(t, "c.go", res.PerFileReviews[1].FileName)
		assert.Equal(t, model.ReviewSummary{FileCount: 2, IssueCount: 1, BugCount: 1}, res.Summary)
	})

	t.Run("every analysis failed", func(t *testing.T) {
		_, err := Aggregate([]FileOutcome{failed("a.go", StageAnalyze), failed("b.go", StageAnalyze)}, nil)
		require.ErrorIs(t, err, ErrAnalysisUnavailable)
		assert.Contains(t, err.Error(), "b.go failed")
	})

	t.Run("mixed fetch and analysis failures", func(t *testing.T) {
		_, err := Aggregate([]FileOutcome{failed("a.go", StageFetch), failed("b.go", StageAnalyze)}, nil)
		require.ErrorIs(t, err, ErrAnalysisUnavailable)
	})

	t.Run("every fetch failed", func(t *testing.T) {
		_, err := Aggregate([]FileOutcome{failed("a.go", StageFetch)}, nil)
		require.ErrorIs(t, err, ErrUpstreamFetch)
	})

	t.Run("metadata is carried", func(t *testing.T) {
		meta := &model.PullRequestMetadata{Title: "t"}
		res, err := Aggregate([]FileOutcome{ok("a.go")}, meta)
		require.NoError(t, err)
		assert.Same(t, meta, res.PullRequest)
	})
}
