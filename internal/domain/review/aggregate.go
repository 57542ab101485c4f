package review

import (
	"errors"
	"fmt"

	"github.com/target/prreview-api/internal/domain/model"
)

// FileStage names the pipeline step at which a file was dropped.
type FileStage string

const (
	// StageFetch marks a content retrieval failure.
	StageFetch FileStage = "fetch"
	// StageAnalyze marks an analysis failure.
	StageAnalyze FileStage = "analyze"
)

// FileOutcome is the result of processing one filtered file. Exactly one of
// Review and Err is set once the file has been processed.
type FileOutcome struct {
	FileName string
	Review   *model.FileReview
	Stage    FileStage
	Err      error
}

// Aggregate folds per-file outcomes, given in filtered-input order, into a review result.
//
// A run with no files is an empty success. Files dropped at fetch and analysis are
// omitted. When no file reached analysis the run fails with ErrUpstreamFetch; when
// every analysis failed it fails with ErrAnalysisUnavailable.
func Aggregate(outcomes []FileOutcome, meta *model.PullRequestMetadata) (*model.ReviewResult, error) {
	reviews := make([]model.FileReview, 0, len(outcomes))
	var fetchFailed, analyzeFailed int
	var lastErr error
	for _, o := range outcomes {
		switch {
		case o.Review != nil:
			reviews = append(reviews, *o.Review)
		case o.Stage == StageFetch:
			fetchFailed++
			lastErr = o.Err
		default:
			analyzeFailed++
			lastErr = o.Err
		}
	}

	if len(outcomes) > 0 && len(reviews) == 0 {
		if analyzeFailed == 0 {
			return nil, fmt.Errorf("%w: content unavailable for all %d files: %w", ErrUpstreamFetch, fetchFailed, errOrUnknown(lastErr))
		}
		return nil, fmt.Errorf("%w: analysis failed for all %d files: %w", ErrAnalysisUnavailable, analyzeFailed, errOrUnknown(lastErr))
	}
	return model.NewReviewResult(reviews, meta), nil
}

var errUnknownFileFailure = errors.New("unknown failure")

func errOrUnknown(err error) error {
	if err == nil {
		return errUnknownFileFailure
	}
	return err
}
