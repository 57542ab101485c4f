// Package review holds the pure pipeline rules: which files are reviewed, how a
// repository reference is recognized, and how per-file outcomes are aggregated.
package review

import "errors"

// Error taxonomy for submission and pipeline failures.
var (
	// ErrInvalidRequest rejects a submission before any job is created.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrJobNotFound reports a job id unknown to the store.
	ErrJobNotFound = errors.New("job not found")
	// ErrUpstreamFetch reports a source provider failure fatal to the pipeline.
	ErrUpstreamFetch = errors.New("upstream fetch failed")
	// ErrAnalysisUnavailable reports that no file could be analyzed.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
	// ErrPersistence reports a job store failure.
	ErrPersistence = errors.New("persistence error")
	// ErrScheduleFailed reports that a created job could not be enqueued.
	ErrScheduleFailed = errors.New("schedule failed")
	// ErrNotFinalized reports a pipeline run that ended without a terminal
	// write. The job stays processing and its task must be redelivered.
	ErrNotFinalized = errors.New("review not finalized")
)
