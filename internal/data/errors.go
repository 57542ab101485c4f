package data

import (
	"fmt"

	"github.com/target/prreview-api/internal/domain/review"
	apperrors "github.com/target/prreview-api/internal/errors"
)

// Shared sentinel errors for data-layer repositories. They alias the review
// taxonomy so callers can match with errors.Is without importing this package.
var (
	// ErrJobNotFound is returned when a job is not found.
	ErrJobNotFound = review.ErrJobNotFound
	// ErrPersistence wraps every store read or write failure.
	ErrPersistence = review.ErrPersistence
)

// persistenceError wraps a driver error with ErrPersistence and its AppError classification.
func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, apperrors.MapDBError(err))
}
