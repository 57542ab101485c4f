// Package errors maps errors onto short, stable class names for metric tags and alerts.
package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strings"

	"github.com/target/prreview-api/internal/domain/review"
	apperrors "github.com/target/prreview-api/internal/errors"
)

// Stable class names for the review error taxonomy.
const (
	ClassInvalidRequest      = "invalid_request"
	ClassJobNotFound         = "job_not_found"
	ClassUpstreamFetch       = "upstream_fetch"
	ClassAnalysisUnavailable = "analysis_unavailable"
	ClassPersistence         = "persistence"
	ClassScheduleFailed      = "schedule_failed"
	ClassTimeout             = "timeout"
	ClassCanceled            = "canceled"
	ClassUnknown             = "unknown"
)

var sentinelClasses = []struct {
	target error
	class  string
}{
	{review.ErrInvalidRequest, ClassInvalidRequest},
	{review.ErrJobNotFound, ClassJobNotFound},
	{review.ErrUpstreamFetch, ClassUpstreamFetch},
	{review.ErrAnalysisUnavailable, ClassAnalysisUnavailable},
	{review.ErrPersistence, ClassPersistence},
	{review.ErrScheduleFailed, ClassScheduleFailed},
	{context.DeadlineExceeded, ClassTimeout},
	{context.Canceled, ClassCanceled},
}

// Classify returns a normalized class for err. Known review sentinels and AppError
// codes map to fixed names. Anything else falls back to the snake_cased type name
// of the innermost wrapped error.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	for _, s := range sentinelClasses {
		if goerrors.Is(err, s.target) {
			return s.class
		}
	}
	if code := apperrors.CodeOf(err); code != "" {
		return string(code)
	}
	return typeName(innermost(err))
}

func innermost(err error) error {
	for {
		next := goerrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func typeName(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ClassUnknown
	}
	name := strings.ToLower(strings.ReplaceAll(t.String(), ".", "_"))
	if name == "" {
		return ClassUnknown
	}
	return name
}
