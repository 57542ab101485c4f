package failurenotifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/target/prreview-api/internal/observability/notify"
)

func TestServiceNotifyReviewFailure(t *testing.T) {
	ctx := context.Background()

	var (
		mu       sync.Mutex
		received []notify.ReviewFailurePayload
	)
	capture := notify.SinkFunc(func(_ context.Context, payload notify.ReviewFailurePayload) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, payload)
		return nil
	})
	svc := NewService(Options{
		Sinks: []SinkRegistration{
			{Name: "a", Sink: capture},
			{Name: "b", Sink: capture},
			{Name: "nil", Sink: nil},
		},
	})

	svc.NotifyReviewFailure(ctx, notify.ReviewFailurePayload{JobID: "123"})

	if len(received) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(received))
	}
	if received[0].Severity != notify.SeverityCritical {
		t.Fatalf("expected severity to default to critical, got %s", received[0].Severity)
	}
	if received[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be stamped")
	}
}

func TestServiceSinkErrorsDoNotStopOthers(t *testing.T) {
	var delivered bool
	svc := NewService(Options{
		Sinks: []SinkRegistration{
			{Name: "broken", Sink: notify.SinkFunc(func(context.Context, notify.ReviewFailurePayload) error {
				return errors.New("boom")
			})},
			{Name: "ok", Sink: notify.SinkFunc(func(context.Context, notify.ReviewFailurePayload) error {
				delivered = true
				return nil
			})},
		},
	})

	svc.NotifyReviewFailure(context.Background(), notify.ReviewFailurePayload{JobID: "1"})
	if !delivered {
		t.Fatal("expected healthy sink to receive payload")
	}
}

func TestServiceDeliversAfterCallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawCanceled bool
	svc := NewService(Options{Sinks: []SinkRegistration{{Sink: notify.SinkFunc(
		func(ctx context.Context, _ notify.ReviewFailurePayload) error {
			sawCanceled = ctx.Err() != nil
			return nil
		})}}})

	svc.NotifyReviewFailure(ctx, notify.ReviewFailurePayload{JobID: "1"})
	if sawCanceled {
		t.Fatal("sink context must not inherit caller cancellation")
	}
}

func TestServiceEnabled(t *testing.T) {
	if NewService(Options{}).Enabled() {
		t.Fatal("expected disabled without sinks")
	}
	var nilSvc *Service
	if nilSvc.Enabled() {
		t.Fatal("expected nil service to be disabled")
	}
	nilSvc.NotifyReviewFailure(context.Background(), notify.ReviewFailurePayload{})
}
