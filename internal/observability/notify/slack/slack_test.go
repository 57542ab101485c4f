package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/target/prreview-api/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when webhook url missing")
	}
}

func TestFormatMessageIncludesFields(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
		Channel:    "#reviews",
		Username:   "bot",
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.ReviewFailurePayload{
		JobID:               "123",
		RepositoryReference: "https://github.com/octo/widgets",
		ChangeIdentifier:    "42",
		Error:               "AnalysisUnavailable: <boom>",
		ErrorClass:          "analysis_unavailable",
		Metadata:            map[string]string{"worker": "w-1"},
	})

	if msg["username"] != "bot" {
		t.Fatalf("expected username to be preserved, got %v", msg["username"])
	}
	if msg["channel"] != "#reviews" {
		t.Fatalf("expected channel to be set, got %v", msg["channel"])
	}

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}
	for _, want := range []string{
		"Review job failed", "`123`", "octo/widgets #42", "&lt;boom&gt;", "analysis_unavailable", "worker: w-1", "critical",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("message text missing %q: %s", want, text)
		}
	}
}

func TestFormatMessageStatusLink(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL:      "https://hooks.slack.com/services/test",
		StatusURLPrefix: "https://reviews.example.com/task-status",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.ReviewFailurePayload{JobID: "abc"})
	text, _ := msg["text"].(string)
	if !strings.Contains(text, "<https://reviews.example.com/task-status/abc|abc>") {
		t.Fatalf("expected status link, got %s", text)
	}
	if _, ok := msg["channel"]; ok {
		t.Fatalf("channel must be omitted when not configured")
	}
	if msg["username"] != "prreview" {
		t.Fatalf("expected default username, got %v", msg["username"])
	}
}

func TestSendReviewFailurePostsJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{WebhookURL: srv.URL, Client: srv.Client()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.SendReviewFailure(context.Background(), notify.ReviewFailurePayload{JobID: "j1"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if text, _ := got["text"].(string); !strings.Contains(text, "j1") {
		t.Fatalf("expected job id in posted text, got %v", got)
	}
}
