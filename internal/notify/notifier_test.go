package notify_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"foyer/internal/config"
	"foyer/internal/notify"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notify.NewService(&cfg)
	if err := svc.Notify(context.Background(), notify.SeverityInfo, "hello"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceSendsSeverityHeaders(t *testing.T) {
	type captured struct {
		title    string
		tags     string
		priority string
		body     string
	}

	var got captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notify.NewService(&cfg)

	if err := svc.Notify(context.Background(), notify.SeverityError, "camera unavailable"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if got.priority != "high" {
		t.Fatalf("expected high priority for error severity, got %q", got.priority)
	}
	if got.tags != "foyer,error" {
		t.Fatalf("unexpected tags %q", got.tags)
	}
	if got.body != "camera unavailable" {
		t.Fatalf("unexpected body %q", got.body)
	}

	if err := svc.NotifyDemoMode(context.Background()); err != nil {
		t.Fatalf("NotifyDemoMode failed: %v", err)
	}
	if got.title != "Foyer - Mode démo" {
		t.Fatalf("unexpected title %q", got.title)
	}
}

func TestNtfyServiceSurfacesHTTPFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notify.NewService(&cfg)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error from non-2xx response")
	}
}
