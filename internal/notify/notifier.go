package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"foyer/internal/config"
)

const userAgent = "Foyer-Kiosk/0.1.0"

// Severity classifies a status message surfaced to the operator.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Service is the notification surface exposed to kiosk components. The core
// only emits messages; it owns no rendering.
type Service interface {
	Notify(ctx context.Context, severity Severity, message string) error
	NotifyDemoMode(ctx context.Context) error
	NotifyCheckin(ctx context.Context, memberName string) error
	NotifySessionClosed(ctx context.Context, memberName, duration string) error
	NotifyScannerError(ctx context.Context, message string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Notify(ctx context.Context, severity Severity, message string) error {
	data := payload{
		title:   "Foyer",
		message: strings.TrimSpace(message),
		tags:    []string{"foyer", string(severity)},
	}
	switch severity {
	case SeverityError:
		data.priority = "high"
	case SeverityWarning:
		data.priority = "default"
	default:
		data.priority = "low"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDemoMode(ctx context.Context) error {
	data := payload{
		title:   "Foyer - Mode démo",
		message: "Serveur inaccessible, données de démonstration chargées",
		tags:    []string{"foyer", "registry", "demo"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCheckin(ctx context.Context, memberName string) error {
	memberName = strings.TrimSpace(memberName)
	data := payload{
		title:   "Foyer - Arrivée",
		message: fmt.Sprintf("Arrivée enregistrée: %s", memberName),
		tags:    []string{"foyer", "checkin"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySessionClosed(ctx context.Context, memberName, duration string) error {
	memberName = strings.TrimSpace(memberName)
	data := payload{
		title:   "Foyer - Départ",
		message: fmt.Sprintf("Visite terminée: %s (%s)", memberName, duration),
		tags:    []string{"foyer", "session", "closed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyScannerError(ctx context.Context, message string) error {
	data := payload{
		title:    "Foyer - Scanner",
		message:  strings.TrimSpace(message),
		tags:     []string{"foyer", "scanner", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Foyer - Test",
		message:  "Notification system test",
		tags:     []string{"foyer", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Notify(context.Context, Severity, string) error            { return nil }
func (noopService) NotifyDemoMode(context.Context) error                      { return nil }
func (noopService) NotifyCheckin(context.Context, string) error               { return nil }
func (noopService) NotifySessionClosed(context.Context, string, string) error { return nil }
func (noopService) NotifyScannerError(context.Context, string) error          { return nil }
func (noopService) TestNotification(context.Context) error                    { return nil }
