package member

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"foyer/internal/config"
	"foyer/internal/logging"
	"foyer/internal/notify"
)

// ErrMemberNotFound marks lookups that matched nothing in the directory.
var ErrMemberNotFound = errors.New("member not found")

// Stats summarizes the loaded directory for status displays.
type Stats struct {
	Total            int            `json:"total"`
	ByOccupation     map[string]int `json:"byOccupation"`
	WithProfileImage int            `json:"withProfileImage"`
	JoinedLast30Days int            `json:"joinedLast30Days"`
	DemoMode         bool           `json:"demoMode"`
}

type directoryEnvelope struct {
	Success bool     `json:"success"`
	Data    []Member `json:"data"`
	Message string   `json:"message,omitempty"`
}

// Registry maintains the normalized, searchable member set. Loads fall back
// to a built-in demo dataset when the remote directory is unreachable, so
// callers always receive a usable set.
type Registry struct {
	cfg      *config.Registry
	logger   *slog.Logger
	notifier notify.Service
	client   *http.Client
	now      func() time.Time

	mu         sync.Mutex
	loading    bool
	members    map[string]Member
	order      []string
	demoMode   bool
	demoNotice sync.Once
}

// NewRegistry builds a registry bound to the configured remote directory.
func NewRegistry(cfg *config.Registry, logger *slog.Logger, notifier notify.Service) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notify.NewService(nil)
	}
	return &Registry{
		cfg:      cfg,
		logger:   logger.With(logging.String(logging.FieldComponent, "registry")),
		notifier: notifier,
		client:   &http.Client{},
		now:      time.Now,
	}
}

// Load refreshes the member set from the remote directory. Fetch failures are
// recovered locally with the demo dataset and never surfaced to the caller.
// Concurrent calls while a load is in flight return the held set untouched.
func (r *Registry) Load(ctx context.Context) []Member {
	r.mu.Lock()
	if r.loading {
		snapshot := r.snapshotLocked()
		r.mu.Unlock()
		return snapshot
	}
	r.loading = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.loading = false
		r.mu.Unlock()
	}()

	fetched, err := r.fetch(ctx)
	if err != nil {
		logging.WarnWithContext(r.logger, "member directory unreachable, loading demo data", "registry_demo_fallback",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check registry.base_url and network connectivity"),
			logging.String(logging.FieldImpact, "check-ins recorded against demo dataset"))
		r.installDemoData()
	} else {
		r.install(fetched, false)
		r.logger.Info("member directory loaded",
			logging.String(logging.FieldEventType, "registry_loaded"),
			logging.Int("members", len(fetched)))
	}

	r.mu.Lock()
	snapshot := r.snapshotLocked()
	r.mu.Unlock()
	return snapshot
}

func (r *Registry) fetch(ctx context.Context) ([]Member, error) {
	timeout := time.Duration(r.cfg.FetchTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := r.cfg.BaseURL + "/members"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch member directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("member directory returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read directory response: %w", err)
	}

	var envelope directoryEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode directory response: %w", err)
	}
	if !envelope.Success || envelope.Data == nil {
		if envelope.Message != "" {
			return nil, fmt.Errorf("member directory rejected request: %s", envelope.Message)
		}
		return nil, errors.New("member directory returned malformed envelope")
	}
	return envelope.Data, nil
}

func (r *Registry) installDemoData() {
	r.install(demoMembers(r.now()), true)

	delay := time.Duration(r.cfg.DemoNoticeDelay) * time.Second
	if delay <= 0 {
		delay = time.Second
	}
	r.demoNotice.Do(func() {
		time.AfterFunc(delay, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := r.notifier.NotifyDemoMode(ctx); err != nil {
				logging.WarnWithContext(r.logger, "failed to send demo mode notice", "notification_failed",
					logging.Error(err))
			}
		})
	})
}

func (r *Registry) install(raw []Member, demo bool) {
	now := r.now()
	members := make(map[string]Member, len(raw))
	order := make([]string, 0, len(raw))
	for _, m := range raw {
		cleaned := Clean(m, now)
		if _, seen := members[cleaned.RegistrationNumber]; !seen {
			order = append(order, cleaned.RegistrationNumber)
		}
		members[cleaned.RegistrationNumber] = cleaned
	}

	r.mu.Lock()
	r.members = members
	r.order = order
	r.demoMode = demo
	r.mu.Unlock()
}

func (r *Registry) snapshotLocked() []Member {
	snapshot := make([]Member, 0, len(r.order))
	for _, key := range r.order {
		snapshot = append(snapshot, r.members[key])
	}
	return snapshot
}

// Members returns the loaded set in directory order.
func (r *Registry) Members() []Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// DemoMode reports whether the registry is serving the built-in dataset.
func (r *Registry) DemoMode() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.demoMode
}

// Resolve normalizes an identifier and looks it up in the loaded set. In demo
// mode an unmatched identifier yields a fabricated temporary member so the
// check-in flow can proceed; otherwise ErrMemberNotFound is returned.
func (r *Registry) Resolve(identifier string) (Member, error) {
	canonical := Normalize(identifier)
	if canonical == "" {
		return Member{}, fmt.Errorf("%w: empty identifier", ErrMemberNotFound)
	}

	r.mu.Lock()
	found, ok := r.members[canonical]
	demo := r.demoMode
	r.mu.Unlock()

	if ok {
		return found, nil
	}
	if demo {
		temp := newTemporaryMember(canonical, r.now())
		r.logger.Info("fabricated temporary member",
			logging.String(logging.FieldEventType, "temporary_member"),
			logging.String(logging.FieldMemberID, canonical))
		return temp, nil
	}
	return Member{}, fmt.Errorf("%w: %s", ErrMemberNotFound, canonical)
}

// Stats derives directory counts for status displays. Pure read.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{
		ByOccupation: make(map[string]int),
		DemoMode:     r.demoMode,
	}
	cutoff := r.now().AddDate(0, 0, -30)
	for _, m := range r.members {
		stats.Total++
		stats.ByOccupation[string(m.Occupation)]++
		if m.ProfileImage != "" {
			stats.WithProfileImage++
		}
		if m.JoinDate.After(cutoff) {
			stats.JoinedLast30Days++
		}
	}
	return stats
}
