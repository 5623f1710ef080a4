package member

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"foyer/internal/config"
	"foyer/internal/logging"
	"foyer/internal/notify"
)

func testRegistry(t *testing.T, baseURL string) *Registry {
	t.Helper()
	cfg := config.Default()
	cfg.Registry.BaseURL = baseURL
	cfg.Registry.FetchTimeout = 2
	return NewRegistry(&cfg.Registry, logging.NewNop(), notify.NewService(nil))
}

func TestCleanAppliesDefaults(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	cleaned := Clean(Member{RegistrationNumber: "17", Occupation: "astronaut"}, now)

	if cleaned.FirstName != DefaultFirstName {
		t.Fatalf("expected default first name, got %q", cleaned.FirstName)
	}
	if cleaned.LastName != DefaultLastName {
		t.Fatalf("expected default last name, got %q", cleaned.LastName)
	}
	if cleaned.Occupation != OccupationOther {
		t.Fatalf("expected unknown occupation coerced to other, got %q", cleaned.Occupation)
	}
	if !cleaned.JoinDate.Equal(now) {
		t.Fatalf("expected join date defaulted to now, got %v", cleaned.JoinDate)
	}
	if cleaned.RegistrationNumber != "ACM17" {
		t.Fatalf("expected canonical registration number, got %q", cleaned.RegistrationNumber)
	}
}

func TestCleanAlwaysYieldsACMPrefix(t *testing.T) {
	now := time.Now()
	for _, raw := range []string{"7", "m7", "acm7", "XYZ9", "  acm-22 "} {
		cleaned := Clean(Member{RegistrationNumber: raw}, now)
		if len(cleaned.RegistrationNumber) < 3 || cleaned.RegistrationNumber[:3] != "ACM" {
			t.Fatalf("cleaned registration number %q lacks ACM prefix (raw %q)", cleaned.RegistrationNumber, raw)
		}
	}
}

func TestLoadReplacesSetFromRemoteDirectory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/members" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"registrationNumber":"acm-01","firstName":"awa","lastName":"Ndiaye","occupation":"student"},
			{"registrationNumber":"12","occupation":"employee"}
		]}`))
	}))
	defer server.Close()

	reg := testRegistry(t, server.URL)
	members := reg.Load(context.Background())
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if reg.DemoMode() {
		t.Fatal("demo mode should be off after a successful load")
	}

	first, err := reg.Resolve("ACM01")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if first.FirstName != "Awa" {
		t.Fatalf("expected title-cased first name, got %q", first.FirstName)
	}

	second, err := reg.Resolve("12")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if second.FirstName != DefaultFirstName {
		t.Fatalf("expected defaulted first name, got %q", second.FirstName)
	}
}

func TestLoadFallsBackToDemoDataset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	reg := testRegistry(t, server.URL)
	members := reg.Load(context.Background())
	if len(members) != 6 {
		t.Fatalf("expected the 6-entry demo dataset, got %d members", len(members))
	}
	if !reg.DemoMode() {
		t.Fatal("demo mode should be on after a failed load")
	}
}

func TestLoadFallsBackOnMalformedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"maintenance"}`))
	}))
	defer server.Close()

	reg := testRegistry(t, server.URL)
	reg.Load(context.Background())
	if !reg.DemoMode() {
		t.Fatal("demo mode should be on after a malformed envelope")
	}
}

func TestLoadIsSingleFlight(t *testing.T) {
	var requests atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			close(entered)
		}
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"registrationNumber":"ACM01","firstName":"Awa","lastName":"Ndiaye","occupation":"student"}
		]}`))
	}))
	defer server.Close()

	reg := testRegistry(t, server.URL)

	loaded := make(chan []Member, 1)
	go func() { loaded <- reg.Load(context.Background()) }()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("directory request never arrived")
	}

	held := reg.Load(context.Background())
	if len(held) != 0 {
		t.Fatalf("expected the held set while a load is in flight, got %d members", len(held))
	}
	if got := requests.Load(); got != 1 {
		t.Fatalf("expected a single directory request, got %d", got)
	}

	close(release)
	select {
	case members := <-loaded:
		if len(members) != 1 {
			t.Fatalf("expected the fetched directory, got %d members", len(members))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight load never completed")
	}
}

type demoNoticeRecorder struct {
	mu    sync.Mutex
	count int
	fired chan struct{}
}

func newDemoNoticeRecorder() *demoNoticeRecorder {
	return &demoNoticeRecorder{fired: make(chan struct{}, 4)}
}

func (r *demoNoticeRecorder) NotifyDemoMode(context.Context) error {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
	r.fired <- struct{}{}
	return nil
}

func (r *demoNoticeRecorder) notices() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *demoNoticeRecorder) Notify(context.Context, notify.Severity, string) error { return nil }
func (r *demoNoticeRecorder) NotifyCheckin(context.Context, string) error           { return nil }
func (r *demoNoticeRecorder) NotifySessionClosed(context.Context, string, string) error {
	return nil
}
func (r *demoNoticeRecorder) NotifyScannerError(context.Context, string) error { return nil }
func (r *demoNoticeRecorder) TestNotification(context.Context) error           { return nil }

func TestDemoModeNoticeFiresOnce(t *testing.T) {
	recorder := newDemoNoticeRecorder()
	cfg := config.Default()
	cfg.Registry.BaseURL = "http://127.0.0.1:1"
	cfg.Registry.FetchTimeout = 1
	cfg.Registry.DemoNoticeDelay = 1
	reg := NewRegistry(&cfg.Registry, logging.NewNop(), recorder)

	reg.Load(context.Background())
	if !reg.DemoMode() {
		t.Fatal("expected demo mode after a failed load")
	}

	select {
	case <-recorder.fired:
	case <-time.After(3 * time.Second):
		t.Fatal("demo mode notice never fired")
	}

	reg.Load(context.Background())
	select {
	case <-recorder.fired:
		t.Fatal("demo mode notice fired again after a repeated failing load")
	case <-time.After(1500 * time.Millisecond):
	}
	if got := recorder.notices(); got != 1 {
		t.Fatalf("expected exactly one demo mode notice, got %d", got)
	}
}

func TestResolveSynthesizesTemporaryMemberInDemoMode(t *testing.T) {
	reg := testRegistry(t, "http://127.0.0.1:1")
	reg.Load(context.Background())
	if !reg.DemoMode() {
		t.Fatal("expected demo mode")
	}

	resolved, err := reg.Resolve(`acm-07`)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.RegistrationNumber != "ACM07" {
		t.Fatalf("expected canonical ACM07, got %q", resolved.RegistrationNumber)
	}
	if !resolved.IsTemporary {
		t.Fatal("expected a temporary member for an unmatched demo-mode lookup")
	}
}

func TestResolveReturnsNotFoundOutsideDemoMode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer server.Close()

	reg := testRegistry(t, server.URL)
	reg.Load(context.Background())
	if _, err := reg.Resolve("ACM99"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
	if _, err := reg.Resolve("  --  "); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound for empty identifier, got %v", err)
	}
}

func TestStatsCountsOccupationsAndRecentJoins(t *testing.T) {
	reg := testRegistry(t, "http://127.0.0.1:1")
	reg.Load(context.Background())

	stats := reg.Stats()
	if stats.Total != 6 {
		t.Fatalf("expected 6 members, got %d", stats.Total)
	}
	if stats.ByOccupation["student"] != 2 {
		t.Fatalf("expected 2 students, got %d", stats.ByOccupation["student"])
	}
	if stats.JoinedLast30Days != 2 {
		t.Fatalf("expected 2 recent joins, got %d", stats.JoinedLast30Days)
	}
	if !stats.DemoMode {
		t.Fatal("expected stats to report demo mode")
	}
}
