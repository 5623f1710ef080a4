package kiosk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"foyer/internal/logging"
	"foyer/internal/member"
	"foyer/internal/notify"
	"foyer/internal/session"
	"foyer/internal/testsupport"
)

func testKiosk(t *testing.T, baseURL string) *Kiosk {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithRegistryURL(baseURL))
	store := testsupport.MustOpenStore(t, cfg)

	k, err := New(cfg, store, logging.NewNop(), notify.NewService(nil))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = k.Close() })
	return k
}

func memberServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"registrationNumber":"ACM01","firstName":"Awa","lastName":"Ndiaye","occupation":"student"}
		]}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheckinOpensSessionAndRejectsSecond(t *testing.T) {
	server := memberServer(t)
	k := testKiosk(t, server.URL)
	ctx := context.Background()
	k.ReloadMembers(ctx)

	resolved, err := k.Checkin(ctx, "acm-01")
	if err != nil {
		t.Fatalf("Checkin failed: %v", err)
	}
	if resolved.RegistrationNumber != "ACM01" {
		t.Fatalf("unexpected member %q", resolved.RegistrationNumber)
	}
	if snap := k.SessionSnapshot(); snap.State != session.StateIdentified {
		t.Fatalf("expected identified state, got %s", snap.State)
	}

	if _, err := k.Checkin(ctx, "acm-01"); !errors.Is(err, session.ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}
}

func TestCheckinUnknownMemberFails(t *testing.T) {
	server := memberServer(t)
	k := testKiosk(t, server.URL)
	ctx := context.Background()
	k.ReloadMembers(ctx)

	if _, err := k.Checkin(ctx, "ACM99"); !errors.Is(err, member.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
	if snap := k.SessionSnapshot(); snap.State != session.StateIdle {
		t.Fatalf("expected idle state, got %s", snap.State)
	}
}

func TestFullVisitFlowPersistsRecord(t *testing.T) {
	server := memberServer(t)
	k := testKiosk(t, server.URL)
	ctx := context.Background()
	k.ReloadMembers(ctx)

	if _, err := k.Checkin(ctx, "ACM01"); err != nil {
		t.Fatalf("Checkin failed: %v", err)
	}
	if err := k.SessionStartDetails(); err != nil {
		t.Fatalf("SessionStartDetails failed: %v", err)
	}
	if err := k.SessionBegin("study", ""); err != nil {
		t.Fatalf("SessionBegin failed: %v", err)
	}

	record, err := k.SessionEnd(ctx, true)
	if err != nil {
		t.Fatalf("SessionEnd failed: %v", err)
	}
	if record.Topic != session.DefaultTopic {
		t.Fatalf("expected default topic, got %q", record.Topic)
	}

	records, err := k.AttendanceList(ctx)
	if err != nil {
		t.Fatalf("AttendanceList failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != record.ID {
		t.Fatalf("expected the closed record persisted, got %+v", records)
	}

	stats, err := k.AttendanceStats(ctx)
	if err != nil {
		t.Fatalf("AttendanceStats failed: %v", err)
	}
	if stats.Total != 1 || stats.Active != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestStatusAggregatesSubsystems(t *testing.T) {
	k := testKiosk(t, "http://127.0.0.1:1")
	ctx := context.Background()
	k.ReloadMembers(ctx)

	status := k.Status(ctx)
	if status.Running {
		t.Fatal("kiosk should not report running before Start")
	}
	if !status.DemoMode {
		t.Fatal("expected demo mode after unreachable directory")
	}
	if status.MemberStats.Total != 6 {
		t.Fatalf("expected demo dataset in stats, got %d", status.MemberStats.Total)
	}
	if status.DBPath == "" || status.LockFilePath == "" {
		t.Fatalf("expected populated paths, got %+v", status)
	}
}

func TestTestNotificationWithoutTopic(t *testing.T) {
	k := testKiosk(t, "http://127.0.0.1:1")
	sent, message, err := k.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if sent {
		t.Fatal("expected no send without a configured topic")
	}
	if message == "" {
		t.Fatal("expected an explanatory message")
	}
}
