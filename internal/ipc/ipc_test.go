package ipc_test

import (
	"context"
	"testing"

	"foyer/internal/ipc"
	"foyer/internal/kiosk"
	"foyer/internal/logging"
	"foyer/internal/notify"
	"foyer/internal/testsupport"
)

func startServer(t *testing.T) *ipc.Client {
	t.Helper()

	// Unreachable registry, so the kiosk serves the demo dataset.
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	k, err := kiosk.New(cfg, store, logging.NewNop(), notify.NewService(nil))
	if err != nil {
		t.Fatalf("new kiosk: %v", err)
	}
	t.Cleanup(func() { _ = k.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	k.ReloadMembers(ctx)

	socket := cfg.SocketPath()
	server, err := ipc.NewServer(ctx, socket, k, logging.NewNop())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	server.Serve()
	t.Cleanup(server.Close)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestStatusOverSocket(t *testing.T) {
	client := startServer(t)

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.DemoMode {
		t.Fatal("expected demo mode with an unreachable directory")
	}
	if status.MemberStats.Total != 6 {
		t.Fatalf("expected demo dataset, got %d members", status.MemberStats.Total)
	}
	if status.Session.State != "idle" {
		t.Fatalf("expected idle session, got %s", status.Session.State)
	}
}

func TestCheckinFlowOverSocket(t *testing.T) {
	client := startServer(t)

	resolved, err := client.Resolve("acm-01")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Member.RegistrationNumber != "ACM01" {
		t.Fatalf("unexpected member %q", resolved.Member.RegistrationNumber)
	}

	checkin, err := client.Checkin("ACM01")
	if err != nil {
		t.Fatalf("Checkin failed: %v", err)
	}
	if checkin.Member.IsTemporary {
		t.Fatal("demo dataset member must not be temporary")
	}

	if _, err := client.SessionBegin("", "topic"); err == nil {
		t.Fatal("expected empty purpose to be rejected")
	}

	began, err := client.SessionBegin("study", "")
	if err != nil {
		t.Fatalf("SessionBegin failed: %v", err)
	}
	if began.Snapshot.Session.Topic != "Non spécifié" {
		t.Fatalf("expected default topic, got %q", began.Snapshot.Session.Topic)
	}

	if _, err := client.SessionEnd(false); err == nil {
		t.Fatal("expected unconfirmed end to be rejected")
	}

	ended, err := client.SessionEnd(true)
	if err != nil {
		t.Fatalf("SessionEnd failed: %v", err)
	}
	if ended.Record.MemberID != "ACM01" {
		t.Fatalf("unexpected record member %q", ended.Record.MemberID)
	}

	list, err := client.AttendanceList()
	if err != nil {
		t.Fatalf("AttendanceList failed: %v", err)
	}
	if len(list.Records) != 1 {
		t.Fatalf("expected one stored record, got %d", len(list.Records))
	}

	stats, err := client.AttendanceStats()
	if err != nil {
		t.Fatalf("AttendanceStats failed: %v", err)
	}
	if stats.Stats.Total != 1 || stats.Stats.Active != 0 {
		t.Fatalf("unexpected stats %+v", stats.Stats)
	}
}

func TestResolveUnknownReturnsRPCError(t *testing.T) {
	client := startServer(t)

	// Demo mode synthesizes a temporary member instead of failing.
	resolved, err := client.Resolve("ACM4242")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !resolved.Member.IsTemporary {
		t.Fatal("expected a temporary member in demo mode")
	}

	if _, err := client.Resolve("   "); err == nil {
		t.Fatal("expected an error for a blank identifier")
	}
}

func TestTestNotificationOverSocket(t *testing.T) {
	client := startServer(t)
	resp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if resp.Sent {
		t.Fatal("expected no send without a configured topic")
	}
}
