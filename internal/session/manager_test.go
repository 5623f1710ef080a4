package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"foyer/internal/attendance"
	"foyer/internal/config"
	"foyer/internal/logging"
	"foyer/internal/member"
)

type recordingSink struct {
	records []attendance.Record
	err     error
}

func (s *recordingSink) Append(_ context.Context, record attendance.Record) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

func testManager(t *testing.T) (*Manager, *recordingSink) {
	t.Helper()
	cfg := config.Default()
	sink := &recordingSink{}
	mgr := NewManager(&cfg.Session, logging.NewNop(), sink)
	t.Cleanup(mgr.Cleanup)
	return mgr, sink
}

func testMember() member.Member {
	return member.Member{
		RegistrationNumber: "ACM07",
		FirstName:          "Awa",
		LastName:           "Ndiaye",
		Occupation:         member.OccupationStudent,
	}
}

func TestIdentifyRejectsSecondSession(t *testing.T) {
	mgr, _ := testManager(t)
	if err := mgr.Identify(testMember()); err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if err := mgr.Identify(testMember()); !errors.Is(err, ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}
	if snap := mgr.Snapshot(); snap.State != StateIdentified {
		t.Fatalf("expected identified state, got %s", snap.State)
	}
}

func TestBeginRejectsEmptyPurposeAndStaysPut(t *testing.T) {
	mgr, _ := testManager(t)
	if err := mgr.Identify(testMember()); err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if err := mgr.Begin("   ", "topic"); !errors.Is(err, ErrEmptyPurpose) {
		t.Fatalf("expected ErrEmptyPurpose, got %v", err)
	}
	if snap := mgr.Snapshot(); snap.State != StateIdentified {
		t.Fatalf("expected to remain identified, got %s", snap.State)
	}
}

func TestBeginDefaultsTopicAndAssignsID(t *testing.T) {
	mgr, _ := testManager(t)
	if err := mgr.Identify(testMember()); err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if err := mgr.Begin("study", ""); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	snap := mgr.Snapshot()
	if snap.State != StateActive {
		t.Fatalf("expected active state, got %s", snap.State)
	}
	if snap.Session.Topic != DefaultTopic {
		t.Fatalf("expected default topic, got %q", snap.Session.Topic)
	}
	if snap.Session.ID == "" {
		t.Fatal("expected a session id to be assigned")
	}
}

func TestEndRequiresConfirmationThenPersists(t *testing.T) {
	mgr, sink := testManager(t)

	clock := time.Date(2026, time.April, 2, 14, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return clock }

	if err := mgr.Identify(testMember()); err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if err := mgr.Begin("study", ""); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	if _, err := mgr.End(context.Background(), false); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if !mgr.Active() {
		t.Fatal("unconfirmed end must not close the session")
	}

	clock = clock.Add(3 * time.Minute)
	record, err := mgr.End(context.Background(), true)
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if record.Duration != "3m" {
		t.Fatalf("expected 3m duration, got %q", record.Duration)
	}
	if record.DurationMinutes != 3 {
		t.Fatalf("expected 3 minutes, got %d", record.DurationMinutes)
	}
	if record.MemberID != "ACM07" {
		t.Fatalf("unexpected member id %q", record.MemberID)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected one persisted record, got %d", len(sink.records))
	}
	if snap := mgr.Snapshot(); snap.State != StateIdle {
		t.Fatalf("expected idle after end, got %s", snap.State)
	}
}

func TestEndKeepsSessionWhenPersistFails(t *testing.T) {
	mgr, sink := testManager(t)

	if err := mgr.Identify(testMember()); err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if err := mgr.Begin("study", ""); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	sink.err = errors.New("disk full")
	if _, err := mgr.End(context.Background(), true); err == nil {
		t.Fatal("expected End to surface the persistence failure")
	}
	if !mgr.Active() {
		t.Fatal("a failed append must leave the session active for retry")
	}
	snap := mgr.Snapshot()
	if snap.Session == nil || snap.Session.MemberID != "ACM07" {
		t.Fatalf("expected the session retained, got %+v", snap)
	}

	sink.err = nil
	record, err := mgr.End(context.Background(), true)
	if err != nil {
		t.Fatalf("retried End failed: %v", err)
	}
	if len(sink.records) != 1 || sink.records[0].ID != record.ID {
		t.Fatalf("expected the retried record persisted once, got %+v", sink.records)
	}
	if snap := mgr.Snapshot(); snap.State != StateIdle {
		t.Fatalf("expected idle after retried end, got %s", snap.State)
	}
}

func TestCancelPathsReturnToIdle(t *testing.T) {
	mgr, sink := testManager(t)

	if err := mgr.Cancel(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	if err := mgr.Identify(testMember()); err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if err := mgr.Cancel(); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if snap := mgr.Snapshot(); snap.State != StateIdle {
		t.Fatalf("expected idle after cancel, got %s", snap.State)
	}

	if err := mgr.Identify(testMember()); err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if err := mgr.StartDetails(); err != nil {
		t.Fatalf("StartDetails failed: %v", err)
	}
	if err := mgr.CancelDetails(); err != nil {
		t.Fatalf("CancelDetails failed: %v", err)
	}
	if snap := mgr.Snapshot(); snap.State != StateIdle {
		t.Fatalf("expected idle after details cancel, got %s", snap.State)
	}
	if len(sink.records) != 0 {
		t.Fatalf("cancellations must not persist records, got %d", len(sink.records))
	}
}

func TestEndFromIdleIsInvalid(t *testing.T) {
	mgr, _ := testManager(t)
	if _, err := mgr.End(context.Background(), true); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestElapsedRecomputesFromWallClock(t *testing.T) {
	mgr, _ := testManager(t)

	start := time.Now().Add(-125 * time.Second)
	mgr.now = func() time.Time { return start }

	if err := mgr.Identify(testMember()); err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if err := mgr.Begin("study", "go"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	// Shift the clock forward and wait for one tick to recompute.
	mgr.mu.Lock()
	mgr.now = time.Now
	mgr.mu.Unlock()

	deadline := time.After(3 * time.Second)
	for {
		snap := mgr.Snapshot()
		if strings.HasPrefix(snap.Elapsed, "2m ") {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("elapsed never recomputed, last %q", snap.Elapsed)
		case <-time.After(50 * time.Millisecond):
		}
	}

	if _, err := mgr.End(context.Background(), true); err != nil {
		t.Fatalf("End failed: %v", err)
	}
}
