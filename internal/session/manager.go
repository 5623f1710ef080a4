package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"foyer/internal/attendance"
	"foyer/internal/config"
	"foyer/internal/logging"
	"foyer/internal/member"
)

// DefaultTopic fills the topic field when the operator leaves it blank.
const DefaultTopic = "Non spécifié"

// State identifies where the check-in workflow currently stands.
type State string

const (
	StateIdle       State = "idle"
	StateIdentified State = "identified"
	StateDetailed   State = "detailed"
	StateActive     State = "active"
)

var (
	// ErrSessionExists rejects identification while a session is in progress.
	ErrSessionExists = errors.New("a check-in session is already in progress")
	// ErrNoSession rejects workflow calls that require an existing session.
	ErrNoSession = errors.New("no check-in session in progress")
	// ErrInvalidTransition rejects calls made from the wrong workflow state.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrEmptyPurpose rejects Begin with a blank purpose.
	ErrEmptyPurpose = errors.New("purpose must not be empty")
	// ErrNotConfirmed rejects End without operator confirmation.
	ErrNotConfirmed = errors.New("ending a session requires confirmation")
)

// Session is the mutable in-memory aggregate for one visit. It exists from
// identification until it is closed into an attendance record or cancelled.
type Session struct {
	ID          string    `json:"id,omitempty"`
	MemberID    string    `json:"memberId"`
	Name        string    `json:"name"`
	CheckInTime time.Time `json:"checkInTime"`
	Purpose     string    `json:"purpose,omitempty"`
	Topic       string    `json:"topic,omitempty"`
	StartTime   time.Time `json:"startTime,omitempty"`
	IsTemporary bool      `json:"isTemporary,omitempty"`
}

// Snapshot is the read-only view handed to status consumers.
type Snapshot struct {
	State   State    `json:"state"`
	Session *Session `json:"session,omitempty"`
	Elapsed string   `json:"elapsed,omitempty"`
}

// Sink receives the immutable record produced when a session closes.
type Sink interface {
	Append(ctx context.Context, record attendance.Record) error
}

// Manager owns the check-in workflow state machine. At most one session
// exists at a time; concurrent identify calls are rejected, not queued.
type Manager struct {
	cfg    *config.Session
	logger *slog.Logger
	sink   Sink
	now    func() time.Time

	mu       sync.Mutex
	state    State
	current  *Session
	elapsed  string
	tickStop chan struct{}
}

// NewManager builds an idle workflow manager writing closed records to sink.
func NewManager(cfg *config.Session, logger *slog.Logger, sink Sink) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:    cfg,
		logger: logger.With(logging.String(logging.FieldComponent, "session")),
		sink:   sink,
		now:    time.Now,
		state:  StateIdle,
	}
}

// Identify opens a session for a resolved member. Valid only from Idle.
func (m *Manager) Identify(resolved member.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		return fmt.Errorf("%w: member %s", ErrSessionExists, m.current.MemberID)
	}

	m.current = &Session{
		MemberID:    resolved.RegistrationNumber,
		Name:        resolved.FullName(),
		CheckInTime: m.now(),
		IsTemporary: resolved.IsTemporary,
	}
	m.state = StateIdentified
	m.logger.Info("member identified",
		logging.String(logging.FieldEventType, "session_identified"),
		logging.String(logging.FieldMemberID, resolved.RegistrationNumber))
	return nil
}

// StartDetails moves to the purpose/topic capture step.
func (m *Manager) StartDetails() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdentified {
		return fmt.Errorf("%w: start details from %s", ErrInvalidTransition, m.state)
	}
	m.state = StateDetailed
	return nil
}

// CancelDetails withdraws the capture step and discards the session.
func (m *Manager) CancelDetails() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateDetailed {
		return fmt.Errorf("%w: cancel details from %s", ErrInvalidTransition, m.state)
	}
	m.discardLocked("details cancelled")
	return nil
}

// Cancel discards an identified session before it starts.
func (m *Manager) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateIdentified, StateDetailed:
		m.discardLocked("session cancelled")
		return nil
	case StateIdle:
		return ErrNoSession
	default:
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, m.state)
	}
}

func (m *Manager) discardLocked(reason string) {
	memberID := ""
	if m.current != nil {
		memberID = m.current.MemberID
	}
	m.current = nil
	m.state = StateIdle
	m.logger.Info(reason,
		logging.String(logging.FieldEventType, "session_discarded"),
		logging.String(logging.FieldMemberID, memberID))
}

// Begin starts the timed visit. Valid from Identified or Detailed; an empty
// purpose is rejected without a state change and a blank topic defaults.
func (m *Manager) Begin(purpose, topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdentified && m.state != StateDetailed {
		return fmt.Errorf("%w: begin from %s", ErrInvalidTransition, m.state)
	}

	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return ErrEmptyPurpose
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = DefaultTopic
	}

	m.current.ID = uuid.New().String()
	m.current.Purpose = purpose
	m.current.Topic = topic
	m.current.StartTime = m.now()
	m.state = StateActive
	m.elapsed = FormatElapsed(0)
	m.startTickLocked()

	m.logger.Info("session started",
		logging.String(logging.FieldEventType, "session_started"),
		logging.String(logging.FieldSessionID, m.current.ID),
		logging.String(logging.FieldMemberID, m.current.MemberID),
		logging.String("purpose", purpose))
	return nil
}

// End closes the active session, persists it, and returns the stored record.
// The confirmed flag is the operator's acknowledgement of a destructive step.
func (m *Manager) End(ctx context.Context, confirmed bool) (attendance.Record, error) {
	m.mu.Lock()

	if m.state != StateActive {
		m.mu.Unlock()
		return attendance.Record{}, fmt.Errorf("%w: end from %s", ErrInvalidTransition, m.state)
	}
	if !confirmed {
		m.mu.Unlock()
		return attendance.Record{}, ErrNotConfirmed
	}

	now := m.now()
	elapsed := now.Sub(m.current.StartTime)
	minutes := int(elapsed.Minutes())
	record := attendance.Record{
		ID:              m.current.ID,
		MemberID:        m.current.MemberID,
		Name:            m.current.Name,
		CheckInTime:     m.current.CheckInTime,
		Purpose:         m.current.Purpose,
		Topic:           m.current.Topic,
		StartTime:       m.current.StartTime,
		EndTime:         now,
		Duration:        FormatMinutes(elapsed),
		DurationMinutes: minutes,
		IsTemporary:     m.current.IsTemporary,
	}
	m.mu.Unlock()

	// The session stays active until the record is stored, so a failed
	// append leaves it in place for another End attempt.
	if err := m.sink.Append(ctx, record); err != nil {
		return attendance.Record{}, fmt.Errorf("persist attendance record: %w", err)
	}

	m.mu.Lock()
	if m.state == StateActive && m.current != nil && m.current.ID == record.ID {
		m.stopTickLocked()
		m.current = nil
		m.state = StateIdle
		m.elapsed = ""
	}
	m.mu.Unlock()

	m.logger.Info("session closed",
		logging.String(logging.FieldEventType, "session_closed"),
		logging.String(logging.FieldSessionID, record.ID),
		logging.String(logging.FieldMemberID, record.MemberID),
		logging.String("duration", record.Duration))
	return record, nil
}

// Snapshot returns the current workflow state for status displays.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := Snapshot{State: m.state, Elapsed: m.elapsed}
	if m.current != nil {
		copied := *m.current
		snapshot.Session = &copied
	}
	return snapshot
}

// Active reports whether a timed session is running.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateActive
}

// Cleanup stops the duration tick and discards any in-flight session. Safe to
// call at teardown regardless of state.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopTickLocked()
	if m.current != nil {
		m.discardLocked("session abandoned at teardown")
	}
	m.elapsed = ""
}

func (m *Manager) startTickLocked() {
	interval := time.Duration(m.cfg.TickInterval) * time.Second
	if interval <= 0 {
		interval = time.Second
	}

	stop := make(chan struct{})
	m.tickStop = stop
	start := m.current.StartTime

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.mu.Lock()
				if m.state == StateActive {
					m.elapsed = FormatElapsed(m.now().Sub(start))
				}
				m.mu.Unlock()
			}
		}
	}()
}

func (m *Manager) stopTickLocked() {
	if m.tickStop == nil {
		return
	}
	close(m.tickStop)
	m.tickStop = nil
}
