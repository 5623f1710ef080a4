package kiosk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"foyer/internal/attendance"
	"foyer/internal/config"
	"foyer/internal/logging"
	"foyer/internal/member"
	"foyer/internal/notify"
	"foyer/internal/scanner"
	"foyer/internal/session"
)

// Kiosk coordinates the member registry, badge scanner, and check-in workflow
// into a single lifecycle with flock-based locking so only one kiosk instance
// runs per machine.
type Kiosk struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *member.Registry
	scanner  *scanner.Controller
	sessions *session.Manager
	store    *attendance.Store
	notifier notify.Service
	logPath  string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	hotplug *hotplugMonitor
}

// Status represents kiosk runtime information.
type Status struct {
	Running         bool
	DemoMode        bool
	Scanner         scanner.Snapshot
	Session         session.Snapshot
	MemberStats     member.Stats
	AttendanceStats attendance.Stats
	DBPath          string
	LockFilePath    string
}

// New constructs a kiosk with initialized dependencies.
func New(cfg *config.Config, store *attendance.Store, logger *slog.Logger, notifier notify.Service) (*Kiosk, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("kiosk requires config and attendance store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notify.NewService(cfg)
	}

	k := &Kiosk{
		cfg:      cfg,
		logger:   logger.With(logging.String(logging.FieldComponent, "kiosk")),
		store:    store,
		notifier: notifier,
		logPath:  filepath.Join(cfg.Paths.LogDir, "foyer.log"),
		lockPath: filepath.Join(cfg.Paths.LogDir, "foyer.lock"),
	}
	k.lock = flock.New(k.lockPath)
	k.registry = member.NewRegistry(&cfg.Registry, logger, notifier)
	k.sessions = session.NewManager(&cfg.Session, logger, store)
	k.scanner = scanner.NewController(&cfg.Scanner, logger, scanner.Callbacks{
		OnDecoded:      k.handleDecoded,
		OnError:        k.handleScannerError,
		OnManualPrompt: k.handleManualPrompt,
	})
	k.hotplug = newHotplugMonitor(logger, k.handleCameraAttached)
	return k, nil
}

// Start acquires the kiosk lock, loads the member directory, and brings up
// the scanner and camera hotplug monitor.
func (k *Kiosk) Start(ctx context.Context) error {
	if k.running.Load() {
		return errors.New("kiosk already running")
	}

	ok, err := k.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another foyer kiosk instance is already running")
	}

	k.ctx, k.cancel = context.WithCancel(ctx)
	k.running.Store(true)

	k.registry.Load(k.ctx)
	k.startSyncLoop()

	if err := k.hotplug.Start(k.ctx); err != nil {
		logging.WarnWithContext(k.logger, "camera hotplug monitor unavailable", "hotplug_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "newly attached cameras require a manual scanner start"))
	}

	if err := k.scanner.Start(k.ctx); err != nil {
		// Non-fatal: manual entry still works and hotplug can recover the
		// scanner when a camera appears.
		logging.WarnWithContext(k.logger, "scanner unavailable at startup", "scanner_startup_failed",
			logging.Error(err))
	}

	k.logger.Info("foyer kiosk started",
		logging.String(logging.FieldEventType, "kiosk_started"),
		logging.String("lock", k.lockPath))
	return nil
}

// Stop stops background work and releases the kiosk lock.
func (k *Kiosk) Stop() {
	if !k.running.Load() {
		return
	}

	if k.cancel != nil {
		k.cancel()
		k.cancel = nil
	}
	k.scanner.Cleanup()
	k.sessions.Cleanup()
	k.hotplug.Stop()
	k.wg.Wait()

	if err := k.lock.Unlock(); err != nil {
		logging.WarnWithContext(k.logger, "failed to release kiosk lock", "kiosk_unlock_failed",
			logging.Error(err))
	}
	k.ctx = nil
	k.running.Store(false)
	k.logger.Info("foyer kiosk stopped",
		logging.String(logging.FieldEventType, "kiosk_stopped"))
}

// Close releases resources held by the kiosk.
func (k *Kiosk) Close() error {
	k.Stop()
	if k.store != nil {
		return k.store.Close()
	}
	return nil
}

func (k *Kiosk) startSyncLoop() {
	interval := time.Duration(k.cfg.Registry.SyncInterval) * time.Second
	if interval <= 0 {
		return
	}
	ctx := k.ctx
	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				k.registry.Load(ctx)
			}
		}
	}()
}

// handleDecoded bridges scanner output into the check-in workflow. The
// scanner has already stopped itself by the time this runs.
func (k *Kiosk) handleDecoded(text string) {
	ctx := k.runCtx()
	identifier := scanner.ExtractIdentifier(text)
	if _, err := k.Checkin(ctx, identifier); err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			if restartErr := k.scanner.RestartAfterLookupFailure(ctx); restartErr != nil {
				k.notifyAsync(notify.SeverityWarning, "Scanner en pause. Redémarrez-le manuellement.")
			}
		}
		return
	}
}

// Checkin resolves an identifier and opens a session for the member. Used by
// both the scanner callback and manual entry.
func (k *Kiosk) Checkin(ctx context.Context, identifier string) (member.Member, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return member.Member{}, fmt.Errorf("%w: empty identifier", member.ErrMemberNotFound)
	}

	resolved, err := k.registry.Resolve(identifier)
	if err != nil {
		k.logger.Warn("member lookup failed",
			logging.String(logging.FieldEventType, "lookup_failed"),
			logging.String(logging.FieldMemberID, identifier))
		k.notifyAsync(notify.SeverityWarning, fmt.Sprintf("Membre introuvable: %s", identifier))
		return member.Member{}, err
	}

	k.scanner.ResetAutoRestarts()

	if err := k.sessions.Identify(resolved); err != nil {
		k.notifyAsync(notify.SeverityWarning, "Une session est déjà en cours.")
		return resolved, err
	}

	k.notifyCheckinAsync(resolved.FullName())
	return resolved, nil
}

func (k *Kiosk) handleScannerError(scanErr *scanner.Error) {
	k.notifyAsync(notify.SeverityError, scanErr.OperatorMessage())
}

func (k *Kiosk) handleManualPrompt(scanErr *scanner.Error) {
	k.logger.Info("offering manual identifier entry",
		logging.String(logging.FieldEventType, "manual_entry_offered"),
		logging.String("kind", string(scanErr.Kind)))
	k.notifyAsync(notify.SeverityInfo, "Saisie manuelle du numéro de membre disponible.")
}

// handleCameraAttached restarts the scanner when a camera device appears and
// nothing else is going on.
func (k *Kiosk) handleCameraAttached(device string) {
	if !k.running.Load() {
		return
	}
	if k.scanner.State() != scanner.StateStopped {
		return
	}
	if k.sessions.Active() {
		return
	}
	k.logger.Info("camera attached, restarting scanner",
		logging.String(logging.FieldEventType, "camera_attached"),
		logging.String(logging.FieldDevice, device))
	if err := k.scanner.Start(k.runCtx()); err != nil {
		logging.WarnWithContext(k.logger, "scanner restart after hotplug failed", "scanner_restart_failed",
			logging.Error(err))
	}
}

func (k *Kiosk) runCtx() context.Context {
	if k.ctx != nil {
		return k.ctx
	}
	return context.Background()
}

func (k *Kiosk) notifyAsync(severity notify.Severity, message string) {
	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := k.notifier.Notify(ctx, severity, message); err != nil {
			logging.WarnWithContext(k.logger, "notification failed", "notification_failed",
				logging.Error(err))
		}
	}()
}

func (k *Kiosk) notifyCheckinAsync(name string) {
	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := k.notifier.NotifyCheckin(ctx, name); err != nil {
			logging.WarnWithContext(k.logger, "notification failed", "notification_failed",
				logging.Error(err))
		}
	}()
}

// Members returns the loaded directory.
func (k *Kiosk) Members() []member.Member {
	return k.registry.Members()
}

// MemberStats returns derived directory counts.
func (k *Kiosk) MemberStats() member.Stats {
	return k.registry.Stats()
}

// Resolve looks up an identifier without opening a session.
func (k *Kiosk) Resolve(identifier string) (member.Member, error) {
	return k.registry.Resolve(identifier)
}

// ReloadMembers forces a directory refresh.
func (k *Kiosk) ReloadMembers(ctx context.Context) []member.Member {
	return k.registry.Load(ctx)
}

// SessionSnapshot returns the current workflow state.
func (k *Kiosk) SessionSnapshot() session.Snapshot {
	return k.sessions.Snapshot()
}

// SessionStartDetails moves the workflow to the detail capture step.
func (k *Kiosk) SessionStartDetails() error {
	return k.sessions.StartDetails()
}

// SessionCancelDetails withdraws the detail capture step.
func (k *Kiosk) SessionCancelDetails() error {
	return k.sessions.CancelDetails()
}

// SessionBegin starts the timed visit.
func (k *Kiosk) SessionBegin(purpose, topic string) error {
	return k.sessions.Begin(purpose, topic)
}

// SessionCancel discards the identified session.
func (k *Kiosk) SessionCancel() error {
	return k.sessions.Cancel()
}

// SessionEnd closes the active session, persists the record, and resumes the
// scanner for the next visitor.
func (k *Kiosk) SessionEnd(ctx context.Context, confirmed bool) (attendance.Record, error) {
	record, err := k.sessions.End(ctx, confirmed)
	if err != nil {
		return attendance.Record{}, err
	}

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if notifyErr := k.notifier.NotifySessionClosed(notifyCtx, record.Name, record.Duration); notifyErr != nil {
			logging.WarnWithContext(k.logger, "notification failed", "notification_failed",
				logging.Error(notifyErr))
		}
	}()

	if k.running.Load() && k.scanner.State() == scanner.StateStopped {
		if startErr := k.scanner.Start(k.runCtx()); startErr != nil {
			logging.WarnWithContext(k.logger, "scanner restart after session end failed", "scanner_restart_failed",
				logging.Error(startErr))
		}
	}
	return record, nil
}

// AttendanceList returns the stored log, newest first.
func (k *Kiosk) AttendanceList(ctx context.Context) ([]attendance.Record, error) {
	return k.store.List(ctx)
}

// AttendanceStats returns derived log counts.
func (k *Kiosk) AttendanceStats(ctx context.Context) (attendance.Stats, error) {
	active := 0
	if k.sessions.Active() {
		active = 1
	}
	return k.store.Stats(ctx, active)
}

// AttendanceClear wipes the stored log on operator request.
func (k *Kiosk) AttendanceClear(ctx context.Context) (int, error) {
	cleared, err := k.store.Clear(ctx)
	if err != nil {
		return 0, err
	}
	k.logger.Info("attendance log cleared",
		logging.String(logging.FieldEventType, "attendance_cleared"),
		logging.Int("cleared", cleared))
	return cleared, nil
}

// ScannerStart brings the scanner up on operator request.
func (k *Kiosk) ScannerStart() error {
	return k.scanner.Start(k.runCtx())
}

// ScannerStop tears the scanner down on operator request.
func (k *Kiosk) ScannerStop() {
	k.scanner.Stop()
}

// ScannerSnapshot returns the scanner state.
func (k *Kiosk) ScannerSnapshot() scanner.Snapshot {
	return k.scanner.Snapshot()
}

// TestNotification sends a test push using the current configuration.
func (k *Kiosk) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(k.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := k.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the kiosk log file.
func (k *Kiosk) LogPath() string {
	return k.logPath
}

// Status returns the current kiosk status.
func (k *Kiosk) Status(ctx context.Context) Status {
	stats, err := k.AttendanceStats(ctx)
	if err != nil {
		logging.WarnWithContext(k.logger, "attendance stats unavailable", "stats_failed",
			logging.Error(err))
	}
	return Status{
		Running:         k.running.Load(),
		DemoMode:        k.registry.DemoMode(),
		Scanner:         k.scanner.Snapshot(),
		Session:         k.sessions.Snapshot(),
		MemberStats:     k.registry.Stats(),
		AttendanceStats: stats,
		DBPath:          k.store.Path(),
		LockFilePath:    k.lockPath,
	}
}
