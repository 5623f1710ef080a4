package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"foyer/internal/config"
	"foyer/internal/logging"
)

// State identifies where the camera lifecycle currently stands.
type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateActive   State = "active"
	StateError    State = "error"
)

// Callbacks is the surface the controller drives. It owns no rendering and
// no business logic; decoded text and failures are handed off here.
type Callbacks struct {
	// OnDecoded receives the decoded text after the controller has already
	// stopped itself (scan-once policy).
	OnDecoded func(text string)
	// OnError receives acquisition-level failures.
	OnError func(scanErr *Error)
	// OnManualPrompt offers manual identifier entry after failures where the
	// camera is unlikely to recover on its own.
	OnManualPrompt func(scanErr *Error)
}

// Snapshot is the read-only controller view handed to status consumers.
type Snapshot struct {
	State     State  `json:"state"`
	Device    string `json:"device,omitempty"`
	LastError string `json:"lastError,omitempty"`
	Restarts  int    `json:"restarts"`
}

// Controller owns the camera device lifecycle: enumeration, permission
// probing, the decode loop, and teardown. It is a state machine independent
// of what is done with decoded text.
type Controller struct {
	cfg       *config.Scanner
	logger    *slog.Logger
	decoder   Decoder
	enumerate func() ([]Camera, error)
	probe     func(device string) error
	callbacks Callbacks

	mu          sync.Mutex
	state       State
	device      string
	cancel      context.CancelFunc
	done        chan struct{}
	lastError   *Error
	restarts    int
	promptTimer *time.Timer
	retryTimer  *time.Timer
}

// NewController builds a stopped controller using the configured decoder.
func NewController(cfg *config.Scanner, logger *slog.Logger, callbacks Callbacks) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{
		cfg:       cfg,
		logger:    logger.With(logging.String(logging.FieldComponent, "scanner")),
		decoder:   NewZbarDecoder(cfg.DecoderBinary),
		enumerate: enumerateCameras,
		probe:     probeCamera,
		callbacks: callbacks,
		state:     StateStopped,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the controller state for status displays.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := Snapshot{State: c.state, Device: c.device, Restarts: c.restarts}
	if c.lastError != nil {
		snapshot.LastError = c.lastError.OperatorMessage()
	}
	return snapshot
}

// Start acquires a camera and begins the decode loop. Calling it while
// already starting or active is a logged no-op, so a double start performs
// exactly one acquisition. Any prior device handle is torn down first.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateStarting || c.state == StateActive {
		c.mu.Unlock()
		c.logger.Info("scanner already running, ignoring start",
			logging.String(logging.FieldEventType, "scanner_start_ignored"))
		return nil
	}
	c.teardownLocked()
	c.state = StateStarting
	c.lastError = nil
	c.mu.Unlock()

	device, err := c.acquireDevice()
	if err != nil {
		var scanErr *Error
		if !errors.As(err, &scanErr) {
			scanErr = newError(KindUnknown, device, err)
		}
		c.fail(scanErr)
		return scanErr
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	if c.state != StateStarting {
		// Stopped concurrently while acquiring.
		c.mu.Unlock()
		cancel()
		return nil
	}
	c.cancel = cancel
	c.done = done
	c.device = device
	c.state = StateActive
	c.mu.Unlock()

	c.logger.Info("scanner active",
		logging.String(logging.FieldEventType, "scanner_started"),
		logging.String(logging.FieldDevice, device))

	go c.decodeLoop(loopCtx, device, done)
	return nil
}

func (c *Controller) acquireDevice() (string, error) {
	if configured := strings.TrimSpace(c.cfg.Device); configured != "" {
		if err := c.probe(configured); err != nil {
			return configured, classifyProbe(configured, err)
		}
		return configured, nil
	}

	cameras, err := c.enumerate()
	if err != nil {
		return "", newError(KindUnsupportedEnvironment, "", err)
	}
	selected, ok := selectCamera(cameras)
	if !ok {
		return "", newError(KindNoCameraFound, "", errors.New("no video devices present"))
	}
	if err := c.probe(selected.Device); err != nil {
		return selected.Device, classifyProbe(selected.Device, err)
	}
	return selected.Device, nil
}

func (c *Controller) decodeLoop(ctx context.Context, device string, done chan struct{}) {
	defer close(done)

	// Cosmetic pause so the operator sees the scanner come up.
	pause := time.Duration(c.cfg.StartPauseMillis) * time.Millisecond
	if pause > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(pause):
		}
	}

	timeout := time.Duration(c.cfg.DecodeTimeout) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	for {
		if ctx.Err() != nil {
			return
		}

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		text, err := c.decoder.DecodeOnce(attemptCtx, device)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// No-QR-in-frame and per-attempt timeouts are transient noise.
			if errors.Is(err, errNoCode) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			scanErr := classifyStart(device, err)
			if scanErr == nil {
				return
			}
			c.stopSelf()
			c.fail(scanErr)
			return
		}

		c.logger.Info("badge decoded",
			logging.String(logging.FieldEventType, "scanner_decoded"),
			logging.String(logging.FieldDevice, device))

		// Scan-once: stop before handing the text off so one physical badge
		// cannot produce duplicate check-ins.
		c.stopSelf()
		if cb := c.callbacks.OnDecoded; cb != nil {
			cb(text)
		}
		return
	}
}

// Stop tears down the device and decode loop. Tolerant of being called when
// already stopped; teardown problems are logged, never propagated.
func (c *Controller) Stop() {
	c.mu.Lock()
	done := c.done
	c.teardownLocked()
	if c.state != StateStopped {
		c.state = StateStopped
		c.logger.Info("scanner stopped",
			logging.String(logging.FieldEventType, "scanner_stopped"))
	}
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}

// stopSelf is Stop for the decode goroutine; it must not wait on itself.
func (c *Controller) stopSelf() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
	c.state = StateStopped
}

// teardownLocked releases the decode loop handle. Callers hold c.mu.
func (c *Controller) teardownLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.done = nil
	c.device = ""
}

func (c *Controller) fail(scanErr *Error) {
	c.mu.Lock()
	c.teardownLocked()
	c.state = StateError
	c.lastError = scanErr
	c.mu.Unlock()

	logging.ErrorWithContext(c.logger, "camera acquisition failed", "scanner_failed",
		logging.Error(scanErr),
		logging.String("kind", string(scanErr.Kind)),
		logging.String(logging.FieldErrorHint, scanErr.OperatorMessage()),
		logging.String(logging.FieldImpact, "badge scanning unavailable"))

	// Callbacks observe the Error state; it settles to Stopped afterwards
	// so a fresh Start is permitted.
	if cb := c.callbacks.OnError; cb != nil {
		cb(scanErr)
	}

	c.mu.Lock()
	if c.state == StateError {
		c.state = StateStopped
	}
	c.mu.Unlock()

	if scanErr.OffersManualEntry() {
		c.scheduleManualPrompt(scanErr)
	}
}

func (c *Controller) scheduleManualPrompt(scanErr *Error) {
	delay := time.Duration(c.cfg.ManualPromptDelay) * time.Second
	if delay <= 0 {
		delay = 3 * time.Second
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.promptTimer != nil {
		// A prompt is already pending for an earlier failure.
		return
	}
	c.promptTimer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		c.promptTimer = nil
		c.mu.Unlock()
		if cb := c.callbacks.OnManualPrompt; cb != nil {
			cb(scanErr)
		}
	})
}

// RestartAfterLookupFailure schedules a bounded automatic restart so the
// operator can re-scan after a failed member lookup. Consecutive restarts
// beyond the configured maximum are refused until a lookup succeeds.
func (c *Controller) RestartAfterLookupFailure(ctx context.Context) error {
	maxRestarts := c.cfg.MaxAutoRestarts
	if maxRestarts <= 0 {
		maxRestarts = 3
	}
	delay := time.Duration(c.cfg.RestartDelay) * time.Second
	if delay <= 0 {
		delay = 3 * time.Second
	}

	c.mu.Lock()
	if c.restarts >= maxRestarts {
		c.mu.Unlock()
		c.logger.Warn("auto-restart budget exhausted, waiting for manual restart",
			logging.String(logging.FieldEventType, "scanner_retries_exhausted"),
			logging.Int("restarts", maxRestarts))
		return fmt.Errorf("scanner auto-restart budget exhausted after %d attempts", maxRestarts)
	}
	c.restarts++
	attempt := c.restarts
	if c.retryTimer != nil {
		c.retryTimer.Stop()
	}
	c.retryTimer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		c.retryTimer = nil
		c.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		if err := c.Start(ctx); err != nil {
			logging.WarnWithContext(c.logger, "auto-restart failed", "scanner_restart_failed",
				logging.Error(err))
		}
	})
	c.mu.Unlock()

	c.logger.Info("scanner restart scheduled",
		logging.String(logging.FieldEventType, "scanner_restart_scheduled"),
		logging.Int("attempt", attempt))
	return nil
}

// ResetAutoRestarts clears the consecutive restart counter after a
// successful lookup.
func (c *Controller) ResetAutoRestarts() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.restarts = 0
}

// Cleanup releases the camera and pending timers. It must be safe to call
// at teardown regardless of whether the scanner ever started.
func (c *Controller) Cleanup() {
	c.mu.Lock()
	if c.promptTimer != nil {
		c.promptTimer.Stop()
		c.promptTimer = nil
	}
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	c.mu.Unlock()
	c.Stop()
}
