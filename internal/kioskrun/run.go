// Package kioskrun boots the kiosk process: logging, attendance store,
// kiosk lifecycle, and the IPC server, then waits for shutdown.
package kioskrun

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"log/slog"

	"foyer/internal/attendance"
	"foyer/internal/config"
	"foyer/internal/ipc"
	"foyer/internal/kiosk"
	"foyer/internal/logging"
	"foyer/internal/notify"
)

// Options configures kiosk process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the foyer kiosk runtime loop and blocks until the context is
// canceled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logPath := filepath.Join(cfg.Paths.LogDir, "foyer.log")
	level := strings.TrimSpace(opts.LogLevel)
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)

	pidPath := filepath.Join(cfg.Paths.LogDir, "foyer.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := attendance.Open(cfg)
	if err != nil {
		logger.Error("open attendance store", logging.Error(err))
		return err
	}

	notifier := notify.NewService(cfg)
	k, err := kiosk.New(cfg, store, logger, notifier)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create kiosk: %w", err)
	}
	defer k.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), k, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := k.Start(signalCtx); err != nil {
		logger.Warn("kiosk start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "kiosk_start_failed"),
			logging.String(logging.FieldErrorHint, "check that no other foyer instance holds the lock"),
			logging.String(logging.FieldImpact, "kiosk is reachable over IPC but not serving visitors"),
		)
	}

	<-signalCtx.Done()
	logger.Info("foyer kiosk shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	decoder := cfg.Scanner.DecoderBinary
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("decoder_available", binaryAvailable(decoder)),
		logging.String("decoder_binary", decoder),
		logging.Bool("ntfy_configured", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
		logging.String("registry_base_url", cfg.Registry.BaseURL),
	)
}

func binaryAvailable(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
