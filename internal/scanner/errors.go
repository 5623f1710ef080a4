package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"golang.org/x/sys/unix"
)

// Kind is the closed taxonomy of camera acquisition failures. Classification
// happens once, at the boundary where the device is probed, so downstream
// code never inspects error strings.
type Kind string

const (
	KindPermissionDenied       Kind = "permission_denied"
	KindNoCameraFound          Kind = "no_camera_found"
	KindUnsupportedEnvironment Kind = "unsupported_environment"
	KindDeviceBusy             Kind = "device_busy"
	KindStreamStartFailed      Kind = "stream_start_failed"
	KindUnknown                Kind = "unknown"
)

// Error is an acquisition-level camera failure surfaced to the operator.
type Error struct {
	Kind   Kind
	Device string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("scanner %s (%s): %v", e.Kind, e.Device, e.Cause)
	}
	return fmt.Sprintf("scanner %s (%s)", e.Kind, e.Device)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// OperatorMessage returns the user-facing text shown on the kiosk for this
// failure kind.
func (e *Error) OperatorMessage() string {
	switch e.Kind {
	case KindPermissionDenied:
		return "Accès à la caméra refusé. Vérifiez les permissions du lecteur."
	case KindNoCameraFound:
		return "Aucune caméra détectée. Branchez un lecteur de badges."
	case KindUnsupportedEnvironment:
		return "La caméra n'est pas utilisable dans cet environnement."
	case KindDeviceBusy:
		return "La caméra est utilisée par une autre application."
	case KindStreamStartFailed:
		return "Impossible de démarrer le flux vidéo."
	default:
		return "Erreur du lecteur de badges. Saisie manuelle disponible."
	}
}

// OffersManualEntry reports whether the kiosk should offer typing the
// identifier by hand after this failure.
func (e *Error) OffersManualEntry() bool {
	return e.Kind == KindPermissionDenied || e.Kind == KindUnknown
}

func newError(kind Kind, device string, cause error) *Error {
	return &Error{Kind: kind, Device: device, Cause: cause}
}

// classifyProbe maps a device probe failure into the closed taxonomy.
func classifyProbe(device string, err error) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EACCES) || errors.Is(err, unix.EPERM) || errors.Is(err, fs.ErrPermission):
		return newError(KindPermissionDenied, device, err)
	case errors.Is(err, unix.EBUSY):
		return newError(KindDeviceBusy, device, err)
	case errors.Is(err, unix.ENOENT) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, unix.ENODEV):
		return newError(KindNoCameraFound, device, err)
	case errors.Is(err, unix.ENOTSUP) || errors.Is(err, unix.ENOSYS):
		return newError(KindUnsupportedEnvironment, device, err)
	default:
		return newError(KindUnknown, device, err)
	}
}

// classifyStart maps a decode-stream startup failure.
func classifyStart(device string, err error) *Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	var scanErr *Error
	if errors.As(err, &scanErr) {
		return scanErr
	}
	return newError(KindStreamStartFailed, device, err)
}
