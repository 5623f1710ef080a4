// Package logging provides slog-based structured logging for the kiosk
// daemon and CLI, with a human-oriented console handler, a JSON handler,
// and standardized field keys shared across components.
package logging
