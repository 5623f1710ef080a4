// Package config loads, normalizes, and validates the TOML configuration
// shared by the kiosk daemon and CLI.
package config
