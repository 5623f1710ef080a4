// Package ipc exposes kiosk control over a JSON-RPC Unix socket and the
// matching client used by the CLI.
package ipc
