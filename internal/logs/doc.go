// Package logs provides file tailing with offset tracking for the CLI's
// `foyer show` follow mode.
package logs
