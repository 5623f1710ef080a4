// Package session drives the check-in workflow from identification through
// the timed visit to a persisted attendance record.
package session
