// Package attendance persists the capped log of closed check-in sessions.
package attendance
