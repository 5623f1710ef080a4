package testsupport

import (
	"testing"

	"foyer/internal/attendance"
	"foyer/internal/config"
)

// MustOpenStore opens an attendance.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *attendance.Store {
	t.Helper()

	store, err := attendance.Open(cfg)
	if err != nil {
		t.Fatalf("attendance.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
