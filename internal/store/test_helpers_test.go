package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/fillertally/internal/tally"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testDefaults is a small fallback used instead of the starter lists.
func testDefaults() Defaults {
	return Defaults{
		CatchAll:   tally.DefaultCatchAll,
		Categories: []string{"Ah", "Um", "Other"},
		Speakers:   []string{"Steve", "Dave"},
	}
}

// putRaw writes a kv value directly, bypassing Save.
func putRaw(t *testing.T, s *Store, key, value string) {
	t.Helper()
	_, err := s.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		t.Fatalf("putRaw(%s) failed: %v", key, err)
	}
}
