package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// createTestStore opens a store in a fresh temp directory.
func createTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := Open(path, WithNow(func() time.Time { return fixedNow }))
	require.NoError(t, err, "Open")
	t.Cleanup(func() { s.Close() })
	return s, path
}
