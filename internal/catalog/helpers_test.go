package catalog

import (
	"context"
	"testing"
)

// createTestStore returns a store over an empty in-memory persister,
// starting from snap.
func createTestStore(t *testing.T, snap Snapshot) (*Store, *MemoryPersister) {
	t.Helper()
	p := NewMemoryPersister()
	return New(p, WithSnapshot(snap)), p
}

func mustAdd(t *testing.T, s *Store, key, name, hw string) {
	t.Helper()
	if err := s.AddSubject(context.Background(), key, name, hw); err != nil {
		t.Fatalf("AddSubject(%q) failed: %v", key, err)
	}
}
