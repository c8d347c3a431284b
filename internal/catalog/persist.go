package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNoSnapshot is returned by a Persister when nothing has been stored yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Persister is durable storage for catalog snapshots.
//
// Save must replace the stored snapshot as a whole; a reader never observes
// a partially written snapshot.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// MalformedError reports stored content that exists but cannot be decoded.
type MalformedError struct {
	Source string
	Err    error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed snapshot in %s: %v", e.Source, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is a *MalformedError.
func IsMalformed(err error) bool {
	var me *MalformedError
	return errors.As(err, &me)
}

// MemoryPersister keeps the last saved snapshot in memory.
// Used by tests and the console transport.
type MemoryPersister struct {
	mu    sync.Mutex
	snap  *Snapshot
	saves int

	// SaveErr, when set, is returned by every Save and nothing is stored.
	SaveErr error

	// LoadErr, when set, is returned by every Load.
	LoadErr error
}

// NewMemoryPersister returns an empty MemoryPersister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load returns a copy of the stored snapshot or ErrNoSnapshot.
func (m *MemoryPersister) Load(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return Snapshot{}, m.LoadErr
	}
	if m.snap == nil {
		return Snapshot{}, ErrNoSnapshot
	}
	return m.snap.Clone(), nil
}

// Save stores a copy of snap.
func (m *MemoryPersister) Save(ctx context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	c := snap.Clone()
	m.snap = &c
	m.saves++
	return nil
}

// Saves returns the number of successful saves.
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Stored returns the last saved snapshot and whether one exists.
func (m *MemoryPersister) Stored() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return Snapshot{}, false
	}
	return m.snap.Clone(), true
}
