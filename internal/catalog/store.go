package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Store is the process-wide catalog of subjects and the weekly schedule.
//
// All methods are safe for concurrent use. Mutations hold the write lock
// across apply and save; queries hold the read lock and return copies.
type Store struct {
	mu        sync.RWMutex
	subjects  map[string]Subject
	order     []string
	schedule  map[Day][]string
	persister Persister
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load warnings and save failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSnapshot sets the initial in-memory state. Without it the store
// starts from Defaults().
func WithSnapshot(snap Snapshot) Option {
	return func(s *Store) {
		s.setLocked(snap)
	}
}

// New creates a store backed by p. A nil p keeps everything in memory.
func New(p Persister, opts ...Option) *Store {
	if p == nil {
		p = NewMemoryPersister()
	}
	s := &Store{
		persister: p,
		logger:    slog.Default(),
	}
	s.setLocked(Defaults())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory state with the stored snapshot.
//
// When nothing is stored yet the current state is saved and kept. When the
// stored content is malformed the current state is kept and nil is
// returned. Other read errors are returned and leave the state untouched.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.persister.Load(ctx)
	switch {
	case errors.Is(err, ErrNoSnapshot):
		s.logger.Info("no stored catalog, writing current state")
		return s.persistLocked(ctx, "load")
	case IsMalformed(err):
		s.logger.Warn("stored catalog is malformed, keeping in-memory state", "error", err)
		return nil
	case err != nil:
		return fmt.Errorf("load catalog: %w", err)
	}

	s.setLocked(s.sanitize(snap))
	s.logger.Debug("catalog loaded", "subjects", len(s.order), "days", len(s.schedule))
	return nil
}

// Save writes the full current state.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx, "save")
}

// Replace swaps the whole catalog for snap and saves it. Unknown days and
// lesson keys without a subject are dropped.
func (s *Store) Replace(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(s.sanitize(snap))
	return s.persistLocked(ctx, "replace")
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// AddSubject inserts a new subject at the end of the catalog.
func (s *Store) AddSubject(ctx context.Context, key, name, homework string) error {
	return s.mutate(ctx, "add_subject", func() (bool, error) {
		if err := checkSubject(key, name); err != nil {
			return false, err
		}
		if _, ok := s.subjects[key]; ok {
			return false, errDuplicateKey(key)
		}
		s.insertLocked(Subject{Key: key, Name: name, Homework: homework})
		return true, nil
	})
}

// CreateSubject adds a subject whose key is derived from name and made
// unique against the current catalog. The created subject is returned.
func (s *Store) CreateSubject(ctx context.Context, name, homework string) (Subject, error) {
	var created Subject
	err := s.mutate(ctx, "create_subject", func() (bool, error) {
		if strings.TrimSpace(name) == "" {
			return false, &Error{Code: ErrCodeInvalidSubject, Message: "subject name is required"}
		}
		key := UniqueKey(Slugify(name), func(k string) bool {
			_, ok := s.subjects[k]
			return ok
		})
		created = Subject{Key: key, Name: name, Homework: homework}
		s.insertLocked(created)
		return true, nil
	})
	if err != nil && !IsPersistFailure(err) {
		return Subject{}, err
	}
	return created, err
}

// RenameSubject changes the display name. The key never changes.
func (s *Store) RenameSubject(ctx context.Context, key, name string) error {
	return s.mutate(ctx, "rename_subject", func() (bool, error) {
		subj, ok := s.subjects[key]
		if !ok {
			return false, errNotFound(key)
		}
		if strings.TrimSpace(name) == "" {
			return false, &Error{Code: ErrCodeInvalidSubject, Message: "subject name is required", Subject: key}
		}
		subj.Name = name
		s.subjects[key] = subj
		return true, nil
	})
}

// SetHomework replaces the homework text of a subject.
func (s *Store) SetHomework(ctx context.Context, key, text string) error {
	return s.mutate(ctx, "set_homework", func() (bool, error) {
		subj, ok := s.subjects[key]
		if !ok {
			return false, errNotFound(key)
		}
		subj.Homework = text
		s.subjects[key] = subj
		return true, nil
	})
}

// DeleteSubject removes a subject and every lesson referencing it.
func (s *Store) DeleteSubject(ctx context.Context, key string) error {
	return s.mutate(ctx, "delete_subject", func() (bool, error) {
		if _, ok := s.subjects[key]; !ok {
			return false, errNotFound(key)
		}
		delete(s.subjects, key)
		s.order = slices.DeleteFunc(s.order, func(k string) bool { return k == key })
		for d, keys := range s.schedule {
			s.schedule[d] = slices.DeleteFunc(keys, func(k string) bool { return k == key })
		}
		return true, nil
	})
}

// CreateDay adds day with no lessons. An existing day is left as is and
// nothing is saved.
func (s *Store) CreateDay(ctx context.Context, day Day) error {
	return s.mutate(ctx, "create_day", func() (bool, error) {
		if !day.Valid() {
			return false, errUnknownDay(day)
		}
		if _, ok := s.schedule[day]; ok {
			return false, nil
		}
		s.schedule[day] = []string{}
		return true, nil
	})
}

// DeleteDay removes day from the schedule entirely. Deleting an absent day
// is a no-op.
func (s *Store) DeleteDay(ctx context.Context, day Day) error {
	return s.mutate(ctx, "delete_day", func() (bool, error) {
		if !day.Valid() {
			return false, errUnknownDay(day)
		}
		if _, ok := s.schedule[day]; !ok {
			return false, nil
		}
		delete(s.schedule, day)
		return true, nil
	})
}

// AppendLesson adds subject key to the end of day, creating the day when
// absent.
func (s *Store) AppendLesson(ctx context.Context, day Day, key string) error {
	return s.mutate(ctx, "append_lesson", func() (bool, error) {
		if !day.Valid() {
			return false, errUnknownDay(day)
		}
		if _, ok := s.subjects[key]; !ok {
			return false, errUnknownSubject(key)
		}
		s.schedule[day] = append(s.schedule[day], key)
		return true, nil
	})
}

// ClearDay empties day. The day stays present.
func (s *Store) ClearDay(ctx context.Context, day Day) error {
	return s.mutate(ctx, "clear_day", func() (bool, error) {
		if !day.Valid() {
			return false, errUnknownDay(day)
		}
		s.schedule[day] = []string{}
		return true, nil
	})
}

// RemoveLessonAt deletes the lesson at 1-based index.
func (s *Store) RemoveLessonAt(ctx context.Context, day Day, index int) error {
	return s.mutate(ctx, "remove_lesson", func() (bool, error) {
		if !day.Valid() {
			return false, errUnknownDay(day)
		}
		keys := s.schedule[day]
		if index < 1 || index > len(keys) {
			return false, errIndexOutOfRange(day, index, len(keys))
		}
		s.schedule[day] = slices.Delete(keys, index-1, index)
		return true, nil
	})
}

// ReplaceLessonAt sets the lesson at 1-based index to subject key. Choosing
// the subject already at that position fails with ErrCodeNoChange.
func (s *Store) ReplaceLessonAt(ctx context.Context, day Day, index int, key string) error {
	return s.mutate(ctx, "replace_lesson", func() (bool, error) {
		if !day.Valid() {
			return false, errUnknownDay(day)
		}
		keys := s.schedule[day]
		if index < 1 || index > len(keys) {
			return false, errIndexOutOfRange(day, index, len(keys))
		}
		if _, ok := s.subjects[key]; !ok {
			return false, errUnknownSubject(key)
		}
		if keys[index-1] == key {
			return false, errNoChange(day, index, key)
		}
		keys[index-1] = key
		return true, nil
	})
}

// mutate runs fn under the write lock and saves when fn reports a change.
// A failed save leaves the applied change in memory.
func (s *Store) mutate(ctx context.Context, op string, fn func() (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := fn()
	if err != nil || !changed {
		return err
	}
	return s.persistLocked(ctx, op)
}

func (s *Store) persistLocked(ctx context.Context, op string) error {
	if err := s.persister.Save(ctx, s.snapshotLocked()); err != nil {
		s.logger.Error("failed to persist catalog", "op", op, "error", err)
		return &PersistError{Op: op, Err: err}
	}
	return nil
}

func (s *Store) insertLocked(subj Subject) {
	s.subjects[subj.Key] = subj
	s.order = append(s.order, subj.Key)
}

func (s *Store) setLocked(snap Snapshot) {
	s.subjects = make(map[string]Subject, len(snap.Subjects))
	s.order = make([]string, 0, len(snap.Subjects))
	for _, subj := range snap.Subjects {
		if _, dup := s.subjects[subj.Key]; dup {
			continue
		}
		s.insertLocked(subj)
	}
	s.schedule = make(map[Day][]string, len(snap.Schedule))
	for d, keys := range snap.Schedule {
		s.schedule[d] = append([]string{}, keys...)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Subjects: make([]Subject, 0, len(s.order)),
		Schedule: make(map[Day][]string, len(s.schedule)),
	}
	for _, k := range s.order {
		snap.Subjects = append(snap.Subjects, s.subjects[k])
	}
	for d, keys := range s.schedule {
		snap.Schedule[d] = append([]string{}, keys...)
	}
	return snap
}

// sanitize drops duplicate subjects, unknown days and dangling lesson keys.
func (s *Store) sanitize(snap Snapshot) Snapshot {
	out := Snapshot{
		Subjects: make([]Subject, 0, len(snap.Subjects)),
		Schedule: make(map[Day][]string, len(snap.Schedule)),
	}
	known := make(map[string]bool, len(snap.Subjects))
	for _, subj := range snap.Subjects {
		if known[subj.Key] {
			s.logger.Warn("dropping duplicate subject", "key", subj.Key)
			continue
		}
		known[subj.Key] = true
		out.Subjects = append(out.Subjects, subj)
	}
	for d, keys := range snap.Schedule {
		if !d.Valid() {
			s.logger.Warn("dropping unknown day", "day", string(d))
			continue
		}
		kept := make([]string, 0, len(keys))
		for _, k := range keys {
			if !known[k] {
				s.logger.Warn("dropping lesson with unknown subject", "day", string(d), "key", k)
				continue
			}
			kept = append(kept, k)
		}
		out.Schedule[d] = kept
	}
	return out
}

func checkSubject(key, name string) error {
	if !ValidKey(key) {
		return &Error{Code: ErrCodeInvalidSubject, Message: fmt.Sprintf("invalid subject key %q", key), Subject: key}
	}
	if strings.TrimSpace(name) == "" {
		return &Error{Code: ErrCodeInvalidSubject, Message: "subject name is required", Subject: key}
	}
	return nil
}
