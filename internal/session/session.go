// Package session tracks per-user conversational state: which free-text
// input, if any, the bot expects next, and the day and lesson selected in
// the schedule editor.
//
// State lives in memory only and is lost on restart. Events for a single
// identity are assumed to arrive serialized by the transport; the Store
// lock only protects the identity map itself.
package session

import (
	"sync"

	"github.com/roach88/schoolbot/internal/catalog"
)

// Identity is a caller's user id as reported by the transport.
type Identity int64

// Mode is the kind of free-text input a user is expected to send.
type Mode int

const (
	// ModeNone means no input is pending.
	ModeNone Mode = iota

	// ModeNewSubject expects "Name" or "Name: homework"; the key is generated.
	ModeNewSubject

	// ModeNewSubjectStructured expects "key;name;homework".
	ModeNewSubjectStructured

	// ModeHomework expects the new homework text for Pending.Subject.
	ModeHomework

	// ModeRename expects the new display name for Pending.Subject.
	ModeRename
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeNewSubject:
		return "new_subject"
	case ModeNewSubjectStructured:
		return "new_subject_structured"
	case ModeHomework:
		return "homework"
	case ModeRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Pending is the single expected input of a user.
type Pending struct {
	Mode Mode

	// Subject is the target subject key for ModeHomework and ModeRename.
	Subject string
}

// Active reports whether any input is pending.
func (p Pending) Active() bool {
	return p.Mode != ModeNone
}

// State is everything remembered about one user.
type State struct {
	Pending Pending

	// EditDay is the day open in the schedule editor, empty when none.
	EditDay catalog.Day

	// EditLesson is the 1-based lesson chosen for replacement, 0 when none.
	EditLesson int
}

func (s State) empty() bool {
	return s == State{}
}

// Store holds State per identity. The zero value is not usable; call
// NewStore.
type Store struct {
	mu     sync.Mutex
	states map[Identity]State
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{states: make(map[Identity]State)}
}

// Get returns a copy of the state of id. Unknown identities yield the zero
// State.
func (s *Store) Get(id Identity) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[id]
}

// Expect replaces the pending input of id.
func (s *Store) Expect(id Identity, p Pending) {
	s.update(id, func(st *State) { st.Pending = p })
}

// Take returns the pending input of id and clears it.
func (s *Store) Take(id Identity) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[id]
	p := st.Pending
	if !p.Active() {
		return Pending{}, false
	}
	st.Pending = Pending{}
	s.storeLocked(id, st)
	return p, true
}

// SelectDay opens day in the schedule editor and forgets any chosen lesson.
func (s *Store) SelectDay(id Identity, day catalog.Day) {
	s.update(id, func(st *State) {
		st.EditDay = day
		st.EditLesson = 0
	})
}

// SelectLesson remembers the 1-based lesson chosen for replacement.
func (s *Store) SelectLesson(id Identity, index int) {
	s.update(id, func(st *State) { st.EditLesson = index })
}

// ClearLesson forgets the chosen lesson, keeping the selected day.
func (s *Store) ClearLesson(id Identity) {
	s.update(id, func(st *State) { st.EditLesson = 0 })
}

// ResetEdit forgets the schedule editor context of id.
func (s *Store) ResetEdit(id Identity) {
	s.update(id, func(st *State) {
		st.EditDay = ""
		st.EditLesson = 0
	})
}

// Cancel forgets everything about id.
func (s *Store) Cancel(id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
}

// Len returns the number of identities with non-empty state.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

func (s *Store) update(id Identity, fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[id]
	fn(&st)
	s.storeLocked(id, st)
}

// storeLocked keeps the map free of empty entries.
func (s *Store) storeLocked(id Identity, st State) {
	if st.empty() {
		delete(s.states, id)
		return
	}
	s.states[id] = st
}
