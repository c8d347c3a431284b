package catalog

// Subjects returns all subjects in catalog order.
func (s *Store) Subjects() []Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Subject, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.subjects[k])
	}
	return out
}

// Subject looks up a subject by key.
func (s *Store) Subject(key string) (Subject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subj, ok := s.subjects[key]
	return subj, ok
}

// HasDay reports whether day is present in the schedule, even if empty.
func (s *Store) HasDay(day Day) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.schedule[day]
	return ok
}

// Days returns the present days in week order.
func (s *Store) Days() []Day {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Day
	for _, d := range Week {
		if _, ok := s.schedule[d]; ok {
			out = append(out, d)
		}
	}
	return out
}

// MissingDays returns the absent days in week order.
func (s *Store) MissingDays() []Day {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Day
	for _, d := range Week {
		if _, ok := s.schedule[d]; !ok {
			out = append(out, d)
		}
	}
	return out
}

// Lessons returns the raw lesson keys of day and whether the day is present.
func (s *Store) Lessons(day Day) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys, ok := s.schedule[day]
	if !ok {
		return nil, false
	}
	return append([]string{}, keys...), true
}

// DaySchedule returns the lessons of day resolved to subjects. An absent day
// yields an empty result.
func (s *Store) DaySchedule(day Day) []Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.schedule[day]
	out := make([]Lesson, 0, len(keys))
	for i, k := range keys {
		subj, ok := s.subjects[k]
		if !ok {
			continue
		}
		out = append(out, Lesson{Position: i + 1, Subject: subj})
	}
	return out
}

// DaysForSubject lists every position at which key is scheduled, in week
// order.
func (s *Store) DaysForSubject(key string) []Occurrence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Occurrence
	for _, d := range Week {
		for i, k := range s.schedule[d] {
			if k == key {
				out = append(out, Occurrence{Day: d, Position: i + 1})
			}
		}
	}
	return out
}
