package catalog

import (
	"slices"
	"time"
)

// Day is a schedule day key.
type Day string

// The fixed seven-day enumeration, Monday first.
const (
	Monday    Day = "mon"
	Tuesday   Day = "tue"
	Wednesday Day = "wed"
	Thursday  Day = "thu"
	Friday    Day = "fri"
	Saturday  Day = "sat"
	Sunday    Day = "sun"
)

// Week lists every day key in display order.
var Week = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayLabels = map[Day]string{
	Monday:    "Понедельник",
	Tuesday:   "Вторник",
	Wednesday: "Среда",
	Thursday:  "Четверг",
	Friday:    "Пятница",
	Saturday:  "Суббота",
	Sunday:    "Воскресенье",
}

// ParseDay returns the Day for a key such as "mon".
func ParseDay(s string) (Day, bool) {
	d := Day(s)
	return d, d.Valid()
}

// Valid reports whether d is one of the seven day keys.
func (d Day) Valid() bool {
	_, ok := dayLabels[d]
	return ok
}

// Label returns the human-readable day name, or the raw key when unknown.
func (d Day) Label() string {
	if l, ok := dayLabels[d]; ok {
		return l
	}
	return string(d)
}

// DayOf maps a point in time to its day key.
func DayOf(t time.Time) Day {
	// time.Weekday is Sunday=0..Saturday=6
	return Week[(int(t.Weekday())+6)%7]
}

// Tomorrow returns the day key following now.
func Tomorrow(now time.Time) Day {
	return DayOf(now.AddDate(0, 0, 1))
}

// Subject is a catalog entry.
type Subject struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Homework string `json:"homework"`
}

// Lesson is one position of a day's schedule, resolved to its subject.
// Position is 1-based.
type Lesson struct {
	Position int
	Subject  Subject
}

// Occurrence locates a subject within the schedule. Position is 1-based.
type Occurrence struct {
	Day      Day
	Position int
}

// Snapshot is the full persisted state of the catalog.
//
// Subjects keep catalog order. Schedule maps present days to their ordered
// lesson keys; a present day always has a non-nil slice.
type Snapshot struct {
	Subjects []Subject
	Schedule map[Day][]string
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Subjects: slices.Clone(s.Subjects),
		Schedule: make(map[Day][]string, len(s.Schedule)),
	}
	if out.Subjects == nil {
		out.Subjects = []Subject{}
	}
	for d, keys := range s.Schedule {
		out.Schedule[d] = append([]string{}, keys...)
	}
	return out
}

// Days returns the present days of s in week order.
func (s Snapshot) Days() []Day {
	var days []Day
	for _, d := range Week {
		if _, ok := s.Schedule[d]; ok {
			days = append(days, d)
		}
	}
	return days
}
