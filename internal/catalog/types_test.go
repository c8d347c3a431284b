package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayOf(t *testing.T) {
	// 2024-01-01 was a Monday.
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, want := range Week {
		assert.Equal(t, want, DayOf(base.AddDate(0, 0, i)))
	}
}

func TestTomorrow(t *testing.T) {
	sunday := time.Date(2024, 1, 7, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, Monday, Tomorrow(sunday))
	assert.Equal(t, Sunday, Tomorrow(sunday.AddDate(0, 0, -1)))
}

func TestParseDay(t *testing.T) {
	d, ok := ParseDay("wed")
	assert.True(t, ok)
	assert.Equal(t, Wednesday, d)
	assert.Equal(t, "Среда", d.Label())

	_, ok = ParseDay("Wed")
	assert.False(t, ok)
	assert.Equal(t, "xyz", Day("xyz").Label())
}

func TestSnapshot_Days(t *testing.T) {
	snap := Snapshot{Schedule: map[Day][]string{Friday: {}, Monday: {"math"}}}
	assert.Equal(t, []Day{Monday, Friday}, snap.Days())
}
