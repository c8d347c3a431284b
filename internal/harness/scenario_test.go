package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: minimal
description: one step
admin: 100
today: "2024-03-05"
steps:
  - command: start
    expect:
      contains: ["Привет"]
  - as: 7
    press: "menu:subjects"
assertions:
  - type: lessons
    day: mon
    keys: [math]
`))
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, int64(100), s.Admin)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, "start", s.Steps[0].Command)
	assert.Equal(t, []string{"Привет"}, s.Steps[0].Expect.Contains)
	assert.Equal(t, int64(7), s.Steps[1].As)
	assert.Nil(t, s.Steps[1].Expect)
	require.Len(t, s.Assertions, 1)
	assert.Equal(t, []string{"math"}, s.Assertions[0].Keys)
}

func TestParseScenario_NoticePointerDistinguishesEmpty(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: n
description: d
steps:
  - press: "menu:admin"
    expect:
      notice: ""
  - press: "menu:admin"
    expect:
      error: none
`))
	require.NoError(t, err)
	require.NotNil(t, s.Steps[0].Expect.Notice)
	assert.Empty(t, *s.Steps[0].Expect.Notice)
	assert.Nil(t, s.Steps[1].Expect.Notice)
}

func TestParseScenario_RejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: d
steps:
  - command: start
assertion:
  - type: saves
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "description: d\nsteps:\n  - command: start\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: n\nsteps:\n  - command: start\n",
			want: "description is required",
		},
		{
			name: "no steps",
			yaml: "name: n\ndescription: d\n",
			want: "steps list is required",
		},
		{
			name: "bad seed",
			yaml: "name: n\ndescription: d\nseed: full\nsteps:\n  - command: start\n",
			want: "seed must be",
		},
		{
			name: "bad today",
			yaml: "name: n\ndescription: d\ntoday: tomorrow\nsteps:\n  - command: start\n",
			want: "today",
		},
		{
			name: "two event kinds",
			yaml: "name: n\ndescription: d\nsteps:\n  - command: start\n    say: hi\n",
			want: "steps[0]: exactly one of",
		},
		{
			name: "no event",
			yaml: "name: n\ndescription: d\nsteps:\n  - as: 5\n",
			want: "steps[0]: exactly one of",
		},
		{
			name: "unknown phase",
			yaml: "name: n\ndescription: d\nsteps:\n  - command: start\n    expect:\n      phase: editing\n",
			want: `unknown phase "editing"`,
		},
		{
			name: "assertion without type",
			yaml: "name: n\ndescription: d\nsteps:\n  - command: start\nassertions:\n  - day: mon\n",
			want: "type is required",
		},
		{
			name: "unknown assertion",
			yaml: "name: n\ndescription: d\nsteps:\n  - command: start\nassertions:\n  - type: homework\n",
			want: `unknown assertion type "homework"`,
		},
		{
			name: "lessons needs day",
			yaml: "name: n\ndescription: d\nsteps:\n  - command: start\nassertions:\n  - type: lessons\n    day: monday\n",
			want: "valid day is required",
		},
		{
			name: "subject needs key",
			yaml: "name: n\ndescription: d\nsteps:\n  - command: start\nassertions:\n  - type: subject_absent\n",
			want: "key is required",
		},
		{
			name: "negative count",
			yaml: "name: n\ndescription: d\nsteps:\n  - command: start\nassertions:\n  - type: saves\n    count: -1\n",
			want: "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadDir_SortsAndReportsFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("b.yml", "name: second\ndescription: d\nsteps:\n  - command: help\n")
	write("a.yaml", "name: first\ndescription: d\nsteps:\n  - command: start\n")
	write("notes.txt", "ignored")

	scenarios, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "first", scenarios[0].Name)
	assert.Equal(t, "second", scenarios[1].Name)

	write("c.yaml", "name: broken\n")
	_, err = LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c.yaml")
}

func TestLoadDir_Empty(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenario files")
}
