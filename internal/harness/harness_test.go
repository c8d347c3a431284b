package harness

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioDir = "testdata/scenarios"

// goldenScenarios have their transcript checked in under testdata/golden.
var goldenScenarios = map[string]bool{
	"schedule_editor":    true,
	"homework_not_saved": true,
}

func TestScenarios(t *testing.T) {
	scenarios, err := LoadDir(scenarioDir)
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			if goldenScenarios[s.Name] {
				RunWithGolden(t, s)
				return
			}
			result, err := Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors:\n%s\ntranscript:\n%s",
				strings.Join(result.Errors, "\n"), result.Transcript)
		})
	}
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong
description: every expectation here is false
admin: 100
steps:
  - as: 7
    press: "menu:admin"
    expect:
      error: none
      notice: "Добро пожаловать"
  - command: start
    expect:
      messages: 2
      directive: edit
      contains: ["Пока"]
      payloads: ["menu:admin"]
      pending: rename
assertions:
  - type: subject
    key: nope
  - type: saves
    count: 3
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)

	joined := strings.Join(result.Errors, "\n")
	for _, want := range []string{
		"steps[0]: error = UNAUTHORIZED, want none",
		`steps[0]: notice = "Только для админа"`,
		"steps[1]: messages = 1, want 2",
		"steps[1]: directive = send, want edit",
		`does not contain "Пока"`,
		`payload "menu:admin" not offered`,
		"steps[1]: pending = none, want rename",
		`assertions[0] subject: subject "nope" not found`,
		"assertions[1] saves: saves = 0, want 3",
	} {
		assert.Contains(t, joined, want)
	}
}

func TestRun_TranscriptIsDeterministic(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: twice
description: same scenario, same transcript
steps:
  - command: start
    name: "Оля"
  - say: "📅 Расписание по дню"
  - press: "day:tue"
`))
	require.NoError(t, err)

	first, err := Run(context.Background(), s)
	require.NoError(t, err)
	second, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.True(t, first.Pass)
	assert.Equal(t, first.Transcript, second.Transcript)
	assert.True(t, strings.HasPrefix(first.Transcript, "=== twice\n"))
	assert.Contains(t, first.Transcript, ">>> #1 1 /start")
	assert.Contains(t, first.Transcript, "Расписание на Вторник:")
}

func TestRun_EmptySeed(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: empty
description: nothing to browse
seed: empty
steps:
  - press: "menu:subjects"
    expect:
      payloads: ["back:main"]
assertions:
  - type: subject_count
    count: 0
  - type: day_absent
    day: mon
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
}
