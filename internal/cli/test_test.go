package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTest_HarnessScenariosPass(t *testing.T) {
	out, err := execute(t, "test", scenariosDir(t))
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ schedule_editor")
	assert.Contains(t, out, "✓ replace_lesson")
	assert.Contains(t, out, "0 failed")
	assert.Contains(t, out, "All scenarios passed")
}

func TestTest_FilterAndJSON(t *testing.T) {
	out, err := execute(t, "test", "--format", "json", "--filter", "schedule_*", scenariosDir(t))
	require.NoError(t, err, out)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "schedule_editor", resp.Data.Scenarios[0].Name)
	assert.Equal(t, "match", resp.Data.Scenarios[0].Golden)
}

func TestTest_UpdateThenMismatch(t *testing.T) {
	root := t.TempDir()
	scenarios := filepath.Join(root, "scenarios")
	require.NoError(t, os.Mkdir(scenarios, 0o755))
	writeFile(t, scenarios, "hello.yaml", `
name: hello
description: greeting
steps:
  - command: start
    name: "Маша"
`)

	out, err := execute(t, "test", "--update", scenarios)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ hello (golden updated)")

	golden := filepath.Join(root, "golden", "hello.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Привет, Маша!")

	out, err = execute(t, "test", scenarios)
	require.NoError(t, err, out)

	require.NoError(t, os.WriteFile(golden, []byte("=== hello\n"), 0o644))
	out, err = execute(t, "test", scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "does not match golden file")
}

func TestTest_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wrong.yaml", `
name: wrong
description: expects the wrong error
admin: 5
steps:
  - as: 6
    press: "menu:admin"
    expect:
      error: none
`)

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "error = UNAUTHORIZED, want none")
	assert.Contains(t, out, "1 failed")
}

func TestTest_CommandErrors(t *testing.T) {
	_, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\nstep: []\n")
	_, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "test", "--filter", "[", scenariosDir(t))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
