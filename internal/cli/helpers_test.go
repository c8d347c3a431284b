package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// sandbox runs the test in an empty directory with no config env vars and
// returns that directory.
func sandbox(t *testing.T) string {
	t.Helper()
	for _, name := range []string{
		"BOT_TOKEN", "ADMIN_USER_ID", "PORT", "SCHOOLBOT_CONFIG",
		"SCHOOLBOT_TELEGRAM_TOKEN", "SCHOOLBOT_ADMIN_USER_ID", "SCHOOLBOT_HEALTH_PORT",
		"SCHOOLBOT_HEALTH_ADDR", "SCHOOLBOT_STORAGE_DRIVER", "SCHOOLBOT_STORAGE_PATH",
		"SCHOOLBOT_LOG_LEVEL", "SCHOOLBOT_TELEGRAM_POLL_TIMEOUT",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// scenariosDir is the harness fixture directory, resolved before tests
// change the working directory.
func scenariosDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.Abs(filepath.Join("..", "harness", "testdata", "scenarios"))
	require.NoError(t, err)
	return dir
}
