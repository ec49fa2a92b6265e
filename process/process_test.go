package process

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX-only test")
	}
}

func TestExecuteCapturesStdout(t *testing.T) {
	skipOnWindows(t)
	res, err := Execute(context.Background(), []string{"echo", "hello"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "hello", strings.TrimSpace(res.Stdout))
	assert.Equal(t, 0, res.ExitCode)
}

func TestExecuteReportsNonZeroExit(t *testing.T) {
	skipOnWindows(t)
	res, err := Execute(context.Background(), []string{"sh", "-c", "exit 3"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestExecuteHonorsEnv(t *testing.T) {
	skipOnWindows(t)
	res, err := Execute(context.Background(), []string{"sh", "-c", "echo $FOO"}, Options{
		Env: map[string]string{"FOO": "bar", "PATH": "/bin:/usr/bin"},
	})
	require.NoError(t, err)
	assert.Equal(t, "bar", strings.TrimSpace(res.Stdout))
}

func TestExecuteTimesOut(t *testing.T) {
	skipOnWindows(t)
	res, err := Execute(context.Background(), []string{"sleep", "5"}, Options{Timeout: 50 * time.Millisecond})
	require.Error(t, err)
	assert.True(t, res.TimedOut, "expected TimedOut to be set")
}

func TestCommandExistsTrueForKnownBinary(t *testing.T) {
	skipOnWindows(t)
	assert.True(t, CommandExists("sh"))
	assert.False(t, CommandExists("definitely-not-a-real-command-xyz"))
}

func TestSpawnProcessWaitReturnsExitCode(t *testing.T) {
	skipOnWindows(t)
	h, err := SpawnProcess([]string{"sh", "-c", "exit 7"}, Options{})
	require.NoError(t, err)
	code, err := h.Wait()
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestSpawnProcessKill(t *testing.T) {
	skipOnWindows(t)
	h, err := SpawnProcess([]string{"sleep", "30"}, Options{})
	require.NoError(t, err)
	require.NoError(t, h.Kill())
	_, err = h.Wait()
	require.NoError(t, err)
}
