package logging

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_SilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	require.NoError(t, Initialize(Options{}))
	assert.False(t, GetLogger().Core().Enabled(-1), "nop logger should not enable any level")
}

func TestInitialize_LevelWithoutFile(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	err := Initialize(Options{Level: "debug"})
	assert.Error(t, err)
}

func TestInitialize_WritesToFile(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	path := filepath.Join(t.TempDir(), "ztdash.log")

	require.NoError(t, Initialize(Options{Level: "info", File: path}))
	t.Cleanup(func() { logger = nil })

	Info("dashboard started")
	LogMutation("join", "abcdef0123456789", "", nil)
	LogRequest("local", "GET", "/network", 500, 12*time.Millisecond, errors.New("boom"))
	Debug("hidden at info level")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "dashboard started")
	assert.Contains(t, content, "abcdef0123456789")
	assert.Contains(t, content, "API request failed")
	assert.NotContains(t, content, "hidden at info level")
}

func TestInitialize_EnvLevel(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")
	path := filepath.Join(t.TempDir(), "ztdash.log")

	require.NoError(t, Initialize(Options{File: path}))
	t.Cleanup(func() { logger = nil })

	Info("not written")
	Warn("written")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
	assert.NotContains(t, string(data), "not written")
}
