package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testReserved = Reserved{
	ScopeNetwork: {"c", "e", "j", "l", "J", "B", "d", "i", "t", "r", "R", "x", "?", "q"},
	ScopeMember:  {"a", "u", "n", "D", "c", "e", "/", "r", "x", "?", "q"},
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestLoadSettingsCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, testReserved)

	settings, warnings := store.LoadSettings()
	assert.Empty(t, warnings)
	assert.Equal(t, 1, settings.Version)
	assert.Empty(t, settings.Bookmarks)
	assert.Equal(t, FilterAll, settings.Filter)

	_, err := os.Stat(store.SettingsPath())
	require.NoError(t, err, "settings.yaml should be created on first load")
}

func TestLoadSettingsMalformedFallsBack(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, testReserved)
	writeFile(t, store.SettingsPath(), "bookmarks: [unterminated\n")

	settings, warnings := store.LoadSettings()
	require.Len(t, warnings, 1)

	var cfgErr *ConfigError
	assert.True(t, errors.As(warnings[0], &cfgErr))
	assert.Empty(t, settings.Bookmarks)

	// The bad file is left alone for the operator to inspect.
	data, err := os.ReadFile(store.SettingsPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "unterminated")
}

func TestLoadSettingsCleansBookmarks(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, testReserved)
	writeFile(t, store.SettingsPath(), `version: 1
bookmarks:
  - abcdef0123456789
  - not-a-network
  - ABCDEF0123456789
  - 8056c2e21c000001
`)

	settings, warnings := store.LoadSettings()
	assert.Len(t, warnings, 1)
	assert.Equal(t, []string{"abcdef0123456789", "8056c2e21c000001"}, settings.Bookmarks)
}

func TestSaveBookmarksRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, testReserved)
	_, _ = store.LoadSettings()

	require.NoError(t, store.SaveFilter(FilterConnected))
	require.NoError(t, store.SaveBookmarks([]string{"abcdef0123456789", "8056c2e21c000001"}))

	reloaded := NewStore(dir, testReserved)
	settings, warnings := reloaded.LoadSettings()
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"abcdef0123456789", "8056c2e21c000001"}, settings.Bookmarks)
	assert.Equal(t, FilterConnected, settings.Filter, "saving bookmarks keeps the filter")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temporary file left behind: %s", e.Name())
	}
}

func TestSaveFailureKeepsPreviousFile(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	dir := t.TempDir()
	store := NewStore(dir, testReserved)
	_, _ = store.LoadSettings()
	require.NoError(t, store.SaveBookmarks([]string{"abcdef0123456789"}))

	require.NoError(t, os.Chmod(dir, 0500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0700) })

	err := store.SaveBookmarks([]string{"8056c2e21c000001"})
	require.Error(t, err)

	require.NoError(t, os.Chmod(dir, 0700))
	settings, _ := NewStore(dir, testReserved).LoadSettings()
	assert.Equal(t, []string{"abcdef0123456789"}, settings.Bookmarks)
}

func TestLoadConfigMissingHasNoBindings(t *testing.T) {
	store := NewStore(t.TempDir(), testReserved)

	cfg, bindings, warnings := store.LoadConfig()
	assert.Empty(t, warnings)
	assert.Equal(t, 0, bindings.Len())
	assert.Equal(t, DefaultRefreshInterval, cfg.RefreshInterval)
	assert.Equal(t, DefaultShell, cfg.Shell)

	_, err := os.Stat(store.ConfigPath())
	assert.True(t, os.IsNotExist(err), "config.yaml is never written by the program")
}

func TestLoadConfigBindings(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, testReserved)
	writeFile(t, store.ConfigPath(), `version: 1
refresh_interval: 3s
commands:
  network:
    "1": "/bin/tcpdump -i %i"
    "j": "echo shadowed"
    "pp": "echo too long"
  member:
    "s": "ssh root@%a"
    "a": "echo shadowed"
    "k": ""
`)

	cfg, bindings, warnings := store.LoadConfig()
	assert.Equal(t, 3*time.Second, cfg.RefreshInterval)
	assert.Len(t, warnings, 4)

	b, ok := bindings.Lookup(ScopeNetwork, "1")
	require.True(t, ok)
	assert.Equal(t, "/bin/tcpdump -i %i", b.Template)

	_, ok = bindings.Lookup(ScopeNetwork, "j")
	assert.False(t, ok, "binding colliding with a built-in key must be dropped at load")

	_, ok = bindings.Lookup(ScopeMember, "a")
	assert.False(t, ok)

	_, ok = bindings.Lookup(ScopeMember, "s")
	assert.True(t, ok)

	// Scopes are independent: "s" is not a network binding.
	_, ok = bindings.Lookup(ScopeNetwork, "s")
	assert.False(t, ok)

	for _, w := range warnings {
		var bErr *BindingError
		assert.True(t, errors.As(w, &bErr), "unexpected warning %v", w)
	}
}

func TestLoadConfigAcceptsJSON(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, testReserved)
	writeFile(t, store.ConfigPath(), `{"commands": {"network": {"1": "/bin/tcpdump -i %i"}}}`)

	_, bindings, warnings := store.LoadConfig()
	assert.Empty(t, warnings)
	assert.Equal(t, 1, bindings.Len())
}

func TestLoadConfigMalformedFallsBack(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, testReserved)
	writeFile(t, store.ConfigPath(), "commands: {network: [")

	cfg, bindings, warnings := store.LoadConfig()
	require.Len(t, warnings, 1)
	var cfgErr *ConfigError
	assert.True(t, errors.As(warnings[0], &cfgErr))
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfgErr.Path)
	assert.Equal(t, 0, bindings.Len())
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
}

func TestReloadConfigReplacesBindings(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, testReserved)
	writeFile(t, store.ConfigPath(), `commands: {network: {"1": "echo one"}}`)

	_, first, _ := store.LoadConfig()
	writeFile(t, store.ConfigPath(), `commands: {network: {"2": "echo two"}}`)
	_, second, _ := store.ReloadConfig()

	_, ok := first.Lookup(ScopeNetwork, "1")
	assert.True(t, ok, "earlier binding set is not modified by reload")
	_, ok = second.Lookup(ScopeNetwork, "1")
	assert.False(t, ok)
	_, ok = second.Lookup(ScopeNetwork, "2")
	assert.True(t, ok)
}

func TestLoadCombinesWarnings(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, testReserved)
	writeFile(t, store.SettingsPath(), "::::")
	writeFile(t, store.ConfigPath(), "::::")

	loaded := store.Load()
	assert.Len(t, loaded.Warnings, 2)
	assert.NotNil(t, loaded.Settings)
	assert.NotNil(t, loaded.Config)
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, "ztdash", filepath.Base(dir))
}
