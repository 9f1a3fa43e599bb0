package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherSignalsConfigChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	store := NewStore(dir, testReserved)

	w, err := store.Watch()
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(store.ConfigPath(), []byte("version: 1\n"), 0600))

	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change signal after writing config.yaml")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	store := NewStore(dir, testReserved)

	w, err := store.Watch()
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, store.SaveBookmarks([]string{"abcdef0123456789"}))

	select {
	case <-w.Changes():
		t.Fatal("settings.yaml writes must not signal a config change")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewStore(t.TempDir(), testReserved).Watch()
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
