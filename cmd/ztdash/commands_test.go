package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/ztdash/internal/config"
	"github.com/muurk/ztdash/internal/logging"
	"github.com/muurk/ztdash/internal/ztapi"
)

// execute runs the root command with a fresh config directory and a
// readable auth token, returning its output.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(logging.LogLevelEnvVar, "")
	t.Setenv(centralTokenEnvVar, "")

	token := filepath.Join(t.TempDir(), "authtoken.secret")
	require.NoError(t, os.WriteFile(token, []byte("secret\n"), 0600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config-dir", dir, "--authtoken", token}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func loadBookmarks(t *testing.T, dir string) []string {
	t.Helper()
	settings, warnings := config.NewStore(dir, nil).LoadSettings()
	require.Empty(t, warnings)
	return settings.Bookmarks
}

func TestBookmarkAndForget(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "bookmark", "8056c2e21c000001")
	require.NoError(t, err)
	assert.Contains(t, out, "Bookmarked 8056c2e21c000001")
	assert.Equal(t, []string{"8056c2e21c000001"}, loadBookmarks(t, dir))

	out, err = execute(t, dir, "bookmark", "8056c2e21c000001")
	require.NoError(t, err)
	assert.Contains(t, out, "already bookmarked")
	assert.Equal(t, []string{"8056c2e21c000001"}, loadBookmarks(t, dir))

	out, err = execute(t, dir, "forget", "8056c2e21c000001")
	require.NoError(t, err)
	assert.Contains(t, out, "Forgot 8056c2e21c000001")
	assert.Empty(t, loadBookmarks(t, dir))
}

func TestBookmarkRejectsBadID(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, dir, "bookmark", "not-an-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid network id")
	assert.NoFileExists(t, filepath.Join(dir, "settings.yaml"))
}

func TestList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-ZT1-Auth"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"8056c2e21c000001","name":"lab","status":"OK","portDeviceName":"zt0","assignedAddresses":["10.0.0.2/24"]},
			{"id":"abcdef0123456789","name":"other","status":"OK","portDeviceName":"zt1"}
		]`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := execute(t, dir, "bookmark", "8056c2e21c000001")
	require.NoError(t, err)

	out, err := execute(t, dir, "--local-url", srv.URL, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "lab")
	assert.Contains(t, out, "10.0.0.2")
	assert.NotContains(t, out, "other")
	assert.Contains(t, out, "1 joined network(s) not bookmarked")
}

func TestListNodeDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	out, err := execute(t, t.TempDir(), "--local-url", url, "list")
	require.Error(t, err)
	assert.Contains(t, out, "Cannot reach the node")
	assert.Contains(t, out, "Troubleshooting:")
}

func TestTroubleshooting(t *testing.T) {
	assert.Nil(t, troubleshooting(assert.AnError))

	tips := troubleshooting(&ztapi.APIError{Backend: ztapi.BackendCentral, Type: ztapi.ErrTypeAuth})
	require.Len(t, tips, 1)
	assert.Contains(t, tips[0], centralTokenEnvVar)

	tips = troubleshooting(&ztapi.APIError{Backend: ztapi.BackendNode, Type: ztapi.ErrTypeAuth})
	assert.Len(t, tips, 2)
}

func TestIntervalOverride(t *testing.T) {
	saved := interval
	t.Cleanup(func() { interval = saved })

	cmd := &cobra.Command{}
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "")
	assert.Zero(t, intervalOverride(cmd), "default interval leaves config.yaml in charge")

	require.NoError(t, cmd.Flags().Set("interval", "30s"))
	assert.Equal(t, 30*time.Second, intervalOverride(cmd))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
