package ztapi

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// UserTokenFile is the per-user token copy checked when the system
// authtoken.secret is not readable.
const UserTokenFile = ".zeroTierOneAuthToken"

// AuthTokenPaths returns the candidate authtoken.secret locations for the
// current OS, most specific first.
func AuthTokenPaths() []string {
	var paths []string
	switch runtime.GOOS {
	case "linux":
		paths = append(paths, "/var/lib/zerotier-one/authtoken.secret")
	case "darwin":
		paths = append(paths, "/Library/Application Support/ZeroTier/One/authtoken.secret")
	case "windows":
		paths = append(paths, "C:/ProgramData/ZeroTier/One/authtoken.secret")
	case "freebsd", "openbsd", "netbsd":
		paths = append(paths, "/var/db/zerotier-one/authtoken.secret")
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, UserTokenFile))
	}
	return paths
}

// ReadAuthToken reads the node token. An explicit path wins; otherwise the
// first readable default location is used.
func ReadAuthToken(explicit string) (string, error) {
	if explicit != "" {
		return readToken(explicit)
	}

	var lastErr error
	for _, p := range AuthTokenPaths() {
		token, err := readToken(p)
		if err == nil {
			return token, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no default location on %s", runtime.GOOS)
	}
	return "", fmt.Errorf("authtoken.secret not found (use --authtoken): %w", lastErr)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("%s is empty", path)
	}
	return token, nil
}
