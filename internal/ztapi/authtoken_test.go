package ztapi

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadAuthToken_Explicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authtoken.secret")
	if err := os.WriteFile(path, []byte("  abc123\n"), 0600); err != nil {
		t.Fatal(err)
	}

	token, err := ReadAuthToken(path)
	if err != nil {
		t.Fatalf("ReadAuthToken() error = %v", err)
	}
	if token != "abc123" {
		t.Errorf("token = %q, want abc123", token)
	}
}

func TestReadAuthToken_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authtoken.secret")
	if err := os.WriteFile(path, []byte("\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadAuthToken(path); err == nil {
		t.Error("ReadAuthToken() should fail for an empty file")
	}
}

func TestReadAuthToken_Missing(t *testing.T) {
	if _, err := ReadAuthToken(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("ReadAuthToken() should fail for a missing file")
	}
}

func TestAuthTokenPathsIncludesHomeFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	paths := AuthTokenPaths()
	if len(paths) == 0 {
		t.Fatal("AuthTokenPaths() returned nothing")
	}
	if paths[len(paths)-1] != filepath.Join(home, UserTokenFile) {
		t.Errorf("last path = %s, want home fallback", paths[len(paths)-1])
	}
}
