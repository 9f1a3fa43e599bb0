package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/muurk/ztdash/internal/ztapi"
)

const (
	appName      = "ztdash"
	settingsFile = "settings.yaml"
	configFile   = "config.yaml"
)

// ConfigError reports a file that exists but could not be parsed.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("malformed %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// DefaultDir returns the OS-appropriate configuration directory.
func DefaultDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil

	default:
		if runtime.GOOS != "darwin" {
			if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
				return filepath.Join(xdg, appName), nil
			}
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// Store loads and saves settings.yaml and config.yaml in one directory.
type Store struct {
	dir      string
	reserved Reserved

	mu       sync.Mutex
	settings *Settings
}

// Loaded is everything Load returns.
type Loaded struct {
	Settings *Settings
	Config   *Config
	Bindings Bindings
	Warnings []error
}

// NewStore creates a store rooted at dir. reserved lists the built-in
// action keys that command bindings may not use.
func NewStore(dir string, reserved Reserved) *Store {
	return &Store{dir: dir, reserved: reserved}
}

// Dir returns the configuration directory.
func (s *Store) Dir() string { return s.dir }

// SettingsPath returns the path of settings.yaml.
func (s *Store) SettingsPath() string { return filepath.Join(s.dir, settingsFile) }

// ConfigPath returns the path of config.yaml.
func (s *Store) ConfigPath() string { return filepath.Join(s.dir, configFile) }

// Load reads both files. It never fails: problems come back as warnings
// and the affected file is replaced by defaults.
func (s *Store) Load() *Loaded {
	settings, settingsWarnings := s.LoadSettings()
	cfg, bindings, cfgWarnings := s.LoadConfig()

	return &Loaded{
		Settings: settings,
		Config:   cfg,
		Bindings: bindings,
		Warnings: append(settingsWarnings, cfgWarnings...),
	}
}

// LoadSettings reads settings.yaml, creating it with defaults if absent.
func (s *Store) LoadSettings() (*Settings, []error) {
	var warnings []error

	settings, err := s.readSettings()
	switch {
	case errors.Is(err, os.ErrNotExist):
		settings = NewSettings()
		if err := s.writeSettings(settings); err != nil {
			warnings = append(warnings, fmt.Errorf("failed to create %s: %w", settingsFile, err))
		}
	case err != nil:
		warnings = append(warnings, err)
		settings = NewSettings()
	}

	settings.Bookmarks, warnings = cleanBookmarks(settings.Bookmarks, warnings)
	if settings.Filter != FilterConnected {
		settings.Filter = FilterAll
	}

	s.mu.Lock()
	s.settings = settings.Clone()
	s.mu.Unlock()

	return settings, warnings
}

func (s *Store) readSettings() (*Settings, error) {
	path := s.SettingsPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	settings := NewSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if settings.Version != 1 {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("unsupported version %d (expected 1)", settings.Version)}
	}
	return settings, nil
}

// cleanBookmarks drops invalid and duplicate ids, keeping the first occurrence.
func cleanBookmarks(ids []string, warnings []error) ([]string, []error) {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if !ztapi.IsNetworkID(id) {
			warnings = append(warnings, fmt.Errorf("bookmark %q ignored: not a network id", id))
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, warnings
}

// LoadConfig reads config.yaml. A missing file yields defaults without
// being written; config.yaml belongs to the operator.
func (s *Store) LoadConfig() (*Config, Bindings, []error) {
	var warnings []error
	path := s.ConfigPath()

	cfg := NewConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults
	case err != nil:
		warnings = append(warnings, &ConfigError{Path: path, Err: err})
	default:
		parsed := NewConfig()
		if err := yaml.Unmarshal(data, parsed); err != nil {
			warnings = append(warnings, &ConfigError{Path: path, Err: err})
		} else {
			cfg = parsed
		}
	}
	cfg.applyDefaults()

	bindings, bindingWarnings := ValidateBindings(cfg.Commands, s.reserved)
	return cfg, bindings, append(warnings, bindingWarnings...)
}

// ReloadConfig re-reads config.yaml and returns a whole new binding set.
func (s *Store) ReloadConfig() (*Config, Bindings, []error) {
	return s.LoadConfig()
}

// SaveSettings persists settings atomically.
func (s *Store) SaveSettings(settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeSettings(settings); err != nil {
		return err
	}
	s.settings = settings.Clone()
	return nil
}

// SaveBookmarks replaces the bookmark list, keeping the other settings.
func (s *Store) SaveBookmarks(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := NewSettings()
	if s.settings != nil {
		next = s.settings.Clone()
	}
	next.Bookmarks = append([]string{}, ids...)

	if err := s.writeSettings(next); err != nil {
		return err
	}
	s.settings = next
	return nil
}

// SaveFilter persists the list filter, keeping the other settings.
func (s *Store) SaveFilter(filter string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := NewSettings()
	if s.settings != nil {
		next = s.settings.Clone()
	}
	next.Filter = filter

	if err := s.writeSettings(next); err != nil {
		return err
	}
	s.settings = next
	return nil
}

func (s *Store) writeSettings(settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	header := []byte("# ztdash settings. Managed by ztdash; edits are kept but may be overwritten.\n\n")
	return writeFileAtomic(s.SettingsPath(), append(header, data...))
}

// writeFileAtomic writes data to a temporary file in the target directory
// and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
