package config

import "time"

const (
	// FilterAll shows every bookmarked network.
	FilterAll = "all"
	// FilterConnected hides bookmarked networks the node is not joined to.
	FilterConnected = "connected"
)

// Settings is the program-owned state persisted across sessions.
type Settings struct {
	Version   int      `yaml:"version"`
	Bookmarks []string `yaml:"bookmarks"`         // Ordered network ids
	Filter    string   `yaml:"filter,omitempty"` // FilterAll or FilterConnected
}

// Config is the operator-owned configuration. It is read-only at runtime.
type Config struct {
	Version           int           `yaml:"version"`
	Commands          Commands      `yaml:"commands"`
	RefreshInterval   time.Duration `yaml:"refresh_interval"`    // e.g. "2s"
	RequestTimeout    time.Duration `yaml:"request_timeout"`     // per adapter call
	NoticeTTL         time.Duration `yaml:"notice_ttl"`          // how long notices stay visible
	Shell             string        `yaml:"shell"`               // shell used for command bindings
	PauseAfterCommand bool          `yaml:"pause_after_command"` // wait for enter before returning
	Local             Endpoint      `yaml:"local"`
	Central           Endpoint      `yaml:"central"`
}

// Commands holds raw binding maps as written in config.yaml.
type Commands struct {
	Network map[string]string `yaml:"network,omitempty"`
	Member  map[string]string `yaml:"member,omitempty"`
}

// Endpoint configures one backend.
type Endpoint struct {
	URL               string  `yaml:"url,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

// Defaults
const (
	DefaultRefreshInterval = 2 * time.Second
	DefaultRequestTimeout  = 5 * time.Second
	DefaultNoticeTTL       = 6 * time.Second
	DefaultShell           = "/bin/sh"
)

// NewSettings returns settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:   1,
		Bookmarks: []string{},
		Filter:    FilterAll,
	}
}

// NewConfig returns a configuration with default values and no bindings.
func NewConfig() *Config {
	return &Config{
		Version:         1,
		RefreshInterval: DefaultRefreshInterval,
		RequestTimeout:  DefaultRequestTimeout,
		NoticeTTL:       DefaultNoticeTTL,
		Shell:           DefaultShell,
	}
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.NoticeTTL <= 0 {
		c.NoticeTTL = DefaultNoticeTTL
	}
	if c.Shell == "" {
		c.Shell = DefaultShell
	}
}

// Clone returns a deep copy of the settings.
func (s *Settings) Clone() *Settings {
	out := *s
	out.Bookmarks = append([]string(nil), s.Bookmarks...)
	return &out
}
