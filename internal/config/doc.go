// Package config manages the two files ztdash keeps on disk.
//
// The store is an explicitly owned instance; nothing in this package is
// global. Callers create one with NewStore and pass it by reference.
//
// # Files
//
// Both files live in the configuration directory:
//   - Linux: $XDG_CONFIG_HOME/ztdash or $HOME/.config/ztdash
//   - macOS: $HOME/.config/ztdash
//   - Windows: %LOCALAPPDATA%\ztdash
//
// settings.yaml is read and written by the program. It holds the ordered
// list of bookmarked network ids and the list filter. A missing file is
// created with defaults on first load.
//
// config.yaml is written only by the operator. It holds the command
// bindings and tuning knobs (refresh interval, request timeout, API URLs).
// Because YAML is a superset of JSON, a JSON document is accepted as well:
//
//	commands:
//	  network:
//	    "1": "/bin/tcpdump -i %i"
//	    "p": "ping -c 3 %a"
//	  member:
//	    "s": "ssh root@%a"
//
// # Failure Policy
//
// Loading never fails startup. A malformed file is reported as a
// *ConfigError warning and replaced by defaults in memory. Bindings whose
// key is not a single printable character, or collides with a built-in
// action key of the same scope, are dropped with a *BindingError warning.
//
// # Atomic Writes
//
// Saves write a temporary file next to the target and rename it into
// place, so a crash mid-write leaves the previous file intact.
package config
