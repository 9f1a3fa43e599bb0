package refresh

import "strings"

const (
	keyNetworks      = "networks"
	keyNetworkPrefix = "network:"
	keyMembersPrefix = "members:"
)

// Key identifies a refresh target.
type Key string

// AllNetworks is the full network poll.
func AllNetworks() Key { return keyNetworks }

// OneNetwork is the out-of-band poll of a single network.
func OneNetwork(id string) Key { return Key(keyNetworkPrefix + id) }

// MembersOf is the member poll of one network.
func MembersOf(id string) Key { return Key(keyMembersPrefix + id) }

// Tracker records which refreshes are in flight so that a second periodic
// trigger for the same target is dropped instead of queued. Triggers that
// follow a change (a mutation, a binding, an explicit refresh) go through
// Follow instead: when they collide with a refresh already in flight, the
// target is marked dirty and End tells the caller to poll it once more.
// It belongs to the dashboard's update loop and is not safe for
// concurrent use.
type Tracker struct {
	inFlight map[Key]bool
	dirty    map[Key]bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{inFlight: make(map[Key]bool), dirty: make(map[Key]bool)}
}

// Begin marks key in flight. It returns false, and the caller must not
// start the refresh, when key is already in flight or a full network
// poll already covers it.
func (t *Tracker) Begin(key Key) bool {
	if t.inFlight[key] {
		return false
	}
	if strings.HasPrefix(string(key), keyNetworkPrefix) && t.inFlight[keyNetworks] {
		return false
	}
	t.inFlight[key] = true
	return true
}

// Follow is Begin for a refresh that must observe a change made after any
// refresh already in flight started. When Begin refuses, the blocking key
// is marked dirty so that its End asks for another round.
func (t *Tracker) Follow(key Key) bool {
	if t.Begin(key) {
		return true
	}
	if t.inFlight[key] {
		t.dirty[key] = true
	} else {
		t.dirty[keyNetworks] = true
	}
	return false
}

// End marks key done. It returns true when a Follow arrived while key was
// in flight, in which case the caller should refresh key again.
func (t *Tracker) End(key Key) bool {
	delete(t.inFlight, key)
	again := t.dirty[key]
	delete(t.dirty, key)
	return again
}

// InFlight reports whether key is in flight.
func (t *Tracker) InFlight(key Key) bool {
	return t.inFlight[key]
}

// Busy reports whether anything is in flight.
func (t *Tracker) Busy() bool {
	return len(t.inFlight) > 0
}
