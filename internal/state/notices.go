package state

import (
	"errors"
	"time"

	"github.com/muurk/ztdash/internal/config"
	"github.com/muurk/ztdash/internal/dispatch"
	"github.com/muurk/ztdash/internal/ztapi"
)

// Kind classifies a notice.
type Kind int

const (
	KindInfo Kind = iota
	// KindBackendUnavailable: a backend call failed or timed out; prior state kept.
	KindBackendUnavailable
	// KindAuthRejected: a backend refused our credentials; not retried until the operator acts.
	KindAuthRejected
	// KindMalformedConfig: a settings or config file could not be used; defaults in effect.
	KindMalformedConfig
	// KindInvalidRulesEdit: edited rules did not parse; the edit was discarded.
	KindInvalidRulesEdit
	// KindCommandSpawnFailed: a bound command could not be started.
	KindCommandSpawnFailed
)

func (k Kind) String() string {
	switch k {
	case KindInfo:
		return "Info"
	case KindBackendUnavailable:
		return "BackendUnavailable"
	case KindAuthRejected:
		return "AuthRejected"
	case KindMalformedConfig:
		return "MalformedConfig"
	case KindInvalidRulesEdit:
		return "InvalidRulesEdit"
	case KindCommandSpawnFailed:
		return "CommandSpawnFailed"
	default:
		return "Unknown"
	}
}

// IsError reports whether the kind is a failure rather than information.
func (k Kind) IsError() bool { return k != KindInfo }

// Classify maps an error to its notice kind.
func Classify(err error) Kind {
	var cfgErr *config.ConfigError
	var bindErr *config.BindingError
	var rulesErr *dispatch.InvalidRulesError
	var spawnErr *dispatch.SpawnError
	var exitErr *dispatch.ExitError

	switch {
	case err == nil:
		return KindInfo
	case errors.As(err, &cfgErr), errors.As(err, &bindErr):
		return KindMalformedConfig
	case errors.As(err, &rulesErr):
		return KindInvalidRulesEdit
	case errors.As(err, &spawnErr):
		return KindCommandSpawnFailed
	case errors.As(err, &exitErr):
		return KindInfo
	case ztapi.IsAuthError(err):
		return KindAuthRejected
	default:
		return KindBackendUnavailable
	}
}

// Notice is one transient, dismissible message.
type Notice struct {
	Kind    Kind
	Message string
	At      time.Time
}

// NoticeFromError builds a notice for err. prefix, when set, names the
// action that failed.
func NoticeFromError(err error, prefix string) Notice {
	msg := ztapi.ShortMessage(err)
	if prefix != "" {
		msg = prefix + ": " + msg
	}
	return Notice{Kind: Classify(err), Message: msg}
}

const (
	// maxNotices bounds the queue; older notices are dropped first.
	maxNotices     = 8
	errorTTLFactor = 3
)

// Notices is a small queue of notices. The newest unexpired one is shown.
type Notices struct {
	items []Notice
	ttl   time.Duration
	now   func() time.Time
}

func newNotices(ttl time.Duration) *Notices {
	return &Notices{ttl: ttl, now: time.Now}
}

// Push adds a notice stamped with the current time.
func (n *Notices) Push(notice Notice) {
	notice.At = n.now()
	n.items = append(n.items, notice)
	if len(n.items) > maxNotices {
		n.items = append([]Notice(nil), n.items[len(n.items)-maxNotices:]...)
	}
}

// Info adds an informational notice.
func (n *Notices) Info(msg string) {
	n.Push(Notice{Kind: KindInfo, Message: msg})
}

// Current returns the newest unexpired notice. Info notices expire after
// the TTL, error notices after errorTTLFactor times the TTL. It does not
// modify the queue, so it is safe to call while rendering.
func (n *Notices) Current() (Notice, bool) {
	now := n.now()
	for i := len(n.items) - 1; i >= 0; i-- {
		if n.live(n.items[i], now) {
			return n.items[i], true
		}
	}
	return Notice{}, false
}

// Pending returns how many unexpired notices are queued.
func (n *Notices) Pending() int {
	now := n.now()
	count := 0
	for _, item := range n.items {
		if n.live(item, now) {
			count++
		}
	}
	return count
}

// Dismiss drops the newest unexpired notice.
func (n *Notices) Dismiss() {
	n.Expire()
	if len(n.items) > 0 {
		n.items = n.items[:len(n.items)-1]
	}
}

// DismissAll empties the queue.
func (n *Notices) DismissAll() {
	n.items = nil
}

// Expire drops notices whose time is up. The dashboard calls it on every
// refresh tick.
func (n *Notices) Expire() {
	now := n.now()
	kept := n.items[:0]
	for _, item := range n.items {
		if n.live(item, now) {
			kept = append(kept, item)
		}
	}
	n.items = kept
}

func (n *Notices) live(item Notice, now time.Time) bool {
	if n.ttl <= 0 {
		return true
	}
	ttl := n.ttl
	if item.Kind.IsError() {
		ttl *= errorTTLFactor
	}
	return now.Sub(item.At) < ttl
}
