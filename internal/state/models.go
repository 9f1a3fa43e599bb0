package state

import (
	"encoding/json"
	"time"

	"github.com/muurk/ztdash/internal/netstats"
	"github.com/muurk/ztdash/internal/ztapi"
)

// NetworkView is one bookmarked network merged with its live data.
// ID never changes after creation; every other field is live.
type NetworkView struct {
	ID string

	Name      string
	Status    string
	Type      string
	Interface string
	Addresses []string
	Raw       json.RawMessage

	// Connected is true while the node reports the network as joined.
	Connected bool
	// Stale is true when the live fields are last-known values.
	Stale bool
	// Polled is false until the first poll that included this network.
	Polled    bool
	UpdatedAt time.Time

	Rate     netstats.Rate
	HasRate  bool
	Totals   netstats.Counters
	HasTotal bool

	Rules      []json.RawMessage
	RulesKnown bool
}

// FirstAddress returns the first assigned address without its prefix
// length, or "" when none is assigned.
func (v *NetworkView) FirstAddress() string {
	if len(v.Addresses) == 0 {
		return ""
	}
	return stripPrefix(v.Addresses[0])
}

// DisplayName returns the network name, or its id when it has none.
func (v *NetworkView) DisplayName() string {
	if v.Name != "" {
		return v.Name
	}
	return v.ID
}

func (v *NetworkView) clone() *NetworkView {
	out := *v
	out.Addresses = append([]string(nil), v.Addresses...)
	out.Rules = append([]json.RawMessage(nil), v.Rules...)
	return &out
}

// MemberView is one peer of a network as Central reports it.
type MemberView struct {
	ID         string // node address
	NetworkID  string
	Name       string
	Authorized bool
	Online     bool
	Addresses  []string
	LastOnline time.Time
	Raw        json.RawMessage
}

// FirstAddress returns the first assigned address or "".
func (m MemberView) FirstAddress() string {
	if len(m.Addresses) == 0 {
		return ""
	}
	return stripPrefix(m.Addresses[0])
}

// MemberSet is the complete member list of one network at one instant.
// A published set is never modified.
type MemberSet struct {
	NetworkID string
	Members   []MemberView
	FetchedAt time.Time
}

// Find returns the member with the given id.
func (s *MemberSet) Find(id string) (MemberView, bool) {
	if s == nil {
		return MemberView{}, false
	}
	for _, m := range s.Members {
		if m.ID == id {
			return m, true
		}
	}
	return MemberView{}, false
}

// NewMemberView converts a Central member.
func NewMemberView(m ztapi.Member) MemberView {
	mv := MemberView{
		ID:         m.Identity(),
		NetworkID:  m.NetworkID,
		Name:       m.Name,
		Authorized: m.Config.Authorized,
		Online:     m.Online,
		Addresses:  append([]string(nil), m.Config.IPAssignments...),
		Raw:        m.Raw,
	}
	if m.LastOnline > 0 {
		mv.LastOnline = time.UnixMilli(m.LastOnline)
	}
	return mv
}

// NetworkSnapshot is the result of one node poll.
type NetworkSnapshot struct {
	Networks []ztapi.Network
	Counters map[string]netstats.Counters
	// Scope limits which bookmarks the snapshot can report as absent.
	// Nil means the snapshot covers every network the node has.
	Scope []string
	// Taken is when the poll started. Zero means now.
	Taken time.Time
}

// Op names a mutation.
type Op string

const (
	OpJoin         Op = "join"
	OpLeave        Op = "leave"
	OpRename       Op = "rename"
	OpAuthorize    Op = "authorize"
	OpDeauthorize  Op = "deauthorize"
	OpDeleteMember Op = "delete-member"
	OpSetRules     Op = "set-rules"
	OpFetchRules   Op = "fetch-rules"
)

// MutationResult is the outcome of one backend action.
type MutationResult struct {
	Op        Op
	NetworkID string
	MemberID  string
	Name      string
	Rules     []json.RawMessage
	Network   *ztapi.Network
	Err       error
}

func stripPrefix(addr string) string {
	for i := 0; i < len(addr); i++ {
		if addr[i] == '/' {
			return addr[:i]
		}
	}
	return addr
}
