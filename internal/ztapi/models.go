package ztapi

import (
	"encoding/json"
	"strings"
)

// Network statuses reported by the node.
const (
	StatusOK                      = "OK"
	StatusRequestingConfiguration = "REQUESTING_CONFIGURATION"
	StatusAccessDenied            = "ACCESS_DENIED"
	StatusNotFound                = "NOT_FOUND"
	StatusPortError               = "PORT_ERROR"
	StatusClientTooOld            = "CLIENT_TOO_OLD"
	StatusDisconnected            = "DISCONNECTED"
)

// Network is one entry of the node's GET /network response.
type Network struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Status            string   `json:"status"`
	Type              string   `json:"type"`
	MAC               string   `json:"mac"`
	MTU               int      `json:"mtu"`
	PortDeviceName    string   `json:"portDeviceName"`
	AssignedAddresses []string `json:"assignedAddresses"`
	Routes            []Route  `json:"routes"`
	AllowDNS          bool     `json:"allowDNS"`
	AllowDefault      bool     `json:"allowDefault"`
	AllowGlobal       bool     `json:"allowGlobal"`
	AllowManaged      bool     `json:"allowManaged"`
	Bridge            bool     `json:"bridge"`
	BroadcastEnabled  bool     `json:"broadcastEnabled"`
	NetconfRevision   int      `json:"netconfRevision"`

	// Raw is the exact object the node returned, for the JSON view.
	Raw json.RawMessage `json:"-"`
}

// Route is one managed route of a network.
type Route struct {
	Target string  `json:"target"`
	Via    *string `json:"via"`
	Flags  int     `json:"flags"`
	Metric int     `json:"metric"`
}

// NodeStatus is the node's GET /status response.
type NodeStatus struct {
	Address string `json:"address"`
	Online  bool   `json:"online"`
	Version string `json:"version"`
	Clock   int64  `json:"clock"`
}

// Member is one entry of Central's member list.
type Member struct {
	ID              string       `json:"id"`
	NodeID          string       `json:"nodeId"`
	NetworkID       string       `json:"networkId"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Online          bool         `json:"online"`
	LastOnline      int64        `json:"lastOnline"`
	PhysicalAddress string       `json:"physicalAddress"`
	ClientVersion   string       `json:"clientVersion"`
	Config          MemberConfig `json:"config"`

	Raw json.RawMessage `json:"-"`
}

// MemberConfig holds the controller-side settings of a member.
type MemberConfig struct {
	Authorized    bool     `json:"authorized"`
	ActiveBridge  bool     `json:"activeBridge"`
	IPAssignments []string `json:"ipAssignments"`
}

// Identity returns the member's node address, falling back to the
// "<network>-<node>" id Central uses when nodeId is missing.
func (m Member) Identity() string {
	if m.NodeID != "" {
		return m.NodeID
	}
	if i := strings.LastIndex(m.ID, "-"); i >= 0 {
		return m.ID[i+1:]
	}
	return m.ID
}

// MemberUpdate is a partial member change. Nil fields are left unchanged.
type MemberUpdate struct {
	Name       *string `json:"name,omitempty"`
	Authorized *bool   `json:"-"`
}

// MarshalJSON nests Authorized under "config" as Central expects.
func (u MemberUpdate) MarshalJSON() ([]byte, error) {
	body := map[string]any{}
	if u.Name != nil {
		body["name"] = *u.Name
	}
	if u.Authorized != nil {
		body["config"] = map[string]any{"authorized": *u.Authorized}
	}
	return json.Marshal(body)
}

// Rename returns an update setting the member name.
func Rename(name string) MemberUpdate {
	return MemberUpdate{Name: &name}
}

// Authorize returns an update setting the authorization flag.
func Authorize(authorized bool) MemberUpdate {
	return MemberUpdate{Authorized: &authorized}
}

// CentralNetwork is Central's view of a network, including its rules.
type CentralNetwork struct {
	ID                string        `json:"id"`
	Description       string        `json:"description"`
	OnlineMemberCount int           `json:"onlineMemberCount"`
	Config            NetworkConfig `json:"config"`

	Raw json.RawMessage `json:"-"`
}

// NetworkConfig is the controller configuration of a network.
type NetworkConfig struct {
	Name    string            `json:"name"`
	Private bool              `json:"private"`
	Rules   []json.RawMessage `json:"rules"`
}

// IsNetworkID reports whether s is a 16 digit lowercase hex network id.
func IsNetworkID(s string) bool {
	if len(s) != 16 {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
