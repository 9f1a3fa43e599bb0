package refresh

import (
	"context"
	"encoding/json"
	"time"

	"github.com/muurk/ztdash/internal/state"
	"github.com/muurk/ztdash/internal/ztapi"
)

// NodeMutator is the part of the local node client that changes things.
type NodeMutator interface {
	Join(ctx context.Context, id string) (*ztapi.Network, error)
	Leave(ctx context.Context, id string) error
}

// DirectoryMutator is the part of the Central client that changes things.
type DirectoryMutator interface {
	UpdateMember(ctx context.Context, nwid, memberID string, update ztapi.MemberUpdate) (*ztapi.Member, error)
	DeleteMember(ctx context.Context, nwid, memberID string) error
	SetRules(ctx context.Context, nwid string, rules []json.RawMessage) error
}

// Mutator performs one backend action per call and reports the outcome
// as a state.MutationResult. Actions are never batched.
type Mutator struct {
	Node      NodeMutator
	Directory DirectoryMutator
	Timeout   time.Duration
}

func (m *Mutator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// Join joins network id.
func (m *Mutator) Join(ctx context.Context, id string) state.MutationResult {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	n, err := m.Node.Join(ctx, id)
	return state.MutationResult{Op: state.OpJoin, NetworkID: id, Network: n, Err: err}
}

// Leave leaves network id.
func (m *Mutator) Leave(ctx context.Context, id string) state.MutationResult {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	err := m.Node.Leave(ctx, id)
	return state.MutationResult{Op: state.OpLeave, NetworkID: id, Err: err}
}

// Rename sets a member's name.
func (m *Mutator) Rename(ctx context.Context, nwid, memberID, name string) state.MutationResult {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	_, err := m.Directory.UpdateMember(ctx, nwid, memberID, ztapi.Rename(name))
	return state.MutationResult{Op: state.OpRename, NetworkID: nwid, MemberID: memberID, Name: name, Err: err}
}

// SetAuthorized authorizes or deauthorizes a member.
func (m *Mutator) SetAuthorized(ctx context.Context, nwid, memberID string, authorized bool) state.MutationResult {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	op := state.OpDeauthorize
	if authorized {
		op = state.OpAuthorize
	}
	_, err := m.Directory.UpdateMember(ctx, nwid, memberID, ztapi.Authorize(authorized))
	return state.MutationResult{Op: op, NetworkID: nwid, MemberID: memberID, Err: err}
}

// DeleteMember removes a member from a network.
func (m *Mutator) DeleteMember(ctx context.Context, nwid, memberID string) state.MutationResult {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	err := m.Directory.DeleteMember(ctx, nwid, memberID)
	return state.MutationResult{Op: state.OpDeleteMember, NetworkID: nwid, MemberID: memberID, Err: err}
}

// SetRules replaces a network's rules.
func (m *Mutator) SetRules(ctx context.Context, nwid string, rules []json.RawMessage) state.MutationResult {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	err := m.Directory.SetRules(ctx, nwid, rules)
	return state.MutationResult{Op: state.OpSetRules, NetworkID: nwid, Rules: rules, Err: err}
}
