package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/muurk/ztdash/internal/netstats"
	"github.com/muurk/ztdash/internal/state"
	"github.com/muurk/ztdash/internal/ztapi"
)

const netA = "abcdef0123456789"

type fakeNode struct {
	networks []ztapi.Network
	err      error
	delay    time.Duration
	joined   []string
	left     []string
}

func (f *fakeNode) ListNetworks(ctx context.Context) ([]ztapi.Network, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, &ztapi.APIError{Backend: ztapi.BackendNode, Type: ztapi.ErrTypeTimeout, Err: ctx.Err()}
		}
	}
	return f.networks, f.err
}

func (f *fakeNode) GetNetwork(ctx context.Context, id string) (*ztapi.Network, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, n := range f.networks {
		if n.ID == id {
			n := n
			return &n, nil
		}
	}
	return nil, &ztapi.APIError{Backend: ztapi.BackendNode, Type: ztapi.ErrTypeNotFound, StatusCode: 404}
}

func (f *fakeNode) Join(ctx context.Context, id string) (*ztapi.Network, error) {
	f.joined = append(f.joined, id)
	return &ztapi.Network{ID: id, Status: ztapi.StatusRequestingConfiguration}, f.err
}

func (f *fakeNode) Leave(ctx context.Context, id string) error {
	f.left = append(f.left, id)
	return f.err
}

type fakeDirectory struct {
	members []ztapi.Member
	err     error
	updates []ztapi.MemberUpdate
	rules   []json.RawMessage
}

func (f *fakeDirectory) ListMembers(ctx context.Context, nwid string) ([]ztapi.Member, error) {
	return f.members, f.err
}

func (f *fakeDirectory) GetNetwork(ctx context.Context, nwid string) (*ztapi.CentralNetwork, error) {
	return &ztapi.CentralNetwork{ID: nwid, Config: ztapi.NetworkConfig{Rules: f.rules}}, f.err
}

func (f *fakeDirectory) UpdateMember(ctx context.Context, nwid, memberID string, update ztapi.MemberUpdate) (*ztapi.Member, error) {
	f.updates = append(f.updates, update)
	return &ztapi.Member{NodeID: memberID}, f.err
}

func (f *fakeDirectory) DeleteMember(ctx context.Context, nwid, memberID string) error {
	return f.err
}

func (f *fakeDirectory) SetRules(ctx context.Context, nwid string, rules []json.RawMessage) error {
	f.rules = rules
	return f.err
}

type fakeCounters struct {
	calls atomic.Int32
	err   error
}

func (f *fakeCounters) ReadCounters(ctx context.Context) (map[string]netstats.Counters, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return map[string]netstats.Counters{"zt0": {Interface: "zt0", RxBytes: 10, At: time.Now()}}, nil
}

func TestNetworksSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t)

	node := &fakeNode{networks: []ztapi.Network{{ID: netA, PortDeviceName: "zt0"}}}
	counters := &fakeCounters{}
	p := &Poller{Node: node, Counters: counters, Timeout: time.Second}

	snap, err := p.Networks(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap.Scope, "full poll has no scope")
	assert.Len(t, snap.Networks, 1)
	assert.Contains(t, snap.Counters, "zt0")
	assert.False(t, snap.Taken.IsZero())
	assert.Equal(t, int32(1), counters.calls.Load())
}

func TestNetworksTakenWhenPollStarts(t *testing.T) {
	node := &fakeNode{networks: []ztapi.Network{{ID: netA}}, delay: 50 * time.Millisecond}
	p := &Poller{Node: node, Timeout: time.Second}

	before := time.Now()
	snap, err := p.Networks(context.Background())
	require.NoError(t, err)
	assert.Less(t, snap.Taken.Sub(before), 50*time.Millisecond, "a slow answer is dated by its request")
}

func TestNetworksCounterFailureIsNotFatal(t *testing.T) {
	node := &fakeNode{networks: []ztapi.Network{{ID: netA}}}
	p := &Poller{Node: node, Counters: &fakeCounters{err: errors.New("no /proc")}}

	snap, err := p.Networks(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Networks, 1)
	assert.Nil(t, snap.Counters)
}

func TestNetworksTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	node := &fakeNode{delay: time.Second}
	p := &Poller{Node: node, Timeout: 20 * time.Millisecond}

	start := time.Now()
	_, err := p.Networks(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.True(t, ztapi.IsRetryable(err) || errors.Is(err, context.DeadlineExceeded))
}

func TestNetworkScoped(t *testing.T) {
	node := &fakeNode{networks: []ztapi.Network{{ID: netA, PortDeviceName: "zt0"}}}
	p := &Poller{Node: node, Counters: &fakeCounters{}}

	snap, err := p.Network(context.Background(), netA)
	require.NoError(t, err)
	assert.Equal(t, []string{netA}, snap.Scope)
	require.Len(t, snap.Networks, 1)

	// A network the node has left comes back as an empty scoped snapshot.
	snap, err = p.Network(context.Background(), "8056c2e21c000001")
	require.NoError(t, err)
	assert.Equal(t, []string{"8056c2e21c000001"}, snap.Scope)
	assert.Empty(t, snap.Networks)
}

func TestNetworkScopedError(t *testing.T) {
	p := &Poller{Node: &fakeNode{err: &ztapi.APIError{Type: ztapi.ErrTypeConnectionRefused}}}
	_, err := p.Network(context.Background(), netA)
	assert.Error(t, err)
}

func TestMembersAndRules(t *testing.T) {
	dir := &fakeDirectory{
		members: []ztapi.Member{{NodeID: "1122334455"}},
		rules:   []json.RawMessage{json.RawMessage(`{"type":"ACTION_ACCEPT"}`)},
	}
	p := &Poller{Directory: dir}

	members, err := p.Members(context.Background(), netA)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	n, err := p.Rules(context.Background(), netA)
	require.NoError(t, err)
	assert.Len(t, n.Config.Rules, 1)
}

func TestMutatorResults(t *testing.T) {
	node := &fakeNode{}
	dir := &fakeDirectory{}
	m := &Mutator{Node: node, Directory: dir}
	ctx := context.Background()

	res := m.Join(ctx, netA)
	assert.Equal(t, state.OpJoin, res.Op)
	assert.NoError(t, res.Err)
	assert.Equal(t, []string{netA}, node.joined)

	res = m.Leave(ctx, netA)
	assert.Equal(t, state.OpLeave, res.Op)
	assert.Equal(t, []string{netA}, node.left)

	res = m.SetAuthorized(ctx, netA, "1122334455", false)
	assert.Equal(t, state.OpDeauthorize, res.Op)
	res = m.SetAuthorized(ctx, netA, "1122334455", true)
	assert.Equal(t, state.OpAuthorize, res.Op)

	res = m.Rename(ctx, netA, "1122334455", "laptop")
	assert.Equal(t, "laptop", res.Name)
	require.Len(t, dir.updates, 3)
	require.NotNil(t, dir.updates[2].Name)
	assert.Equal(t, "laptop", *dir.updates[2].Name)

	rules := []json.RawMessage{json.RawMessage(`{"type":"ACTION_DROP"}`)}
	res = m.SetRules(ctx, netA, rules)
	assert.Equal(t, rules, res.Rules)
	assert.Equal(t, rules, dir.rules)

	res = m.DeleteMember(ctx, netA, "1122334455")
	assert.Equal(t, state.OpDeleteMember, res.Op)
}

func TestMutatorCarriesError(t *testing.T) {
	authErr := &ztapi.APIError{Type: ztapi.ErrTypeAuth}
	m := &Mutator{Directory: &fakeDirectory{err: authErr}}

	res := m.DeleteMember(context.Background(), netA, "1122334455")
	assert.ErrorIs(t, res.Err, authErr)
	assert.Equal(t, "1122334455", res.MemberID)
}

func TestTrackerCoalesces(t *testing.T) {
	tr := NewTracker()

	assert.True(t, tr.Begin(OneNetwork(netA)))
	assert.False(t, tr.Begin(OneNetwork(netA)), "same network already in flight")
	assert.True(t, tr.Begin(MembersOf(netA)), "members are a separate target")

	tr.End(OneNetwork(netA))
	assert.True(t, tr.Begin(AllNetworks()))
	assert.False(t, tr.Begin(OneNetwork(netA)), "full poll covers every network")
	assert.False(t, tr.Begin(AllNetworks()))

	tr.End(AllNetworks())
	tr.End(MembersOf(netA))
	assert.False(t, tr.Busy())
	assert.True(t, tr.Begin(OneNetwork(netA)))
	assert.True(t, tr.InFlight(OneNetwork(netA)))
}

func TestTrackerFollowRepeatsInFlightRefresh(t *testing.T) {
	tr := NewTracker()

	require.True(t, tr.Begin(MembersOf(netA)))
	assert.False(t, tr.Follow(MembersOf(netA)))
	assert.True(t, tr.End(MembersOf(netA)), "a change arrived while the poll was out")
	assert.False(t, tr.End(MembersOf(netA)), "only once")

	require.True(t, tr.Begin(AllNetworks()))
	assert.False(t, tr.Follow(OneNetwork(netA)))
	assert.True(t, tr.End(AllNetworks()), "the full poll covering the network is repeated")

	assert.True(t, tr.Follow(OneNetwork(netA)), "nothing in flight starts right away")
	assert.False(t, tr.End(OneNetwork(netA)))
}

func TestTrackerBeginDoesNotRepeat(t *testing.T) {
	tr := NewTracker()
	require.True(t, tr.Begin(AllNetworks()))
	assert.False(t, tr.Begin(AllNetworks()))
	assert.False(t, tr.Begin(OneNetwork(netA)))
	assert.False(t, tr.End(AllNetworks()), "periodic triggers are simply dropped")
}
