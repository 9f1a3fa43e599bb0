// Package refresh fetches snapshots from the backends for the dashboard.
//
// Nothing here touches the view model. Each call returns a value that the
// dashboard merges on its own goroutine.
package refresh

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/muurk/ztdash/internal/logging"
	"github.com/muurk/ztdash/internal/netstats"
	"github.com/muurk/ztdash/internal/state"
	"github.com/muurk/ztdash/internal/ztapi"
	"go.uber.org/zap"
)

// DefaultTimeout bounds each backend call.
const DefaultTimeout = 5 * time.Second

// NodeAPI is the part of the local node client the poller needs.
type NodeAPI interface {
	ListNetworks(ctx context.Context) ([]ztapi.Network, error)
	GetNetwork(ctx context.Context, id string) (*ztapi.Network, error)
}

// DirectoryAPI is the part of the Central client the poller needs.
type DirectoryAPI interface {
	ListMembers(ctx context.Context, nwid string) ([]ztapi.Member, error)
	GetNetwork(ctx context.Context, nwid string) (*ztapi.CentralNetwork, error)
}

// Poller runs one fetch per call, each under its own timeout.
type Poller struct {
	Node      NodeAPI
	Directory DirectoryAPI
	Counters  netstats.Reader
	Timeout   time.Duration
}

func (p *Poller) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// Networks fetches the node's network list and the interface counters
// concurrently. A counter failure is logged and the snapshot returned
// without counters; a node failure fails the whole poll.
func (p *Poller) Networks(ctx context.Context) (state.NetworkSnapshot, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	var (
		networks []ztapi.Network
		counters map[string]netstats.Counters
	)

	started := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		networks, err = p.Node.ListNetworks(gctx)
		return err
	})
	if p.Counters != nil {
		g.Go(func() error {
			c, err := p.Counters.ReadCounters(gctx)
			if err != nil {
				logging.Debug("Interface counters unavailable", zap.Error(err))
				return nil
			}
			counters = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return state.NetworkSnapshot{}, err
	}

	return state.NetworkSnapshot{Networks: networks, Counters: counters, Taken: started}, nil
}

// Network fetches a single network for an out-of-band refresh. The
// snapshot is scoped to id: a 404 means the node has left it.
func (p *Poller) Network(ctx context.Context, id string) (state.NetworkSnapshot, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	snap := state.NetworkSnapshot{Scope: []string{id}, Taken: time.Now()}

	n, err := p.Node.GetNetwork(ctx, id)
	switch {
	case ztapi.IsNotFound(err):
	case err != nil:
		return state.NetworkSnapshot{}, err
	default:
		snap.Networks = []ztapi.Network{*n}
	}

	if p.Counters != nil && n != nil && n.PortDeviceName != "" {
		if c, err := p.Counters.ReadCounters(ctx); err == nil {
			snap.Counters = c
		}
	}
	return snap, nil
}

// Members fetches the member list of nwid from Central.
func (p *Poller) Members(ctx context.Context, nwid string) ([]ztapi.Member, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.Directory.ListMembers(ctx, nwid)
}

// Rules fetches the current rule set of nwid from Central.
func (p *Poller) Rules(ctx context.Context, nwid string) (*ztapi.CentralNetwork, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.Directory.GetNetwork(ctx, nwid)
}
