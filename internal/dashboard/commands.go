package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/ztdash/internal/refresh"
	"github.com/muurk/ztdash/internal/state"
	"github.com/muurk/ztdash/internal/ztapi"
)

// Messages produced by background commands. They carry values only; the
// store is touched in Update when they arrive.
type (
	tickMsg time.Time

	networksMsg struct {
		snap state.NetworkSnapshot
		err  error
	}

	networkMsg struct {
		id   string
		snap state.NetworkSnapshot
		err  error
	}

	membersMsg struct {
		networkID string
		members   []ztapi.Member
		taken     time.Time
		err       error
	}

	rulesMsg struct {
		networkID string
		rules     *ztapi.CentralNetwork
		err       error
	}

	mutationMsg struct {
		result state.MutationResult
	}

	configChangedMsg struct{}
)

// tickCmd schedules the next periodic refresh.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func pollNetworksCmd(ctx context.Context, p *refresh.Poller) tea.Cmd {
	return func() tea.Msg {
		snap, err := p.Networks(ctx)
		return networksMsg{snap: snap, err: err}
	}
}

func pollNetworkCmd(ctx context.Context, p *refresh.Poller, id string) tea.Cmd {
	return func() tea.Msg {
		snap, err := p.Network(ctx, id)
		return networkMsg{id: id, snap: snap, err: err}
	}
}

func pollMembersCmd(ctx context.Context, p *refresh.Poller, nwid string) tea.Cmd {
	return func() tea.Msg {
		started := time.Now()
		members, err := p.Members(ctx, nwid)
		return membersMsg{networkID: nwid, members: members, taken: started, err: err}
	}
}

func fetchRulesCmd(ctx context.Context, p *refresh.Poller, nwid string) tea.Cmd {
	return func() tea.Msg {
		n, err := p.Rules(ctx, nwid)
		return rulesMsg{networkID: nwid, rules: n, err: err}
	}
}

// mutateCmd runs one backend action in the background.
func mutateCmd(action func() state.MutationResult) tea.Cmd {
	return func() tea.Msg {
		return mutationMsg{result: action()}
	}
}

// waitForConfigChange blocks until the config watcher fires. It returns
// nil once the watcher is closed.
func waitForConfigChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return configChangedMsg{}
	}
}
