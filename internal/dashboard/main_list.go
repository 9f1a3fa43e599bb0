package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/ztdash/internal/command"
	"github.com/muurk/ztdash/internal/config"
	"github.com/muurk/ztdash/internal/netstats"
	"github.com/muurk/ztdash/internal/state"
)

// selectedNetwork returns the network under the cursor, or nil.
func (m Model) selectedNetwork() *state.NetworkView {
	visible := m.store.Visible()
	if len(visible) == 0 {
		return nil
	}
	return visible[state.Clamp(m.cursor, len(visible))]
}

func networkContext(v *state.NetworkView) command.NetworkContext {
	return command.NetworkContext{
		Interface: v.Interface,
		NetworkID: v.ID,
		Address:   v.FirstAddress(),
	}
}

// updateMainList handles keys on the network list
func (m Model) updateMainList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := m.selectedNetwork()

	if b, ok := m.bindings.Lookup(config.ScopeNetwork, msg.String()); ok {
		if sel == nil {
			return m, nil
		}
		return m.dispatchBinding(b, networkContext(sel), sel.ID)
	}

	ctx, mutator := m.ctx, m.mutator

	switch {
	case key.Matches(msg, m.mainKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.mainKeys.Down):
		if m.cursor < len(m.store.Visible())-1 {
			m.cursor++
		}

	case key.Matches(msg, m.mainKeys.Members):
		if sel != nil {
			return m.openMembers(sel.ID)
		}

	case key.Matches(msg, m.mainKeys.Detail):
		if sel != nil {
			return m.openDetail(sel.ID, ""), nil
		}

	case key.Matches(msg, m.mainKeys.EditRules):
		if sel != nil {
			return m.openRulesEditor(sel.ID)
		}

	case key.Matches(msg, m.mainKeys.Join):
		if sel != nil {
			id := sel.ID
			return m, mutateCmd(func() state.MutationResult { return mutator.Join(ctx, id) })
		}

	case key.Matches(msg, m.mainKeys.Leave):
		if sel != nil {
			id := sel.ID
			return m, mutateCmd(func() state.MutationResult { return mutator.Leave(ctx, id) })
		}

	case key.Matches(msg, m.mainKeys.JoinByID):
		return m.startPrompt(promptJoinByID, "")

	case key.Matches(msg, m.mainKeys.BookmarkID):
		return m.startPrompt(promptBookmarkID, "")

	case key.Matches(msg, m.mainKeys.Forget):
		if sel != nil && m.store.Forget(sel.ID) {
			m.saveBookmarks()
			if sel.Connected {
				m.store.Notices().Info("Forgot " + sel.ID + " (still joined)")
			} else {
				m.store.Notices().Info("Forgot " + sel.ID)
			}
		}

	case key.Matches(msg, m.mainKeys.Import):
		added := m.store.ImportUnlisted()
		if len(added) == 0 {
			m.store.Notices().Info("No joined networks to import")
			break
		}
		m.saveBookmarks()
		m.store.Notices().Info(fmt.Sprintf("Imported %d joined network(s)", len(added)))

	case key.Matches(msg, m.mainKeys.Filter):
		filter := m.store.ToggleFilter()
		if err := m.cfgStore.SaveFilter(filter); err != nil {
			m.store.Notify(&config.ConfigError{Path: m.cfgStore.SettingsPath(), Err: err})
		}

	case key.Matches(msg, m.mainKeys.Refresh):
		return m, m.startRefresh()

	case key.Matches(msg, m.mainKeys.Reload):
		m = m.reloadConfig()

	case key.Matches(msg, m.mainKeys.Dismiss):
		m.store.Notices().Dismiss()

	case key.Matches(msg, m.mainKeys.Help):
		m.showHelp = true

	case key.Matches(msg, m.mainKeys.Quit):
		return m, tea.Quit
	}

	m.clampCursors()
	return m, nil
}

// joinByID bookmarks id if needed and joins it.
func (m Model) joinByID(id string) (tea.Model, tea.Cmd) {
	if m.store.AddBookmark(id) {
		m.saveBookmarks()
	}
	ctx, mutator := m.ctx, m.mutator
	return m, mutateCmd(func() state.MutationResult { return mutator.Join(ctx, id) })
}

// bookmarkByID bookmarks id without joining it.
func (m Model) bookmarkByID(id string) (tea.Model, tea.Cmd) {
	if !m.store.AddBookmark(id) {
		m.store.Notices().Info(id + " is already bookmarked")
		return m, nil
	}
	m.saveBookmarks()
	m.store.Notices().Info("Bookmarked " + id)
	return m, m.refreshNetwork(id)
}

// Column widths of the network list
const (
	colNetworkID = 17
	colName      = 20
	colStatus    = 24
	colIface     = 12
	colAddress   = 18
)

func (m Model) renderMainList() string {
	var b strings.Builder

	title := "Bookmarked networks"
	if m.store.Filter() == config.FilterConnected {
		title += " (connected only)"
	}
	b.WriteString(RenderTitle(title))
	b.WriteString("\n\n")

	visible := m.store.Visible()
	if len(visible) == 0 {
		if len(m.store.Bookmarks()) == 0 {
			b.WriteString(SubtitleStyle.Render("No bookmarks yet. Press J to join a network, B to bookmark one, or i to import joined networks."))
		} else {
			b.WriteString(SubtitleStyle.Render("No connected bookmarks. Press t to show all."))
		}
		return b.String()
	}

	b.WriteString(ColumnHeaderStyle.Render(
		"  " + cell("NETWORK", colNetworkID) + cell("NAME", colName) + cell("STATUS", colStatus) +
			cell("IFACE", colIface) + cell("ADDRESS", colAddress) + "TRAFFIC"))
	b.WriteString("\n")

	cursor := state.Clamp(m.cursor, len(visible))
	for i, v := range visible {
		b.WriteString(m.renderNetworkRow(v, i == cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderNetworkRow(v *state.NetworkView, selected bool) string {
	status := v.Status
	if v.Stale && v.Polled {
		status += " (stale)"
	}

	traffic := "-"
	if v.HasRate {
		traffic = netstats.FormatRate(v.Rate)
	} else if v.HasTotal {
		traffic = netstats.FormatTotal(v.Totals)
	}

	iface := v.Interface
	if iface == "" {
		iface = "-"
	}
	addr := v.FirstAddress()
	if addr == "" {
		addr = "-"
	}

	name := v.Name
	if name == "" {
		name = "-"
	}

	if selected {
		return SelectedRowStyle.Render("▸ " + cell(v.ID, colNetworkID) + cell(name, colName) +
			cell(status, colStatus) + cell(iface, colIface) + cell(addr, colAddress) + traffic)
	}

	style := RowStyle
	statusCell := statusStyle(v.Status).Render(cell(status, colStatus))
	if v.Stale {
		style = StaleRowStyle
		statusCell = StaleRowStyle.Render(cell(status, colStatus))
	}
	return "  " + style.Render(cell(v.ID, colNetworkID)+cell(name, colName)) + statusCell +
		style.Render(cell(iface, colIface)+cell(addr, colAddress)+traffic)
}
