package dashboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"

	"github.com/muurk/ztdash/internal/command"
	"github.com/muurk/ztdash/internal/config"
	"github.com/muurk/ztdash/internal/state"
)

// openMembers switches to the member list of nwid and fetches it.
func (m Model) openMembers(nwid string) (tea.Model, tea.Cmd) {
	m.screen = ScreenMemberList
	m.origin = ScreenMainList
	m.networkID = nwid
	m.memberCursor = 0
	m.memberFilter = ""
	return m, m.refreshMembers(nwid)
}

// visibleMembers returns the members of the open network that match the
// filter, best match first. Without a filter they are in id order.
func (m Model) visibleMembers() []state.MemberView {
	set := m.store.Members(m.networkID)
	if set == nil {
		return nil
	}
	if m.memberFilter == "" {
		return set.Members
	}

	haystack := make([]string, len(set.Members))
	for i, mv := range set.Members {
		haystack[i] = mv.ID + " " + mv.Name + " " + strings.Join(mv.Addresses, " ")
	}
	matches := fuzzy.Find(m.memberFilter, haystack)

	out := make([]state.MemberView, 0, len(matches))
	for _, match := range matches {
		out = append(out, set.Members[match.Index])
	}
	return out
}

// selectedMember returns the member under the cursor.
func (m Model) selectedMember() (state.MemberView, bool) {
	members := m.visibleMembers()
	if len(members) == 0 {
		return state.MemberView{}, false
	}
	return members[state.Clamp(m.memberCursor, len(members))], true
}

func (m Model) memberContext(mv state.MemberView) command.MemberContext {
	nc := command.NetworkContext{NetworkID: m.networkID}
	if v, ok := m.store.Network(m.networkID); ok {
		nc = networkContext(v)
	}
	return command.MemberContext{
		Network:    nc,
		MemberID:   mv.ID,
		MemberName: mv.Name,
		Address:    mv.FirstAddress(),
	}
}

// updateMemberList handles keys on the member list
func (m Model) updateMemberList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel, hasSel := m.selectedMember()
	nwid := m.networkID

	if b, ok := m.bindings.Lookup(config.ScopeMember, msg.String()); ok {
		if !hasSel {
			return m, nil
		}
		return m.dispatchBinding(b, m.memberContext(sel), nwid)
	}

	ctx, mutator := m.ctx, m.mutator

	switch {
	case key.Matches(msg, m.memberKeys.Up):
		if m.memberCursor > 0 {
			m.memberCursor--
		}

	case key.Matches(msg, m.memberKeys.Down):
		if m.memberCursor < len(m.visibleMembers())-1 {
			m.memberCursor++
		}

	case key.Matches(msg, m.memberKeys.Authorize):
		if hasSel {
			return m, mutateCmd(func() state.MutationResult { return mutator.SetAuthorized(ctx, nwid, sel.ID, true) })
		}

	case key.Matches(msg, m.memberKeys.Deauthorize):
		if hasSel {
			return m, mutateCmd(func() state.MutationResult { return mutator.SetAuthorized(ctx, nwid, sel.ID, false) })
		}

	case key.Matches(msg, m.memberKeys.Rename):
		if hasSel {
			m.memberID = sel.ID
			return m.startPrompt(promptRename, sel.Name)
		}

	case key.Matches(msg, m.memberKeys.Delete):
		if hasSel {
			m.confirmDelete = sel.ID
		}

	case key.Matches(msg, m.memberKeys.Detail):
		if hasSel {
			return m.openDetail(nwid, sel.ID), nil
		}

	case key.Matches(msg, m.memberKeys.EditRules):
		return m.openRulesEditor(nwid)

	case key.Matches(msg, m.memberKeys.Filter):
		return m.startPrompt(promptFilter, m.memberFilter)

	case key.Matches(msg, m.memberKeys.Refresh):
		return m, tea.Batch(m.refreshMembers(nwid), m.refreshNetwork(nwid))

	case key.Matches(msg, m.memberKeys.Dismiss):
		m.store.Notices().Dismiss()

	case key.Matches(msg, m.memberKeys.Help):
		m.showHelp = true

	case key.Matches(msg, m.memberKeys.Back):
		return m.toMainList(), nil
	}

	m.clampCursors()
	return m, nil
}

// updateConfirmDelete handles the y/N question before deleting a member.
func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	memberID, nwid := m.confirmDelete, m.networkID
	m.confirmDelete = ""
	if msg.String() != "y" && msg.String() != "Y" {
		return m, nil
	}
	ctx, mutator := m.ctx, m.mutator
	return m, mutateCmd(func() state.MutationResult { return mutator.DeleteMember(ctx, nwid, memberID) })
}

func (m Model) renderConfirmDelete() string {
	return PromptStyle.Render(NoticeErrorStyle.Render("Delete member "+m.confirmDelete+" from "+m.networkID+"?") + " y/N")
}

// Column widths of the member list
const (
	colMemberID   = 12
	colMemberName = 22
	colAuth       = 8
	colOnline     = 9
	colMemberAddr = 18
)

func (m Model) renderMemberList() string {
	var b strings.Builder

	title := "Members of " + m.networkID
	if v, ok := m.store.Network(m.networkID); ok && v.Name != "" {
		title = "Members of " + v.Name + " (" + m.networkID + ")"
	}
	b.WriteString(RenderTitle(title))
	if m.memberFilter != "" {
		b.WriteString(SubtitleStyle.Render("  filter: " + m.memberFilter))
	}
	b.WriteString("\n\n")

	set := m.store.Members(m.networkID)
	if set == nil {
		b.WriteString(m.spinner.View() + " Loading members from ZeroTier Central…")
		return b.String()
	}

	members := m.visibleMembers()
	if len(members) == 0 {
		if m.memberFilter != "" {
			b.WriteString(SubtitleStyle.Render("No members match the filter."))
		} else {
			b.WriteString(SubtitleStyle.Render("This network has no members."))
		}
		return b.String()
	}

	b.WriteString(ColumnHeaderStyle.Render(
		"  " + cell("MEMBER", colMemberID) + cell("NAME", colMemberName) + cell("AUTH", colAuth) +
			cell("ONLINE", colOnline) + cell("ADDRESS", colMemberAddr) + "LAST SEEN"))
	b.WriteString("\n")

	cursor := state.Clamp(m.memberCursor, len(members))
	for i, mv := range members {
		b.WriteString(renderMemberRow(mv, i == cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func renderMemberRow(mv state.MemberView, selected bool) string {
	name := mv.Name
	if name == "" {
		name = "-"
	}
	auth, authStyle := "no", StatusBadStyle
	if mv.Authorized {
		auth, authStyle = "yes", StatusOKStyle
	}
	online, onlineStyle := "offline", StaleRowStyle
	if mv.Online {
		online, onlineStyle = "online", StatusOKStyle
	}
	addr := mv.FirstAddress()
	if addr == "" {
		addr = "-"
	}
	seen := "never"
	if !mv.LastOnline.IsZero() {
		seen = humanize.Time(mv.LastOnline)
	}

	if selected {
		return SelectedRowStyle.Render("▸ " + cell(mv.ID, colMemberID) + cell(name, colMemberName) +
			cell(auth, colAuth) + cell(online, colOnline) + cell(addr, colMemberAddr) + seen)
	}
	return "  " + RowStyle.Render(cell(mv.ID, colMemberID)+cell(name, colMemberName)) +
		authStyle.Render(cell(auth, colAuth)) + onlineStyle.Render(cell(online, colOnline)) +
		RowStyle.Render(cell(addr, colMemberAddr)+seen)
}
