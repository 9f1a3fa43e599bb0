package dashboard

import (
	"bytes"
	"encoding/json"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/ztdash/internal/state"
)

// openDetail shows the raw JSON of a network, or of one of its members
// when memberID is set.
func (m Model) openDetail(nwid, memberID string) Model {
	m.origin = m.screen
	m.screen = ScreenJSONDetail
	m.networkID = nwid
	m.memberID = memberID
	m.detail.SetContent(m.detailContent())
	m.detail.GotoTop()
	return m
}

func (m Model) detailContent() string {
	var raw json.RawMessage
	if m.memberID != "" {
		if mv, ok := m.store.Members(m.networkID).Find(m.memberID); ok {
			raw = mv.Raw
		}
	} else if v, ok := m.store.Network(m.networkID); ok {
		raw = v.Raw
	}

	if len(raw) == 0 {
		return SubtitleStyle.Render("Nothing reported for this item yet.")
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}

// updateDetail scrolls the JSON view; q returns where it came from.
func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.detailKeys.Back) {
		m.screen = m.origin
		m.memberID = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) renderDetail() string {
	title := "Network " + m.networkID
	if m.memberID != "" {
		title = "Member " + m.memberID + " of " + m.networkID
	}
	return RenderTitle(title) + "\n\n" + m.detail.View()
}

// openRulesEditor fetches the current rules of nwid; the editor opens
// when they arrive. esc before then cancels.
func (m Model) openRulesEditor(nwid string) (tea.Model, tea.Cmd) {
	m.origin = m.screen
	m.screen = ScreenRulesEditor
	m.networkID = nwid
	return m, tea.Batch(fetchRulesCmd(m.ctx, m.poller, nwid), m.spinner.Tick)
}

// handleRules records fetched rules and, if the rules screen is still
// waiting for them, runs the editor and pushes the result.
func (m Model) handleRules(msg rulesMsg) (tea.Model, tea.Cmd) {
	res := state.MutationResult{Op: state.OpFetchRules, NetworkID: msg.networkID, Err: msg.err}
	if msg.err == nil && msg.rules != nil {
		res.Rules = msg.rules.Config.Rules
	}
	m.store.ApplyMutationResult(res)

	waiting := m.screen == ScreenRulesEditor && m.networkID == msg.networkID
	if !waiting {
		return m, nil
	}
	m.screen = m.origin
	if msg.err != nil {
		return m, nil
	}

	edited, changed, err := m.runner.EditRules(m.term, m.editor, res.Rules)
	switch {
	case err != nil:
		m.store.Notices().Push(state.NoticeFromError(err, "edit rules"))
		return m, tea.ClearScreen
	case !changed:
		m.store.Notices().Info("Rules unchanged for " + msg.networkID)
		return m, tea.ClearScreen
	}

	ctx, mutator, nwid := m.ctx, m.mutator, msg.networkID
	return m, tea.Batch(
		tea.ClearScreen,
		mutateCmd(func() state.MutationResult { return mutator.SetRules(ctx, nwid, edited) }),
	)
}

func (m Model) renderRulesLoading() string {
	return RenderTitle("Rules of "+m.networkID) + "\n\n" +
		m.spinner.View() + " Fetching rules from ZeroTier Central…"
}
