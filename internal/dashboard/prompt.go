package dashboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/ztdash/internal/state"
	"github.com/muurk/ztdash/internal/ztapi"
)

func (k promptKind) label() string {
	switch k {
	case promptJoinByID:
		return "Join network id: "
	case promptBookmarkID:
		return "Bookmark network id: "
	case promptRename:
		return "New name: "
	case promptFilter:
		return "Filter members: "
	default:
		return ""
	}
}

// startPrompt opens a one-line text prompt seeded with value.
func (m Model) startPrompt(kind promptKind, value string) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.input.Prompt = kind.label()
	m.input.Placeholder = ""
	m.input.CharLimit = 64
	if kind == promptJoinByID || kind == promptBookmarkID {
		m.input.Placeholder = "16 hex digits"
		m.input.CharLimit = 16
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	cmd := m.input.Focus()
	return m, tea.Batch(cmd, textinput.Blink)
}

func (m Model) closePrompt() Model {
	m.prompt = promptNone
	m.input.Blur()
	m.input.SetValue("")
	return m
}

// updatePrompt handles input while a text prompt is open. esc cancels
// the prompt without leaving the screen.
func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kind := m.prompt

	switch msg.Type {
	case tea.KeyEsc:
		if kind == promptFilter {
			m.memberFilter = ""
		}
		return m.closePrompt(), nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		m = m.closePrompt()
		return m.submitPrompt(kind, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if kind == promptFilter {
		m.memberFilter = strings.TrimSpace(m.input.Value())
		m.memberCursor = 0
	}
	return m, cmd
}

func (m Model) submitPrompt(kind promptKind, value string) (tea.Model, tea.Cmd) {
	switch kind {
	case promptJoinByID, promptBookmarkID:
		id := strings.ToLower(value)
		if !ztapi.IsNetworkID(id) {
			m.store.Notices().Info(quoted(value) + " is not a network id (16 hex digits)")
			return m, nil
		}
		if kind == promptJoinByID {
			return m.joinByID(id)
		}
		return m.bookmarkByID(id)

	case promptRename:
		nwid, memberID := m.networkID, m.memberID
		m.memberID = ""
		if memberID == "" {
			return m, nil
		}
		if cur, ok := m.store.Members(nwid).Find(memberID); ok && cur.Name == value {
			return m, nil
		}
		ctx, mutator := m.ctx, m.mutator
		return m, mutateCmd(func() state.MutationResult { return mutator.Rename(ctx, nwid, memberID, value) })

	case promptFilter:
		m.memberFilter = value
		m.clampCursors()
	}
	return m, nil
}

func (m Model) renderPrompt() string {
	return PromptStyle.Render(m.input.View())
}

func quoted(s string) string {
	return `"` + s + `"`
}
