package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/ztdash/internal/config"
)

// renderHelpModalContent lists the keys of the current screen and the
// operator's command bindings for it.
func (m Model) renderHelpModalContent() string {
	subtitleStyle := lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	var (
		title  string
		groups [][]key.Binding
		scope  config.Scope
	)
	switch m.screen {
	case ScreenMemberList:
		title = "MEMBER LIST KEYS"
		groups = m.memberKeys.FullHelp()
		scope = config.ScopeMember
	default:
		title = "NETWORK LIST KEYS"
		groups = m.mainKeys.FullHelp()
		scope = config.ScopeNetwork
	}

	lines := []string{TitleStyle.Render(title), ""}
	for _, group := range groups {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, "  "+cell(h.Key, 8)+h.Desc)
		}
	}
	lines = append(lines, "  "+cell("esc", 8)+"back to network list", "  "+cell("ctrl+c", 8)+"quit")

	bindings := m.bindings.List(scope)
	lines = append(lines, "", subtitleStyle.Render("Command bindings:"))
	if len(bindings) == 0 {
		lines = append(lines, SubtitleStyle.Render("  none (add them under commands: in "+m.configPath()+")"))
	}
	for _, b := range bindings {
		lines = append(lines, "  "+cell(b.Key, 8)+b.Template)
	}
	lines = append(lines, "",
		SubtitleStyle.Render("Placeholders: %i interface  %n network  %a address  %m member  %N name  %% percent"),
		"",
		"Press any key to close this help screen",
	)

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(1, 2).
		Width(SafeModalWidth(80, m.width))

	return modalStyle.Render(content)
}

func (m Model) configPath() string {
	if m.cfgStore == nil {
		return "config.yaml"
	}
	return m.cfgStore.ConfigPath()
}
