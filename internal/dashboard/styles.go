package dashboard

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/ztdash/internal/state"
	"github.com/muurk/ztdash/internal/version"
	"github.com/muurk/ztdash/internal/ztapi"
)

// Application branding constants
const (
	AppName   = "ZTDASH"
	GitHubURL = "github.com/muurk/ztdash"
)

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 72
	DefaultWidth     = 100
	DefaultHeight    = 30
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF5F5F") // Red

	TextColor      = lipgloss.Color("#FFFFFF")
	SubtleColor    = lipgloss.Color("#626262")
	BorderColor    = lipgloss.Color("#7D56F4")
	HighlightColor = lipgloss.Color("#43BF6D")
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	ColumnHeaderStyle = lipgloss.NewStyle().
				Foreground(SubtleColor).
				Bold(true)

	RowStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(HighlightColor).
				Bold(true)

	StaleRowStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	StatusOKStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	StatusPendingStyle = lipgloss.NewStyle().
				Foreground(WarningColor)

	StatusBadStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	NoticeInfoStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	NoticeErrorStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true)

	PromptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(0, 1)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)
)

// RenderTitle renders a screen title with consistent styling
func RenderTitle(text string) string {
	return TitleStyle.Render(text)
}

// statusStyle picks the style for a network status.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case ztapi.StatusOK:
		return StatusOKStyle
	case ztapi.StatusRequestingConfiguration:
		return StatusPendingStyle
	default:
		return StatusBadStyle
	}
}

// renderNotice renders the current notice line, or "" when none.
func renderNotice(n state.Notice, pending int) string {
	text := n.Message
	if pending > 1 {
		text += lipgloss.NewStyle().Foreground(SubtleColor).Render(
			" (+" + strconv.Itoa(pending-1) + " more, x to dismiss)")
	} else {
		text += lipgloss.NewStyle().Foreground(SubtleColor).Render(" (x to dismiss)")
	}
	if n.Kind.IsError() {
		return NoticeErrorStyle.Render("✗ ") + text
	}
	return NoticeInfoStyle.Render("✓ ") + text
}

// BuildHeaderContent creates header content with app name and status
func BuildHeaderContent(right string) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " " + version.Version)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", lipgloss.NewStyle().Foreground(SubtleColor).Render(right))
}

// RenderApplicationContainer wraps a screen with the shared header, a
// footer carrying context-sensitive help, and an outer border that fills
// the terminal.
func RenderApplicationContainer(header, content, footerText string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= 0 {
		terminalWidth = DefaultWidth
	}
	if terminalHeight <= 0 {
		terminalHeight = DefaultHeight
	}

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	styledHeader := headerStyle.Render(BuildHeaderContent(header))
	styledFooter := footerStyle.Render(lipgloss.NewStyle().Foreground(SubtleColor).Render(footerText))

	// Leave room for the outer border, header and footer.
	contentHeight := terminalHeight - 2 - lipgloss.Height(styledHeader) - lipgloss.Height(styledFooter)
	if contentHeight < 1 {
		contentHeight = 1
	}
	styledContent := lipgloss.NewStyle().
		Width(terminalWidth - 4).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Padding(0, 1).
		Render(content)

	inner := lipgloss.JoinVertical(lipgloss.Left, styledHeader, styledContent, styledFooter)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}

// RenderModal centers modal content over a dimmed background.
func RenderModal(modalContent string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= 0 {
		terminalWidth = DefaultWidth
	}
	if terminalHeight <= 0 {
		terminalHeight = DefaultHeight
	}
	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Center,
		lipgloss.Center,
		modalContent,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("240")),
	)
}

// SafeModalWidth returns the smaller of requestedWidth and what fits.
func SafeModalWidth(requestedWidth, terminalWidth int) int {
	maxWidth := terminalWidth - 4
	if maxWidth < 40 {
		maxWidth = 40
	}
	if requestedWidth < maxWidth {
		return requestedWidth
	}
	return maxWidth
}

// cell pads or truncates s to width columns.
func cell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) > width {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
			r = r[:len(r)-1]
		}
		s = string(r) + "…"
	}
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(s)
}
