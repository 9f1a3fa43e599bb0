package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/ztdash/internal/netstats"
	"github.com/muurk/ztdash/internal/state"
	"github.com/muurk/ztdash/internal/ztapi"
)

// PrintNetworks prints the bookmarked networks as a table.
func (p *Printer) PrintNetworks(views []*state.NetworkView) {
	p.Println(RenderNetworkTable(views, p.width))
}

// RenderNetworkTable renders one row per network: id, name, status,
// interface, first address and, when known, the interface byte totals.
func RenderNetworkTable(views []*state.NetworkView, width int) string {
	if len(views) == 0 {
		return MutedStyle.Render("  No bookmarked networks. Add one with: ztdash bookmark <network-id>")
	}

	widths := []int{18, 20, 24, 10, 17}
	header := []string{"NETWORK", "NAME", "STATUS", "IFACE", "ADDRESS"}
	showTraffic := width >= sum(widths)+12

	var b strings.Builder
	row := make([]string, 0, len(header)+1)
	for i, h := range header {
		row = append(row, pad(h, widths[i]))
	}
	if showTraffic {
		row = append(row, "TRAFFIC")
	}
	b.WriteString(ColumnHeaderStyle.Render("  " + strings.Join(row, "")))
	b.WriteString("\n")

	for _, v := range views {
		name := v.Name
		if name == "" {
			name = "-"
		}
		iface := v.Interface
		if iface == "" {
			iface = "-"
		}
		addr := v.FirstAddress()
		if addr == "" {
			addr = "-"
		}

		b.WriteString("  ")
		b.WriteString(pad(v.ID, widths[0]))
		b.WriteString(pad(name, widths[1]))
		b.WriteString(statusStyle(v).Render(pad(v.Status, widths[2])))
		b.WriteString(pad(iface, widths[3]))
		b.WriteString(pad(addr, widths[4]))
		if showTraffic && v.HasTotal {
			b.WriteString(MutedStyle.Render(netstats.FormatTotal(v.Totals)))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func statusStyle(v *state.NetworkView) lipgloss.Style {
	switch {
	case !v.Connected:
		return DisconnectedStyle
	case v.Status == ztapi.StatusOK:
		return ConnectedStyle
	default:
		return PendingStyle
	}
}

// pad left-aligns s in a column of width cells, truncating with an
// ellipsis when it does not fit.
func pad(s string, width int) string {
	if lipgloss.Width(s) >= width {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r))+2 > width {
			r = r[:len(r)-1]
		}
		s = string(r) + "…"
	}
	return s + strings.Repeat(" ", max(width-lipgloss.Width(s), 0))
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
