package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/muurk/ztdash/internal/netstats"
	"github.com/muurk/ztdash/internal/state"
	"github.com/muurk/ztdash/internal/ztapi"
)

func TestRenderNetworkTable(t *testing.T) {
	views := []*state.NetworkView{
		{
			ID:        "abcdef0123456789",
			Name:      "home",
			Status:    ztapi.StatusOK,
			Interface: "zt0",
			Addresses: []string{"10.147.17.5/24"},
			Connected: true,
			HasTotal:  true,
			Totals:    netstats.Counters{RxBytes: 2048, TxBytes: 1024},
		},
		{ID: "8056c2e21c000001", Status: ztapi.StatusDisconnected, Stale: true},
	}

	out := RenderNetworkTable(views, 120)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NETWORK")
	assert.Contains(t, lines[0], "TRAFFIC")
	assert.Contains(t, lines[1], "home")
	assert.Contains(t, lines[1], "10.147.17.5")
	assert.NotContains(t, lines[1], "/24")
	assert.Contains(t, lines[2], "8056c2e21c000001")
	assert.Contains(t, lines[2], ztapi.StatusDisconnected)
}

func TestRenderNetworkTableNarrowDropsTraffic(t *testing.T) {
	views := []*state.NetworkView{{ID: "abcdef0123456789", Status: ztapi.StatusOK, Connected: true}}
	out := RenderNetworkTable(views, MinTerminalWidth)
	assert.NotContains(t, out, "TRAFFIC")
}

func TestRenderNetworkTableEmpty(t *testing.T) {
	out := RenderNetworkTable(nil, 100)
	assert.Contains(t, out, "ztdash bookmark")
}

func TestPad(t *testing.T) {
	assert.Equal(t, "abc   ", pad("abc", 6))
	padded := pad("a-very-long-network-name", 10)
	assert.Equal(t, 10, len([]rune(padded)))
	assert.True(t, strings.Contains(padded, "…"))
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf).SetWidth(80)

	p.PrintHeader("Bookmarked networks", "ztdash list", []Param{
		{Key: "Node", Value: "http://localhost:9993"},
		{Key: "Config", Value: "/home/op/.config/ztdash"},
	})
	p.PrintSuccess("Bookmarked abcdef0123456789", nil)
	p.PrintError("Cannot reach node", errors.New("connection refused"), []string{"Is zerotier-one running?"})

	out := buf.String()
	assert.Contains(t, out, "BOOKMARKED NETWORKS")
	assert.Contains(t, out, "ztdash list")
	assert.Less(t, strings.Index(out, "Node:"), strings.Index(out, "Config:"), "params keep their order")
	assert.Contains(t, out, SuccessMarker)
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "Is zerotier-one running?")
}

func TestSetWidthClamps(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{}).SetWidth(10)
	assert.Equal(t, MinTerminalWidth, p.Width())
}
