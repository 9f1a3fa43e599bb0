// Package netstats reads per-interface byte counters and turns successive
// readings into transfer rates.
package netstats

import (
	"context"
	"fmt"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// Counters is one reading of an interface's cumulative byte counters.
type Counters struct {
	Interface string
	RxBytes   uint64
	TxBytes   uint64
	At        time.Time
}

// Reader reads counters for every interface on the machine.
type Reader interface {
	ReadCounters(ctx context.Context) (map[string]Counters, error)
}

// SystemReader reads counters from the operating system.
type SystemReader struct{}

// ReadCounters returns the current counters keyed by interface name.
func (SystemReader) ReadCounters(ctx context.Context) (map[string]Counters, error) {
	stats, err := psnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to read interface counters: %w", err)
	}

	now := time.Now()
	out := make(map[string]Counters, len(stats))
	for _, s := range stats {
		out[s.Name] = Counters{
			Interface: s.Name,
			RxBytes:   s.BytesRecv,
			TxBytes:   s.BytesSent,
			At:        now,
		}
	}
	return out, nil
}
