package netstats

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// maxSamples is how many readings are kept per interface.
const maxSamples = 3

// Rate is a transfer rate in bytes per second.
type Rate struct {
	Rx float64
	Tx float64
}

// Sampler keeps the most recent readings per interface. It is not safe for
// concurrent use; the dashboard owns it from its update loop.
type Sampler struct {
	samples map[string][]Counters
}

// NewSampler creates an empty sampler.
func NewSampler() *Sampler {
	return &Sampler{samples: make(map[string][]Counters)}
}

// Record appends a reading. Readings that are not newer than the last one
// for the same interface are ignored.
func (s *Sampler) Record(c Counters) {
	hist := s.samples[c.Interface]
	if n := len(hist); n > 0 && !c.At.After(hist[n-1].At) {
		return
	}
	hist = append(hist, c)
	if len(hist) > maxSamples {
		hist = append([]Counters(nil), hist[len(hist)-maxSamples:]...)
	}
	s.samples[c.Interface] = hist
}

// Rate returns the rate between the two most recent readings of iface.
// ok is false until two readings exist.
func (s *Sampler) Rate(iface string) (Rate, bool) {
	hist := s.samples[iface]
	if len(hist) < 2 {
		return Rate{}, false
	}

	prev, last := hist[len(hist)-2], hist[len(hist)-1]
	elapsed := last.At.Sub(prev.At).Seconds()
	if elapsed <= 0 {
		return Rate{}, false
	}

	return Rate{
		Rx: delta(prev.RxBytes, last.RxBytes) / elapsed,
		Tx: delta(prev.TxBytes, last.TxBytes) / elapsed,
	}, true
}

// Latest returns the most recent reading of iface.
func (s *Sampler) Latest(iface string) (Counters, bool) {
	hist := s.samples[iface]
	if len(hist) == 0 {
		return Counters{}, false
	}
	return hist[len(hist)-1], true
}

// Forget drops the history of iface.
func (s *Sampler) Forget(iface string) {
	delete(s.samples, iface)
}

// delta treats a counter going backwards (interface recreated) as zero traffic.
func delta(prev, last uint64) float64 {
	if last < prev {
		return 0
	}
	return float64(last - prev)
}

// FormatRate renders a rate as "Rx: 1.2 kB/s | Tx: 300 B/s".
func FormatRate(r Rate) string {
	return fmt.Sprintf("Rx: %s/s | Tx: %s/s", humanize.Bytes(uint64(r.Rx)), humanize.Bytes(uint64(r.Tx)))
}

// FormatTotal renders cumulative counters as "Rx: 1.2 MB | Tx: 300 kB".
func FormatTotal(c Counters) string {
	return fmt.Sprintf("Rx: %s | Tx: %s", humanize.Bytes(c.RxBytes), humanize.Bytes(c.TxBytes))
}
