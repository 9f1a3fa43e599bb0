package netstats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplerNeedsTwoReadings(t *testing.T) {
	s := NewSampler()
	base := time.Unix(1000, 0)

	s.Record(Counters{Interface: "zt0", RxBytes: 100, TxBytes: 50, At: base})
	_, ok := s.Rate("zt0")
	assert.False(t, ok)

	s.Record(Counters{Interface: "zt0", RxBytes: 2100, TxBytes: 450, At: base.Add(2 * time.Second)})
	rate, ok := s.Rate("zt0")
	require.True(t, ok)
	assert.InDelta(t, 1000, rate.Rx, 0.001)
	assert.InDelta(t, 200, rate.Tx, 0.001)
}

func TestSamplerUsesMostRecentPair(t *testing.T) {
	s := NewSampler()
	base := time.Unix(1000, 0)

	for i := 0; i < 5; i++ {
		s.Record(Counters{
			Interface: "zt0",
			RxBytes:   uint64(i * i * 1000),
			At:        base.Add(time.Duration(i) * time.Second),
		})
	}

	assert.Len(t, s.samples["zt0"], maxSamples)
	rate, ok := s.Rate("zt0")
	require.True(t, ok)
	// 16000 - 9000 over one second
	assert.InDelta(t, 7000, rate.Rx, 0.001)
}

func TestSamplerIgnoresStaleAndResets(t *testing.T) {
	s := NewSampler()
	base := time.Unix(1000, 0)

	s.Record(Counters{Interface: "zt0", RxBytes: 5000, At: base})
	s.Record(Counters{Interface: "zt0", RxBytes: 9000, At: base}) // same instant
	assert.Len(t, s.samples["zt0"], 1)

	s.Record(Counters{Interface: "zt0", RxBytes: 10, At: base.Add(time.Second)})
	rate, ok := s.Rate("zt0")
	require.True(t, ok)
	assert.Zero(t, rate.Rx, "counter reset reads as no traffic")

	s.Forget("zt0")
	_, ok = s.Latest("zt0")
	assert.False(t, ok)
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "Rx: 1.2 kB/s | Tx: 300 B/s", FormatRate(Rate{Rx: 1200, Tx: 300}))
	assert.Equal(t, "Rx: 1.5 MB | Tx: 0 B", FormatTotal(Counters{RxBytes: 1_500_000}))
}

func TestSystemReader(t *testing.T) {
	counters, err := SystemReader{}.ReadCounters(context.Background())
	if err != nil {
		t.Skipf("interface counters unavailable: %v", err)
	}
	for name, c := range counters {
		assert.Equal(t, name, c.Interface)
		assert.False(t, c.At.IsZero())
	}
}
