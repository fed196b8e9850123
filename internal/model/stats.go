package model

import (
	"sync"
	"time"
)

// AdapterStats holds the per-handle counters defined in spec §3.
// Uptime is computed on read; every other field is monotonic for the
// lifetime of the handle.
type AdapterStats struct {
	BytesRx     uint64
	BytesTx     uint64
	MessagesRx  uint64
	MessagesTx  uint64
	Errors      uint64
	UptimeMS    int64
}

// StatsCounter owns the mutable counters behind one open handle and
// hands out immutable AdapterStats snapshots. Reads never block writers
// for longer than a single copy, matching spec §5's "reads of stats
// return a snapshot copy" rule.
type StatsCounter struct {
	mu       sync.Mutex
	openedAt time.Time
	stats    AdapterStats
}

// NewStatsCounter starts a counter with its open time set to now.
func NewStatsCounter(now time.Time) *StatsCounter {
	return &StatsCounter{openedAt: now}
}

func (c *StatsCounter) AddRx(bytes uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.BytesRx += bytes
	c.stats.MessagesRx++
}

func (c *StatsCounter) AddTx(bytes uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.BytesTx += bytes
	c.stats.MessagesTx++
}

func (c *StatsCounter) AddError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Errors++
}

// Snapshot returns a copy of the counters with Uptime computed from now.
func (c *StatsCounter) Snapshot(now time.Time) AdapterStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.stats
	snap.UptimeMS = now.Sub(c.openedAt).Milliseconds()
	return snap
}
