// Package metrics collects lightweight runtime counters for the game
// server. Everything is atomic; recording from the hot motion loop must
// never contend on a lock.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector accumulates counters across the whole process lifetime.
type Collector struct {
	startTime time.Time

	spawns        atomic.Int64
	expiries      atomic.Int64
	motionTicks   atomic.Int64
	motionNanos   atomic.Int64
	throwsDodged  atomic.Int64
	throwsCaught  atomic.Int64
	throwsEscaped atomic.Int64
	scans         atomic.Int64
	purchases     atomic.Int64
	storageWrites atomic.Int64
	storageErrors atomic.Int64
	wsConnects    atomic.Int64
	wsDisconnects atomic.Int64
	wsMessages    atomic.Int64
}

var (
	global *Collector
	once   sync.Once
)

// Get returns the process-wide collector.
func Get() *Collector {
	once.Do(func() {
		global = &Collector{startTime: time.Now()}
	})
	return global
}

func (c *Collector) RecordSpawn()  { c.spawns.Add(1) }
func (c *Collector) RecordExpiry() { c.expiries.Add(1) }

// RecordMotionTick tracks the tick count and cumulative duration so the
// snapshot can expose the mean tick cost.
func (c *Collector) RecordMotionTick(d time.Duration) {
	c.motionTicks.Add(1)
	c.motionNanos.Add(int64(d))
}

func (c *Collector) RecordThrowDodged()  { c.throwsDodged.Add(1) }
func (c *Collector) RecordThrowCaught()  { c.throwsCaught.Add(1) }
func (c *Collector) RecordThrowEscaped() { c.throwsEscaped.Add(1) }

func (c *Collector) RecordScan()     { c.scans.Add(1) }
func (c *Collector) RecordPurchase() { c.purchases.Add(1) }

func (c *Collector) RecordStorageWrite() { c.storageWrites.Add(1) }
func (c *Collector) RecordStorageError() { c.storageErrors.Add(1) }

func (c *Collector) RecordWSConnect()    { c.wsConnects.Add(1) }
func (c *Collector) RecordWSDisconnect() { c.wsDisconnects.Add(1) }
func (c *Collector) RecordWSMessage()    { c.wsMessages.Add(1) }

// Snapshot is a point-in-time copy of all counters, JSON-ready for the
// metrics endpoint.
type Snapshot struct {
	UptimeSeconds   float64 `json:"uptime_seconds"`
	Spawns          int64   `json:"spawns"`
	Expiries        int64   `json:"expiries"`
	MotionTicks     int64   `json:"motion_ticks"`
	AvgMotionMicros float64 `json:"avg_motion_micros"`
	ThrowsDodged    int64   `json:"throws_dodged"`
	ThrowsCaught    int64   `json:"throws_caught"`
	ThrowsEscaped   int64   `json:"throws_escaped"`
	Scans           int64   `json:"scans"`
	Purchases       int64   `json:"purchases"`
	StorageWrites   int64   `json:"storage_writes"`
	StorageErrors   int64   `json:"storage_errors"`
	WSConnects      int64   `json:"ws_connects"`
	WSDisconnects   int64   `json:"ws_disconnects"`
	WSMessages      int64   `json:"ws_messages"`
}

// Snapshot returns the current counter values.
func (c *Collector) Snapshot() Snapshot {
	ticks := c.motionTicks.Load()
	var avg float64
	if ticks > 0 {
		avg = float64(c.motionNanos.Load()) / float64(ticks) / 1e3
	}
	return Snapshot{
		UptimeSeconds:   time.Since(c.startTime).Seconds(),
		Spawns:          c.spawns.Load(),
		Expiries:        c.expiries.Load(),
		MotionTicks:     ticks,
		AvgMotionMicros: avg,
		ThrowsDodged:    c.throwsDodged.Load(),
		ThrowsCaught:    c.throwsCaught.Load(),
		ThrowsEscaped:   c.throwsEscaped.Load(),
		Scans:           c.scans.Load(),
		Purchases:       c.purchases.Load(),
		StorageWrites:   c.storageWrites.Load(),
		StorageErrors:   c.storageErrors.Load(),
		WSConnects:      c.wsConnects.Load(),
		WSDisconnects:   c.wsDisconnects.Load(),
		WSMessages:      c.wsMessages.Load(),
	}
}

// MarshalJSON lets a Collector be encoded directly.
func (c *Collector) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Snapshot())
}
