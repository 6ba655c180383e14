package virt

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/tinyrange/fwplat/platform"
)

// noTimerEvent is the mtimecmp reset value: far enough in the future that no
// event fires until one is armed.
const noTimerEvent = ^uint64(0)

// CLINT is a software core-local interruptor: per-hart software-interrupt
// pending words for IPIs plus a free-running mtime with per-hart compare
// values for timer events. The mtime value derives from a monotonic start
// time and a configurable tick period.
type CLINT struct {
	hartCount uint32
	startTime time.Time
	nsPerTick uint64

	// Per-hart IPI pending word: 0 when idle, otherwise source hart id + 1.
	// The target acknowledges by clearing the word.
	pending []atomic.Uint64

	// Per-hart timer compare values against mtime.
	mtimecmp []atomic.Uint64
}

// NewCLINT creates a CLINT for the given hart count. nsPerTick of 0 defaults
// to a 10 MHz timer.
func NewCLINT(hartCount uint32, nsPerTick uint64) *CLINT {
	if nsPerTick == 0 {
		nsPerTick = 100
	}
	c := &CLINT{
		hartCount: hartCount,
		startTime: time.Now(),
		nsPerTick: nsPerTick,
		pending:   make([]atomic.Uint64, hartCount),
		mtimecmp:  make([]atomic.Uint64, hartCount),
	}
	for i := range c.mtimecmp {
		c.mtimecmp[i].Store(noTimerEvent)
	}
	return c
}

// Init resets the per-hart IPI and timer state.
func (c *CLINT) Init(hartID uint32, coldBoot bool) platform.Status {
	if hartID >= c.hartCount {
		return platform.StatusInvalidParam
	}
	c.pending[hartID].Store(0)
	c.mtimecmp[hartID].Store(noTimerEvent)
	return platform.StatusOK
}

// InjectIPI marks a software interrupt pending for target, attributed to
// source. Out-of-range targets are ignored.
func (c *CLINT) InjectIPI(target, source uint32) {
	if target >= c.hartCount {
		return
	}
	c.pending[target].Store(uint64(source) + 1)
}

// SyncIPI blocks until target has acknowledged the pending interrupt by
// clearing it. There is no timeout; a target that never acknowledges blocks
// the caller indefinitely, matching the hardware contract.
func (c *CLINT) SyncIPI(target, source uint32) {
	if target >= c.hartCount {
		return
	}
	for c.pending[target].Load() != 0 {
		runtime.Gosched()
	}
}

// ClearIPI acknowledges and clears any pending interrupt for target.
func (c *CLINT) ClearIPI(target uint32) {
	if target >= c.hartCount {
		return
	}
	c.pending[target].Store(0)
}

// IPIPending returns the source hart of a pending interrupt for target.
func (c *CLINT) IPIPending(target uint32) (source uint32, ok bool) {
	if target >= c.hartCount {
		return 0, false
	}
	v := c.pending[target].Load()
	if v == 0 {
		return 0, false
	}
	return uint32(v - 1), true
}

// Mtime returns the current timer value.
func (c *CLINT) Mtime() uint64 {
	elapsed := time.Since(c.startTime).Nanoseconds()
	return uint64(elapsed) / c.nsPerTick
}

// StartEvent arms the timer event for target at the given mtime value.
func (c *CLINT) StartEvent(target uint32, nextEvent uint64) {
	if target >= c.hartCount {
		return
	}
	c.mtimecmp[target].Store(nextEvent)
}

// StopEvent disarms the timer event for target.
func (c *CLINT) StopEvent(target uint32) {
	if target >= c.hartCount {
		return
	}
	c.mtimecmp[target].Store(noTimerEvent)
}

// EventPending reports whether target's armed event has elapsed.
func (c *CLINT) EventPending(target uint32) bool {
	if target >= c.hartCount {
		return false
	}
	return c.Mtime() >= c.mtimecmp[target].Load()
}
