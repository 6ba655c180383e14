package virt

import (
	"sync"

	"github.com/tinyrange/fwplat/platform"
)

// PLICMaxSources is the number of interrupt sources the controller models.
const PLICMaxSources = 1024

// plicContext is the per-hart interrupt delivery state.
type plicContext struct {
	enable    [PLICMaxSources / 32]uint32
	threshold uint32
	claimed   uint32
}

// PLIC is a software platform-level interrupt controller: per-source
// priorities shared by all harts and one delivery context per hart.
type PLIC struct {
	mu       sync.Mutex
	priority [PLICMaxSources]uint32
	contexts []plicContext
}

// NewPLIC creates a PLIC with one context per hart.
func NewPLIC(hartCount uint32) *PLIC {
	return &PLIC{
		contexts: make([]plicContext, hartCount),
	}
}

// Init resets the hart's delivery context. A cold boot additionally resets
// the shared source priorities.
func (p *PLIC) Init(hartID uint32, coldBoot bool) platform.Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	if int(hartID) >= len(p.contexts) {
		return platform.StatusInvalidParam
	}
	if coldBoot {
		p.priority = [PLICMaxSources]uint32{}
	}
	p.contexts[hartID] = plicContext{}
	return platform.StatusOK
}

// SetPriority sets the priority of an interrupt source. Priority 0 disables
// the source.
func (p *PLIC) SetPriority(source, priority uint32) {
	if source >= PLICMaxSources {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.priority[source] = priority
}

// Enable routes an interrupt source to the given hart's context.
func (p *PLIC) Enable(hartID, source uint32) {
	if source >= PLICMaxSources {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(hartID) >= len(p.contexts) {
		return
	}
	p.contexts[hartID].enable[source/32] |= 1 << (source % 32)
}

// Enabled reports whether a source is routed to the given hart.
func (p *PLIC) Enabled(hartID, source uint32) bool {
	if source >= PLICMaxSources {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(hartID) >= len(p.contexts) {
		return false
	}
	return p.contexts[hartID].enable[source/32]&(1<<(source%32)) != 0
}
