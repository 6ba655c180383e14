package virt

import (
	"sync"

	"github.com/tinyrange/fwplat/platform"
)

// ResetKind distinguishes the two power operations.
type ResetKind int

const (
	ResetNone ResetKind = iota
	ResetReboot
	ResetShutdown
)

func (k ResetKind) String() string {
	switch k {
	case ResetReboot:
		return "reboot"
	case ResetShutdown:
		return "shutdown"
	default:
		return "none"
	}
}

// powerLatch records the first reset request and signals anyone waiting on
// it. Later requests keep the first outcome; a platform only goes down once.
type powerLatch struct {
	mu        sync.Mutex
	kind      ResetKind
	resetType uint32
	done      chan struct{}
}

func newPowerLatch() *powerLatch {
	return &powerLatch{done: make(chan struct{})}
}

func (p *powerLatch) request(kind ResetKind, resetType uint32) platform.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.kind != ResetNone {
		return platform.StatusAlreadyAvailable
	}
	p.kind = kind
	p.resetType = resetType
	close(p.done)
	return platform.StatusOK
}

// state returns the recorded reset, or ResetNone if nothing happened yet.
func (p *powerLatch) state() (ResetKind, uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kind, p.resetType
}
