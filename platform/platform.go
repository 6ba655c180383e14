// Package platform describes a board's declared capabilities and dispatches
// runtime operations to the board's optional hook implementations.
//
// A Descriptor is authored once per board, frozen at construction, and read
// concurrently by every hart for the lifetime of the process. Every hook is
// individually optional; the dispatch methods are safe to call on a nil
// Descriptor or with any hook absent and return a fixed default in that case,
// so call sites never need presence checks.
package platform

import "fmt"

// LifecycleHooks are the board's per-hart init entry points.
type LifecycleHooks struct {
	// EarlyInit runs before any subsystem init on the given hart.
	EarlyInit func(hartID uint32, coldBoot bool) Status
	// FinalInit runs after all subsystem init on the given hart.
	FinalInit func(hartID uint32, coldBoot bool) Status
}

// PMPRegion describes one physical memory protection region.
type PMPRegion struct {
	Prot     uint64
	Addr     uint64
	Log2Size uint32
}

// PMPHooks enumerate the protection regions configured for a hart.
type PMPHooks struct {
	RegionCount func(hartID uint32) uint32
	RegionInfo  func(hartID, index uint32) (PMPRegion, Status)
}

// ConsoleHooks drive the board console.
type ConsoleHooks struct {
	Putc func(ch byte)
	Getc func() byte
	Init func() Status
}

// IrqchipHooks initialize the board interrupt controller.
type IrqchipHooks struct {
	Init func(hartID uint32, coldBoot bool) Status
}

// IPIHooks implement inter-processor signalling between harts.
//
// Sync blocks the calling hart until the target acknowledges a previously
// injected signal. The layer does not track injection state; calling Sync
// without a matching Inject from the same logical caller is a caller error.
type IPIHooks struct {
	Inject func(target, source uint32)
	Sync   func(target, source uint32)
	Clear  func(target uint32)
	Init   func(hartID uint32, coldBoot bool) Status
}

// TimerHooks drive the board timer.
type TimerHooks struct {
	Value      func() uint64
	EventStart func(target uint32, nextEvent uint64)
	EventStop  func(target uint32)
	Init       func(hartID uint32, coldBoot bool) Status
}

// PowerHooks reboot or shut down the whole platform.
type PowerHooks struct {
	Reboot   func(resetType uint32) Status
	Shutdown func(resetType uint32) Status
}

// Descriptor is the frozen capability table for one board. Construct one with
// New or FromBoard; the zero value and the nil pointer both behave as "no
// platform" for every accessor and dispatch method.
type Descriptor struct {
	name          string
	features      FeatureSet
	hartCount     uint32
	hartStackSize uint32
	disabledHarts HartMask

	lifecycle *LifecycleHooks
	pmp       *PMPHooks
	console   *ConsoleHooks
	irqchip   *IrqchipHooks
	ipi       *IPIHooks
	timer     *TimerHooks
	power     *PowerHooks
}

// Config carries everything needed to build a Descriptor. Hook groups left
// nil declare the whole capability absent.
type Config struct {
	Name          string
	Features      FeatureSet
	HartCount     uint32
	HartStackSize uint32
	DisabledHarts HartMask

	Lifecycle *LifecycleHooks
	PMP       *PMPHooks
	Console   *ConsoleHooks
	Irqchip   *IrqchipHooks
	IPI       *IPIHooks
	Timer     *TimerHooks
	Power     *PowerHooks
}

// New validates the config and returns a frozen Descriptor. Hook group
// structs are copied, so later mutation of the config does not reach the
// descriptor.
func New(cfg Config) (*Descriptor, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("platform: name is empty")
	}
	if len(cfg.Name) > NameSize-1 {
		return nil, fmt.Errorf("platform: name %q longer than %d bytes", cfg.Name, NameSize-1)
	}
	if cfg.HartCount == 0 {
		return nil, fmt.Errorf("platform: hart count is zero")
	}

	d := &Descriptor{
		name:          cfg.Name,
		features:      cfg.Features,
		hartCount:     cfg.HartCount,
		hartStackSize: cfg.HartStackSize,
		disabledHarts: cfg.DisabledHarts,
	}

	if cfg.Lifecycle != nil {
		if cfg.Lifecycle.EarlyInit == nil && cfg.Lifecycle.FinalInit == nil {
			return nil, fmt.Errorf("platform: lifecycle hooks present but empty")
		}
		h := *cfg.Lifecycle
		d.lifecycle = &h
	}
	if cfg.PMP != nil {
		if cfg.PMP.RegionCount == nil && cfg.PMP.RegionInfo == nil {
			return nil, fmt.Errorf("platform: PMP hooks present but empty")
		}
		h := *cfg.PMP
		d.pmp = &h
	}
	if cfg.Console != nil {
		if cfg.Console.Putc == nil && cfg.Console.Getc == nil && cfg.Console.Init == nil {
			return nil, fmt.Errorf("platform: console hooks present but empty")
		}
		h := *cfg.Console
		d.console = &h
	}
	if cfg.Irqchip != nil {
		if cfg.Irqchip.Init == nil {
			return nil, fmt.Errorf("platform: irqchip hooks present but empty")
		}
		h := *cfg.Irqchip
		d.irqchip = &h
	}
	if cfg.IPI != nil {
		if cfg.IPI.Inject == nil && cfg.IPI.Sync == nil && cfg.IPI.Clear == nil && cfg.IPI.Init == nil {
			return nil, fmt.Errorf("platform: IPI hooks present but empty")
		}
		h := *cfg.IPI
		d.ipi = &h
	}
	if cfg.Timer != nil {
		if cfg.Timer.Value == nil && cfg.Timer.EventStart == nil && cfg.Timer.EventStop == nil && cfg.Timer.Init == nil {
			return nil, fmt.Errorf("platform: timer hooks present but empty")
		}
		h := *cfg.Timer
		d.timer = &h
	}
	if cfg.Power != nil {
		if cfg.Power.Reboot == nil && cfg.Power.Shutdown == nil {
			return nil, fmt.Errorf("platform: power hooks present but empty")
		}
		h := *cfg.Power
		d.power = &h
	}

	return d, nil
}

// Topology describes the hart layout a board declares.
type Topology struct {
	HartCount     uint32
	HartStackSize uint32
	DisabledHarts HartMask
}

// Board is the protocol a board driver module satisfies. Each Supports
// method returns nil when the board does not provide that capability.
type Board interface {
	Name() string
	Features() FeatureSet
	Topology() Topology

	SupportsLifecycle() *LifecycleHooks
	SupportsPMP() *PMPHooks
	SupportsConsole() *ConsoleHooks
	SupportsIrqchip() *IrqchipHooks
	SupportsIPI() *IPIHooks
	SupportsTimer() *TimerHooks
	SupportsPower() *PowerHooks
}

// FromBoard collects a board's declared capabilities into a Descriptor.
func FromBoard(b Board) (*Descriptor, error) {
	if b == nil {
		return nil, fmt.Errorf("platform: board is nil")
	}
	topo := b.Topology()
	return New(Config{
		Name:          b.Name(),
		Features:      b.Features(),
		HartCount:     topo.HartCount,
		HartStackSize: topo.HartStackSize,
		DisabledHarts: topo.DisabledHarts,

		Lifecycle: b.SupportsLifecycle(),
		PMP:       b.SupportsPMP(),
		Console:   b.SupportsConsole(),
		Irqchip:   b.SupportsIrqchip(),
		IPI:       b.SupportsIPI(),
		Timer:     b.SupportsTimer(),
		Power:     b.SupportsPower(),
	})
}

// Name returns the board name, or "" for an absent descriptor.
func (d *Descriptor) Name() string {
	if d == nil {
		return ""
	}
	return d.name
}

// Features returns the declared feature set, or 0 for an absent descriptor.
func (d *Descriptor) Features() FeatureSet {
	if d == nil {
		return 0
	}
	return d.features
}

// HasFeature reports whether every bit of flag is declared by the platform.
// Reserved feature bits a reader does not know about are simply never asked
// about; they are carried, not rejected.
func (d *Descriptor) HasFeature(flag FeatureSet) bool {
	if d == nil {
		return false
	}
	return d.features&flag != 0
}

// HartCount returns the declared number of harts, or 0 for an absent
// descriptor.
func (d *Descriptor) HartCount() uint32 {
	if d == nil {
		return 0
	}
	return d.hartCount
}

// HartStackSize returns the per-hart exception stack size in bytes, or 0 for
// an absent descriptor.
func (d *Descriptor) HartStackSize() uint32 {
	if d == nil {
		return 0
	}
	return d.hartStackSize
}

// DisabledHarts returns the disabled hart mask, or 0 for an absent
// descriptor.
func (d *Descriptor) DisabledHarts() HartMask {
	if d == nil {
		return 0
	}
	return d.disabledHarts
}

// HartDisabled reports whether the given hart must not be scheduled or
// targeted by IPIs. An absent descriptor and ids beyond the mask's range
// both report false.
func (d *Descriptor) HartDisabled(hartID uint32) bool {
	if d == nil {
		return false
	}
	return d.disabledHarts.Has(hartID)
}
