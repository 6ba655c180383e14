package platform

// Dispatch methods. Every method follows one contract: if the descriptor is
// absent, or the specific hook is absent, return the documented default
// without invoking anything; otherwise forward all arguments unchanged to
// the hook and return its result unchanged. An absent hook is reported as
// success, never as a distinct failure; callers that need to tell the two
// apart use Implemented.

// EarlyInit runs the board's early init for a hart. Default: StatusOK.
func (d *Descriptor) EarlyInit(hartID uint32, coldBoot bool) Status {
	if d == nil || d.lifecycle == nil || d.lifecycle.EarlyInit == nil {
		return StatusOK
	}
	return d.lifecycle.EarlyInit(hartID, coldBoot)
}

// FinalInit runs the board's final init for a hart. Default: StatusOK.
func (d *Descriptor) FinalInit(hartID uint32, coldBoot bool) Status {
	if d == nil || d.lifecycle == nil || d.lifecycle.FinalInit == nil {
		return StatusOK
	}
	return d.lifecycle.FinalInit(hartID, coldBoot)
}

// PMPRegionCount returns the number of protection regions configured for a
// hart. Default: 0.
func (d *Descriptor) PMPRegionCount(hartID uint32) uint32 {
	if d == nil || d.pmp == nil || d.pmp.RegionCount == nil {
		return 0
	}
	return d.pmp.RegionCount(hartID)
}

// PMPRegionInfo returns the details of one protection region. Indices at or
// beyond PMPRegionCount for the same hart return StatusInvalidParam rather
// than silently succeeding. Default: zero region, StatusOK.
func (d *Descriptor) PMPRegionInfo(hartID, index uint32) (PMPRegion, Status) {
	if d == nil || d.pmp == nil || d.pmp.RegionInfo == nil {
		return PMPRegion{}, StatusOK
	}
	if index >= d.PMPRegionCount(hartID) {
		return PMPRegion{}, StatusInvalidParam
	}
	return d.pmp.RegionInfo(hartID, index)
}

// ConsolePutc writes one character to the board console. Default: no-op.
func (d *Descriptor) ConsolePutc(ch byte) {
	if d == nil || d.console == nil || d.console.Putc == nil {
		return
	}
	d.console.Putc(ch)
}

// ConsoleGetc reads one character from the board console. Default: NUL.
func (d *Descriptor) ConsoleGetc() byte {
	if d == nil || d.console == nil || d.console.Getc == nil {
		return 0
	}
	return d.console.Getc()
}

// ConsoleInit initializes the board console. Default: StatusOK.
func (d *Descriptor) ConsoleInit() Status {
	if d == nil || d.console == nil || d.console.Init == nil {
		return StatusOK
	}
	return d.console.Init()
}

// IrqchipInit initializes the interrupt controller for a hart.
// Default: StatusOK.
func (d *Descriptor) IrqchipInit(hartID uint32, coldBoot bool) Status {
	if d == nil || d.irqchip == nil || d.irqchip.Init == nil {
		return StatusOK
	}
	return d.irqchip.Init(hartID, coldBoot)
}

// IPIInject requests delivery of a pending-interrupt signal to target,
// attributed to source. Safe from any hart toward any hart, including
// itself. Default: no-op.
func (d *Descriptor) IPIInject(target, source uint32) {
	if d == nil || d.ipi == nil || d.ipi.Inject == nil {
		return
	}
	d.ipi.Inject(target, source)
}

// IPISync blocks the calling hart until target has acknowledged the
// previously injected signal. There is no timeout in the base contract.
// Default: no-op.
func (d *Descriptor) IPISync(target, source uint32) {
	if d == nil || d.ipi == nil || d.ipi.Sync == nil {
		return
	}
	d.ipi.Sync(target, source)
}

// IPIClear clears any pending or acknowledged IPI state for target.
// Default: no-op.
func (d *Descriptor) IPIClear(target uint32) {
	if d == nil || d.ipi == nil || d.ipi.Clear == nil {
		return
	}
	d.ipi.Clear(target)
}

// IPIInit initializes IPI support for a hart. Default: StatusOK.
func (d *Descriptor) IPIInit(hartID uint32, coldBoot bool) Status {
	if d == nil || d.ipi == nil || d.ipi.Init == nil {
		return StatusOK
	}
	return d.ipi.Init(hartID, coldBoot)
}

// TimerValue returns the current timer value. Default: 0.
func (d *Descriptor) TimerValue() uint64 {
	if d == nil || d.timer == nil || d.timer.Value == nil {
		return 0
	}
	return d.timer.Value()
}

// TimerEventStart arms the timer event for target at nextEvent.
// Default: no-op.
func (d *Descriptor) TimerEventStart(target uint32, nextEvent uint64) {
	if d == nil || d.timer == nil || d.timer.EventStart == nil {
		return
	}
	d.timer.EventStart(target, nextEvent)
}

// TimerEventStop disarms the timer event for target. Default: no-op.
func (d *Descriptor) TimerEventStop(target uint32) {
	if d == nil || d.timer == nil || d.timer.EventStop == nil {
		return
	}
	d.timer.EventStop(target)
}

// TimerInit initializes the timer for a hart. Default: StatusOK.
func (d *Descriptor) TimerInit(hartID uint32, coldBoot bool) Status {
	if d == nil || d.timer == nil || d.timer.Init == nil {
		return StatusOK
	}
	return d.timer.Init(hartID, coldBoot)
}

// SystemReboot reboots the platform. Default: StatusOK.
func (d *Descriptor) SystemReboot(resetType uint32) Status {
	if d == nil || d.power == nil || d.power.Reboot == nil {
		return StatusOK
	}
	return d.power.Reboot(resetType)
}

// SystemShutdown shuts down or powers off the platform. Default: StatusOK.
func (d *Descriptor) SystemShutdown(resetType uint32) Status {
	if d == nil || d.power == nil || d.power.Shutdown == nil {
		return StatusOK
	}
	return d.power.Shutdown(resetType)
}

// Op names one dispatchable operation for capability probing.
type Op int

const (
	OpEarlyInit Op = iota
	OpFinalInit
	OpPMPRegionCount
	OpPMPRegionInfo
	OpConsolePutc
	OpConsoleGetc
	OpConsoleInit
	OpIrqchipInit
	OpIPIInject
	OpIPISync
	OpIPIClear
	OpIPIInit
	OpTimerValue
	OpTimerEventStart
	OpTimerEventStop
	OpTimerInit
	OpSystemReboot
	OpSystemShutdown
)

var opNames = [...]string{
	OpEarlyInit:       "early-init",
	OpFinalInit:       "final-init",
	OpPMPRegionCount:  "pmp-region-count",
	OpPMPRegionInfo:   "pmp-region-info",
	OpConsolePutc:     "console-putc",
	OpConsoleGetc:     "console-getc",
	OpConsoleInit:     "console-init",
	OpIrqchipInit:     "irqchip-init",
	OpIPIInject:       "ipi-inject",
	OpIPISync:         "ipi-sync",
	OpIPIClear:        "ipi-clear",
	OpIPIInit:         "ipi-init",
	OpTimerValue:      "timer-value",
	OpTimerEventStart: "timer-event-start",
	OpTimerEventStop:  "timer-event-stop",
	OpTimerInit:       "timer-init",
	OpSystemReboot:    "system-reboot",
	OpSystemShutdown:  "system-shutdown",
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "op(invalid)"
	}
	return opNames[op]
}

// Implemented reports whether the board actually provides the hook behind
// op. It lets callers distinguish "succeeded" from "absent and defaulted",
// which the dispatch methods deliberately coalesce.
func (d *Descriptor) Implemented(op Op) bool {
	if d == nil {
		return false
	}
	switch op {
	case OpEarlyInit:
		return d.lifecycle != nil && d.lifecycle.EarlyInit != nil
	case OpFinalInit:
		return d.lifecycle != nil && d.lifecycle.FinalInit != nil
	case OpPMPRegionCount:
		return d.pmp != nil && d.pmp.RegionCount != nil
	case OpPMPRegionInfo:
		return d.pmp != nil && d.pmp.RegionInfo != nil
	case OpConsolePutc:
		return d.console != nil && d.console.Putc != nil
	case OpConsoleGetc:
		return d.console != nil && d.console.Getc != nil
	case OpConsoleInit:
		return d.console != nil && d.console.Init != nil
	case OpIrqchipInit:
		return d.irqchip != nil && d.irqchip.Init != nil
	case OpIPIInject:
		return d.ipi != nil && d.ipi.Inject != nil
	case OpIPISync:
		return d.ipi != nil && d.ipi.Sync != nil
	case OpIPIClear:
		return d.ipi != nil && d.ipi.Clear != nil
	case OpIPIInit:
		return d.ipi != nil && d.ipi.Init != nil
	case OpTimerValue:
		return d.timer != nil && d.timer.Value != nil
	case OpTimerEventStart:
		return d.timer != nil && d.timer.EventStart != nil
	case OpTimerEventStop:
		return d.timer != nil && d.timer.EventStop != nil
	case OpTimerInit:
		return d.timer != nil && d.timer.Init != nil
	case OpSystemReboot:
		return d.power != nil && d.power.Reboot != nil
	case OpSystemShutdown:
		return d.power != nil && d.power.Shutdown != nil
	default:
		return false
	}
}
