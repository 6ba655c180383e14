// Package virt is a fully software-simulated multi-hart board. It exists to
// exercise every capability of the platform layer without hardware: the
// console is a pair of host streams, IPIs and timers run on a software
// CLINT, and power operations latch a reset request instead of cutting
// power.
package virt

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/tinyrange/fwplat/platform"
)

// Options configure the simulated board.
type Options struct {
	// Name overrides the board name. Empty means "tinyrange,virt".
	Name string

	// HartCount is the number of simulated harts. Zero means 1.
	HartCount uint32

	// HartStackSize is the per-hart exception stack size in bytes. Zero
	// means 8 KiB.
	HartStackSize uint32

	// DisabledHarts marks harts that must not be scheduled or targeted.
	DisabledHarts platform.HartMask

	// Features overrides the declared feature set. Zero means
	// platform.DefaultFeatures.
	Features platform.FeatureSet

	// TimerNsPerTick is the timer tick period in nanoseconds. Zero means
	// 100 (a 10 MHz timer).
	TimerNsPerTick uint64

	// ConsoleOut and ConsoleIn back the console hooks. Either may be nil.
	ConsoleOut io.Writer
	ConsoleIn  io.Reader

	// PMPRegions holds the protection regions per hart, indexed by hart id.
	// Harts beyond the slice have no regions.
	PMPRegions [][]platform.PMPRegion

	// Logger receives board lifecycle events. Nil means slog.Default().
	Logger *slog.Logger
}

// Board simulates a multi-hart platform. It satisfies platform.Board.
type Board struct {
	name          string
	features      platform.FeatureSet
	hartCount     uint32
	hartStackSize uint32
	disabledHarts platform.HartMask

	log   *slog.Logger
	uart  *UART
	clint *CLINT
	plic  *PLIC
	power *powerLatch
	pmp   [][]platform.PMPRegion

	coldBoots atomic.Uint32
	warmBoots atomic.Uint32
}

// New creates the simulated board.
func New(opts Options) (*Board, error) {
	if opts.Name == "" {
		opts.Name = "tinyrange,virt"
	}
	if opts.HartCount == 0 {
		opts.HartCount = 1
	}
	if opts.HartStackSize == 0 {
		opts.HartStackSize = 8192
	}
	if opts.Features == 0 {
		opts.Features = platform.DefaultFeatures
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.PMPRegions) > int(opts.HartCount) {
		return nil, fmt.Errorf("virt: PMP regions for %d harts, board has %d",
			len(opts.PMPRegions), opts.HartCount)
	}

	pmp := make([][]platform.PMPRegion, len(opts.PMPRegions))
	for i, regions := range opts.PMPRegions {
		pmp[i] = append([]platform.PMPRegion(nil), regions...)
	}

	return &Board{
		name:          opts.Name,
		features:      opts.Features,
		hartCount:     opts.HartCount,
		hartStackSize: opts.HartStackSize,
		disabledHarts: opts.DisabledHarts,
		log:           opts.Logger,
		uart:          NewUART(opts.ConsoleOut, opts.ConsoleIn),
		clint:         NewCLINT(opts.HartCount, opts.TimerNsPerTick),
		plic:          NewPLIC(opts.HartCount),
		power:         newPowerLatch(),
		pmp:           pmp,
	}, nil
}

// Name implements platform.Board.
func (b *Board) Name() string { return b.name }

// Features implements platform.Board.
func (b *Board) Features() platform.FeatureSet { return b.features }

// Topology implements platform.Board.
func (b *Board) Topology() platform.Topology {
	return platform.Topology{
		HartCount:     b.hartCount,
		HartStackSize: b.hartStackSize,
		DisabledHarts: b.disabledHarts,
	}
}

// SupportsLifecycle implements platform.Board.
func (b *Board) SupportsLifecycle() *platform.LifecycleHooks {
	return &platform.LifecycleHooks{
		EarlyInit: b.earlyInit,
		FinalInit: b.finalInit,
	}
}

// SupportsPMP implements platform.Board. Returns nil when no hart has
// regions configured.
func (b *Board) SupportsPMP() *platform.PMPHooks {
	if len(b.pmp) == 0 {
		return nil
	}
	return &platform.PMPHooks{
		RegionCount: b.pmpRegionCount,
		RegionInfo:  b.pmpRegionInfo,
	}
}

// SupportsConsole implements platform.Board.
func (b *Board) SupportsConsole() *platform.ConsoleHooks {
	return &platform.ConsoleHooks{
		Putc: b.uart.Putc,
		Getc: b.uart.Getc,
		Init: b.uart.Init,
	}
}

// SupportsIrqchip implements platform.Board.
func (b *Board) SupportsIrqchip() *platform.IrqchipHooks {
	return &platform.IrqchipHooks{Init: b.plic.Init}
}

// SupportsIPI implements platform.Board.
func (b *Board) SupportsIPI() *platform.IPIHooks {
	return &platform.IPIHooks{
		Inject: b.clint.InjectIPI,
		Sync:   b.clint.SyncIPI,
		Clear:  b.clint.ClearIPI,
		Init:   b.clint.Init,
	}
}

// SupportsTimer implements platform.Board.
func (b *Board) SupportsTimer() *platform.TimerHooks {
	return &platform.TimerHooks{
		Value:      b.clint.Mtime,
		EventStart: b.clint.StartEvent,
		EventStop:  b.clint.StopEvent,
		Init:       b.clint.Init,
	}
}

// SupportsPower implements platform.Board.
func (b *Board) SupportsPower() *platform.PowerHooks {
	return &platform.PowerHooks{
		Reboot:   b.reboot,
		Shutdown: b.shutdown,
	}
}

func (b *Board) earlyInit(hartID uint32, coldBoot bool) platform.Status {
	if hartID >= b.hartCount {
		return platform.StatusInvalidParam
	}
	if coldBoot {
		b.coldBoots.Add(1)
	} else {
		b.warmBoots.Add(1)
	}
	b.log.Debug("virt: early init", "hart", hartID, "cold", coldBoot)
	return platform.StatusOK
}

func (b *Board) finalInit(hartID uint32, coldBoot bool) platform.Status {
	if hartID >= b.hartCount {
		return platform.StatusInvalidParam
	}
	b.log.Debug("virt: final init", "hart", hartID, "cold", coldBoot)
	return platform.StatusOK
}

func (b *Board) pmpRegionCount(hartID uint32) uint32 {
	if int(hartID) >= len(b.pmp) {
		return 0
	}
	return uint32(len(b.pmp[hartID]))
}

func (b *Board) pmpRegionInfo(hartID, index uint32) (platform.PMPRegion, platform.Status) {
	if int(hartID) >= len(b.pmp) || index >= uint32(len(b.pmp[hartID])) {
		return platform.PMPRegion{}, platform.StatusInvalidParam
	}
	return b.pmp[hartID][index], platform.StatusOK
}

func (b *Board) reboot(resetType uint32) platform.Status {
	b.log.Info("virt: reboot requested", "type", resetType)
	return b.power.request(ResetReboot, resetType)
}

func (b *Board) shutdown(resetType uint32) platform.Status {
	b.log.Info("virt: shutdown requested", "type", resetType)
	return b.power.request(ResetShutdown, resetType)
}

// CLINT exposes the board's interruptor, mainly so callers can model the
// target-side acknowledge path of an IPI.
func (b *Board) CLINT() *CLINT { return b.clint }

// PLIC exposes the board's interrupt controller.
func (b *Board) PLIC() *PLIC { return b.plic }

// Done is closed once a power operation has latched.
func (b *Board) Done() <-chan struct{} { return b.power.done }

// LastReset returns the latched power request, ResetNone if none yet.
func (b *Board) LastReset() (ResetKind, uint32) { return b.power.state() }

// BootCounts returns how many harts reported cold and warm early init.
func (b *Board) BootCounts() (cold, warm uint32) {
	return b.coldBoots.Load(), b.warmBoots.Load()
}
