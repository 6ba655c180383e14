// Command fwsim brings up a simulated board behind the platform dispatch
// layer: it builds a descriptor from a YAML board config (or defaults),
// walks the cold/warm boot sequence across every enabled hart, exercises the
// console, IPI, and timer hooks, and shuts the platform down.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tinyrange/fwplat/internal/board/virt"
	"github.com/tinyrange/fwplat/internal/conscreen"
	"github.com/tinyrange/fwplat/internal/platconf"
	"github.com/tinyrange/fwplat/platform"
	"golang.org/x/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fwsim: %v\n", err)
		os.Exit(1)
	}
}

// fixCrlf rewrites bare newlines for a terminal in raw mode.
type fixCrlf struct {
	w io.Writer
}

func (f *fixCrlf) Write(p []byte) (n int, err error) {
	var out []byte
	for _, b := range p {
		if b == '\n' {
			out = append(out, '\r', '\n')
			continue
		}
		out = append(out, b)
	}
	if _, err := f.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

func run() error {
	configPath := flag.String("config", "", "Board config YAML (default: a 4-hart virt board)")
	harts := flag.Uint("harts", 0, "Override the hart count")
	debug := flag.Bool("debug", false, "Enable debug logging")
	interactive := flag.Bool("interactive", false, "Attach the console to this terminal")
	snapshot := flag.Bool("snapshot", false, "Render the console to a virtual screen and print it on exit")
	dumpHeader := flag.Bool("dump-header", false, "Hex dump the descriptor wire header and exit")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	opts := virt.Options{Logger: slog.Default()}
	if *configPath != "" {
		cfg, err := platconf.Load(*configPath)
		if err != nil {
			return err
		}
		opts.Name = cfg.Name
		opts.HartCount = cfg.Harts
		opts.HartStackSize = cfg.StackSize
		opts.DisabledHarts = cfg.DisabledMask()
		opts.Features = cfg.FeatureSet()
		opts.TimerNsPerTick = cfg.TimerNsPerTick
		opts.PMPRegions = cfg.PMPRegions()
	} else {
		opts.HartCount = 4
	}
	if *harts != 0 {
		opts.HartCount = uint32(*harts)
	}

	// Console routing: interactive mode talks to the real terminal, the
	// default mode lands console lines in the structured log.
	var logWriter *conscreen.LogWriter
	if *interactive && term.IsTerminal(int(os.Stdin.Fd())) {
		oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("enable raw mode: %w", err)
		}
		defer func() { _ = term.Restore(int(os.Stdin.Fd()), oldState) }()

		opts.ConsoleOut = &fixCrlf{w: os.Stdout}
		opts.ConsoleIn = os.Stdin
	} else {
		*interactive = false
		logWriter = conscreen.NewLogWriter(slog.Default())
		opts.ConsoleOut = logWriter
	}

	var screen *conscreen.Screen
	if *snapshot {
		screen = conscreen.NewScreen(80, 25)
		defer screen.Close()
		// The screen wants CR before LF like a real terminal does.
		opts.ConsoleOut = io.MultiWriter(opts.ConsoleOut, &fixCrlf{w: screen})
	}

	board, err := virt.New(opts)
	if err != nil {
		return err
	}
	desc, err := platform.FromBoard(board)
	if err != nil {
		return err
	}

	if *dumpHeader {
		fmt.Print(hex.Dump(platform.AppendHeader(nil, desc.Header())))
		return nil
	}

	if err := bringUp(desc); err != nil {
		return err
	}

	banner(desc)
	ipiDemo(desc, board)
	timerDemo(desc)

	if *interactive {
		if err := consoleLoop(desc); err != nil {
			return err
		}
	}

	slog.Info("requesting shutdown")
	if st := desc.SystemShutdown(0); !st.OK() {
		return fmt.Errorf("shutdown: %v", st)
	}
	<-board.Done()
	kind, resetType := board.LastReset()
	slog.Info("platform down", "kind", kind.String(), "type", resetType)

	if logWriter != nil {
		logWriter.Flush()
	}
	if screen != nil {
		for _, line := range screen.Snapshot() {
			fmt.Println(line)
		}
	}
	return nil
}

// bringUp runs the boot sequence: full cold boot on hart 0, then warm boot
// on every other enabled hart.
func bringUp(desc *platform.Descriptor) error {
	if st := desc.EarlyInit(0, true); !st.OK() {
		return fmt.Errorf("early init: %v", st)
	}
	if st := desc.ConsoleInit(); !st.OK() {
		return fmt.Errorf("console init: %v", st)
	}
	if st := desc.IrqchipInit(0, true); !st.OK() {
		return fmt.Errorf("irqchip init: %v", st)
	}
	if st := desc.IPIInit(0, true); !st.OK() {
		return fmt.Errorf("ipi init: %v", st)
	}
	if st := desc.TimerInit(0, true); !st.OK() {
		return fmt.Errorf("timer init: %v", st)
	}
	if st := desc.FinalInit(0, true); !st.OK() {
		return fmt.Errorf("final init: %v", st)
	}

	for hart := uint32(1); hart < desc.HartCount(); hart++ {
		if desc.HartDisabled(hart) {
			slog.Info("skipping disabled hart", "hart", hart)
			continue
		}
		for _, step := range []struct {
			name string
			fn   func(uint32, bool) platform.Status
		}{
			{"early init", desc.EarlyInit},
			{"irqchip init", desc.IrqchipInit},
			{"ipi init", desc.IPIInit},
			{"timer init", desc.TimerInit},
			{"final init", desc.FinalInit},
		} {
			if st := step.fn(hart, false); !st.OK() {
				return fmt.Errorf("hart %d %s: %v", hart, step.name, st)
			}
		}
	}
	return nil
}

func consolePrint(desc *platform.Descriptor, s string) {
	for i := 0; i < len(s); i++ {
		desc.ConsolePutc(s[i])
	}
}

func banner(desc *platform.Descriptor) {
	consolePrint(desc, fmt.Sprintf("%s: %d harts, %d byte stacks\n",
		desc.Name(), desc.HartCount(), desc.HartStackSize()))
	consolePrint(desc, fmt.Sprintf("features: %v\n", desc.Features()))

	if desc.Implemented(platform.OpPMPRegionCount) {
		for hart := uint32(0); hart < desc.HartCount(); hart++ {
			count := desc.PMPRegionCount(hart)
			for index := uint32(0); index < count; index++ {
				region, st := desc.PMPRegionInfo(hart, index)
				if !st.OK() {
					continue
				}
				consolePrint(desc, fmt.Sprintf("hart %d pmp%d: prot=0x%x addr=0x%x size=2^%d\n",
					hart, index, region.Prot, region.Addr, region.Log2Size))
			}
		}
	}
}

// ipiDemo sends an IPI from hart 0 to the first other enabled hart and waits
// for the simulated target to acknowledge it.
func ipiDemo(desc *platform.Descriptor, board *virt.Board) {
	var target uint32
	for hart := uint32(1); hart < desc.HartCount(); hart++ {
		if !desc.HartDisabled(hart) {
			target = hart
			break
		}
	}
	if target == 0 {
		return
	}

	go func() {
		for {
			if _, ok := board.CLINT().IPIPending(target); ok {
				desc.IPIClear(target)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	start := time.Now()
	desc.IPIInject(target, 0)
	desc.IPISync(target, 0)
	slog.Info("ipi round trip", "target", target, "took", time.Since(start))
}

func timerDemo(desc *platform.Descriptor) {
	first := desc.TimerValue()
	time.Sleep(10 * time.Millisecond)
	second := desc.TimerValue()
	slog.Info("timer", "value", second, "ticks-per-10ms", second-first)

	desc.TimerEventStart(0, second+1000)
	desc.TimerEventStop(0)
}

// consoleLoop echoes console input until q or Ctrl-C.
func consoleLoop(desc *platform.Descriptor) error {
	consolePrint(desc, "console attached, q to quit\n")
	for {
		ch := desc.ConsoleGetc()
		switch ch {
		case 0:
			time.Sleep(5 * time.Millisecond)
		case 'q', 0x03:
			consolePrint(desc, "\n")
			return nil
		default:
			desc.ConsolePutc(ch)
		}
	}
}
