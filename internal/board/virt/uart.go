package virt

import (
	"io"
	"sync"

	"github.com/tinyrange/fwplat/platform"
)

// LSR bits (16550 compatible)
const (
	UARTLSRDataReady = 1 << 0 // Data ready
	UARTLSRTHREmpty  = 1 << 5 // Transmit holding register empty
	UARTLSRTxEmpty   = 1 << 6 // Transmitter empty
)

// UART models the console side of a 16550-style serial port: a transmit path
// into an io.Writer and a polled receive path from an io.Reader, with a line
// status register gating reads the way real firmware polls LSR.
type UART struct {
	out io.Writer
	in  io.Reader

	mu  sync.Mutex
	lsr uint8
	rx  []byte
	pos int
}

// NewUART creates a UART backed by the given streams. Either side may be nil
// for a transmit-only or receive-only console.
func NewUART(out io.Writer, in io.Reader) *UART {
	return &UART{
		out: out,
		in:  in,
		lsr: UARTLSRTHREmpty | UARTLSRTxEmpty,
	}
}

// Init resets the receive state.
func (u *UART) Init() platform.Status {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.lsr = UARTLSRTHREmpty | UARTLSRTxEmpty
	u.rx = u.rx[:0]
	u.pos = 0
	return platform.StatusOK
}

// Putc transmits one character. Write errors are dropped; the hook contract
// has no way to report them and a dead console must not stop the caller.
func (u *UART) Putc(ch byte) {
	if u.out == nil {
		return
	}
	_, _ = u.out.Write([]byte{ch})
}

// Getc returns the next received character, or NUL when no data is ready.
func (u *UART) Getc() byte {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pump()
	if u.lsr&UARTLSRDataReady == 0 {
		return 0
	}

	ch := u.rx[u.pos]
	u.pos++
	if u.pos >= len(u.rx) {
		u.rx = u.rx[:0]
		u.pos = 0
		u.lsr &^= UARTLSRDataReady
	}
	return ch
}

// pump moves any available input into the receive buffer. Callers hold u.mu.
func (u *UART) pump() {
	if u.in == nil || u.lsr&UARTLSRDataReady != 0 {
		return
	}
	buf := make([]byte, 64)
	n, _ := u.in.Read(buf)
	if n > 0 {
		u.rx = append(u.rx, buf[:n]...)
		u.lsr |= UARTLSRDataReady
	}
}
