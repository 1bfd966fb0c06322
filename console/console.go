// Package console implements bdos.Console against a real host terminal: raw
// mode stdin so CP/M's character-at-a-time console calls see keystrokes
// without waiting for a line to be buffered by the OS, and a background
// reader goroutine so BDOS function 6's non-blocking poll (E=0xFF) can
// genuinely return immediately when nothing has been typed yet.
package console

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Host is a bdos.Console backed by an *os.File put into raw mode (normally
// os.Stdin), an io.Writer for normal output (normally os.Stdout), and a
// second io.Writer for error output (normally os.Stderr) that BDOS functions
// 4 and 5 (A_WRITE, L_WRITE) write through instead.
type Host struct {
	out    io.Writer
	errOut io.Writer
	in     chan uint8
}

// New puts stdin into raw mode and starts the background reader goroutine.
// It returns the Host plus a restore function the caller must defer-call to
// put the terminal back into its original (cooked) mode on exit — this
// mirrors the teacher's pattern of a paired setup/teardown rather than a
// finalizer, since there is no way to guarantee a finalizer runs before
// process exit.
func New(stdin *os.File, out, errOut io.Writer) (*Host, func(), error) {
	fd := int(stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, err
	}

	h := &Host{out: out, errOut: errOut, in: make(chan uint8, 256)}
	go h.pump(stdin)

	restore := func() {
		term.Restore(fd, state)
	}
	return h, restore, nil
}

func (h *Host) pump(r io.Reader) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.in <- buf[0]
		}
		if err != nil {
			close(h.in)
			return
		}
	}
}

// ReadByte blocks until a byte is available from the terminal, or reports
// eof=true if the input stream has closed (stdin hit EOF) — distinct from a
// literal 0x00 byte, which the closed channel's zero value would otherwise
// be indistinguishable from.
func (h *Host) ReadByte() (b uint8, eof bool) {
	b, ok := <-h.in
	if !ok {
		return 0, true
	}
	return b, false
}

// PollByte never blocks: it reports ok=false immediately if the background
// reader has nothing buffered yet.
func (h *Host) PollByte() (uint8, bool) {
	select {
	case b, ok := <-h.in:
		if !ok {
			return 0, false
		}
		return b, true
	default:
		return 0, false
	}
}

// WriteByte writes b straight to the terminal. Raw mode leaves newline
// translation off, so callers that want a CRLF for '\n' must write both
// bytes themselves; this emulator's guest programs are CP/M binaries that
// already emit '\r' '\n' pairs the way CP/M console output expects.
func (h *Host) WriteByte(b uint8) {
	h.out.Write([]byte{b})
}

// WriteErrByte writes b to the host's error output, used by BDOS functions 4
// and 5 (A_WRITE, L_WRITE) so those diagnostics land separately from normal
// console output (function 2, C_WRITE) per spec.md §4.4.
func (h *Host) WriteErrByte(b uint8) {
	h.errOut.Write([]byte{b})
}
