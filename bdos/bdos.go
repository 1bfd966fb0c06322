// Package bdos implements the minimal CP/M 2.2 BDOS function set this
// emulator traps via the CALL 0x0005 trampoline (spec.md §4.4). Only the
// console/character functions are implemented; every disk/file function is
// explicitly out of scope (spec.md Non-goals) and falls through as a no-op,
// mirroring original_source/i80.c's BDOS switch, which has no default case.
package bdos

import (
	"github.com/bcallahan/i8080cpm/cpu"
	"github.com/bcallahan/i8080cpm/memory"
)

// BDOS function codes, passed to Trap in register C. Named after the
// standard CP/M 2.2 function mnemonics.
const (
	PTermCPM  = 0
	CRead     = 1
	CWrite    = 2
	ARead     = 3
	AWrite    = 4
	LWrite    = 5
	CRawIO    = 6
	GetIOByte = 7
	SetIOByte = 8
	CWriteStr = 9
	CReadStr  = 10
	SBDOSVer  = 12
	DrvGet    = 25
)

// Console is the host collaborator the BDOS trap layer talks to: the
// terminal a CP/M guest program reads from and writes to. ReadByte blocks
// until a byte is available (function 1, 3, 10), reporting eof=true instead
// if the input stream has closed — distinct from a literal 0x00 byte, so
// callers like readStr can tell a genuine end-of-input apart from a null
// character typed into the buffer. PollByte never blocks, reporting
// ok=false immediately if nothing is waiting yet (function 6 with E=0xFF,
// the CP/M "direct console I/O" poll). WriteByte writes to the console's
// normal output (function 2, C_WRITE); WriteErrByte writes to its error
// output (functions 4 and 5, A_WRITE/L_WRITE, which spec.md §4.4 routes
// separately from C_WRITE since there is no real auxiliary or list device
// to send them to). Neither write call blocks.
type Console interface {
	ReadByte() (b uint8, eof bool)
	PollByte() (b uint8, ok bool)
	WriteByte(b uint8)
	WriteErrByte(b uint8)
}

// Dispatcher holds the small amount of state a BDOS call sequence needs
// across calls: the CP/M IOBYTE (functions 7/8 get/set it, nothing else in
// this emulator consults it; it exists purely so guest programs that probe
// it get a stable answer instead of undefined behavior).
type Dispatcher struct {
	Console Console
	ioByte  uint8
}

// NewDispatcher returns a Dispatcher backed by con.
func NewDispatcher(con Console) *Dispatcher {
	return &Dispatcher{Console: con}
}

// Trap services one BDOS call: c.C selects the function, parameters arrive
// in DE (or E alone for single-byte functions), and most functions return
// their result in A. Trap reports terminated=true for function 0
// (P_TERMCPM), the signal that the guest program has asked to return to the
// (nonexistent) CCP — the machine package's fetch-execute loop stops when it
// sees this rather than trying to emulate a warm boot.
func (d *Dispatcher) Trap(c *cpu.Chip, ram memory.Ram) (terminated bool) {
	switch c.C {
	case PTermCPM:
		return true
	case CRead:
		b, eof := d.Console.ReadByte()
		if eof {
			c.A = 0x1a // CP/M end-of-file marker (^Z)
			break
		}
		d.Console.WriteByte(b)
		c.A = b
	case CWrite:
		d.Console.WriteByte(c.E)
	case ARead:
		// No auxiliary device is modeled; fall back to the console, the
		// same choice original_source/i80.c makes.
		if b, eof := d.Console.ReadByte(); eof {
			c.A = 0x1a
		} else {
			c.A = b
		}
	case AWrite, LWrite:
		// Neither an auxiliary nor a list device is modeled; spec.md §4.4
		// routes both through the console's error output rather than
		// C_WRITE's normal output, so guest diagnostics land on stderr
		// instead of mixing into program output.
		d.Console.WriteErrByte(c.E)
	case CRawIO:
		d.rawIO(c)
	case GetIOByte:
		c.A = d.ioByte
	case SetIOByte:
		d.ioByte = c.E
	case CWriteStr:
		d.writeStr(c, ram)
	case CReadStr:
		d.readStr(c, ram)
	case SBDOSVer:
		c.H, c.L = 0x00, 0x22
		c.B, c.A = 0x00, c.L
	case DrvGet:
		c.A = 0
	}
	return false
}

// rawIO implements function 6, C_RAWIO: E=0xFF polls for an input byte
// without blocking (0 if none is waiting); any other E value is a byte to
// write to the console, exactly as CP/M's "direct console I/O" call is
// documented.
func (d *Dispatcher) rawIO(c *cpu.Chip) {
	if c.E == 0xFF {
		if b, ok := d.Console.PollByte(); ok {
			c.A = b
		} else {
			c.A = 0
		}
		return
	}
	d.Console.WriteByte(c.E)
}

// writeStr implements function 9, C_WRITESTR: write the $-terminated string
// at DE to the console. The terminator itself is not written.
func (d *Dispatcher) writeStr(c *cpu.Chip, ram memory.Ram) {
	addr := c.DE()
	for {
		ch := ram.Read(addr)
		if ch == '$' {
			return
		}
		d.Console.WriteByte(ch)
		addr++
	}
}

// readStr implements function 10, C_READSTR: a buffered line read into the
// CP/M console-buffer layout (byte 0: caller-supplied max length, byte 1:
// filled-in count, bytes 2.. : data). spec.md §9 flags
// original_source/i80.c's own bounds arithmetic here as ambiguous and
// resolves it as "store only if remaining capacity exists" — so storage is
// gated on a count of characters actually stored against size directly,
// not on a copy of i80.c's address arithmetic. An EOF from the console
// (stdin closed) is treated the same as a terminating '\r', per spec.md
// §4.4, so this loop terminates instead of spinning forever once input
// runs out.
func (d *Dispatcher) readStr(c *cpu.Chip, ram memory.Ram) {
	save := c.DE()
	size := ram.Read(save)
	addr := save + 2
	var stored uint8
	for {
		ch, eof := d.Console.ReadByte()
		if eof || ch == '\r' || ch == '\n' {
			break
		}
		if stored < size {
			ram.Write(addr, ch)
			addr++
			stored++
		}
		d.Console.WriteByte(ch)
	}
	ram.Write(save+1, stored)
}
