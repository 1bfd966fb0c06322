// Package cpu implements the i8080 instruction set (with a minimal Z80
// extension variant) as described by the public 8080/Z80 programming
// references: a flat register file, five architecturally visible flag bits,
// and a 256-entry opcode dispatch that operates on an external Ram and an
// external port File.
package cpu

import (
	"fmt"

	"github.com/bcallahan/i8080cpm/ioport"
	"github.com/bcallahan/i8080cpm/memory"
)

// Variant selects which of the two opcode contracts govern 0x08 and 0xD9,
// the only two opcodes whose meaning differs between the base i8080 and the
// minimal Z80 extension this core supports (spec.md §4.2).
type Variant int

const (
	// I8080 is the stock Intel 8080 contract: 0x08 and 0xD9 are aliases of
	// NOP and RET respectively.
	I8080 Variant = iota
	// Z80 adds EX AF,AF' at 0x08 and EXX at 0xD9, plus the shadow register
	// set those two instructions swap against.
	Z80
)

// State is the result of executing a single opcode.
type State int

const (
	// Running indicates the processor should continue fetching.
	Running State = iota
	// Halted indicates a HLT opcode has executed; no further opcodes
	// should be dispatched to this Chip without a fresh PowerOn.
	Halted
)

// Flags holds the five architecturally visible i8080 flag bits. The three
// constant-valued PSW slots (two reserved-zero bits and one reserved-one
// bit) are not stored as fields: nothing in the instruction set ever reads
// or writes them except through the packed PSW byte, so PackPSW/UnpackPSW
// fold the constants in directly. This satisfies spec.md §3's PSW
// round-trip invariant without carrying dead state (see design note in
// DESIGN.md under "PSW reserved bits").
type Flags struct {
	S  bool // Sign: copy of bit 7 of the last flag-affecting result.
	Z  bool // Zero: set iff that result was 0.
	AC bool // Auxiliary carry: carry from bit 3 to bit 4.
	P  bool // Parity: set iff the result byte has even parity.
	CY bool // Carry: carry/borrow out of bit 7.
}

// PackPSW returns the 8 bit Program Status Word byte: S Z 0 AC 0 P 1 CY from
// bit 7 down to bit 0, per spec.md §3.
func (f Flags) PackPSW(a uint8) uint8 {
	var b uint8
	if f.S {
		b |= 0x80
	}
	if f.Z {
		b |= 0x40
	}
	if f.AC {
		b |= 0x10
	}
	if f.P {
		b |= 0x04
	}
	b |= 0x02 // reserved-one slot
	if f.CY {
		b |= 0x01
	}
	return b
}

// UnpackPSW reconstructs Flags from a packed PSW byte. Reserved bits in b are
// ignored; PackPSW always regenerates their constant values on the next push.
func UnpackPSW(b uint8) Flags {
	return Flags{
		S:  b&0x80 != 0,
		Z:  b&0x40 != 0,
		AC: b&0x10 != 0,
		P:  b&0x04 != 0,
		CY: b&0x01 != 0,
	}
}

// Chip is the complete state of one i8080/Z80 core: the primary register
// file and flags, the Z80 shadow bank (unused but harmless on an I8080
// Variant chip), the program counter and stack pointer, the interrupt-enable
// latch, and references to the backing Ram and port File it executes
// against.
type Chip struct {
	A, B, C, D, E, H, L uint8
	Flags               Flags

	// Shadow bank, swapped in bulk by EX AF,AF' and EXX on a Z80 Variant
	// chip. Present unconditionally (rather than behind a pointer or a
	// second type) since it costs seven bytes and five bools and keeping
	// a single Chip type avoids an interface split between the two
	// variants for no behavioral benefit.
	APrime, BPrime, CPrime, DPrime, EPrime, HPrime, LPrime uint8
	FlagsPrime                                             Flags

	SP, PC uint16
	IE     bool

	Variant Variant

	ram   memory.Ram
	ports *ioport.File
}

// InvalidOpcode describes an opcode value outside 0..255. Go's uint8
// parameter type already excludes that, and nothing in this package returns
// it: Execute reports only a State, since spec.md §4.2/§4.7 are explicit
// that the opcode table itself is total and has no illegal instruction.
type InvalidOpcode struct {
	Opcode uint8
}

func (e InvalidOpcode) Error() string {
	return fmt.Sprintf("invalid opcode 0x%02X", e.Opcode)
}

// New returns a powered-on Chip of the given Variant, wired to ram and
// ports. Both ram and ports are expected to already be zeroed/bootstrapped
// by the caller (see the machine package); New only resets the Chip's own
// registers and flags.
func New(variant Variant, ram memory.Ram, ports *ioport.File) *Chip {
	c := &Chip{
		Variant: variant,
		ram:     ram,
		ports:   ports,
	}
	c.PowerOn()
	return c
}

// PowerOn resets every register, flag, and the shadow bank to the i8080
// reset state: all general registers zero, SP and PC zero, interrupts
// disabled, and flags Z=1 P=1 with every other bit clear. This matches
// original_source/i80.c's reset() (carried into the Z80 variant as well,
// since the Z80 extension this spec models touches only the two swap
// opcodes, not reset behavior).
func (c *Chip) PowerOn() {
	c.A, c.B, c.C, c.D, c.E, c.H, c.L = 0, 0, 0, 0, 0, 0, 0
	c.APrime, c.BPrime, c.CPrime, c.DPrime, c.EPrime, c.HPrime, c.LPrime = 0, 0, 0, 0, 0, 0, 0
	c.Flags = Flags{Z: true, P: true}
	c.FlagsPrime = Flags{Z: true, P: true}
	c.SP = 0
	c.PC = 0
	c.IE = false
}

// Fetch reads the byte at PC and post-increments PC modulo 65536, per
// spec.md §4.2/§4.3. Every opcode and operand byte passes through Fetch.
func (c *Chip) Fetch() uint8 {
	b := c.ram.Read(c.PC)
	c.PC++
	return b
}

// Fetch16 reads two little-endian bytes starting at PC, post-incrementing
// PC by one for each, and returns them combined as (high<<8)|low.
func (c *Chip) Fetch16() uint16 {
	lo := c.Fetch()
	hi := c.Fetch()
	return uint16(hi)<<8 | uint16(lo)
}

// Execute runs a single already-fetched opcode and reports whether the
// processor is still running or has halted. See execute.go for the opcode
// dispatch itself.
func (c *Chip) Execute(op uint8) State {
	return c.dispatch(op)
}
