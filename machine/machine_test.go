package machine

import (
	"bytes"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/bcallahan/i8080cpm/cpu"
)

// nullConsole reports end of input on every read, records normal output in
// out, and discards error output; most scenario tests below never touch
// BDOS I/O, so this keeps them self contained.
type nullConsole struct{ out bytes.Buffer }

func (n *nullConsole) ReadByte() (uint8, bool)   { return 0, true }
func (n *nullConsole) PollByte() (uint8, bool)   { return 0, false }
func (n *nullConsole) WriteByte(b uint8)         { n.out.WriteByte(b) }
func (n *nullConsole) WriteErrByte(b uint8)      {}

// TestBootstrapLayout confirms the HLT safety net and CALL 0x0005
// trampoline bytes land exactly where spec.md §4.5 requires, and that the
// CPU starts at the CP/M TPA origin with an empty stack.
func TestBootstrapLayout(t *testing.T) {
	con := &nullConsole{}
	m, err := New(cpu.I8080, nil, con)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := map[uint16]uint8{0x0000: 0x76, 0x0005: 0xd3, 0x0006: 0x00, 0x0007: 0xc9}
	for addr, expect := range want {
		if got := m.RAM.Read(addr); got != expect {
			t.Errorf("RAM[%#04x] = %#02x, want %#02x", addr, got, expect)
		}
	}
	if m.CPU.PC != 0x0100 || m.CPU.SP != 0 {
		t.Errorf("unexpected bootstrap CPU state: %s", spew.Sdump(m.CPU))
	}
}

// TestHaltAfterRunawayRET is concrete scenario 1: MVI A,0x2A ; RET with an
// empty stack. The first RET pops a return address built out of the
// trampoline's own HLT byte at 0x0000 and a following zero, landing PC at
// 0x0076 and walking NOPs in zeroed RAM up to 0x0100, where the loaded
// MVI/RET pair runs a second time; that second RET pops an all-zero address
// and finally halts on the bootstrap HLT at 0x0000, with A left holding the
// value the program set.
func TestHaltAfterRunawayRET(t *testing.T) {
	con := &nullConsole{}
	image := []uint8{0x3e, 0x2a, 0xc9} // MVI A,0x2A ; RET
	m, err := New(cpu.I8080, image, con)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	const maxSteps = 1 << 18
	steps := 0
	for m.Step() {
		steps++
		if steps > maxSteps {
			t.Fatalf("machine did not halt within %d steps: %s", maxSteps, spew.Sdump(m.CPU))
		}
	}
	if m.CPU.A != 0x2a {
		t.Errorf("A = %#02x after halt, want 0x2a", m.CPU.A)
	}
	if m.CPU.PC != 0x0001 {
		t.Errorf("PC after halting on the bootstrap HLT = %#04x, want 0x0001 (post-increment past 0x0000)", m.CPU.PC)
	}
}

// TestCWriteReachesConsole is concrete scenario 2 in spirit: a program that
// issues a single C_WRITE BDOS call (function 2) through the CALL 0x0005
// trampoline should deliver the character to the console and then halt.
func TestCWriteReachesConsole(t *testing.T) {
	con := &nullConsole{}
	image := []uint8{
		0x0e, 0x02, // MVI C,2 (C_WRITE)
		0x1e, 'H', // MVI E,'H'
		0xcd, 0x05, 0x00, // CALL 0x0005
		0x76, // HLT
	}
	m, err := New(cpu.I8080, image, con)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for m.Step() {
	}
	if con.out.String() != "H" {
		t.Errorf("console received %q, want %q", con.out.String(), "H")
	}
}

// TestPTermCPMStopsWithoutHalt is concrete scenario 3 in spirit: BDOS
// function 0 (P_TERMCPM) ends the run loop even though the guest never
// executed a HLT opcode.
func TestPTermCPMStopsWithoutHalt(t *testing.T) {
	con := &nullConsole{}
	image := []uint8{
		0x0e, 0x00, // MVI C,0 (P_TERMCPM)
		0xcd, 0x05, 0x00, // CALL 0x0005
		0x3e, 0xff, // MVI A,0xff -- should never execute
	}
	m, err := New(cpu.I8080, image, con)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for m.Step() {
	}
	if m.CPU.A == 0xff {
		t.Errorf("execution continued past P_TERMCPM: A = %#02x", m.CPU.A)
	}
}

func TestImageTooLargeIsRejected(t *testing.T) {
	con := &nullConsole{}
	big := make([]uint8, 70000)
	if _, err := New(cpu.I8080, big, con); err == nil {
		t.Fatalf("expected ImageTooLarge error for a 70000 byte image")
	}
}

func TestTraceWritesOneLinePerInstruction(t *testing.T) {
	con := &nullConsole{}
	image := []uint8{0x00, 0x76} // NOP ; HLT
	m, err := New(cpu.I8080, image, con)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var trace bytes.Buffer
	if err := m.Run(&trace); err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines := bytes.Count(trace.Bytes(), []byte("\n"))
	if lines != 2 {
		t.Errorf("trace had %d lines, want 2 (NOP, HLT)", lines)
	}
}
