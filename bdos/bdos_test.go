package bdos

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/bcallahan/i8080cpm/cpu"
	"github.com/bcallahan/i8080cpm/memory"
)

// fakeConsole is an in-memory Console double: input is drained from a
// preloaded queue, output is appended to a buffer, matching the teacher's
// habit of hand-rolled interface fakes (pia6532's test harness) rather than
// a mocking framework.
type fakeConsole struct {
	in     []uint8
	out    []uint8
	errOut []uint8
}

func (f *fakeConsole) ReadByte() (uint8, bool) {
	if len(f.in) == 0 {
		return 0, true
	}
	b := f.in[0]
	f.in = f.in[1:]
	return b, false
}

func (f *fakeConsole) PollByte() (uint8, bool) {
	if len(f.in) == 0 {
		return 0, false
	}
	b := f.in[0]
	f.in = f.in[1:]
	return b, true
}

func (f *fakeConsole) WriteByte(b uint8) {
	f.out = append(f.out, b)
}

func (f *fakeConsole) WriteErrByte(b uint8) {
	f.errOut = append(f.errOut, b)
}

func TestCWriteEchoesE(t *testing.T) {
	con := &fakeConsole{}
	d := NewDispatcher(con)
	ram := memory.New()
	c := cpu.New(cpu.I8080, ram, nil)
	c.C = CWrite
	c.E = 'X'

	if term := d.Trap(c, ram); term {
		t.Fatalf("C_WRITE must not terminate")
	}
	if string(con.out) != "X" {
		t.Errorf("C_WRITE wrote %q, want %q", con.out, "X")
	}
}

func TestCReadEchoesAndReturnsInA(t *testing.T) {
	con := &fakeConsole{in: []uint8{'q'}}
	d := NewDispatcher(con)
	ram := memory.New()
	c := cpu.New(cpu.I8080, ram, nil)
	c.C = CRead

	d.Trap(c, ram)
	if c.A != 'q' {
		t.Errorf("C_READ left A=%#x, want 'q'", c.A)
	}
	if string(con.out) != "q" {
		t.Errorf("C_READ should echo the character read, got %q", con.out)
	}
}

func TestPTermCPMTerminates(t *testing.T) {
	con := &fakeConsole{}
	d := NewDispatcher(con)
	ram := memory.New()
	c := cpu.New(cpu.I8080, ram, nil)
	c.C = PTermCPM

	if term := d.Trap(c, ram); !term {
		t.Fatalf("P_TERMCPM must report terminated=true")
	}
}

func TestUnknownFunctionIsANoOp(t *testing.T) {
	con := &fakeConsole{}
	d := NewDispatcher(con)
	ram := memory.New()
	c := cpu.New(cpu.I8080, ram, nil)
	c.C = 200 // not a defined function code
	c.A = 0x55

	if term := d.Trap(c, ram); term {
		t.Fatalf("unknown function must not terminate")
	}
	if c.A != 0x55 {
		t.Errorf("unknown function must leave A untouched, got %#x: %s", c.A, spew.Sdump(c))
	}
}

func TestCWriteStrStopsAtDollar(t *testing.T) {
	con := &fakeConsole{}
	d := NewDispatcher(con)
	ram := memory.New()
	msg := append([]uint8("hi there"), '$', 'X')
	memory.LoadAt(ram, 0x200, msg)
	c := cpu.New(cpu.I8080, ram, nil)
	c.C = CWriteStr
	c.D, c.E = 0x02, 0x00

	d.Trap(c, ram)
	if string(con.out) != "hi there" {
		t.Errorf("C_WRITESTR wrote %q, want %q", con.out, "hi there")
	}
}

func TestCReadStrFillsBufferAndCount(t *testing.T) {
	con := &fakeConsole{in: []uint8("hello\r")}
	d := NewDispatcher(con)
	ram := memory.New()
	ram.Write(0x300, 10) // max length byte
	c := cpu.New(cpu.I8080, ram, nil)
	c.C = CReadStr
	c.D, c.E = 0x03, 0x00

	d.Trap(c, ram)

	count := ram.Read(0x301)
	if count != 5 {
		t.Errorf("C_READSTR count = %d, want 5", count)
	}
	for i, want := range []uint8("hello") {
		got := ram.Read(0x302 + uint16(i))
		if got != want {
			t.Errorf("C_READSTR buffer[%d] = %q, want %q", i, got, want)
		}
	}
	if string(con.out) != "hello" {
		t.Errorf("C_READSTR should echo every character read, got %q", con.out)
	}
}

func TestCReadStrStopsAtDeclaredSize(t *testing.T) {
	con := &fakeConsole{in: []uint8("abcdefghij\r")}
	d := NewDispatcher(con)
	ram := memory.New()
	ram.Write(0x300, 5) // max length byte, smaller than the typed input
	c := cpu.New(cpu.I8080, ram, nil)
	c.C = CReadStr
	c.D, c.E = 0x03, 0x00

	d.Trap(c, ram)

	count := ram.Read(0x301)
	if count != 5 {
		t.Errorf("C_READSTR count = %d, want 5 (capped at declared size)", count)
	}
	for i, want := range []uint8("abcde") {
		got := ram.Read(0x302 + uint16(i))
		if got != want {
			t.Errorf("C_READSTR buffer[%d] = %q, want %q", i, got, want)
		}
	}
	// Every typed character is still echoed, even past the buffer's capacity.
	if string(con.out) != "abcdefghij" {
		t.Errorf("C_READSTR echo = %q, want every typed character echoed", con.out)
	}
}

func TestCReadStrEOFTerminatesLikeCR(t *testing.T) {
	con := &fakeConsole{in: []uint8("hi")} // no terminator; input just ends
	d := NewDispatcher(con)
	ram := memory.New()
	ram.Write(0x300, 10)
	c := cpu.New(cpu.I8080, ram, nil)
	c.C = CReadStr
	c.D, c.E = 0x03, 0x00

	d.Trap(c, ram)

	if count := ram.Read(0x301); count != 2 {
		t.Errorf("C_READSTR count = %d, want 2 (EOF treated as terminator)", count)
	}
}

func TestAWriteAndLWriteGoToErrorOutput(t *testing.T) {
	con := &fakeConsole{}
	d := NewDispatcher(con)
	ram := memory.New()
	c := cpu.New(cpu.I8080, ram, nil)

	c.C, c.E = AWrite, 'A'
	d.Trap(c, ram)
	c.C, c.E = LWrite, 'L'
	d.Trap(c, ram)

	if string(con.errOut) != "AL" {
		t.Errorf("A_WRITE/L_WRITE errOut = %q, want %q", con.errOut, "AL")
	}
	if len(con.out) != 0 {
		t.Errorf("A_WRITE/L_WRITE must not touch normal output, got %q", con.out)
	}
}

func TestSBDOSVerSetsVersion(t *testing.T) {
	con := &fakeConsole{}
	d := NewDispatcher(con)
	ram := memory.New()
	c := cpu.New(cpu.I8080, ram, nil)
	c.C = SBDOSVer

	d.Trap(c, ram)
	if c.H != 0x00 || c.L != 0x22 {
		t.Errorf("S_BDOSVER left HL=%02x%02x, want 0022", c.H, c.L)
	}
}
