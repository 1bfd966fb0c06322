// Package machine wires cpu, memory, ioport, and bdos together: it
// implements the CP/M bootstrap (spec.md §4.5) and the fetch-execute driver
// (spec.md §4.3) that ties a BDOS trap to every OUT to port 0.
package machine

import (
	"fmt"
	"io"

	"github.com/bcallahan/i8080cpm/bdos"
	"github.com/bcallahan/i8080cpm/cpu"
	"github.com/bcallahan/i8080cpm/disassemble"
	"github.com/bcallahan/i8080cpm/ioport"
	"github.com/bcallahan/i8080cpm/memory"
)

// tpaOrigin is the CP/M transient program area load address, 0x0100.
const tpaOrigin = 0x0100

// ImageTooLarge is returned by New when the program image cannot fit below
// the top of the 64 KiB address space starting at tpaOrigin. Rather than
// truncating silently, New reports this so a CLI can log.Fatalf with a
// useful message; memory.LoadAt's own silent truncation is reserved for
// internal callers (such as tests) that already know an image is safe.
type ImageTooLarge struct {
	Size int
}

func (e ImageTooLarge) Error() string {
	return fmt.Sprintf("program image is %d bytes, too large to load at 0x%04X", e.Size, tpaOrigin)
}

// Machine is a fully wired i8080/Z80 core plus its CP/M BDOS shim.
type Machine struct {
	CPU   *cpu.Chip
	RAM   memory.Ram
	Ports *ioport.File
	bdos  *bdos.Dispatcher
}

// New bootstraps a Machine: it zeros RAM and the port file, writes the
// HLT-at-0x0000 safety net and the CALL 0x0005 trampoline (OUT 0 ; RET),
// loads image at 0x0100, and sets PC=0x0100, SP=0x0000, per spec.md §4.5.
func New(variant cpu.Variant, image []uint8, con bdos.Console) (*Machine, error) {
	if len(image) > memory.Size-tpaOrigin {
		return nil, ImageTooLarge{Size: len(image)}
	}

	ram := memory.New()
	ports := ioport.New()
	c := cpu.New(variant, ram, ports)

	ram.Write(0x0000, 0x76)       // HLT: the safety net a stray RET eventually lands on.
	ram.Write(0x0005, 0xd3)       // OUT 0x00 ; RET is the CALL 0x0005 BDOS trampoline.
	ram.Write(0x0006, 0x00)
	ram.Write(0x0007, 0xc9)
	memory.LoadAt(ram, tpaOrigin, image)

	c.PC = tpaOrigin
	c.SP = 0x0000

	return &Machine{CPU: c, RAM: ram, Ports: ports, bdos: bdos.NewDispatcher(con)}, nil
}

// Run drives the fetch-execute loop until the guest executes HLT or BDOS
// function 0 (P_TERMCPM). If trace is non-nil, one disassembled line is
// written to it before each instruction executes, per spec.md §6's --trace
// flag; trace is purely a debug aid and never affects guest-visible state.
func (m *Machine) Run(trace io.Writer) error {
	for {
		if trace != nil {
			text, _ := disassemble.Step(m.CPU.PC, m.RAM)
			fmt.Fprintf(trace, "%04X  %s\n", m.CPU.PC, text)
		}

		op := m.CPU.Fetch()
		if m.CPU.Execute(op) == cpu.Halted {
			return nil
		}

		if m.Ports.LastPort() == 0 {
			terminated := m.bdos.Trap(m.CPU, m.RAM)
			m.Ports.ClearLastPort()
			if terminated {
				return nil
			}
		}
	}
}

// Step runs exactly one fetch-execute cycle (including any BDOS trap it
// triggers) and reports whether the machine should keep running. It exists
// so tests can drive the machine one instruction at a time without
// duplicating Run's trap-handling logic.
func (m *Machine) Step() (running bool) {
	op := m.CPU.Fetch()
	if m.CPU.Execute(op) == cpu.Halted {
		return false
	}
	if m.Ports.LastPort() == 0 {
		terminated := m.bdos.Trap(m.CPU, m.RAM)
		m.Ports.ClearLastPort()
		if terminated {
			return false
		}
	}
	return true
}
