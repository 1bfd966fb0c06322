// Package disassemble renders i8080/Z80 opcodes as mnemonic text for the
// `--trace` CLI flag. It mirrors the teacher's disassemble package contract:
// Step consumes one instruction at pc and reports how many bytes it took.
package disassemble

import (
	"fmt"

	"github.com/bcallahan/i8080cpm/memory"
)

var regNames = [8]string{"B", "C", "D", "E", "H", "L", "M", "A"}
var rpNames = [4]string{"B", "D", "H", "SP"}
var rpPushNames = [4]string{"B", "D", "H", "PSW"}
var condNames = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
var aluNames = [8]string{"ADD", "ADC", "SUB", "SBB", "ANA", "XRA", "ORA", "CMP"}
var aluImmNames = [8]string{"ADI", "ACI", "SUI", "SBI", "ANI", "XRI", "ORI", "CPI"}

// Step disassembles the instruction at pc and returns its mnemonic text plus
// the number of bytes it occupies (1, 2, or 3). It never mutates ram or pc;
// callers advance their own program counter by the returned length.
func Step(pc uint16, ram memory.Ram) (string, int) {
	op := ram.Read(pc)

	switch {
	case op == 0x76:
		return "HLT", 1
	case op <= 0x3f:
		return group00(op, pc, ram)
	case op <= 0x7f:
		dst, src := regNames[(op>>3)&0x7], regNames[op&0x7]
		return fmt.Sprintf("MOV %s,%s", dst, src), 1
	case op <= 0xbf:
		return fmt.Sprintf("%s %s", aluNames[(op>>3)&0x7], regNames[op&0x7]), 1
	default:
		return group11(op, pc, ram)
	}
}

func group00(op uint8, pc uint16, ram memory.Ram) (string, int) {
	switch op & 0x7 {
	case 0:
		if op == 0x08 {
			return "EX AF,AF'", 1
		}
		return "NOP", 1
	case 1:
		rp := rpNames[(op>>4)&0x3]
		if op&0x08 == 0 {
			return fmt.Sprintf("LXI %s,%04X", rp, imm16(pc, ram)), 3
		}
		return fmt.Sprintf("DAD %s", rp), 1
	case 2:
		switch (op >> 4) & 0x3 {
		case 0:
			if op&0x08 == 0 {
				return "STAX B", 1
			}
			return "LDAX B", 1
		case 1:
			if op&0x08 == 0 {
				return "STAX D", 1
			}
			return "LDAX D", 1
		case 2:
			if op&0x08 == 0 {
				return fmt.Sprintf("SHLD %04X", imm16(pc, ram)), 3
			}
			return fmt.Sprintf("LHLD %04X", imm16(pc, ram)), 3
		default:
			if op&0x08 == 0 {
				return fmt.Sprintf("STA %04X", imm16(pc, ram)), 3
			}
			return fmt.Sprintf("LDA %04X", imm16(pc, ram)), 3
		}
	case 3:
		rp := rpNames[(op>>4)&0x3]
		if op&0x08 == 0 {
			return fmt.Sprintf("INX %s", rp), 1
		}
		return fmt.Sprintf("DCX %s", rp), 1
	case 4:
		return fmt.Sprintf("INR %s", regNames[(op>>3)&0x7]), 1
	case 5:
		return fmt.Sprintf("DCR %s", regNames[(op>>3)&0x7]), 1
	case 6:
		return fmt.Sprintf("MVI %s,%02X", regNames[(op>>3)&0x7], imm8(pc, ram)), 2
	default: // case 7
		names := [8]string{"RLC", "RRC", "RAL", "RAR", "DAA", "CMA", "STC", "CMC"}
		return names[(op>>3)&0x7], 1
	}
}

func group11(op uint8, pc uint16, ram memory.Ram) (string, int) {
	switch op {
	case 0xc3, 0xcb:
		return fmt.Sprintf("JMP %04X", imm16(pc, ram)), 3
	case 0xc9:
		return "RET", 1
	case 0xd9:
		return "EXX", 1
	case 0xcd, 0xdd, 0xed, 0xfd:
		return fmt.Sprintf("CALL %04X", imm16(pc, ram)), 3
	case 0xd3:
		return fmt.Sprintf("OUT %02X", imm8(pc, ram)), 2
	case 0xdb:
		return fmt.Sprintf("IN %02X", imm8(pc, ram)), 2
	case 0xe3:
		return "XTHL", 1
	case 0xe9:
		return "PCHL", 1
	case 0xeb:
		return "XCHG", 1
	case 0xf3:
		return "DI", 1
	case 0xf9:
		return "SPHL", 1
	case 0xfb:
		return "EI", 1
	}

	switch op & 0x7 {
	case 0:
		return fmt.Sprintf("R%s", condNames[(op>>3)&0x7]), 1
	case 1:
		rp := (op >> 4) & 0x3
		return fmt.Sprintf("POP %s", rpPushNames[rp]), 1
	case 2:
		return fmt.Sprintf("J%s %04X", condNames[(op>>3)&0x7], imm16(pc, ram)), 3
	case 4:
		return fmt.Sprintf("C%s %04X", condNames[(op>>3)&0x7], imm16(pc, ram)), 3
	case 5:
		rp := (op >> 4) & 0x3
		return fmt.Sprintf("PUSH %s", rpPushNames[rp]), 1
	case 6:
		return fmt.Sprintf("%s %02X", aluImmNames[(op>>3)&0x7], imm8(pc, ram)), 2
	default: // case 7
		return fmt.Sprintf("RST %d", (op>>3)&0x7), 1
	}
}

func imm8(pc uint16, ram memory.Ram) uint8 {
	return ram.Read(pc + 1)
}

func imm16(pc uint16, ram memory.Ram) uint16 {
	lo := ram.Read(pc + 1)
	hi := ram.Read(pc + 2)
	return uint16(hi)<<8 | uint16(lo)
}
