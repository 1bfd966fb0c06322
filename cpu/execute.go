package cpu

// Condition codes used by conditional RET/JMP/CALL, encoded in bits 5-3 of
// the opcode exactly as the i8080 ISA defines them.
const (
	condNZ uint8 = 0
	condZ  uint8 = 1
	condNC uint8 = 2
	condC  uint8 = 3
	condPO uint8 = 4
	condPE uint8 = 5
	condP  uint8 = 6
	condM  uint8 = 7
)

func (c *Chip) condTrue(cond uint8) bool {
	switch cond & 0x7 {
	case condNZ:
		return !c.Flags.Z
	case condZ:
		return c.Flags.Z
	case condNC:
		return !c.Flags.CY
	case condC:
		return c.Flags.CY
	case condPO:
		return !c.Flags.P
	case condPE:
		return c.Flags.P
	case condP:
		return !c.Flags.S
	default: // condM
		return c.Flags.S
	}
}

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// inr/dcr implement INR/DCR: they touch S, Z, AC, P but — unlike ADD/SUB —
// never touch CY. This is standard i8080 behavior (increment/decrement
// carry out of the top bit is deliberately not observable) and matches
// original_source/i80.c, whose generic flags() helper (called by every
// group 00 INR/DCR case) never writes fcy.
func (c *Chip) inr(v uint8) uint8 {
	result := v + 1
	c.Flags.AC = v&0xf == 0xf
	c.setSZP(result)
	return result
}

func (c *Chip) dcr(v uint8) uint8 {
	result := v - 1
	c.Flags.AC = !(v&0xf == 0)
	c.setSZP(result)
	return result
}

// alu dispatches the eight ALU ops of the 0x80-0xBF register form; the
// 0xC6-0xFE immediate forms in execGroup11 apply the same operations inline
// with the same flag handling. ANA/XRA/ORA intentionally leave AC and
// CY exactly as they were: original_source/i80.c's flags() helper (the only
// thing those three cases call) never assigns fac or fcy, so whatever the
// previous instruction left there survives — a documented quirk, not an
// omission (see DESIGN.md).
func (c *Chip) alu(op uint8, operand uint8) {
	switch (op >> 3) & 0x7 {
	case 0: // ADD
		c.A = c.addFlags(c.A, operand, false)
	case 1: // ADC
		c.A = c.addFlags(c.A, operand, true)
	case 2: // SUB
		c.A = c.subtractFlags(c.A, operand, false)
	case 3: // SBB
		c.A = c.subtractFlags(c.A, operand, true)
	case 4: // ANA
		c.A &= operand
		c.setSZP(c.A)
	case 5: // XRA
		c.A ^= operand
		c.setSZP(c.A)
	case 6: // ORA
		c.A |= operand
		c.setSZP(c.A)
	default: // CMP
		c.subtractFlags(c.A, operand, false)
	}
}

func (c *Chip) retIf(cond uint8) {
	if c.condTrue(cond) {
		c.PC = c.pop()
	}
}

func (c *Chip) jmpIf(cond uint8) {
	addr := c.Fetch16()
	if c.condTrue(cond) {
		c.PC = addr
	}
}

func (c *Chip) callIf(cond uint8) {
	addr := c.Fetch16()
	if c.condTrue(cond) {
		c.push(c.PC)
		c.PC = addr
	}
}

// dispatch is the full 256 entry opcode table. Groups 00/01/10 (opcodes
// 0x00-0xBF) decode cleanly off fixed bit fields, matching the i8080's own
// regular encoding, so they are expressed as bit-decoded blocks rather than
// 192 near-duplicate cases. Group 11 (0xC0-0xFF) mixes conditionals, stack
// ops, and one-off single-byte instructions irregularly enough that an
// explicit per-opcode switch — matching the shape of
// original_source/i80.c's own switch for this range — is the clearer
// rendering.
func (c *Chip) dispatch(op uint8) State {
	switch {
	case op == 0x76:
		return Halted
	case op <= 0x3f:
		c.execGroup00(op)
	case op <= 0x7f:
		c.execMOV(op)
	case op <= 0xbf:
		c.alu(op, c.readReg(op&0x7))
	default:
		c.execGroup11(op)
	}
	return Running
}

func (c *Chip) execMOV(op uint8) {
	dst := (op >> 3) & 0x7
	src := op & 0x7
	c.writeReg(dst, c.readReg(src))
}

func (c *Chip) execGroup00(op uint8) {
	switch op & 0x7 {
	case 0: // NOP, except 0x08 on a Z80 chip
		if op == 0x08 && c.Variant == Z80 {
			c.exAFAF()
		}
	case 1:
		rp := (op >> 4) & 0x3
		if op&0x08 == 0 {
			c.writeRP(rp, c.Fetch16()) // LXI rp,d16
		} else {
			sum := uint32(c.HL()) + uint32(c.readRP(rp)) // DAD rp
			c.Flags.CY = sum > 0xffff
			c.setHL(uint16(sum))
		}
	case 2:
		rp := (op >> 4) & 0x3
		if op&0x08 == 0 {
			switch rp {
			case 0:
				c.ram.Write(c.BC(), c.A) // STAX B
			case 1:
				c.ram.Write(c.DE(), c.A) // STAX D
			case 2:
				addr := c.Fetch16() // SHLD a16
				c.ram.Write(addr, c.L)
				c.ram.Write(addr+1, c.H)
			case 3:
				addr := c.Fetch16() // STA a16
				c.ram.Write(addr, c.A)
			}
		} else {
			switch rp {
			case 0:
				c.A = c.ram.Read(c.BC()) // LDAX B
			case 1:
				c.A = c.ram.Read(c.DE()) // LDAX D
			case 2:
				addr := c.Fetch16() // LHLD a16
				c.L = c.ram.Read(addr)
				c.H = c.ram.Read(addr + 1)
			case 3:
				addr := c.Fetch16() // LDA a16
				c.A = c.ram.Read(addr)
			}
		}
	case 3:
		rp := (op >> 4) & 0x3
		if op&0x08 == 0 {
			c.writeRP(rp, c.readRP(rp)+1) // INX rp
		} else {
			c.writeRP(rp, c.readRP(rp)-1) // DCX rp
		}
	case 4:
		reg := (op >> 3) & 0x7 // INR reg
		c.writeReg(reg, c.inr(c.readReg(reg)))
	case 5:
		reg := (op >> 3) & 0x7 // DCR reg
		c.writeReg(reg, c.dcr(c.readReg(reg)))
	case 6:
		reg := (op >> 3) & 0x7 // MVI reg,d8
		c.writeReg(reg, c.Fetch())
	case 7:
		switch (op >> 3) & 0x7 {
		case 0: // RLC
			cy := c.A&0x80 != 0
			c.A = c.A<<1 | b2u(cy)
			c.Flags.CY = cy
		case 1: // RRC
			cy := c.A&0x01 != 0
			c.A = c.A>>1 | b2u(cy)<<7
			c.Flags.CY = cy
		case 2: // RAL
			oldCY := c.Flags.CY
			c.Flags.CY = c.A&0x80 != 0
			c.A = c.A<<1 | b2u(oldCY)
		case 3: // RAR
			oldCY := c.Flags.CY
			c.Flags.CY = c.A&0x01 != 0
			c.A = c.A>>1 | b2u(oldCY)<<7
		case 4: // DAA
			c.daa()
		case 5: // CMA
			c.A = ^c.A
		case 6: // STC
			c.Flags.CY = true
		case 7: // CMC
			c.Flags.CY = !c.Flags.CY
		}
	}
}

func (c *Chip) execGroup11(op uint8) {
	switch op {
	case 0xc0:
		c.retIf(condNZ)
	case 0xc1:
		c.popRP(0)
	case 0xc2:
		c.jmpIf(condNZ)
	case 0xc3, 0xcb:
		c.PC = c.Fetch16()
	case 0xc4:
		c.callIf(condNZ)
	case 0xc5:
		c.pushRP(0)
	case 0xc6:
		c.A = c.addFlags(c.A, c.Fetch(), false) // ADI
	case 0xc7:
		c.rst(0)
	case 0xc8:
		c.retIf(condZ)
	case 0xc9:
		c.PC = c.pop()
	case 0xca:
		c.jmpIf(condZ)
	case 0xcc:
		c.callIf(condZ)
	case 0xcd, 0xdd, 0xed, 0xfd:
		addr := c.Fetch16()
		c.push(c.PC)
		c.PC = addr
	case 0xce:
		c.A = c.addFlags(c.A, c.Fetch(), true) // ACI
	case 0xcf:
		c.rst(1)
	case 0xd0:
		c.retIf(condNC)
	case 0xd1:
		c.popRP(1)
	case 0xd2:
		c.jmpIf(condNC)
	case 0xd3:
		c.ports.Out(c.Fetch(), c.A) // OUT d8
	case 0xd4:
		c.callIf(condNC)
	case 0xd5:
		c.pushRP(1)
	case 0xd6:
		c.A = c.subtractFlags(c.A, c.Fetch(), false) // SUI
	case 0xd7:
		c.rst(2)
	case 0xd8:
		c.retIf(condC)
	case 0xd9:
		if c.Variant == Z80 {
			c.exx()
		} else {
			c.PC = c.pop()
		}
	case 0xda:
		c.jmpIf(condC)
	case 0xdb:
		c.ports.In(c.Fetch()) // IN d8: records the port touch only (spec.md §4.2)
	case 0xdc:
		c.callIf(condC)
	case 0xde:
		c.A = c.subtractFlags(c.A, c.Fetch(), true) // SBI
	case 0xdf:
		c.rst(3)
	case 0xe0:
		c.retIf(condPO)
	case 0xe1:
		c.popRP(2)
	case 0xe2:
		c.jmpIf(condPO)
	case 0xe3: // XTHL
		lo, hi := c.ram.Read(c.SP), c.ram.Read(c.SP+1)
		c.ram.Write(c.SP, c.L)
		c.ram.Write(c.SP+1, c.H)
		c.L, c.H = lo, hi
	case 0xe4:
		c.callIf(condPO)
	case 0xe5:
		c.pushRP(2)
	case 0xe6: // ANI
		c.A &= c.Fetch()
		c.setSZP(c.A)
	case 0xe7:
		c.rst(4)
	case 0xe8:
		c.retIf(condPE)
	case 0xe9: // PCHL
		c.PC = c.HL()
	case 0xea:
		c.jmpIf(condPE)
	case 0xeb: // XCHG
		c.D, c.H = c.H, c.D
		c.E, c.L = c.L, c.E
	case 0xec:
		c.callIf(condPE)
	case 0xee: // XRI
		c.A ^= c.Fetch()
		c.setSZP(c.A)
	case 0xef:
		c.rst(5)
	case 0xf0:
		c.retIf(condP)
	case 0xf1:
		c.popPSW()
	case 0xf2:
		c.jmpIf(condP)
	case 0xf3: // DI
		c.IE = false
	case 0xf4:
		c.callIf(condP)
	case 0xf5:
		c.pushPSW()
	case 0xf6: // ORI
		c.A |= c.Fetch()
		c.setSZP(c.A)
	case 0xf7:
		c.rst(6)
	case 0xf8:
		c.retIf(condM)
	case 0xf9: // SPHL
		c.SP = c.HL()
	case 0xfa:
		c.jmpIf(condM)
	case 0xfb: // EI
		c.IE = true
	case 0xfc:
		c.callIf(condM)
	case 0xfe: // CPI
		c.subtractFlags(c.A, c.Fetch(), false)
	case 0xff:
		c.rst(7)
	}
}

func (c *Chip) rst(n uint8) {
	c.push(c.PC)
	c.PC = uint16(n) * 8
}

func (c *Chip) pushRP(rp uint8) {
	c.push(c.readRP(rp))
}

func (c *Chip) popRP(rp uint8) {
	c.writeRP(rp, c.pop())
}

func (c *Chip) pushPSW() {
	c.push(uint16(c.A)<<8 | uint16(c.Flags.PackPSW(c.A)))
}

func (c *Chip) popPSW() {
	v := c.pop()
	c.A = uint8(v >> 8)
	c.Flags = UnpackPSW(uint8(v))
}
