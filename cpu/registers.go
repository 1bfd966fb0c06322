package cpu

// readReg and writeReg implement the 3 bit register field used throughout
// group 00/01/10 opcodes: 0=B 1=C 2=D 3=E 4=H 5=L 6=M (memory at HL) 7=A.
// Folding the M case in here (rather than handling it separately at every
// call site) is what lets execute.go express MOV/ALU/INR/DCR/MVI as short,
// uniform bit-decoded blocks instead of 64-odd near-duplicate cases.
func (c *Chip) readReg(idx uint8) uint8 {
	switch idx & 0x7 {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.ram.Read(c.HL())
	default:
		return c.A
	}
}

func (c *Chip) writeReg(idx uint8, v uint8) {
	switch idx & 0x7 {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.ram.Write(c.HL(), v)
	default:
		c.A = v
	}
}

// BC, DE, HL return the named register pair as a 16 bit value, high byte
// first (B:C, D:E, H:L).
func (c *Chip) BC() uint16 { return uint16(c.B)<<8 | uint16(c.C) }
func (c *Chip) DE() uint16 { return uint16(c.D)<<8 | uint16(c.E) }
func (c *Chip) HL() uint16 { return uint16(c.H)<<8 | uint16(c.L) }

func (c *Chip) setBC(v uint16) { c.B, c.C = uint8(v>>8), uint8(v) }
func (c *Chip) setDE(v uint16) { c.D, c.E = uint8(v>>8), uint8(v) }
func (c *Chip) setHL(v uint16) { c.H, c.L = uint8(v>>8), uint8(v) }

// readRP and writeRP implement the 2 bit register-pair field used by
// LXI/DAD/INX/DCX (rp 0=BC 1=DE 2=HL 3=SP).
func (c *Chip) readRP(rp uint8) uint16 {
	switch rp & 0x3 {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.SP
	}
}

func (c *Chip) writeRP(rp uint8, v uint16) {
	switch rp & 0x3 {
	case 0:
		c.setBC(v)
	case 1:
		c.setDE(v)
	case 2:
		c.setHL(v)
	default:
		c.SP = v
	}
}

// push writes v onto the stack, high byte at SP-1, low byte at SP-2,
// predecrementing SP by 2, matching original_source/i80.c's call()/push
// byte order (high byte closer to the top of memory).
func (c *Chip) push(v uint16) {
	c.SP--
	c.ram.Write(c.SP, uint8(v>>8))
	c.SP--
	c.ram.Write(c.SP, uint8(v))
}

// pop reads a 16 bit value off the stack (low byte first, then high),
// post-incrementing SP by 2, matching original_source/i80.c's ret()/pop.
func (c *Chip) pop() uint16 {
	lo := c.ram.Read(c.SP)
	c.SP++
	hi := c.ram.Read(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// exAFAF swaps A and the flags with the Z80 shadow bank's A'/flags'. Only
// meaningful on a Z80 Variant chip; the dispatcher gates the call on
// Variant so an I8080 chip never reaches it (0x08 stays a NOP there).
func (c *Chip) exAFAF() {
	c.A, c.APrime = c.APrime, c.A
	c.Flags, c.FlagsPrime = c.FlagsPrime, c.Flags
}

// exx swaps BC, DE, and HL with their Z80 shadow counterparts. Only
// meaningful on a Z80 Variant chip; see exAFAF.
func (c *Chip) exx() {
	c.B, c.BPrime = c.BPrime, c.B
	c.C, c.CPrime = c.CPrime, c.C
	c.D, c.DPrime = c.DPrime, c.D
	c.E, c.EPrime = c.EPrime, c.E
	c.H, c.HPrime = c.HPrime, c.H
	c.L, c.LPrime = c.LPrime, c.L
}
