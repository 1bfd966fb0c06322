package cpu

import "math/bits"

// parityEven reports whether b has an even number of set bits. This is a
// two line wrapper around math/bits.OnesCount8; no library in the retrieved
// pack offers population count and none of the teacher's dependencies touch
// bit arithmetic, so stdlib is the grounded choice here (see DESIGN.md).
func parityEven(b uint8) bool {
	return bits.OnesCount8(b)%2 == 0
}

// setSZP recomputes S, Z, and P from result, exactly as every flag-affecting
// i8080 opcode does (original_source/i80.c's flags()). AC and CY are left
// untouched; callers that need them call addFlags/subtractFlags instead,
// which call setSZP internally once the carry arithmetic is done.
func (c *Chip) setSZP(result uint8) {
	c.Flags.S = result&0x80 != 0
	c.Flags.Z = result == 0
	c.Flags.P = parityEven(result)
}

// addFlags computes a+b (+1 if withCarry and CY is set), updates AC and CY,
// updates S/Z/P via setSZP, and returns the 8 bit result. withCarry
// distinguishes ADC/ACI (carry-in participates in both the sum and the
// half-carry test) from plain ADD/ADI (carry-in is 0), per spec.md §4.1.
func (c *Chip) addFlags(a, b uint8, withCarry bool) uint8 {
	carryIn := 0
	if withCarry && c.Flags.CY {
		carryIn = 1
	}
	sum := int(a) + int(b) + carryIn
	half := int(a&0xf) + int(b&0xf) + carryIn
	c.Flags.AC = half > 0xf
	c.Flags.CY = sum > 0xff
	result := uint8(sum)
	c.setSZP(result)
	return result
}

// subtractFlags computes a-b (-1 more if withBorrow and CY is set). The
// result byte and AC use the ones'-complement-plus-one formulation
// original_source/i80.c's carryflag() uses for its half-carry test; CY
// instead comes straight from the widened, untruncated difference, since
// the 8-bit-truncated complement used for the half-carry operand is not
// wide enough to tell a borrow from a non-borrow for the full byte (a
// ones'-complement sum always lands above 0xff whether or not a-b actually
// borrowed — see i80.c's carry computed in full int width before that
// truncation). CY=true means a borrow occurred (a < b + borrowIn), matching
// spec.md §8 scenario 6. withBorrow distinguishes SBB from plain SUB/CMP
// (borrow-in is 0), per spec.md §4.1. CMP calls this and discards the
// result instead of writing it back to A.
func (c *Chip) subtractFlags(a, b uint8, withBorrow bool) uint8 {
	borrowIn := 0
	if withBorrow && c.Flags.CY {
		borrowIn = 1
	}
	comp := ^b // one's complement of the true subtrahend
	sum := int(a) + int(comp) + 1 - borrowIn
	half := int(a&0xf) + int(comp&0xf) + 1 - borrowIn
	c.Flags.AC = !(half > 0xf)
	c.Flags.CY = int(a)-int(b)-borrowIn < 0
	result := uint8(sum)
	c.setSZP(result)
	return result
}

// daa implements decimal-adjust-accumulator exactly as
// original_source/i80.c's daa(): the low nibble is corrected first (and AC
// recomputed from whether that correction itself overflowed the nibble),
// then the high nibble. CY is only ever set here, never cleared — a
// pre-existing CY from the arithmetic that produced A must survive DAA.
func (c *Chip) daa() {
	if c.A&0xf > 9 || c.Flags.AC {
		c.Flags.AC = (c.A&0xf)+0x6 > 0xf
		c.A += 0x6
	}
	if c.A>>4 > 9 || c.Flags.CY {
		if int(c.A)+0x60 > 0xff {
			c.Flags.CY = true
		}
		c.A += 0x60
	}
	c.setSZP(c.A)
}
