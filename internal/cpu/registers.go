package cpu

import "github.com/corewave/dmgcore/internal/bit"

// Flag is one of the four status bits packed into the high nibble of F.
type Flag uint8

const (
	FlagZ Flag = 1 << 7 // Zero
	FlagN Flag = 1 << 6 // Subtract
	FlagH Flag = 1 << 5 // Half-carry
	FlagC Flag = 1 << 4 // Carry
)

// Registers is the DMG register file: six 16-bit words, the first four
// viewed as byte pairs (A/F, B/C, D/E, H/L). Writes to AF mask the low
// nibble of F to zero per spec.md §3 — the four flag bits occupy bits
// 7..4, and bits 3..0 are hardwired to zero.
type Registers struct {
	AF, BC, DE, HL, SP, PC uint16
}

// Reset sets every register to its documented DMG power-on value.
func (r *Registers) Reset() {
	r.AF = 0x01B0
	r.BC = 0x0013
	r.DE = 0x00D8
	r.HL = 0x014D
	r.SP = 0xFFFE
	r.PC = 0x0100
}

func high(v uint16) uint8         { return bit.High(v) }
func low(v uint16) uint8          { return bit.Low(v) }
func join(hi, lo uint8) uint16    { return bit.Combine(hi, lo) }

func (r *Registers) A() uint8 { return high(r.AF) }
func (r *Registers) F() uint8 { return low(r.AF) & 0xF0 }
func (r *Registers) B() uint8 { return high(r.BC) }
func (r *Registers) C() uint8 { return low(r.BC) }
func (r *Registers) D() uint8 { return high(r.DE) }
func (r *Registers) E() uint8 { return low(r.DE) }
func (r *Registers) H() uint8 { return high(r.HL) }
func (r *Registers) L() uint8 { return low(r.HL) }

func (r *Registers) SetA(v uint8) { r.AF = join(v, low(r.AF)&0xF0) }
func (r *Registers) SetF(v uint8) { r.AF = join(high(r.AF), v&0xF0) }
func (r *Registers) SetB(v uint8) { r.BC = join(v, low(r.BC)) }
func (r *Registers) SetC(v uint8) { r.BC = join(high(r.BC), v) }
func (r *Registers) SetD(v uint8) { r.DE = join(v, low(r.DE)) }
func (r *Registers) SetE(v uint8) { r.DE = join(high(r.DE), v) }
func (r *Registers) SetH(v uint8) { r.HL = join(v, low(r.HL)) }
func (r *Registers) SetL(v uint8) { r.HL = join(high(r.HL), v) }

// SetAF sets the AF pair, masking F's low nibble to zero as real hardware does.
func (r *Registers) SetAF(v uint16) { r.AF = v & 0xFFF0 }

// Flag reports whether the given flag bit is currently set.
func (r *Registers) Flag(f Flag) bool {
	return r.F()&uint8(f) != 0
}

// SetFlag sets or clears the given flag bit according to cond.
func (r *Registers) SetFlag(f Flag, cond bool) {
	if cond {
		r.SetF(r.F() | uint8(f))
	} else {
		r.SetF(r.F() &^ uint8(f))
	}
}
