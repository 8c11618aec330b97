package cpu

import "log/slog"

// readR8 reads one of the eight z/y-field register operands, including the
// (HL) indirect memory operand (index r8HLInd).
func (c *CPU) readR8(bus Bus, idx uint8) uint8 {
	switch idx {
	case r8B:
		return c.reg.B()
	case r8C:
		return c.reg.C()
	case r8D:
		return c.reg.D()
	case r8E:
		return c.reg.E()
	case r8H:
		return c.reg.H()
	case r8L:
		return c.reg.L()
	case r8HLInd:
		return bus.Read(c.reg.HL)
	default: // r8A
		return c.reg.A()
	}
}

func (c *CPU) writeR8(bus Bus, idx uint8, v uint8) {
	switch idx {
	case r8B:
		c.reg.SetB(v)
	case r8C:
		c.reg.SetC(v)
	case r8D:
		c.reg.SetD(v)
	case r8E:
		c.reg.SetE(v)
	case r8H:
		c.reg.SetH(v)
	case r8L:
		c.reg.SetL(v)
	case r8HLInd:
		bus.Write(c.reg.HL, v)
	default: // r8A
		c.reg.SetA(v)
	}
}

func (c *CPU) readRP(idx uint8) uint16 {
	switch idx {
	case rpBC:
		return c.reg.BC
	case rpDE:
		return c.reg.DE
	case rpHL:
		return c.reg.HL
	default: // rpSP
		return c.reg.SP
	}
}

func (c *CPU) writeRP(idx uint8, v uint16) {
	switch idx {
	case rpBC:
		c.reg.BC = v
	case rpDE:
		c.reg.DE = v
	case rpHL:
		c.reg.HL = v
	default: // rpSP
		c.reg.SP = v
	}
}

func (c *CPU) readRP2(idx uint8) uint16 {
	switch idx {
	case rp2BC:
		return c.reg.BC
	case rp2DE:
		return c.reg.DE
	case rp2HL:
		return c.reg.HL
	default: // rp2AF
		return c.reg.AF
	}
}

func (c *CPU) writeRP2(idx uint8, v uint16) {
	switch idx {
	case rp2BC:
		c.reg.BC = v
	case rp2DE:
		c.reg.DE = v
	case rp2HL:
		c.reg.HL = v
	default: // rp2AF
		c.reg.SetAF(v)
	}
}

func (c *CPU) push16(bus Bus, v uint16) {
	c.reg.SP--
	bus.Write(c.reg.SP, high(v))
	c.reg.SP--
	bus.Write(c.reg.SP, low(v))
}

func (c *CPU) pop16(bus Bus) uint16 {
	lo := bus.Read(c.reg.SP)
	c.reg.SP++
	hi := bus.Read(c.reg.SP)
	c.reg.SP++
	return join(hi, lo)
}

// execute mutates CPU/bus state for one decoded instruction and returns the
// number of clock cycles it consumed, per the published timing table
// referenced in spec.md §4.1-4.2.
func (c *CPU) execute(bus Bus, in instruction) int {
	switch in.kind {
	case opNOP, opStop:
		return 4

	case opHalt:
		c.halted = true
		return 4

	case opLDRR:
		v := c.readR8(bus, in.r2)
		c.writeR8(bus, in.r1, v)
		if in.r1 == r8HLInd || in.r2 == r8HLInd {
			return 8
		}
		return 4

	case opLDRN:
		c.writeR8(bus, in.r1, in.imm8)
		if in.r1 == r8HLInd {
			return 12
		}
		return 8

	case opLDRPNN:
		c.writeRP(in.rp, in.imm16)
		return 12

	case opLDIndFromA:
		bus.Write(c.indAddress(in.rp), c.reg.A())
		return 8

	case opLDAFromInd:
		c.reg.SetA(bus.Read(c.indAddress(in.rp)))
		return 8

	case opLDNNIndSP:
		bus.Write(in.imm16, low(c.reg.SP))
		bus.Write(in.imm16+1, high(c.reg.SP))
		return 20

	case opIncRP:
		c.writeRP(in.rp, c.readRP(in.rp)+1)
		return 8

	case opDecRP:
		c.writeRP(in.rp, c.readRP(in.rp)-1)
		return 8

	case opIncR:
		v := c.readR8(bus, in.r1)
		result := v + 1
		c.reg.SetFlag(FlagZ, result == 0)
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, v&0xF == 0xF)
		c.writeR8(bus, in.r1, result)
		if in.r1 == r8HLInd {
			return 12
		}
		return 4

	case opDecR:
		v := c.readR8(bus, in.r1)
		result := v - 1
		c.reg.SetFlag(FlagZ, result == 0)
		c.reg.SetFlag(FlagN, true)
		c.reg.SetFlag(FlagH, v&0xF == 0x0)
		c.writeR8(bus, in.r1, result)
		if in.r1 == r8HLInd {
			return 12
		}
		return 4

	case opAddHLRP:
		hl := c.reg.HL
		rr := c.readRP(in.rp)
		result := hl + rr
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, (hl&0xFFF)+(rr&0xFFF) > 0xFFF)
		c.reg.SetFlag(FlagC, uint32(hl)+uint32(rr) > 0xFFFF)
		c.reg.HL = result
		return 8

	case opRLCA:
		c.reg.SetA(c.rotate(rotRLC, c.reg.A()))
		c.reg.SetFlag(FlagZ, false)
		return 4
	case opRRCA:
		c.reg.SetA(c.rotate(rotRRC, c.reg.A()))
		c.reg.SetFlag(FlagZ, false)
		return 4
	case opRLA:
		c.reg.SetA(c.rotate(rotRL, c.reg.A()))
		c.reg.SetFlag(FlagZ, false)
		return 4
	case opRRA:
		c.reg.SetA(c.rotate(rotRR, c.reg.A()))
		c.reg.SetFlag(FlagZ, false)
		return 4

	case opDAA:
		c.daa()
		return 4
	case opCPL:
		c.reg.SetA(c.reg.A() ^ 0xFF)
		c.reg.SetFlag(FlagN, true)
		c.reg.SetFlag(FlagH, true)
		return 4
	case opSCF:
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, false)
		c.reg.SetFlag(FlagC, true)
		return 4
	case opCCF:
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, false)
		c.reg.SetFlag(FlagC, !c.reg.Flag(FlagC))
		return 4

	case opJR:
		c.reg.PC = uint16(int32(c.reg.PC) + int32(in.rel))
		return 12
	case opJRCC:
		if in.cond.satisfied(&c.reg) {
			c.reg.PC = uint16(int32(c.reg.PC) + int32(in.rel))
			return 12
		}
		return 8

	case opJP:
		c.reg.PC = in.imm16
		return 16
	case opJPCC:
		if in.cond.satisfied(&c.reg) {
			c.reg.PC = in.imm16
			return 16
		}
		return 12
	case opJPHL:
		c.reg.PC = c.reg.HL
		return 4

	case opCall:
		c.push16(bus, c.reg.PC)
		c.reg.PC = in.imm16
		return 24
	case opCallCC:
		if in.cond.satisfied(&c.reg) {
			c.push16(bus, c.reg.PC)
			c.reg.PC = in.imm16
			return 24
		}
		return 12

	case opRet:
		c.reg.PC = c.pop16(bus)
		return 16
	case opRetCC:
		if in.cond.satisfied(&c.reg) {
			c.reg.PC = c.pop16(bus)
			return 20
		}
		return 8
	case opRetI:
		c.reg.PC = c.pop16(bus)
		c.ime = true
		return 16

	case opRst:
		c.push16(bus, c.reg.PC)
		c.reg.PC = in.imm16
		return 16

	case opPush:
		c.push16(bus, c.readRP2(in.rp))
		return 16
	case opPop:
		c.writeRP2(in.rp, c.pop16(bus))
		return 12

	case opALURReg:
		v := c.readR8(bus, in.r2)
		c.alu(in.alu, v)
		if in.r2 == r8HLInd {
			return 8
		}
		return 4
	case opALUImm:
		c.alu(in.alu, in.imm8)
		return 8

	case opDI:
		c.ime = false
		return 4
	case opEI:
		c.ime = true
		return 4

	case opLDHNFromA:
		bus.Write(0xFF00+uint16(in.imm8), c.reg.A())
		return 12
	case opLDHAFromN:
		c.reg.SetA(bus.Read(0xFF00 + uint16(in.imm8)))
		return 12
	case opLDHCFromA:
		bus.Write(0xFF00+uint16(c.reg.C()), c.reg.A())
		return 8
	case opLDHAFromC:
		c.reg.SetA(bus.Read(0xFF00 + uint16(c.reg.C())))
		return 8
	case opLDNNFromA:
		bus.Write(in.imm16, c.reg.A())
		return 16
	case opLDAFromNN:
		c.reg.SetA(bus.Read(in.imm16))
		return 16

	case opAddSPE:
		c.reg.SP = c.addSPRelative(in.rel)
		return 16
	case opLDHLSPE:
		c.reg.HL = c.addSPRelative(in.rel)
		return 12
	case opLDSPHL:
		c.reg.SP = c.reg.HL
		return 8

	case opCBRot:
		v := c.readR8(bus, in.r2)
		result := c.rotate(in.rot, v)
		c.reg.SetFlag(FlagZ, result == 0)
		c.writeR8(bus, in.r2, result)
		if in.r2 == r8HLInd {
			return 16
		}
		return 8
	case opCBBit:
		v := c.readR8(bus, in.r2)
		c.reg.SetFlag(FlagZ, v&(1<<in.bit) == 0)
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, true)
		if in.r2 == r8HLInd {
			return 12
		}
		return 8
	case opCBRes:
		v := c.readR8(bus, in.r2)
		c.writeR8(bus, in.r2, v&^(1<<in.bit))
		if in.r2 == r8HLInd {
			return 16
		}
		return 8
	case opCBSet:
		v := c.readR8(bus, in.r2)
		c.writeR8(bus, in.r2, v|(1<<in.bit))
		if in.r2 == r8HLInd {
			return 16
		}
		return 8

	default: // opIllegal
		return c.illegalOpcode(in)
	}
}

// indAddress resolves the memory address for the z=2 family of
// LD (rr),A / LD A,(rr) instructions: BC, DE, HL+ (post-increment), HL-
// (post-decrement), selected by the rp-group index (reused here for the
// four address-variant slots rather than the SP group).
func (c *CPU) indAddress(variant uint8) uint16 {
	switch variant {
	case 0:
		return c.reg.BC
	case 1:
		return c.reg.DE
	case 2:
		addr := c.reg.HL
		c.reg.HL++
		return addr
	default:
		addr := c.reg.HL
		c.reg.HL--
		return addr
	}
}

// addSPRelative implements the shared flag rule for ADD SP,e8 and
// LD HL,SP+e8 from spec.md §4.2: Z=0, N=0, and H/C are computed from the
// unsigned low-byte addition regardless of the operand's sign.
func (c *CPU) addSPRelative(e int8) uint16 {
	sp := c.reg.SP
	offset := uint16(int32(e))
	result := sp + offset

	lowSP := uint8(sp)
	lowE := uint8(e)

	c.reg.SetFlag(FlagZ, false)
	c.reg.SetFlag(FlagN, false)
	c.reg.SetFlag(FlagH, (lowSP&0xF)+(lowE&0xF) > 0xF)
	c.reg.SetFlag(FlagC, uint16(lowSP)+uint16(lowE) > 0xFF)

	return result
}

func (c *CPU) alu(op aluOp, value uint8) {
	a := c.reg.A()
	switch op {
	case aluADD:
		result := a + value
		c.reg.SetFlag(FlagZ, result == 0)
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, (a&0xF)+(value&0xF) > 0xF)
		c.reg.SetFlag(FlagC, uint16(a)+uint16(value) > 0xFF)
		c.reg.SetA(result)
	case aluADC:
		carry := c.carryBit()
		result := a + value + carry
		c.reg.SetFlag(FlagZ, result == 0)
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, (a&0xF)+(value&0xF)+carry > 0xF)
		c.reg.SetFlag(FlagC, uint16(a)+uint16(value)+uint16(carry) > 0xFF)
		c.reg.SetA(result)
	case aluSUB:
		result := a - value
		c.reg.SetFlag(FlagZ, result == 0)
		c.reg.SetFlag(FlagN, true)
		c.reg.SetFlag(FlagH, a&0xF < value&0xF)
		c.reg.SetFlag(FlagC, a < value)
		c.reg.SetA(result)
	case aluSBC:
		carry := c.carryBit()
		result := a - value - carry
		c.reg.SetFlag(FlagZ, result == 0)
		c.reg.SetFlag(FlagN, true)
		c.reg.SetFlag(FlagH, int(a&0xF)-int(value&0xF)-int(carry) < 0)
		c.reg.SetFlag(FlagC, int(a)-int(value)-int(carry) < 0)
		c.reg.SetA(result)
	case aluAND:
		result := a & value
		c.reg.SetFlag(FlagZ, result == 0)
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, true)
		c.reg.SetFlag(FlagC, false)
		c.reg.SetA(result)
	case aluXOR:
		result := a ^ value
		c.reg.SetFlag(FlagZ, result == 0)
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, false)
		c.reg.SetFlag(FlagC, false)
		c.reg.SetA(result)
	case aluOR:
		result := a | value
		c.reg.SetFlag(FlagZ, result == 0)
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, false)
		c.reg.SetFlag(FlagC, false)
		c.reg.SetA(result)
	case aluCP:
		result := a - value
		c.reg.SetFlag(FlagZ, result == 0)
		c.reg.SetFlag(FlagN, true)
		c.reg.SetFlag(FlagH, a&0xF < value&0xF)
		c.reg.SetFlag(FlagC, a < value)
	}
}

func (c *CPU) carryBit() uint8 {
	if c.reg.Flag(FlagC) {
		return 1
	}
	return 0
}

func (c *CPU) rotate(op rotOp, v uint8) uint8 {
	switch op {
	case rotRLC:
		carry := v>>7 == 1
		result := (v << 1) | (v >> 7)
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, false)
		c.reg.SetFlag(FlagC, carry)
		return result
	case rotRRC:
		carry := v&1 == 1
		result := (v >> 1) | (v << 7)
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, false)
		c.reg.SetFlag(FlagC, carry)
		return result
	case rotRL:
		carryIn := c.carryBit()
		carryOut := v>>7 == 1
		result := (v << 1) | carryIn
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, false)
		c.reg.SetFlag(FlagC, carryOut)
		return result
	case rotRR:
		carryIn := c.carryBit()
		carryOut := v&1 == 1
		result := (v >> 1) | (carryIn << 7)
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, false)
		c.reg.SetFlag(FlagC, carryOut)
		return result
	case rotSLA:
		carry := v>>7 == 1
		result := v << 1
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, false)
		c.reg.SetFlag(FlagC, carry)
		return result
	case rotSRA:
		carry := v&1 == 1
		result := (v >> 1) | (v & 0x80)
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, false)
		c.reg.SetFlag(FlagC, carry)
		return result
	case rotSWAP:
		result := (v << 4) | (v >> 4)
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, false)
		c.reg.SetFlag(FlagC, false)
		return result
	default: // rotSRL
		carry := v&1 == 1
		result := v >> 1
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, false)
		c.reg.SetFlag(FlagC, carry)
		return result
	}
}

// daa implements the blargg reference BCD-correction algorithm referenced by
// spec.md §4.2/§9: after a subtract (N set) the correction depends only on
// the existing H/C flags; after an add it also checks A's low nibble (> 9)
// and A itself (> 0x99, which sets C).
func (c *CPU) daa() {
	a := c.reg.A()
	var adjust uint8
	carry := c.reg.Flag(FlagC)

	if c.reg.Flag(FlagN) {
		if c.reg.Flag(FlagH) {
			adjust += 0x06
		}
		if carry {
			adjust += 0x60
		}
		a -= adjust
	} else {
		if c.reg.Flag(FlagH) || a&0x0F > 0x09 {
			adjust += 0x06
		}
		if carry || a > 0x99 {
			adjust += 0x60
			carry = true
		}
		a += adjust
	}

	c.reg.SetFlag(FlagZ, a == 0)
	c.reg.SetFlag(FlagH, false)
	c.reg.SetFlag(FlagC, carry)
	c.reg.SetA(a)
}

// illegalOpcode implements spec.md §7's dual behavior: a strict CPU (test
// builds) traps with a reported PC/opcode; otherwise it is treated as a
// no-op consuming 4 cycles and logged at warning level.
func (c *CPU) illegalOpcode(in instruction) int {
	if c.StrictIllegalOpcodes {
		c.trapped = true
		c.trapPC = c.reg.PC - 1
		c.trapOpcode = in.opcode
		return 4
	}
	slog.Warn("illegal opcode executed as no-op", "pc", c.reg.PC-1, "opcode", in.opcode)
	return 4
}
