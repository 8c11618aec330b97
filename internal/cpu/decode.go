package cpu

// decode fetches one instruction starting at the CPU's current PC, advancing
// PC past the opcode and any immediate operand bytes. It implements the
// systematic (x,y,z,p,q) decomposition from spec.md §4.2: x = bits 7..6,
// y = bits 5..3, z = bits 2..0, p = y>>1, q = y&1.
func (c *CPU) decode(bus Bus) instruction {
	op := c.fetch(bus)

	if op == 0xCB {
		return c.decodeCB(bus)
	}

	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7
	p := y >> 1
	q := y & 1

	in := instruction{opcode: op}

	switch x {
	case 0:
		switch z {
		case 0:
			switch {
			case y == 0:
				in.kind = opNOP
			case y == 1:
				in.kind = opLDNNIndSP
				in.imm16 = c.fetch16(bus)
			case y == 2:
				in.kind = opStop
				c.fetch(bus) // STOP is followed by a padding byte
			case y == 3:
				in.kind = opJR
				in.rel = int8(c.fetch(bus))
			default:
				in.kind = opJRCC
				in.cond = Cond(y - 4)
				in.rel = int8(c.fetch(bus))
			}
		case 1:
			if q == 0 {
				in.kind = opLDRPNN
				in.rp = p
				in.imm16 = c.fetch16(bus)
			} else {
				in.kind = opAddHLRP
				in.rp = p
			}
		case 2:
			if q == 0 {
				in.kind = opLDIndFromA
			} else {
				in.kind = opLDAFromInd
			}
			in.rp = p
		case 3:
			if q == 0 {
				in.kind = opIncRP
			} else {
				in.kind = opDecRP
			}
			in.rp = p
		case 4:
			in.kind = opIncR
			in.r1 = y
		case 5:
			in.kind = opDecR
			in.r1 = y
		case 6:
			in.kind = opLDRN
			in.r1 = y
			in.imm8 = c.fetch(bus)
		case 7:
			in.kind = [8]opKind{opRLCA, opRRCA, opRLA, opRRA, opDAA, opCPL, opSCF, opCCF}[y]
		}
	case 1:
		if z == 6 && y == 6 {
			in.kind = opHalt
		} else {
			in.kind = opLDRR
			in.r1 = y
			in.r2 = z
		}
	case 2:
		in.kind = opALURReg
		in.alu = aluOp(y)
		in.r2 = z
	case 3:
		switch z {
		case 0:
			switch {
			case y <= 3:
				in.kind = opRetCC
				in.cond = Cond(y)
			case y == 4:
				in.kind = opLDHNFromA
				in.imm8 = c.fetch(bus)
			case y == 5:
				in.kind = opAddSPE
				in.rel = int8(c.fetch(bus))
			case y == 6:
				in.kind = opLDHAFromN
				in.imm8 = c.fetch(bus)
			case y == 7:
				in.kind = opLDHLSPE
				in.rel = int8(c.fetch(bus))
			}
		case 1:
			if q == 0 {
				in.kind = opPop
				in.rp = p
			} else {
				switch p {
				case 0:
					in.kind = opRet
				case 1:
					in.kind = opRetI
				case 2:
					in.kind = opJPHL
				case 3:
					in.kind = opLDSPHL
				}
			}
		case 2:
			switch {
			case y <= 3:
				in.kind = opJPCC
				in.cond = Cond(y)
				in.imm16 = c.fetch16(bus)
			case y == 4:
				in.kind = opLDHCFromA
			case y == 5:
				in.kind = opLDNNFromA
				in.imm16 = c.fetch16(bus)
			case y == 6:
				in.kind = opLDHAFromC
			case y == 7:
				in.kind = opLDAFromNN
				in.imm16 = c.fetch16(bus)
			}
		case 3:
			switch y {
			case 0:
				in.kind = opJP
				in.imm16 = c.fetch16(bus)
			case 1:
				// 0xCB handled above; unreachable here.
				in.kind = opIllegal
			case 6:
				in.kind = opDI
			case 7:
				in.kind = opEI
			default:
				in.kind = opIllegal
			}
		case 4:
			if y <= 3 {
				in.kind = opCallCC
				in.cond = Cond(y)
				in.imm16 = c.fetch16(bus)
			} else {
				in.kind = opIllegal
			}
		case 5:
			if q == 0 {
				in.kind = opPush
				in.rp = p
			} else if p == 0 {
				in.kind = opCall
				in.imm16 = c.fetch16(bus)
			} else {
				in.kind = opIllegal
			}
		case 6:
			in.kind = opALUImm
			in.alu = aluOp(y)
			in.imm8 = c.fetch(bus)
		case 7:
			in.kind = opRst
			in.imm16 = uint16(y) * 8
		}
	}

	return in
}

// decodeCB fetches the second byte of a 0xCB-prefixed instruction and
// decodes the 256-entry bit-manipulation table.
func (c *CPU) decodeCB(bus Bus) instruction {
	op := c.fetch(bus)
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7

	in := instruction{opcode: op, cb: true, r2: z, bit: y}

	switch x {
	case 0:
		in.kind = opCBRot
		in.rot = rotOp(y)
	case 1:
		in.kind = opCBBit
	case 2:
		in.kind = opCBRes
	case 3:
		in.kind = opCBSet
	}

	return in
}

func (c *CPU) fetch(bus Bus) uint8 {
	v := bus.Read(c.reg.PC)
	c.reg.PC++
	return v
}

func (c *CPU) fetch16(bus Bus) uint16 {
	lo := c.fetch(bus)
	hi := c.fetch(bus)
	return join(hi, lo)
}
