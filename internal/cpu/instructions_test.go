package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func step(c *CPU, bus Bus, n int) {
	for i := 0; i < n; i++ {
		c.Step(bus)
	}
}

func TestRoundTrip_PushPop(t *testing.T) {
	c, bus := newTestCPU(0xC5, 0xC1) // PUSH BC; POP BC
	c.reg.BC = 0x1234
	sp := c.reg.SP
	step(c, bus, 2)
	assert.Equal(t, uint16(0x1234), c.reg.BC)
	assert.Equal(t, sp, c.reg.SP)
}

func TestRoundTrip_LDRThenLDAR(t *testing.T) {
	cases := []struct {
		name    string
		ldImm   uint8 // LD r,n opcode
		ldAFrom uint8 // LD A,r opcode
	}{
		{"B", 0x06, 0x78},
		{"C", 0x0E, 0x79},
		{"D", 0x16, 0x7A},
		{"E", 0x1E, 0x7B},
		{"H", 0x26, 0x7C},
		{"L", 0x2E, 0x7D},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for v := 0; v <= 0xFF; v += 0x11 {
				c, bus := newTestCPU(tc.ldImm, uint8(v), tc.ldAFrom)
				step(c, bus, 2)
				assert.Equal(t, uint8(v), c.reg.A(), "A should equal value loaded into %s", tc.name)
			}
		})
	}
}

func TestRoundTrip_CallRet(t *testing.T) {
	c, bus := newTestCPU(0xCD, 0x00, 0x02) // CALL 0x0200
	bus.mem[0x0200] = 0xC9                 // RET
	step(c, bus, 2)
	assert.Equal(t, uint16(0x0103), c.reg.PC, "RET should return to the address after CALL")
}

func TestRoundTrip_SwapSwap(t *testing.T) {
	c, bus := newTestCPU(0x3E, 0x5A, 0xCB, 0x37, 0xCB, 0x37) // LD A,0x5A; SWAP A; SWAP A
	step(c, bus, 3)
	assert.Equal(t, uint8(0x5A), c.reg.A())
}

func TestRoundTrip_SetResBit(t *testing.T) {
	c, bus := newTestCPU(0xCB, 0xC7, 0xCB, 0x47) // SET 0,A; BIT 0,A
	step(c, bus, 2)
	assert.False(t, c.reg.Flag(FlagZ), "BIT after SET should read Z=0")

	c, bus = newTestCPU(0xCB, 0x87, 0xCB, 0x47) // RES 0,A; BIT 0,A
	step(c, bus, 2)
	assert.True(t, c.reg.Flag(FlagZ), "BIT after RES should read Z=1")
}

func TestBoundary_AddOverflow(t *testing.T) {
	c, bus := newTestCPU(0x3E, 0x01, 0xC6, 0xFF) // LD A,1; ADD A,0xFF
	step(c, bus, 2)
	assert.Equal(t, uint8(0x00), c.reg.A())
	assert.True(t, c.reg.Flag(FlagZ))
	assert.True(t, c.reg.Flag(FlagH))
	assert.True(t, c.reg.Flag(FlagC))
	assert.False(t, c.reg.Flag(FlagN))
}

func TestBoundary_SubUnderflow(t *testing.T) {
	c, bus := newTestCPU(0x3E, 0x00, 0xD6, 0x01) // LD A,0; SUB 0x01
	step(c, bus, 2)
	assert.Equal(t, uint8(0xFF), c.reg.A())
	assert.False(t, c.reg.Flag(FlagZ))
	assert.True(t, c.reg.Flag(FlagH))
	assert.True(t, c.reg.Flag(FlagC))
	assert.True(t, c.reg.Flag(FlagN))
}

func TestBoundary_IncHalfCarry(t *testing.T) {
	c, bus := newTestCPU(0x06, 0x0F, 0x04) // LD B,0x0F; INC B
	step(c, bus, 2)
	assert.Equal(t, uint8(0x10), c.reg.B())
	assert.True(t, c.reg.Flag(FlagH))
	assert.False(t, c.reg.Flag(FlagZ))
}

func TestBoundary_IncWrapPreservesCarry(t *testing.T) {
	for _, carry := range []bool{true, false} {
		c, bus := newTestCPU(0x06, 0xFF, 0x04) // LD B,0xFF; INC B
		c.reg.SetFlag(FlagC, carry)
		step(c, bus, 2)
		assert.Equal(t, uint8(0x00), c.reg.B())
		assert.True(t, c.reg.Flag(FlagZ))
		assert.True(t, c.reg.Flag(FlagH))
		assert.False(t, c.reg.Flag(FlagN))
		assert.Equal(t, carry, c.reg.Flag(FlagC), "INC must not touch C")
	}
}

func TestBoundary_DAA(t *testing.T) {
	c, bus := newTestCPU(0x3E, 0x06, 0xC6, 0x06, 0x27) // LD A,6; ADD A,6; DAA
	step(c, bus, 3)
	assert.Equal(t, uint8(0x12), c.reg.A())
}

func TestBoundary_JRTightLoop(t *testing.T) {
	bus := &testBus{}
	bus.mem[0x0150] = 0x18 // JR -2
	bus.mem[0x0151] = 0xFE
	c := New()
	c.reg.PC = 0x0150
	c.Step(bus)
	assert.Equal(t, uint16(0x0150), c.reg.PC)
}

func TestScenario_NOPx4(t *testing.T) {
	c, bus := newTestCPU(0x00, 0x00, 0x00, 0x00)
	f := c.reg.F()
	for i := 0; i < 4; i++ {
		cycles := c.Step(bus)
		assert.Equal(t, 4, cycles)
	}
	assert.Equal(t, uint16(0x0104), c.reg.PC)
	assert.Equal(t, f, c.reg.F(), "NOP must not touch flags")
}

func TestScenario_LoadStoreReload(t *testing.T) {
	c, bus := newTestCPU(0x3E, 0x42, 0xEA, 0x00, 0xC0, 0xFA, 0x00, 0xC0, 0x47)
	step(c, bus, 4)
	assert.Equal(t, uint8(0x42), c.reg.A())
	assert.Equal(t, uint8(0x42), c.reg.B())
	assert.Equal(t, uint8(0x42), bus.mem[0xC000])
}

func TestStep_UnconditionalDeterminism(t *testing.T) {
	c1, bus1 := newTestCPU(0x3C) // INC A
	c2, bus2 := newTestCPU(0x3C)
	cyc1 := c1.Step(bus1)
	cyc2 := c2.Step(bus2)
	assert.Equal(t, cyc1, cyc2)
	assert.Equal(t, c1.reg, c2.reg)
}
