package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterrupt_DispatchPushesPCAndClearsIME(t *testing.T) {
	c, bus := newTestCPU(0x00, 0x00) // NOP; NOP
	c.ime = true
	bus.ier = 0x01
	bus.ifr = 0x01 // VBlank pending

	cycles := c.Step(bus)

	assert.Equal(t, 20, cycles)
	assert.Equal(t, uint16(0x0040), c.reg.PC, "dispatch jumps to the VBlank vector")
	assert.False(t, c.ime)
	assert.Zero(t, bus.IF()&0x01, "dispatch clears the serviced IF bit")

	returnPC := c.pop16(bus)
	assert.Equal(t, uint16(0x0100), returnPC, "pushed return address is the pre-dispatch PC")
}

func TestInterrupt_PriorityIsLowestBit(t *testing.T) {
	c, bus := newTestCPU(0x00)
	c.ime = true
	bus.ier = 0x1F
	bus.ifr = 0x06 // STAT (bit1) and Timer (bit2) both pending

	c.Step(bus)

	assert.Equal(t, uint16(0x0048), c.reg.PC, "STAT has priority over Timer")
	assert.Equal(t, uint8(0x04), bus.IF(), "only the serviced bit is cleared")
}

func TestInterrupt_NotDispatchedWhenIMEClear(t *testing.T) {
	c, bus := newTestCPU(0x00)
	c.ime = false
	bus.ier = 0x01
	bus.ifr = 0x01

	c.Step(bus)

	assert.Equal(t, uint16(0x0101), c.reg.PC, "NOP executes normally; no dispatch")
	assert.Equal(t, uint8(0x01), bus.IF(), "pending flag is untouched")
}

func TestInterrupt_IFPersistsUntilDispatchOrClear(t *testing.T) {
	c, bus := newTestCPU(0x00)
	c.ime = false
	bus.ier = 0x00 // not enabled, so it cannot dispatch
	bus.ifr = 0x01

	for i := 0; i < 5; i++ {
		c.Step(bus)
		assert.Equal(t, uint8(0x01), bus.IF(), "IF bit must persist while IE does not gate it")
	}

	bus.SetIF(bus.IF() &^ 0x01)
	assert.Zero(t, bus.IF(), "software clear takes effect")
}

func TestInterrupt_HaltedWithIMEClearOnlyWakes(t *testing.T) {
	c, bus := newTestCPU(0x00, 0x00)
	c.halted = true
	c.ime = false
	bus.ier = 0x01
	bus.ifr = 0x01

	cycles := c.Step(bus)

	assert.Equal(t, 4, cycles)
	assert.False(t, c.halted, "pending interrupt wakes the CPU even with IME clear")
	assert.Equal(t, uint16(0x0100), c.reg.PC, "no dispatch occurs; PC is untouched")
	assert.Equal(t, uint8(0x01), bus.IF(), "IF bit is not serviced without IME")
}

func TestInterrupt_HaltedWithIMESetDispatches(t *testing.T) {
	c, bus := newTestCPU(0x00, 0x00)
	c.halted = true
	c.ime = true
	bus.ier = 0x01
	bus.ifr = 0x01

	cycles := c.Step(bus)

	assert.Equal(t, 24, cycles, "dispatch from halted state charges the extra 4-cycle wake")
	assert.False(t, c.halted)
	assert.Equal(t, uint16(0x0040), c.reg.PC)
}

func TestInterrupt_NoneWithoutPending(t *testing.T) {
	c, bus := newTestCPU(0x00)
	c.ime = true
	bus.ier = 0x1F
	bus.ifr = 0x00

	cycles := c.Step(bus)

	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0x0101), c.reg.PC)
}
