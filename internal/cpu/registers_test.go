package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAF_MasksLowNibble(t *testing.T) {
	var r Registers
	for w := uint16(0); w < 0x10; w++ {
		r.SetAF(0x1200 | w)
		assert.Equal(t, uint16(0x1200), r.AF, "AF low nibble must read back as zero")
		assert.Zero(t, r.F()&0x0F)
	}
}

func TestReset_PowerOnValues(t *testing.T) {
	var r Registers
	r.Reset()
	assert.Equal(t, uint16(0x01B0), r.AF)
	assert.Equal(t, uint16(0x0013), r.BC)
	assert.Equal(t, uint16(0x00D8), r.DE)
	assert.Equal(t, uint16(0x014D), r.HL)
	assert.Equal(t, uint16(0xFFFE), r.SP)
	assert.Equal(t, uint16(0x0100), r.PC)
}

func TestSetFlag_RoundTrip(t *testing.T) {
	var r Registers
	r.SetFlag(FlagZ, true)
	r.SetFlag(FlagC, true)
	assert.True(t, r.Flag(FlagZ))
	assert.True(t, r.Flag(FlagC))
	assert.False(t, r.Flag(FlagN))
	assert.False(t, r.Flag(FlagH))

	r.SetFlag(FlagZ, false)
	assert.False(t, r.Flag(FlagZ))
	assert.Zero(t, r.F()&0x0F, "low nibble stays zero through SetFlag")
}
