package serial

import (
	"testing"

	"github.com/corewave/dmgcore/internal/addr"
	"github.com/stretchr/testify/assert"
)

func TestSerial_ExternalClockNeverAdvances(t *testing.T) {
	s := New()
	s.Write(addr.SC, 0x80) // transfer start, external clock
	res := s.Advance(100000)
	assert.False(t, res.Completed)
	assert.NotZero(t, s.Read(addr.SC)&0x80, "transfer-start bit stays set without an internal clock")
}

func TestSerial_CompletesAfterEightShifts(t *testing.T) {
	s := New()
	s.Write(addr.SB, 0xAA)
	s.Write(addr.SC, 0x81) // transfer start + internal clock

	res := s.Advance(8 * cyclesPerBit)

	assert.True(t, res.Completed)
	assert.Zero(t, s.Read(addr.SC)&0x80, "bit 7 clears on completion")
}

func TestSerial_PartialShiftDoesNotComplete(t *testing.T) {
	s := New()
	s.Write(addr.SC, 0x81)
	res := s.Advance(7 * cyclesPerBit)
	assert.False(t, res.Completed)
	assert.NotZero(t, s.Read(addr.SC)&0x80)
}
