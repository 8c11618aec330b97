package core

import (
	"testing"

	"github.com/corewave/dmgcore/internal/addr"
	"github.com/corewave/dmgcore/internal/cartridge"
	"github.com/corewave/dmgcore/internal/joypad"
	"github.com/stretchr/testify/assert"
)

func newTestEmulator(t *testing.T, program ...uint8) *Emulator {
	t.Helper()
	data := make([]byte, 0x8000)
	copy(data[0x100:], program)
	c, err := cartridge.New(data)
	assert.NoError(t, err)
	return New(c)
}

func TestRunUntilFrame_PausedDoesNothing(t *testing.T) {
	e := newTestEmulator(t, 0x00, 0x00, 0x00)
	e.SetDebuggerState(Paused)

	before := e.CPU.PC()
	e.RunUntilFrame()
	assert.Equal(t, before, e.CPU.PC())
	assert.Equal(t, uint64(0), e.GetInstructionCount())
}

func TestRunUntilFrame_StepExecutesOneInstructionThenPauses(t *testing.T) {
	e := newTestEmulator(t, 0x00, 0x00, 0x00)
	e.SetDebuggerState(Step)

	e.RunUntilFrame()
	assert.Equal(t, uint64(1), e.GetInstructionCount())
	assert.Equal(t, Paused, e.GetDebuggerState())

	e.RunUntilFrame() // still Paused, no further progress
	assert.Equal(t, uint64(1), e.GetInstructionCount())
}

func TestRunUntilFrame_RunningCompletesExactlyOneFrame(t *testing.T) {
	loop := []uint8{0x18, 0xFE} // JR -2: spin forever
	e := newTestEmulator(t, loop...)

	e.RunUntilFrame()
	assert.Equal(t, uint64(1), e.GetFrameCount())
	assert.True(t, e.GetInstructionCount() > 0)
}

func TestRunUntilFrame_StepFrameCompletesOneFrameThenPauses(t *testing.T) {
	loop := []uint8{0x18, 0xFE}
	e := newTestEmulator(t, loop...)
	e.SetDebuggerState(StepFrame)

	e.RunUntilFrame()
	assert.Equal(t, uint64(1), e.GetFrameCount())
	assert.Equal(t, Paused, e.GetDebuggerState())
}

func TestBreakpoint_StopsRunningBeforeExecutingHitPC(t *testing.T) {
	loop := []uint8{0x18, 0xFE}
	e := newTestEmulator(t, loop...)
	e.Breakpoints.Add(0x0100)

	e.RunUntilFrame()
	assert.Equal(t, Paused, e.GetDebuggerState())
	assert.Equal(t, uint16(0x0100), e.CPU.PC())
	assert.Equal(t, uint64(0), e.GetInstructionCount())
}

func TestApplyButtons_RaisesJoypadInterruptOnPress(t *testing.T) {
	e := newTestEmulator(t, 0x00)
	e.Bus.Write(addr.P1, 0x10) // select the face-button column

	state := joypad.NewState()
	state.Set(joypad.A, true)
	e.ApplyButtons(state)

	assert.NotEqual(t, uint8(0), e.Bus.IF()&0x10)
}

func TestSnapshot_ReflectsRegistersAndDisassembly(t *testing.T) {
	e := newTestEmulator(t, 0x3E, 0x42) // LD A,0x42
	e.DebuggerStepInstruction()

	snap := e.Snapshot(1)
	assert.Equal(t, uint8(0x42), snap.CPU.A)
	assert.Equal(t, uint64(1), snap.Instructions)
	assert.Len(t, snap.NextLines, 1)
}
