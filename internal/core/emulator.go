// Package core wires the CPU and Bus into the frame-stepping loop a
// presenter or CLI drives, grounded on the teacher's Emulator/DebuggerState
// pattern in jeebie/core.go: a small state machine lets a UI pause, single
// step, or step one whole frame at a time without the loop itself needing
// to know anything about terminals or windows.
package core

import (
	"os"
	"sync"

	"github.com/corewave/dmgcore/internal/addr"
	"github.com/corewave/dmgcore/internal/bus"
	"github.com/corewave/dmgcore/internal/cartridge"
	"github.com/corewave/dmgcore/internal/cpu"
	"github.com/corewave/dmgcore/internal/debug"
	"github.com/corewave/dmgcore/internal/joypad"
	"github.com/corewave/dmgcore/internal/video"
)

// cyclesPerFrame is the DMG's fixed frame budget: 154 lines * 456 cycles,
// per spec.md §4.5.
const cyclesPerFrame = 70224

// DebuggerState selects how RunUntilFrame advances the machine.
type DebuggerState int

const (
	// Running executes instructions until a full frame (cyclesPerFrame
	// cycles) has elapsed, the default mode for unattended play.
	Running DebuggerState = iota
	// Paused executes nothing; RunUntilFrame returns immediately.
	Paused
	// Step executes exactly one CPU instruction, then reverts to Paused.
	Step
	// StepFrame executes exactly one full frame, then reverts to Paused.
	StepFrame
)

// Emulator owns the CPU, the Bus (and everything wired to it), the current
// button snapshot, and the debugger controls layered on top of the raw
// fetch/execute loop.
type Emulator struct {
	CPU *cpu.CPU
	Bus *bus.Bus

	Breakpoints *debug.Breakpoints

	debuggerMu    sync.RWMutex
	debuggerState DebuggerState

	instructionCount uint64
	frameCount       uint64
}

// New constructs an Emulator around an already-loaded cartridge.
func New(cart *cartridge.Cartridge) *Emulator {
	return &Emulator{
		CPU:         cpu.New(),
		Bus:         bus.New(cart),
		Breakpoints: debug.NewBreakpoints(),
	}
}

// NewWithFile loads a ROM image from path and constructs an Emulator
// around it.
func NewWithFile(path string) (*Emulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cart, err := cartridge.New(data)
	if err != nil {
		return nil, err
	}

	return New(cart), nil
}

// SetDebuggerState changes how subsequent RunUntilFrame calls behave.
func (e *Emulator) SetDebuggerState(s DebuggerState) {
	e.debuggerMu.Lock()
	defer e.debuggerMu.Unlock()
	e.debuggerState = s
}

// GetDebuggerState reports the current debugger mode.
func (e *Emulator) GetDebuggerState() DebuggerState {
	e.debuggerMu.RLock()
	defer e.debuggerMu.RUnlock()
	return e.debuggerState
}

// DebuggerPause switches to Paused.
func (e *Emulator) DebuggerPause() { e.SetDebuggerState(Paused) }

// DebuggerResume switches to Running.
func (e *Emulator) DebuggerResume() { e.SetDebuggerState(Running) }

// DebuggerStepInstruction arms a single-instruction step and executes it.
func (e *Emulator) DebuggerStepInstruction() {
	e.SetDebuggerState(Step)
	e.RunUntilFrame()
}

// DebuggerStepFrame arms a single-frame step and executes it.
func (e *Emulator) DebuggerStepFrame() {
	e.SetDebuggerState(StepFrame)
	e.RunUntilFrame()
}

// RunUntilFrame advances the machine according to the current debugger
// state, mirroring the teacher's state switch: Paused returns immediately,
// Step executes one instruction then pauses, StepFrame executes a full
// frame then pauses, Running executes until a frame boundary is crossed or
// an armed breakpoint is hit.
func (e *Emulator) RunUntilFrame() {
	switch e.GetDebuggerState() {
	case Paused:
		return
	case Step:
		e.step()
		e.SetDebuggerState(Paused)
	case StepFrame:
		e.runFrame()
		e.SetDebuggerState(Paused)
	default:
		e.runFrame()
	}
}

// runFrame executes instructions until cyclesPerFrame clock cycles have
// elapsed, stopping early if it lands on an armed breakpoint.
func (e *Emulator) runFrame() {
	total := 0
	for total < cyclesPerFrame {
		if e.Breakpoints.Hit(e.CPU.PC()) {
			e.SetDebuggerState(Paused)
			return
		}
		total += e.step()
	}
	e.frameCount++
}

// step executes exactly one CPU.Step and folds its cycle cost into every
// peripheral, per spec.md §5's tick-everything-every-instruction model.
func (e *Emulator) step() int {
	cycles := e.CPU.Step(e.Bus)
	e.Bus.AdvancePeripherals(cycles)
	e.instructionCount++
	return cycles
}

// GetCurrentFrame returns the most recently rasterized framebuffer.
func (e *Emulator) GetCurrentFrame() *video.FrameBuffer {
	return e.Bus.Video.FrameBuffer()
}

// ApplyButtons folds a new button snapshot into the joypad, raising the
// Joypad interrupt if warranted.
func (e *Emulator) ApplyButtons(state joypad.State) {
	e.Bus.ApplyButtons(state)
}

// GetInstructionCount reports the total number of CPU.Step calls made.
func (e *Emulator) GetInstructionCount() uint64 { return e.instructionCount }

// GetFrameCount reports the total number of frames completed by Running or
// StepFrame.
func (e *Emulator) GetFrameCount() uint64 { return e.frameCount }

// Snapshot captures the current machine state for a debugger UI, including
// a short run of disassembly starting at PC.
func (e *Emulator) Snapshot(lines int) debug.Snapshot {
	reg := e.CPU.Registers()
	cpuState := debug.CPUState{
		A: reg.A(), F: reg.F(), B: reg.B(), C: reg.C(),
		D: reg.D(), E: reg.E(), H: reg.H(), L: reg.L(),
		SP: reg.SP, PC: reg.PC, IME: e.CPU.IME(), Halted: e.CPU.Halted(),
	}

	return debug.Take(cpuState, e.Bus.IF(), e.Bus.IE(), uint8(e.Bus.Video.Mode()),
		e.Bus, lines, e.instructionCount, e.frameCount)
}

// RequestInterrupt exposes manual interrupt injection for test harnesses
// and the debugger; production code never needs to call this directly.
func (e *Emulator) RequestInterrupt(source addr.Interrupt) {
	e.Bus.RequestInterrupt(source)
}
