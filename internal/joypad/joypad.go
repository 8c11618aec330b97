// Package joypad implements the 2x4 button matrix and column-select register
// described in spec.md §4.7.
package joypad

import "github.com/corewave/dmgcore/internal/addr"

// Button is one of the eight physical buttons, indexed the way the DMG
// matrix exposes them within each column.
type Button uint8

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// State is a host-provided snapshot of which buttons are currently pressed.
type State struct {
	pressed [8]bool
}

// NewState returns an all-released snapshot.
func NewState() State { return State{} }

// Set marks a button pressed or released in the snapshot.
func (s *State) Set(b Button, pressed bool) { s.pressed[b] = pressed }

// Pressed reports whether a button is held in this snapshot.
func (s State) Pressed(b Button) bool { return s.pressed[b] }

// dpadBits and faceBits give each column's bit order within the low nibble,
// per spec.md §4.7: bit3 Down/Start, bit2 Up/Select, bit1 Left/B, bit0 Right/A.
var dpadBits = [4]Button{Right, Left, Up, Down}
var faceBits = [4]Button{A, B, Select, Start}

// Joypad holds the P1 column-select bits and the most recent button
// snapshot folded in by the frame loop.
type Joypad struct {
	selectBits uint8 // bits 5..4 of P1, as last written by the CPU
	state      State
}

// New returns a Joypad with no column selected and nothing pressed.
func New() *Joypad {
	return &Joypad{selectBits: 0x30}
}

// Result reports whether folding in a new button snapshot raised the
// Joypad interrupt (any exposed bit made a 1->0 transition).
type Result struct {
	Raised bool
}

// Apply replaces the current button snapshot and reports whether any
// currently-selected, currently-exposed bit made a 1->0 transition, per
// spec.md §4.7.
func (j *Joypad) Apply(state State) Result {
	before := j.exposedBits()
	j.state = state
	after := j.exposedBits()

	fellLow := before &^ after // bits that were 1 and are now 0
	return Result{Raised: fellLow&0x0F != 0}
}

// exposedBits computes the low nibble as it currently reads: a bit is 0
// when its column is selected and the corresponding button is pressed.
func (j *Joypad) exposedBits() uint8 {
	var bits uint8 = 0x0F
	if j.selectBits&0x10 == 0 { // P14 selected: DPad
		bits &= j.columnBits(dpadBits)
	}
	if j.selectBits&0x20 == 0 { // P15 selected: face buttons
		bits &= j.columnBits(faceBits)
	}
	return bits
}

func (j *Joypad) columnBits(layout [4]Button) uint8 {
	var bits uint8
	for i, b := range layout {
		if !j.state.Pressed(b) {
			bits |= 1 << i
		}
	}
	return bits
}

// Read returns the P1 register: bits 7..6 read as 1, bits 5..4 are the
// last-written column-select bits, bits 3..0 reflect the selected column(s).
func (j *Joypad) Read(address uint16) uint8 {
	if address != addr.P1 {
		return 0xFF
	}
	return 0xC0 | j.selectBits | j.exposedBits()
}

// Write updates the column-select bits and reports whether the new
// selection exposed an already-pressed button, which is itself a 1->0
// transition on the exposed nibble and must raise the Joypad interrupt
// exactly as a button press does.
func (j *Joypad) Write(address uint16, value uint8) Result {
	if address != addr.P1 {
		return Result{}
	}
	before := j.exposedBits()
	j.selectBits = value & 0x30
	after := j.exposedBits()

	fellLow := before &^ after
	return Result{Raised: fellLow&0x0F != 0}
}
