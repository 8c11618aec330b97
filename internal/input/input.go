// Package input maps host key events onto Game Boy buttons and emulator
// control actions, grounded on the teacher's jeebie/input package: a flat
// Action enum, a Press/Release/Hold event type, and a debouncing Handler
// for actions that shouldn't repeat on every frame a key is held.
package input

import (
	"time"

	"github.com/corewave/dmgcore/internal/joypad"
)

// Action is one input action a presenter can report, whether it maps to a
// Game Boy button or to an emulator control.
type Action int

const (
	GBDPadUp Action = iota
	GBDPadDown
	GBDPadLeft
	GBDPadRight
	GBButtonA
	GBButtonB
	GBButtonSelect
	GBButtonStart

	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorStepInstruction
	EmulatorQuit
)

// EventType distinguishes a fresh key-down from a release or a held key.
type EventType int

const (
	Press EventType = iota
	Release
	Hold
)

// Event is a single input occurrence a presenter collects during its
// per-frame poll and hands to the emulator loop.
type Event struct {
	Action Action
	Type   EventType
}

// joypadButton maps a GB* Action to the joypad button it drives; returns
// ok=false for emulator-control actions.
func joypadButton(a Action) (joypad.Button, bool) {
	switch a {
	case GBDPadUp:
		return joypad.Up, true
	case GBDPadDown:
		return joypad.Down, true
	case GBDPadLeft:
		return joypad.Left, true
	case GBDPadRight:
		return joypad.Right, true
	case GBButtonA:
		return joypad.A, true
	case GBButtonB:
		return joypad.B, true
	case GBButtonSelect:
		return joypad.Select, true
	case GBButtonStart:
		return joypad.Start, true
	default:
		return 0, false
	}
}

// DefaultKeyMap implements spec.md §6's suggested input mapping: arrow keys
// to the DPad, Z/X to B/A, Enter/Shift to Start/Select, Escape to quit.
var DefaultKeyMap = map[string]Action{
	"Up":     GBDPadUp,
	"Down":   GBDPadDown,
	"Left":   GBDPadLeft,
	"Right":  GBDPadRight,
	"z":      GBButtonB,
	"x":      GBButtonA,
	"Enter":  GBButtonStart,
	"Shift":  GBButtonSelect,
	"Escape": EmulatorQuit,
	"Space":  EmulatorPauseToggle,
	"o":      EmulatorStepFrame,
	"i":      EmulatorStepInstruction,
}

// debounceDelay matches the teacher's handler: UI actions (pause, step)
// shouldn't re-fire faster than this even if the key repeats; GB buttons are
// never debounced since the presenter reports their state every frame.
const debounceDelay = 300 * time.Millisecond

// Handler applies debouncing to Press/Release events for emulator-control
// actions, grounded on jeebie/input/handler.go.
type Handler struct {
	state          joypad.State
	lastActionTime map[Action]time.Time
}

// NewHandler returns a Handler with every button released.
func NewHandler() *Handler {
	return &Handler{
		state:          joypad.NewState(),
		lastActionTime: make(map[Action]time.Time),
	}
}

// Process folds one Event into the handler's joypad snapshot and reports
// whether the event should be acted on (false if it was debounced).
func (h *Handler) Process(evt Event, now time.Time) bool {
	if button, ok := joypadButton(evt.Action); ok {
		h.state.Set(button, evt.Type != Release)
		return true
	}

	if evt.Type == Press || evt.Type == Release {
		if last, exists := h.lastActionTime[evt.Action]; exists && now.Sub(last) < debounceDelay {
			return false
		}
		h.lastActionTime[evt.Action] = now
	}

	return true
}

// JoypadState returns the current button snapshot for the frame loop to
// apply to the bus.
func (h *Handler) JoypadState() joypad.State { return h.state }
