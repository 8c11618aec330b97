package input

import (
	"testing"
	"time"

	"github.com/corewave/dmgcore/internal/joypad"
	"github.com/stretchr/testify/assert"
)

func TestProcess_GBButtonNeverDebounced(t *testing.T) {
	h := NewHandler()
	now := time.Now()

	assert.True(t, h.Process(Event{Action: GBButtonA, Type: Press}, now))
	assert.True(t, h.Process(Event{Action: GBButtonA, Type: Press}, now.Add(time.Millisecond)))
	assert.True(t, h.JoypadState().Pressed(joypad.A))
}

func TestProcess_UIActionDebouncedWhenRapid(t *testing.T) {
	h := NewHandler()
	now := time.Now()

	assert.True(t, h.Process(Event{Action: EmulatorPauseToggle, Type: Press}, now))
	assert.False(t, h.Process(Event{Action: EmulatorPauseToggle, Type: Press}, now.Add(100*time.Millisecond)))
	assert.True(t, h.Process(Event{Action: EmulatorPauseToggle, Type: Press}, now.Add(400*time.Millisecond)))
}

func TestProcess_ReleaseClearsButton(t *testing.T) {
	h := NewHandler()
	now := time.Now()

	h.Process(Event{Action: GBDPadUp, Type: Press}, now)
	assert.True(t, h.JoypadState().Pressed(joypad.Up))

	h.Process(Event{Action: GBDPadUp, Type: Release}, now)
	assert.False(t, h.JoypadState().Pressed(joypad.Up))
}
