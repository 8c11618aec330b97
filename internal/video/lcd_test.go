package video

import (
	"testing"

	"github.com/corewave/dmgcore/internal/addr"
	"github.com/stretchr/testify/assert"
)

func TestProperty_LYSequenceOverOneFrame(t *testing.T) {
	l := New()
	l.Write(addr.LCDC, 0x91) // LCD + BG enabled

	var lyAtCycle [70224]uint8
	for c := 0; c < 70224; c++ {
		lyAtCycle[c] = l.LY()
		l.Tick(1)
	}

	assert.Equal(t, uint8(0), l.LY(), "LY must be back to 0 after exactly one frame")

	for line := 0; line < 154; line++ {
		start := line * 456
		for i := 0; i < 456; i++ {
			assert.Equal(t, uint8(line), lyAtCycle[start+i], "line %d, offset %d", line, i)
		}
	}
}

func TestScenario_VBlankFrame(t *testing.T) {
	l := New()
	l.Write(addr.LCDC, 0x91)
	l.Write(addr.STAT, 0x10) // VBlank STAT enable, irrelevant to the VBlank-interrupt flag itself

	vblankCount := 0
	for c := 0; c < 70224; c += 4 {
		res := l.Tick(4)
		if res.VBlank {
			vblankCount++
		}
	}

	assert.Equal(t, 1, vblankCount, "exactly one VBlank interrupt per frame")
	assert.Equal(t, uint8(0), l.LY())
}

func TestScenario_STATCoincidence(t *testing.T) {
	l := New()
	l.Write(addr.LCDC, 0x91)
	l.Write(addr.LYC, 42)
	l.Write(addr.STAT, 0x40) // coincidence interrupt enable

	dispatchCycle := -1
	for c := 0; c < 456*50; c += 4 {
		res := l.Tick(4)
		if res.STAT && l.LY() == 42 {
			dispatchCycle = c
			break
		}
	}

	assert.NotEqual(t, -1, dispatchCycle, "STAT coincidence interrupt must fire when LY reaches 42")
	assert.LessOrEqual(t, dispatchCycle, 42*456)
}

func TestDisable_ResetsLYAndMode(t *testing.T) {
	l := New()
	l.Write(addr.LCDC, 0x91)
	l.Tick(500) // advance partway into the frame

	l.Write(addr.LCDC, 0x11) // clear bit 7: disable
	assert.Equal(t, uint8(0), l.LY())
	assert.Equal(t, ModeHBlank, l.Mode())
}

func TestEnable_ResumesFromOamScanAtLY0(t *testing.T) {
	l := New()
	l.Write(addr.LCDC, 0x91)
	l.Tick(500) // advance partway into the frame, past line 0

	l.Write(addr.LCDC, 0x11) // clear bit 7: disable
	l.Write(addr.LCDC, 0x91) // set bit 7: re-enable

	assert.Equal(t, uint8(0), l.LY(), "LY must reset to 0 on re-enable")
	assert.Equal(t, ModeOamScan, l.Mode(), "re-enable must resume from OamScan, not HBlank")

	res := l.Tick(oamScanCycles)
	assert.Equal(t, ModeTransfer, l.Mode(), "line 0's OamScan must still run after re-enable")
	assert.False(t, res.VBlank)
}

func TestWrite_LYIsReadOnly(t *testing.T) {
	l := New()
	l.Write(addr.LCDC, 0x91)
	l.Tick(1000)
	before := l.LY()
	l.Write(addr.LY, 99)
	assert.Equal(t, before, l.LY())
}

func TestRenderBackground_SimpleTile(t *testing.T) {
	l := New()
	l.Write(addr.LCDC, 0x91) // LCD+BG enabled, tile data 0x8000 unsigned, map 0x9800
	l.Write(addr.BGP, 0xE4)  // standard identity palette: 3,2,1,0

	// tile 0 at map (0,0): set pixel column 0 to color index 3 (both bitplanes set).
	l.Write(0x8000, 0x80)
	l.Write(0x8001, 0x80)

	// run through OamScan+Transfer for line 0
	l.Tick(oamScanCycles)
	l.Tick(transferCycles)

	shade := Shade(3)
	assert.Equal(t, shade.RGBA(), l.fb.buffer[0])
}
