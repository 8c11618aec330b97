// Package video implements the LCD controller described in spec.md §4.5: a
// four-state mode state machine, a per-line background/window/sprite
// rasterizer, and the video RAM and OAM memory the CPU addresses through
// the bus.
package video

import (
	"github.com/corewave/dmgcore/internal/addr"
	"github.com/corewave/dmgcore/internal/bit"
)

// Mode is the PPU's current stage, matching STAT bits 1..0.
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOamScan
	ModeTransfer
)

const (
	oamScanCycles  = 80
	transferCycles = 172
	hblankCycles   = 204
	lineCycles     = oamScanCycles + transferCycles + hblankCycles // 456
	lastLine       = 153
	visibleLines   = 144
)

// LCD owns video RAM, OAM, the LCD control/status registers, and the
// framebuffer it rasterizes into.
type LCD struct {
	vram [0x2000]uint8
	oam  [0xA0]uint8

	lcdc, stat           uint8
	scy, scx             uint8
	ly, lyc              uint8
	bgp, obp0, obp1      uint8
	wy, wx               uint8

	mode       Mode
	cycles     int
	windowLine int

	fb FrameBuffer
}

// New returns an LCD with VRAM/OAM zeroed and the mode machine parked in
// OamScan at line 0, matching a fresh power-on state before the boot ROM
// (not modeled here) would normally enable the display.
func New() *LCD {
	return &LCD{mode: ModeOamScan}
}

// FrameBuffer returns the surface most recently rendered into. Safe to read
// between Tick calls; the frame loop reads it at VBlank per spec.md §5.
func (l *LCD) FrameBuffer() *FrameBuffer { return &l.fb }

func (l *LCD) LY() uint8 { return l.ly }
func (l *LCD) Mode() Mode { return l.mode }

// Result reports which interrupts a Tick call raised.
type Result struct {
	VBlank bool
	STAT   bool
}

// Tick advances the mode state machine by cycles CPU clock ticks, per
// spec.md §4.5's state table, rendering the current line at the
// Transfer->HBlank boundary and raising VBlank/STAT interrupts on the
// documented transitions.
func (l *LCD) Tick(cycles int) Result {
	var res Result
	if l.lcdc&0x80 == 0 {
		return res
	}

	l.cycles += cycles
	for {
		switch l.mode {
		case ModeOamScan:
			if l.cycles < oamScanCycles {
				return res
			}
			l.cycles -= oamScanCycles
			l.setMode(ModeTransfer, &res)

		case ModeTransfer:
			if l.cycles < transferCycles {
				return res
			}
			l.cycles -= transferCycles
			l.renderLine()
			l.setMode(ModeHBlank, &res)

		case ModeHBlank:
			if l.cycles < hblankCycles {
				return res
			}
			l.cycles -= hblankCycles
			if l.ly == visibleLines-1 {
				l.setLY(visibleLines, &res)
				l.windowLine = 0
				l.setMode(ModeVBlank, &res)
				res.VBlank = true
			} else {
				l.setLY(l.ly+1, &res)
				l.setMode(ModeOamScan, &res)
			}

		case ModeVBlank:
			if l.cycles < lineCycles {
				return res
			}
			l.cycles -= lineCycles
			if l.ly == lastLine {
				l.setLY(0, &res)
				l.setMode(ModeOamScan, &res)
			} else {
				l.setLY(l.ly+1, &res)
			}
		}
	}
}

// setMode updates STAT's mode bits and raises the STAT interrupt if the
// newly-entered mode's corresponding enable bit (3=HBlank, 4=VBlank,
// 5=OamScan) is set.
func (l *LCD) setMode(m Mode, res *Result) {
	l.mode = m
	l.stat = (l.stat &^ 0x03) | uint8(m)

	switch m {
	case ModeHBlank:
		if bit.IsSet(3, l.stat) {
			res.STAT = true
		}
	case ModeVBlank:
		if bit.IsSet(4, l.stat) {
			res.STAT = true
		}
	case ModeOamScan:
		if bit.IsSet(5, l.stat) {
			res.STAT = true
		}
	}
}

// setLY updates the line counter and the coincidence flag/interrupt, per
// spec.md §4.5: "LY == LYC comparison updates STAT bit 2 at every LY
// change; if STAT bit 6 is set and coincidence just became true, raise
// STAT interrupt."
func (l *LCD) setLY(ly uint8, res *Result) {
	wasCoincident := l.ly == l.lyc
	l.ly = ly
	isCoincident := l.ly == l.lyc

	if isCoincident {
		l.stat |= 0x04
	} else {
		l.stat &^= 0x04
	}

	if !wasCoincident && isCoincident && l.stat&0x40 != 0 {
		res.STAT = true
	}
}

// disable implements spec.md §4.5's "Disable" rule: clearing LCDC bit 7
// resets LY to 0, mode to HBlank, and the cycle accumulator to 0.
func (l *LCD) disable() {
	l.ly = 0
	l.stat &^= 0x03
	l.mode = ModeHBlank
	l.cycles = 0
	l.windowLine = 0
}

// enable implements spec.md §4.5's re-enable rule: setting LCDC bit 7 resumes
// from OamScan with LY=0, rather than continuing mid-frame from HBlank.
func (l *LCD) enable() {
	l.ly = 0
	l.stat &^= 0x03
	l.mode = ModeOamScan
	l.cycles = 0
	l.windowLine = 0
}

// Read implements the bus-visible reads for VRAM, OAM, and the LCD
// registers.
func (l *LCD) Read(address uint16) uint8 {
	switch {
	case address >= 0x8000 && address <= 0x9FFF:
		return l.vram[address-0x8000]
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		return l.oam[address-addr.OAMStart]
	case address == addr.LCDC:
		return l.lcdc
	case address == addr.STAT:
		return l.stat | 0x80
	case address == addr.SCY:
		return l.scy
	case address == addr.SCX:
		return l.scx
	case address == addr.LY:
		return l.ly
	case address == addr.LYC:
		return l.lyc
	case address == addr.BGP:
		return l.bgp
	case address == addr.OBP0:
		return l.obp0
	case address == addr.OBP1:
		return l.obp1
	case address == addr.WY:
		return l.wy
	case address == addr.WX:
		return l.wx
	default:
		return 0xFF
	}
}

// Write implements the bus-visible writes. LY is read-only and writes to it
// are silently ignored, per spec.md §4.3.
func (l *LCD) Write(address uint16, value uint8) {
	switch {
	case address >= 0x8000 && address <= 0x9FFF:
		l.vram[address-0x8000] = value
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		l.oam[address-addr.OAMStart] = value
	case address == addr.LCDC:
		wasEnabled := bit.IsSet(7, l.lcdc)
		nowEnabled := bit.IsSet(7, value)
		l.lcdc = value
		if wasEnabled && !nowEnabled {
			l.disable()
		} else if !wasEnabled && nowEnabled {
			l.enable()
		}
	case address == addr.STAT:
		l.stat = (l.stat & 0x07) | (value &^ 0x07)
	case address == addr.SCY:
		l.scy = value
	case address == addr.SCX:
		l.scx = value
	case address == addr.LY:
		// read-only
	case address == addr.LYC:
		l.lyc = value
	case address == addr.BGP:
		l.bgp = value
	case address == addr.OBP0:
		l.obp0 = value
	case address == addr.OBP1:
		l.obp1 = value
	case address == addr.WY:
		l.wy = value
	case address == addr.WX:
		l.wx = value
	}
}

// WriteOAMDMA copies 160 bytes into OAM directly from a source slice in one
// call, used by the bus's atomic OAM DMA transfer (spec.md §4.3).
func (l *LCD) WriteOAMDMA(src []uint8) {
	copy(l.oam[:], src)
}
