// Package bus implements the address-space router described in spec.md
// §4.3: it dispatches CPU reads/writes to cartridge, video RAM/OAM, work
// RAM, the timer, joypad, serial port, and the interrupt registers, and
// performs OAM DMA transfers.
package bus

import (
	"log/slog"

	"github.com/corewave/dmgcore/internal/addr"
	"github.com/corewave/dmgcore/internal/cartridge"
	"github.com/corewave/dmgcore/internal/joypad"
	"github.com/corewave/dmgcore/internal/serial"
	"github.com/corewave/dmgcore/internal/timer"
	"github.com/corewave/dmgcore/internal/video"
)

// Bus owns every peripheral the CPU addresses and routes traffic between
// them. It satisfies cpu.Bus structurally.
type Bus struct {
	Cartridge *cartridge.Cartridge
	Video     *video.LCD
	Timer     *timer.Timer
	Joypad    *joypad.Joypad
	Serial    *serial.Serial

	wram [0x2000]uint8
	hram [0x7F]uint8
	snd  [0x30]uint8

	ifReg uint8
	ieReg uint8
	dma   uint8
}

// New wires a Bus around an already-loaded cartridge, constructing fresh
// peripheral state for everything else.
func New(cart *cartridge.Cartridge) *Bus {
	return &Bus{
		Cartridge: cart,
		Video:     video.New(),
		Timer:     timer.New(),
		Joypad:    joypad.New(),
		Serial:    serial.New(),
	}
}

// Read implements cpu.Bus: every address always completes and returns a
// byte, per spec.md §4.3's read/write contract.
func (b *Bus) Read(address uint16) uint8 {
	switch {
	case address <= 0x7FFF:
		return b.Cartridge.Read(address)
	case address >= 0x8000 && address <= 0x9FFF:
		return b.Video.Read(address)
	case address >= 0xA000 && address <= 0xBFFF:
		return b.Cartridge.Read(address)
	case address >= 0xC000 && address <= 0xDFFF:
		return b.wram[address-0xC000]
	case address >= 0xE000 && address <= 0xFDFF:
		return b.wram[address-0x2000-0xC000]
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		return b.Video.Read(address)
	case address >= 0xFEA0 && address <= 0xFEFF:
		return 0xFF
	case address == addr.P1:
		return b.Joypad.Read(address)
	case address == addr.SB, address == addr.SC:
		return b.Serial.Read(address)
	case address == addr.DIV, address == addr.TIMA, address == addr.TMA, address == addr.TAC:
		return b.Timer.Read(address)
	case address == addr.IF:
		return b.ifReg | 0xE0
	case address == addr.DMA:
		return b.dma
	case address >= addr.SoundStart && address <= addr.SoundEnd:
		return b.snd[address-addr.SoundStart] // sound registers are inert storage per spec.md §1's audio Non-goal
	case address >= addr.LCDC && address <= addr.WX:
		return b.Video.Read(address)
	case address >= 0xFF80 && address <= 0xFFFE:
		return b.hram[address-0xFF80]
	case address == addr.IE:
		return b.ieReg
	default:
		return 0xFF
	}
}

// Write implements cpu.Bus.
func (b *Bus) Write(address uint16, value uint8) {
	switch {
	case address <= 0x7FFF:
		b.Cartridge.Write(address, value)
	case address >= 0x8000 && address <= 0x9FFF:
		b.Video.Write(address, value)
	case address >= 0xA000 && address <= 0xBFFF:
		b.Cartridge.Write(address, value)
	case address >= 0xC000 && address <= 0xDFFF:
		b.wram[address-0xC000] = value
	case address >= 0xE000 && address <= 0xFDFF:
		b.wram[address-0x2000-0xC000] = value
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		b.Video.Write(address, value)
	case address >= 0xFEA0 && address <= 0xFEFF:
		// unused region: writes ignored
	case address == addr.P1:
		b.foldJoypad(b.Joypad.Write(address, value))
	case address == addr.SB, address == addr.SC:
		b.Serial.Write(address, value)
	case address == addr.DIV, address == addr.TIMA, address == addr.TMA, address == addr.TAC:
		b.Timer.Write(address, value)
	case address == addr.IF:
		b.ifReg = value & 0x1F
	case address == addr.DMA:
		b.dma = value
		b.doOAMDMA(value)
	case address >= addr.SoundStart && address <= addr.SoundEnd:
		b.snd[address-addr.SoundStart] = value // inert storage per spec.md §1's audio Non-goal
	case address >= addr.LCDC && address <= addr.WX:
		b.Video.Write(address, value)
	case address >= 0xFF80 && address <= 0xFFFE:
		b.hram[address-0xFF80] = value
	case address == addr.IE:
		b.ieReg = value
	default:
		slog.Warn("write to unmapped address", "address", address, "value", value)
	}
}

// IF, SetIF, and IE satisfy cpu.Bus.
func (b *Bus) IF() uint8         { return b.ifReg | 0xE0 }
func (b *Bus) SetIF(value uint8) { b.ifReg = value & 0x1F }
func (b *Bus) IE() uint8         { return b.ieReg }

// RequestInterrupt ORs the given source's bit into IF, used by peripherals'
// Advance/Tick/Apply results once folded in by the frame loop.
func (b *Bus) RequestInterrupt(source addr.Interrupt) {
	b.ifReg |= uint8(source)
}

func (b *Bus) foldJoypad(res joypad.Result) {
	if res.Raised {
		b.RequestInterrupt(addr.Joypad)
	}
}

// doOAMDMA implements spec.md §4.3's atomic OAM DMA transfer: 160 bytes
// copied from (v<<8)..(v<<8)+0xA0 into OAM before the triggering write
// returns.
func (b *Bus) doOAMDMA(v uint8) {
	src := uint16(v) << 8
	buf := make([]uint8, 0xA0)
	for i := range buf {
		buf[i] = b.Read(src + uint16(i))
	}
	b.Video.WriteOAMDMA(buf)
}

// AdvancePeripherals runs Timer, Serial, and the LCD forward by cycles CPU
// clock ticks and folds their interrupt results into IF, implementing the
// ordering spec.md §5 specifies: Timer, then Serial, then LCD, then Joypad
// (Joypad is folded in separately, by the frame loop, as button snapshots
// arrive independently of the CPU clock).
func (b *Bus) AdvancePeripherals(cycles int) {
	if b.Timer.Advance(cycles).Overflowed {
		b.RequestInterrupt(addr.Timer)
	}
	if b.Serial.Advance(cycles).Completed {
		b.RequestInterrupt(addr.Serial)
	}
	res := b.Video.Tick(cycles)
	if res.VBlank {
		b.RequestInterrupt(addr.VBlank)
	}
	if res.STAT {
		b.RequestInterrupt(addr.LCDStat)
	}
}

// ApplyButtons folds a new joypad snapshot in, raising the Joypad interrupt
// if any exposed button made a 1->0 transition.
func (b *Bus) ApplyButtons(state joypad.State) {
	b.foldJoypad(b.Joypad.Apply(state))
}
