package cartridge

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	titleAddress         = 0x134
	titleLength          = 16
	cartridgeTypeAddress = 0x147
	romSizeAddress       = 0x148
	ramSizeAddress       = 0x149
	headerEnd            = 0x150
)

// MapperType identifies which bank-switching scheme a cartridge uses.
// Only the variants spec.md names are modeled: a bare pass-through, MBC1,
// and MBC5. Anything else is reported as unsupported at load time.
type MapperType uint8

const (
	MapperNone MapperType = iota
	MapperMBC1
	MapperMBC5
	MapperUnsupported
)

func (m MapperType) String() string {
	switch m {
	case MapperNone:
		return "ROM ONLY"
	case MapperMBC1:
		return "MBC1"
	case MapperMBC5:
		return "MBC5"
	default:
		return "unsupported"
	}
}

// Header holds the parsed, immutable metadata from a cartridge's 0x0100-0x014F
// header block.
type Header struct {
	Title         string
	Mapper        MapperType
	CartTypeByte  byte
	ROMBankCount  int
	RAMBankCount  int
	HasBattery    bool
}

// mapperTable maps the raw 0x147 cartridge-type byte to the MapperType and
// battery-backed flag spec.md's mapper variant expects.
var mapperTable = map[byte]struct {
	mapper     MapperType
	hasBattery bool
}{
	0x00: {MapperNone, false},
	0x01: {MapperMBC1, false},
	0x02: {MapperMBC1, false},
	0x03: {MapperMBC1, true},
	0x19: {MapperMBC5, false},
	0x1A: {MapperMBC5, false},
	0x1B: {MapperMBC5, true},
	0x1C: {MapperMBC5, false}, // rumble, no RAM
	0x1D: {MapperMBC5, false}, // rumble + RAM
	0x1E: {MapperMBC5, true},  // rumble + RAM + battery
}

// ramBankCounts maps the raw 0x149 RAM-size byte to a bank count (8 KiB/bank).
var ramBankCounts = map[byte]int{
	0x00: 0,
	0x01: 1, // 2 KiB, treated as a single partial bank
	0x02: 1,
	0x03: 4,
	0x04: 16,
	0x05: 8,
}

// ParseHeader reads the cartridge header out of a raw ROM image. It returns
// an error if the image is too short to contain a header; an unrecognized
// mapper byte is reported via Header.Mapper == MapperUnsupported rather than
// an error, so the caller can decide how to report it (see cmd/dmgcore).
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerEnd {
		return Header{}, fmt.Errorf("cartridge: image too short to contain a header (%d bytes)", len(data))
	}

	titleBytes := data[titleAddress : titleAddress+titleLength]
	title := cleanTitle(titleBytes)

	typeByte := data[cartridgeTypeAddress]
	romSizeByte := data[romSizeAddress]
	ramSizeByte := data[ramSizeAddress]

	entry, ok := mapperTable[typeByte]
	if !ok {
		entry = struct {
			mapper     MapperType
			hasBattery bool
		}{MapperUnsupported, false}
	}

	romBanks := 2 << romSizeByte // bank count = 2 * 2^n, per the DMG header convention
	ramBanks := ramBankCounts[ramSizeByte]

	return Header{
		Title:        title,
		Mapper:       entry.mapper,
		CartTypeByte: typeByte,
		ROMBankCount: romBanks,
		RAMBankCount: ramBanks,
		HasBattery:   entry.hasBattery,
	}, nil
}

// cleanTitle converts the raw, NUL-padded title bytes into a printable string.
func cleanTitle(raw []byte) string {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		r := rune(b)
		switch {
		case r == 0:
			continue
		case unicode.IsPrint(r):
			runes = append(runes, r)
		default:
			runes = append(runes, '?')
		}
	}
	title := strings.TrimSpace(string(runes))
	if title == "" {
		title = "(untitled)"
	}
	return title
}
