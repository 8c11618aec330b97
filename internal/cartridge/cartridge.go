// Package cartridge owns the immutable ROM image, the parsed header, and the
// bank-switching mapper that routes CPU reads/writes through it.
package cartridge

import "fmt"

// Cartridge is an immutable ROM byte vector plus its parsed header and the
// mapper that arbitrates access to it. External RAM (when present) lives
// inside the mapper and persists for the cartridge's lifetime, per spec.md
// §3's lifecycle rule and §1's Non-goal on persisting it to disk.
type Cartridge struct {
	Header Header
	mapper Mapper
}

// ErrUnsupportedMapper is returned by New when the header names a mapper
// type outside {None, MBC1, MBC5}.
type ErrUnsupportedMapper struct {
	TypeByte byte
}

func (e *ErrUnsupportedMapper) Error() string {
	return fmt.Sprintf("unsupported cartridge mapper type byte 0x%02X", e.TypeByte)
}

// New parses the header out of data and constructs the matching mapper.
// The mapper holds a private copy of data, so later changes to the caller's
// slice do not affect the cartridge.
func New(data []byte) (*Cartridge, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	if header.Mapper == MapperUnsupported {
		return nil, &ErrUnsupportedMapper{TypeByte: header.CartTypeByte}
	}

	rom := make([]byte, len(data))
	copy(rom, data)

	var mapper Mapper
	switch header.Mapper {
	case MapperNone:
		mapper = newNoMBC(rom)
	case MapperMBC1:
		mapper = newMBC1(rom, header.RAMBankCount, header.ROMBankCount)
	case MapperMBC5:
		mapper = newMBC5(rom, header.RAMBankCount, header.ROMBankCount)
	}

	return &Cartridge{Header: header, mapper: mapper}, nil
}

// Read routes a CPU read through the mapper. address must be in
// 0x0000-0x7FFF (ROM) or 0xA000-0xBFFF (external RAM); any other address
// returns 0xFF, matching spec.md's "no RAM" fallback for the None mapper.
func (c *Cartridge) Read(address uint16) uint8 {
	return c.mapper.Read(address)
}

// Write routes a CPU write through the mapper.
func (c *Cartridge) Write(address uint16, value uint8) {
	c.mapper.Write(address, value)
}
