package video

import "github.com/corewave/dmgcore/internal/addr"

// renderLine rasterizes the current LY into the framebuffer, following
// spec.md §4.5's layering order: background, then window, then sprites.
// bgColorIndex tracks each pixel's raw background/window color index (pre-
// palette) so sprite BG-priority can consult it.
func (l *LCD) renderLine() {
	var bgColorIndex [Width]uint8

	l.renderBackground(&bgColorIndex)
	l.renderWindow(&bgColorIndex)
	l.renderSprites(&bgColorIndex)
}

func (l *LCD) renderBackground(bgColorIndex *[Width]uint8) {
	y := int(l.ly)

	if l.lcdc&0x01 == 0 {
		shade := Shade(l.bgp & 0x03)
		for x := 0; x < Width; x++ {
			l.fb.set(x, y, shade.RGBA())
			bgColorIndex[x] = 0
		}
		return
	}

	tileMapAddr := l.bgTileMapAddr()
	mapY := (y + int(l.scy)) & 0xFF
	tileRow := mapY / 8
	pixelY := mapY % 8

	for x := 0; x < Width; x++ {
		mapX := (x + int(l.scx)) & 0xFF
		tileCol := mapX / 8
		pixelX := mapX % 8

		tileIndex := l.vram[tileMapAddr+uint16(tileRow*32+tileCol)-0x8000]
		low, high := l.tileRowBytes(tileIndex, pixelY)

		color := pixelColor(low, high, pixelX)
		shade := Shade((l.bgp >> (color * 2)) & 0x03)

		l.fb.set(x, y, shade.RGBA())
		bgColorIndex[x] = color
	}
}

func (l *LCD) renderWindow(bgColorIndex *[Width]uint8) {
	if l.lcdc&0x20 == 0 {
		return
	}

	y := int(l.ly)
	wx := int(l.wx) - 7
	wy := int(l.wy)

	if y < wy {
		return
	}

	tileMapAddr := l.windowTileMapAddr()
	tileRow := l.windowLine / 8
	pixelY := l.windowLine % 8
	rendered := false

	for x := 0; x < Width; x++ {
		screenX := x
		if screenX < wx {
			continue
		}
		winX := screenX - wx
		tileCol := winX / 8
		pixelX := winX % 8

		tileIndex := l.vram[tileMapAddr+uint16(tileRow*32+tileCol)-0x8000]
		low, high := l.tileRowBytes(tileIndex, pixelY)

		color := pixelColor(low, high, pixelX)
		shade := Shade((l.bgp >> (color * 2)) & 0x03)

		l.fb.set(screenX, y, shade.RGBA())
		bgColorIndex[screenX] = color
		rendered = true
	}

	if rendered {
		l.windowLine++
	}
}

type spriteEntry struct {
	oamIndex int
	y, x     int
	tile     uint8
	flags    uint8
}

// spritePriority tracks, per screen-X pixel, which sprite currently owns it.
// Real DMG hardware priority is lower-X-wins, with OAM index only breaking
// ties at equal X; this mirrors the teacher's SpritePriorityBuffer, which
// claims ownership up front rather than sorting sprites before drawing.
type spritePriority struct {
	ownerIndex [Width]int
	ownerX     [Width]int
}

func (p *spritePriority) reset() {
	for i := range p.ownerIndex {
		p.ownerIndex[i] = -1
		p.ownerX[i] = 0xFF
	}
}

// tryClaim reports whether sprite (oamIndex, spriteX) now owns pixelX.
func (p *spritePriority) tryClaim(pixelX, oamIndex, spriteX int) bool {
	if pixelX < 0 || pixelX >= Width {
		return false
	}

	switch {
	case p.ownerIndex[pixelX] == -1,
		spriteX < p.ownerX[pixelX],
		spriteX == p.ownerX[pixelX] && oamIndex < p.ownerIndex[pixelX]:
		p.ownerIndex[pixelX] = oamIndex
		p.ownerX[pixelX] = spriteX
		return true
	default:
		return false
	}
}

func (p *spritePriority) ownerAt(pixelX int) int {
	if pixelX < 0 || pixelX >= Width {
		return -1
	}
	return p.ownerIndex[pixelX]
}

func (l *LCD) renderSprites(bgColorIndex *[Width]uint8) {
	if l.lcdc&0x02 == 0 {
		return
	}

	height := 8
	if l.lcdc&0x04 != 0 {
		height = 16
	}

	y := int(l.ly)
	var sprites []spriteEntry
	for i := 0; i < 40 && len(sprites) < 10; i++ {
		base := i * 4
		spriteY := int(l.oam[base]) - 16
		if y < spriteY || y >= spriteY+height {
			continue
		}
		sprites = append(sprites, spriteEntry{
			oamIndex: i,
			y:        spriteY,
			x:        int(l.oam[base+1]) - 8,
			tile:     l.oam[base+2],
			flags:    l.oam[base+3],
		})
	}

	var priority spritePriority
	priority.reset()
	for _, s := range sprites {
		for px := 0; px < 8; px++ {
			priority.tryClaim(s.x+px, s.oamIndex, s.x)
		}
	}

	for _, s := range sprites {
		l.renderSprite(s, y, height, bgColorIndex, &priority)
	}
}

func (l *LCD) renderSprite(s spriteEntry, y, height int, bgColorIndex *[Width]uint8, priority *spritePriority) {
	row := y - s.y
	if s.flags&0x40 != 0 { // Y-flip
		row = height - 1 - row
	}

	tile := s.tile
	if height == 16 {
		tile &^= 0x01
		if row >= 8 {
			tile |= 0x01
			row -= 8
		}
	}

	low, high := l.tileRowBytesAt(addr.TileData0, tile, row)

	palette := l.obp0
	if s.flags&0x10 != 0 {
		palette = l.obp1
	}
	bgPriority := s.flags&0x80 != 0

	for px := 0; px < 8; px++ {
		x := s.x + px
		if x < 0 || x >= Width {
			continue
		}
		if priority.ownerAt(x) != s.oamIndex {
			continue
		}

		col := px
		if s.flags&0x20 != 0 { // X-flip
			col = 7 - px
		}

		color := pixelColor(low, high, col)
		if color == 0 {
			continue // transparent
		}
		if bgPriority && bgColorIndex[x] != 0 {
			continue
		}

		shade := Shade((palette >> (color * 2)) & 0x03)
		l.fb.set(x, y, shade.RGBA())
	}
}

func (l *LCD) bgTileMapAddr() uint16 {
	if l.lcdc&0x08 != 0 {
		return addr.TileMap1
	}
	return addr.TileMap0
}

func (l *LCD) windowTileMapAddr() uint16 {
	if l.lcdc&0x40 != 0 {
		return addr.TileMap1
	}
	return addr.TileMap0
}

// tileRowBytes resolves one 8-pixel row of a background/window tile,
// honoring LCDC bit 4's signed/unsigned tile-indexing mode.
func (l *LCD) tileRowBytes(tileIndex uint8, row int) (low, high uint8) {
	if l.lcdc&0x10 != 0 {
		return l.tileRowBytesAt(addr.TileData0, tileIndex, row)
	}
	offset := int(int8(tileIndex)) * 16
	base := int(addr.TileData2) + offset + row*2
	return l.vram[uint16(base)-0x8000], l.vram[uint16(base+1)-0x8000]
}

// tileRowBytesAt resolves one 8-pixel tile row from a fixed, always-unsigned
// base address, used for sprite tiles (always 0x8000-based per spec.md §4.5).
func (l *LCD) tileRowBytesAt(base uint16, tileIndex uint8, row int) (low, high uint8) {
	tileAddr := base + uint16(tileIndex)*16 + uint16(row*2)
	return l.vram[tileAddr-0x8000], l.vram[tileAddr+1-0x8000]
}

// pixelColor combines the low/high tile-data bitplanes into a 2-bit color
// index for the pixel at column x within the row (0=leftmost).
func pixelColor(low, high uint8, x int) uint8 {
	bit := uint(7 - x)
	var color uint8
	if low&(1<<bit) != 0 {
		color |= 1
	}
	if high&(1<<bit) != 0 {
		color |= 2
	}
	return color
}
