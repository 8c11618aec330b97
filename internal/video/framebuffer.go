package video

// FrameBuffer is the 160x144 pixel surface the LCD controller renders into,
// handed to the presenter once per VBlank per spec.md §5.
type FrameBuffer struct {
	buffer [Width * Height]uint32
}

const (
	Width  = 160
	Height = 144
)

// Shade is one of the four 2-bit color indices a palette byte maps pixels
// through.
type Shade uint8

// dmgPalette is the conventional DMG-green four-entry LUT spec.md §4.5
// names as a convention, not a requirement.
var dmgPalette = [4]uint32{0x9CBD0FFF, 0x8CAD0FFF, 0x306230FF, 0x0F380FFF}

func (s Shade) RGBA() uint32 { return dmgPalette[s&3] }

// Pixels returns the framebuffer contents as a flat RGBA8888 slice, handed
// to the presenter by reference at VBlank.
func (f *FrameBuffer) Pixels() []uint32 { return f.buffer[:] }

func (f *FrameBuffer) set(x, y int, rgba uint32) {
	f.buffer[y*Width+x] = rgba
}
