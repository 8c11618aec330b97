//go:build sdl2

// Package presentsdl is an alternate presenter built on SDL2, gated by the
// sdl2 build tag exactly as the teacher gates jeebie/backend/sdl2.go, giving
// a second concrete consumer of the 160x144 pixel buffer.
package presentsdl

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/corewave/dmgcore/internal/input"
	"github.com/corewave/dmgcore/internal/video"
)

var keyMapping = map[sdl.Keycode]string{
	sdl.K_UP:     "Up",
	sdl.K_DOWN:   "Down",
	sdl.K_LEFT:   "Left",
	sdl.K_RIGHT:  "Right",
	sdl.K_RETURN: "Enter",
	sdl.K_LSHIFT: "Shift",
	sdl.K_z:      "z",
	sdl.K_x:      "x",
	sdl.K_ESCAPE: "Escape",
	sdl.K_SPACE:  "Space",
}

// Presenter renders frames through an SDL2 window scaled by an integer
// factor, and turns keyboard events into input.Events.
type Presenter struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool
	scale    int
}

// New returns an uninitialized Presenter with the given integer upscale
// factor (spec.md §6's --scale).
func New(scale int) *Presenter {
	if scale <= 0 {
		scale = 1
	}
	return &Presenter{scale: scale}
}

// Init creates the SDL2 window, renderer, and streaming texture.
func (p *Presenter) Init() error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("presentsdl: init: %w", err)
	}

	w, h := video.Width*p.scale, video.Height*p.scale
	window, err := sdl.CreateWindow("dmgcore", sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(w), int32(h), sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("presentsdl: create window: %w", err)
	}
	p.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("presentsdl: create renderer: %w", err)
	}
	p.renderer = renderer

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING,
		video.Width, video.Height)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("presentsdl: create texture: %w", err)
	}
	p.texture = texture

	p.running = true
	return nil
}

// Cleanup destroys SDL2 resources in reverse creation order.
func (p *Presenter) Cleanup() {
	if p.texture != nil {
		p.texture.Destroy()
	}
	if p.renderer != nil {
		p.renderer.Destroy()
	}
	if p.window != nil {
		p.window.Destroy()
	}
	sdl.Quit()
}

// Running reports whether the presenter has not yet been asked to quit.
func (p *Presenter) Running() bool { return p.running }

// Update polls SDL2 events, renders frame, and returns the input events
// collected since the last call.
func (p *Presenter) Update(frame *video.FrameBuffer) []input.Event {
	var events []input.Event

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			p.running = false
		case *sdl.KeyboardEvent:
			events = append(events, p.translateKey(e)...)
		}
	}

	p.render(frame)
	return events
}

func (p *Presenter) translateKey(e *sdl.KeyboardEvent) []input.Event {
	name, ok := keyMapping[e.Keysym.Sym]
	if !ok {
		return nil
	}
	act, ok := input.DefaultKeyMap[name]
	if !ok {
		return nil
	}

	var typ input.EventType
	switch e.Type {
	case sdl.KEYDOWN:
		typ = input.Press
	case sdl.KEYUP:
		typ = input.Release
	default:
		return nil
	}

	if act == input.EmulatorQuit && typ == input.Press {
		p.running = false
	}

	return []input.Event{{Action: act, Type: typ}}
}

func (p *Presenter) render(frame *video.FrameBuffer) {
	pixels := frame.Pixels()
	buf := make([]byte, video.Width*video.Height*4)

	for i, rgba := range pixels {
		buf[i*4+0] = byte(rgba >> 24) // R
		buf[i*4+1] = byte(rgba >> 16) // G
		buf[i*4+2] = byte(rgba >> 8)  // B
		buf[i*4+3] = byte(rgba)       // A
	}

	p.texture.Update(nil, unsafe.Pointer(&buf[0]), video.Width*4)
	p.renderer.Clear()
	p.renderer.Copy(p.texture, nil, nil)
	p.renderer.Present()
}
