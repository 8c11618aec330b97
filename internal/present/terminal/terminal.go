// Package terminal is the default presenter: a tcell-backed window that
// renders the 160x144 framebuffer with Unicode half-block characters (two
// vertical pixels per terminal cell) and turns key events into input.Events,
// grounded on the teacher's jeebie/backend/terminal and
// jeebie/backend/terminal/render packages.
package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/corewave/dmgcore/internal/input"
	"github.com/corewave/dmgcore/internal/video"
)

// keyMapping translates tcell key/rune events into the key-name strings
// input.DefaultKeyMap uses.
var keyMapping = map[tcell.Key]string{
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyEnter:  "Enter",
	tcell.KeyEscape: "Escape",
}

// Presenter renders frames to the terminal and collects keyboard input.
type Presenter struct {
	screen  tcell.Screen
	running bool
}

// New returns an uninitialized Presenter; call Init before Update.
func New() *Presenter {
	return &Presenter{}
}

// Init allocates and starts the tcell screen.
func (p *Presenter) Init() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal presenter: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal presenter: %w", err)
	}

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	screen.Clear()

	p.screen = screen
	p.running = true
	return nil
}

// Cleanup tears down the tcell screen.
func (p *Presenter) Cleanup() {
	if p.screen != nil {
		p.screen.Fini()
	}
}

// Running reports whether the presenter has not yet been asked to quit.
func (p *Presenter) Running() bool { return p.running }

// Update polls pending key events, renders frame, and returns the events
// collected since the last call.
func (p *Presenter) Update(frame *video.FrameBuffer) []input.Event {
	var events []input.Event

	for p.screen.HasPendingEvent() {
		switch ev := p.screen.PollEvent().(type) {
		case *tcell.EventKey:
			events = append(events, p.translateKey(ev)...)
		case *tcell.EventResize:
			p.screen.Sync()
		}
	}

	p.render(frame)
	p.screen.Show()

	return events
}

func (p *Presenter) translateKey(ev *tcell.EventKey) []input.Event {
	var name string
	if n, ok := keyMapping[ev.Key()]; ok {
		name = n
	} else if ev.Rune() != 0 {
		name = string(ev.Rune())
	} else {
		return nil
	}

	act, ok := input.DefaultKeyMap[name]
	if !ok {
		return nil
	}

	if act == input.EmulatorQuit {
		p.running = false
	}

	// Terminal key events are edge-triggered presses; we report a Press
	// immediately followed by a Release since tcell gives no key-up event.
	return []input.Event{{Action: act, Type: input.Press}, {Action: act, Type: input.Release}}
}

// render draws two vertical framebuffer pixels per terminal cell using the
// upper-half-block glyph, foreground set to the top pixel and background to
// the bottom one, following the teacher's GetHalfBlockChar technique.
func (p *Presenter) render(frame *video.FrameBuffer) {
	pixels := frame.Pixels()

	for cellY := 0; cellY*2 < video.Height; cellY++ {
		topY := cellY * 2
		bottomY := topY + 1
		for x := 0; x < video.Width; x++ {
			top := pixels[topY*video.Width+x]
			var bottom uint32 = top
			if bottomY < video.Height {
				bottom = pixels[bottomY*video.Width+x]
			}

			style := tcell.StyleDefault.
				Foreground(rgbaToColor(top)).
				Background(rgbaToColor(bottom))
			p.screen.SetContent(x, cellY, '▀', nil, style)
		}
	}
}

func rgbaToColor(rgba uint32) tcell.Color {
	r := uint8(rgba >> 24)
	g := uint8(rgba >> 16)
	b := uint8(rgba >> 8)
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
