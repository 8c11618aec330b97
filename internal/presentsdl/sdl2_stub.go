//go:build !sdl2

package presentsdl

import (
	"fmt"

	"github.com/corewave/dmgcore/internal/input"
	"github.com/corewave/dmgcore/internal/video"
)

// Presenter stubs out the SDL2 presenter for default builds, which skip the
// cgo dependency on SDL2's development libraries.
type Presenter struct{}

// New returns a stub Presenter; Init always fails.
func New(scale int) *Presenter { return &Presenter{} }

func (p *Presenter) Init() error {
	return fmt.Errorf("presentsdl: not available - build with -tags sdl2 and install SDL2 development libraries")
}

func (p *Presenter) Cleanup() {}

func (p *Presenter) Running() bool { return false }

func (p *Presenter) Update(frame *video.FrameBuffer) []input.Event { return nil }
