// Command dmgcore runs the DMG core against a ROM file, presenting it in a
// terminal window by default. Flags and exit codes follow spec.md §6;
// --headless/--frames/--snapshot-interval/--test-pattern are kept from the
// teacher's cmd/jeebie/main.go as additional, spec-compatible flags that let
// the presenters run without an attached TTY.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/corewave/dmgcore/internal/cartridge"
	"github.com/corewave/dmgcore/internal/core"
	"github.com/corewave/dmgcore/internal/input"
	"github.com/corewave/dmgcore/internal/present/terminal"
	"github.com/corewave/dmgcore/internal/presentsdl"
	"github.com/corewave/dmgcore/internal/video"
)

// presenter is the surface both the terminal and SDL2 backends implement,
// letting runInteractive/runTestPattern stay backend-agnostic.
type presenter interface {
	Init() error
	Cleanup()
	Running() bool
	Update(frame *video.FrameBuffer) []input.Event
}

func newPresenter(backend string, scale int) (presenter, error) {
	switch backend {
	case "", "terminal":
		return terminal.New(), nil
	case "sdl2":
		return presentsdl.New(scale), nil
	default:
		return nil, fmt.Errorf("--backend must be one of terminal,sdl2, got %q", backend)
	}
}

var validScales = map[int]bool{1: true, 2: true, 4: true, 8: true, 16: true, 32: true}

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Usage = "dmgcore [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "scale", Value: 1, Usage: "integer upscaling factor (1,2,4,8,16,32)"},
		cli.StringFlag{Name: "backend", Value: "terminal", Usage: "presenter backend: terminal or sdl2 (sdl2 requires a -tags sdl2 build)"},
		cli.BoolFlag{Name: "unlock-fps", Usage: "disable the 60Hz frame sleep"},
		cli.BoolFlag{Name: "v", Usage: "verbose logging (info level)"},
		cli.BoolFlag{Name: "vv", Usage: "more verbose logging (debug level)"},
		cli.BoolFlag{Name: "vvv", Usage: "most verbose logging (debug level, with source)"},
		cli.BoolFlag{Name: "headless", Usage: "run without a presenter window"},
		cli.IntFlag{Name: "frames", Usage: "number of frames to run in headless mode"},
		cli.IntFlag{Name: "snapshot-interval", Usage: "write a shade-glyph text snapshot every N frames (headless only, 0 disables)"},
		cli.StringFlag{Name: "snapshot-dir", Usage: "directory for snapshots (default: a temp directory)"},
		cli.BoolFlag{Name: "test-pattern", Usage: "display a test pattern instead of a loaded ROM"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		var unsupported *cartridge.ErrUnsupportedMapper
		if errors.As(err, &unsupported) {
			slog.Error("unsupported cartridge mapper", "error", err)
			os.Exit(2)
		}
		slog.Error("dmgcore failed", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	setupLogging(c)

	scale := c.Int("scale")
	if !validScales[scale] {
		return fmt.Errorf("--scale must be one of 1,2,4,8,16,32, got %d", scale)
	}

	if c.Bool("test-pattern") {
		return runTestPattern(c.String("backend"), scale)
	}

	romPath := c.Args().Get(0)
	if romPath == "" {
		cli.ShowAppHelp(c)
		return errors.New("no ROM path provided")
	}

	emu, err := core.NewWithFile(romPath)
	if err != nil {
		return err
	}

	if c.Bool("headless") {
		return runHeadless(emu, c.Int("frames"), c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
	}

	return runInteractive(emu, c.String("backend"), scale, c.Bool("unlock-fps"))
}

func setupLogging(c *cli.Context) {
	level := slog.LevelWarn
	switch {
	case c.Bool("vvv"), c.Bool("vv"):
		level = slog.LevelDebug
	case c.Bool("v"):
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level, AddSource: c.Bool("vvv")})))
}

func runHeadless(emu *core.Emulator, frames, snapshotInterval int, snapshotDir, romPath string) error {
	if frames <= 0 {
		return errors.New("headless mode requires --frames with a positive value")
	}

	if snapshotInterval > 0 {
		if snapshotDir == "" {
			dir, err := os.MkdirTemp("", "dmgcore-snapshots-*")
			if err != nil {
				return fmt.Errorf("creating snapshot directory: %w", err)
			}
			snapshotDir = dir
		} else if err := os.MkdirAll(snapshotDir, 0o755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	romName := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))

	for i := 0; i < frames; i++ {
		emu.RunUntilFrame()

		if snapshotInterval > 0 && (i+1)%snapshotInterval == 0 {
			path := filepath.Join(snapshotDir, fmt.Sprintf("%s_frame_%d.txt", romName, i+1))
			if err := writeSnapshot(emu.GetCurrentFrame(), emu, path); err != nil {
				slog.Error("failed to write snapshot", "frame", i+1, "path", path, "error", err)
			}
		}
	}

	slog.Info("headless run complete", "frames", frames, "instructions", emu.GetInstructionCount())
	return nil
}

func runInteractive(emu *core.Emulator, backend string, scale int, unlockFPS bool) error {
	pres, err := newPresenter(backend, scale)
	if err != nil {
		return err
	}
	if err := pres.Init(); err != nil {
		return err
	}
	defer pres.Cleanup()

	handler := input.NewHandler()
	frameBudget := time.Second / 60

	for pres.Running() {
		frameStart := time.Now()

		events := pres.Update(emu.GetCurrentFrame())
		for _, evt := range events {
			if !handler.Process(evt, frameStart) {
				continue
			}
			handleControlAction(emu, evt)
		}

		emu.ApplyButtons(handler.JoypadState())
		emu.RunUntilFrame()

		if !unlockFPS {
			if elapsed := time.Since(frameStart); elapsed < frameBudget {
				time.Sleep(frameBudget - elapsed)
			}
		}
	}

	return nil
}

func handleControlAction(emu *core.Emulator, evt input.Event) {
	if evt.Type != input.Press {
		return
	}
	switch evt.Action {
	case input.EmulatorPauseToggle:
		if emu.GetDebuggerState() == core.Paused {
			emu.DebuggerResume()
		} else {
			emu.DebuggerPause()
		}
	case input.EmulatorStepFrame:
		emu.DebuggerStepFrame()
	case input.EmulatorStepInstruction:
		emu.DebuggerStepInstruction()
	}
}

func runTestPattern(backend string, scale int) error {
	pres, err := newPresenter(backend, scale)
	if err != nil {
		return err
	}
	if err := pres.Init(); err != nil {
		return err
	}
	defer pres.Cleanup()

	frame := video.FrameBuffer{}
	pixels := frame.Pixels()
	for i := range pixels {
		pixels[i] = video.Shade((i % video.Width) * 4 / video.Width).RGBA() // four vertical shade bands
	}

	for pres.Running() {
		events := pres.Update(&frame)
		for _, evt := range events {
			if evt.Action == input.EmulatorQuit {
				return nil
			}
		}
		time.Sleep(time.Second / 60)
	}

	return nil
}

// writeSnapshot renders frame as text, one output line per pair of
// framebuffer rows, grounded on the teacher's RenderFrameToHalfBlocks
// snapshot format. Each character is a shade glyph for the pixel in the
// upper row of the pair; the lower row of each pair is not drawn.
func writeSnapshot(frame *video.FrameBuffer, emu *core.Emulator, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "# dmgcore frame snapshot\n")
	fmt.Fprintf(file, "# frame=%d instructions=%d\n", emu.GetFrameCount(), emu.GetInstructionCount())
	fmt.Fprintf(file, "# resolution 160x144 -> 160x72 text rows, one shade glyph per pixel of the upper row of each pair\n#\n")

	pixels := frame.Pixels()
	for y := 0; y*2 < video.Height; y++ {
		var line strings.Builder
		for x := 0; x < video.Width; x++ {
			top := pixels[(y*2)*video.Width+x]
			line.WriteString(shadeGlyph(top))
		}
		fmt.Fprintln(file, line.String())
	}

	return nil
}

func shadeGlyph(rgba uint32) string {
	switch rgba {
	case video.Shade(0).RGBA():
		return " "
	case video.Shade(1).RGBA():
		return "░"
	case video.Shade(2).RGBA():
		return "▒"
	default:
		return "█"
	}
}
