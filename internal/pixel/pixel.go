// Package pixel is the host renderer: a faiface/pixel + pixelgl window
// that presents a chip8.FramebufferView and turns physical key events
// into the 16-bit keypad mask the VM core expects. None of this is part
// of the VM core (spec.md §1 puts window creation and GL rendering
// explicitly out of scope) — it is the thin host shell the core is driven
// by, kept in the teacher's own shape.
package pixel

import (
	"fmt"
	"time"

	"github.com/ahamilton/octochip/internal/chip8"
	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"
)

const (
	screenWidth  float64 = 1024
	screenHeight float64 = 512
)

// palette maps a (plane0, plane1) bit pair to a display color. XO-CHIP's
// two planes make a pixel one of four colors; CHIP-8/S-CHIP ROMs only
// ever populate plane 0, so they only ever show black or the first color.
// Index 0 (both planes clear) is never drawn — the cleared window is
// already black.
var palette = [4]pixel.RGBA{
	{}, // unused: plane bits (0,0)
	pixel.RGB(1, 1, 1),    // plane 0 only: white
	pixel.RGB(1, 0.65, 0), // plane 1 only: orange
	pixel.RGB(1, 0, 0),    // both planes: red
}

// Window embeds a pixelgl window and holds the hex-keypad key mapping.
// KeysDown is allocated empty and is not read or written anywhere in this
// package; HandleKeyInput polls the window's button state directly.
type Window struct {
	*pixelgl.Window
	KeyMap   map[uint16]pixelgl.Button
	KeysDown [16]*time.Ticker
}

const keyRepeatDur = time.Second / 5

// NewWindow creates the pixelgl window and the host's fixed key mapping
// (spec.md §6's physical-scancode-to-keypad-index convention).
func NewWindow() (*Window, error) {
	cfg := pixelgl.WindowConfig{
		Title:  "octochip",
		Bounds: pixel.R(0, 0, screenWidth, screenHeight),
		VSync:  true,
	}
	w, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating new window: %v", err)
	}
	km := map[uint16]pixelgl.Button{
		0x1: pixelgl.Key1, 0x2: pixelgl.Key2,
		0x3: pixelgl.Key3, 0xC: pixelgl.Key4,
		0x4: pixelgl.KeyQ, 0x5: pixelgl.KeyW,
		0x6: pixelgl.KeyE, 0xD: pixelgl.KeyR,
		0x7: pixelgl.KeyA, 0x8: pixelgl.KeyS,
		0x9: pixelgl.KeyD, 0xE: pixelgl.KeyF,
		0xA: pixelgl.KeyZ, 0x0: pixelgl.KeyX,
		0xB: pixelgl.KeyC, 0xF: pixelgl.KeyV,
	}
	return &Window{
		Window:   w,
		KeyMap:   km,
		KeysDown: [16]*time.Ticker{},
	}, nil
}

// DrawGraphics renders a chip8.FramebufferView, scaling the logical
// resolution (64x32 or 128x64) up to fill the window.
func (w *Window) DrawGraphics(view chip8.FramebufferView) {
	w.Clear(colornames.Black)

	logicalW, logicalH := 64, 32
	if view.Resolution == chip8.HiRes {
		logicalW, logicalH = 128, 64
	}

	cellW, cellH := screenWidth/float64(logicalW), screenHeight/float64(logicalH)

	imDraw := imdraw.New(nil)
	for y := 0; y < logicalH; y++ {
		for x := 0; x < logicalW; x++ {
			idx := colorIndex(view, x, y)
			if idx == 0 {
				continue
			}
			imDraw.Color = palette[idx]
			imDraw.Push(pixel.V(cellW*float64(x), cellH*float64(logicalH-1-y)))
			imDraw.Push(pixel.V(cellW*float64(x)+cellW, cellH*float64(logicalH-1-y)+cellH))
			imDraw.Rectangle(0)
		}
	}
	imDraw.Draw(w)
	w.Update()
}

func colorIndex(view chip8.FramebufferView, x, y int) int {
	idx := y*128 + x
	byteIdx, bit := idx/8, byte(0x80>>uint(idx%8))
	var c int
	if view.Planes[0][byteIdx]&bit != 0 {
		c |= 1
	}
	if view.Planes[1][byteIdx]&bit != 0 {
		c |= 2
	}
	return c
}

// HandleKeyInput polls the pixelgl window's button state and returns the
// 16-bit keypad mask the VM core's SetKeys expects.
func (w *Window) HandleKeyInput() uint16 {
	var mask uint16
	for i, key := range w.KeyMap {
		if w.Pressed(key) {
			mask |= 1 << i
		}
	}
	return mask
}
