//go:build !tinygo && cgo

package hal

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/openmoto-org/kontroller/internal/buildinfo"
)

// RunWindow starts a desktop window that mirrors the keypad state and maps
// host keyboard input onto the button lines. It blocks until the window
// closes.
//
// Key bindings: arrows and Enter drive the directional pad, 1/2/3 drive the
// function buttons, U and B toggle the simulated USB/BLE link state.
func RunWindow(newApp func(HAL) func() error, cfg HostConfig) error {
	h := newHost(cfg)
	step := newApp(h)

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle("kontroller (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(480, 320)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

// buttonKeys maps one host key to one button line, in layout order:
// Enter, Up, Right, Left, Down, Fn1, Fn2, Fn3.
var buttonKeys = [8]ebiten.Key{
	ebiten.KeyEnter,
	ebiten.KeyArrowUp,
	ebiten.KeyArrowRight,
	ebiten.KeyArrowLeft,
	ebiten.KeyArrowDown,
	ebiten.KeyDigit1,
	ebiten.KeyDigit2,
	ebiten.KeyDigit3,
}

type hostGame struct {
	h    *hostHAL
	px   *ebiten.Image
	step func() error
}

func (g *hostGame) Update() error {
	for line, key := range buttonKeys {
		g.h.buttons.set(line, ebiten.IsKeyPressed(key))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyU) {
		g.h.usb.setReady(!g.h.usb.Ready())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.h.ble.setReady(!g.h.ble.Ready())
	}

	g.h.t.step(1)
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	if g.px == nil {
		g.px = ebiten.NewImage(1, 1)
		g.px.Fill(color.White)
	}
	screen.Fill(color.RGBA{0x10, 0x10, 0x14, 0xFF})

	// D-pad cross plus the function row underneath, matching the physical
	// face of the keypad.
	type cell struct{ line, x, y int }
	cells := []cell{
		{0, 1, 1}, // Enter (pad center)
		{1, 1, 0}, // Up
		{2, 2, 1}, // Right
		{3, 0, 1}, // Left
		{4, 1, 2}, // Down
		{5, 0, 3}, // Fn1
		{6, 1, 3}, // Fn2
		{7, 2, 3}, // Fn3
	}
	for _, c := range cells {
		g.fillRect(screen, 40+c.x*72, 24+c.y*64, 56, 48, g.buttonColor(c.line))
	}

	g.fillRect(screen, 300, 24, 24, 24, g.linkColor(g.h.usb))
	g.fillRect(screen, 300, 64, 24, 24, g.linkColor(g.h.ble))
	if g.h.led.lit() {
		g.fillRect(screen, 300, 104, 24, 24, color.RGBA{0xFF, 0xA0, 0x00, 0xFF})
	}
}

func (g *hostGame) buttonColor(line int) color.RGBA {
	if g.h.buttons.Level(line) {
		return color.RGBA{0x40, 0xC0, 0x60, 0xFF}
	}
	return color.RGBA{0x30, 0x30, 0x38, 0xFF}
}

func (g *hostGame) linkColor(l *memLink) color.RGBA {
	if l.Ready() {
		return color.RGBA{0x40, 0x80, 0xE0, 0xFF}
	}
	return color.RGBA{0x50, 0x30, 0x30, 0xFF}
}

func (g *hostGame) fillRect(dst *ebiten.Image, x, y, w, h int, c color.RGBA) {
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(float64(w), float64(h))
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	dst.DrawImage(g.px, &op)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return 480, 320
}
