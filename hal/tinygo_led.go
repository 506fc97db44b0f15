//go:build tinygo && baremetal

package hal

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// statusLED drives the single NeoPixel on the board as an on/off status
// light. Color is fixed; patterns are produced by the blinker upstream.
type statusLED struct {
	dev ws2812.Device
}

func newStatusLED() *statusLED {
	pin := machine.GP16
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &statusLED{dev: ws2812.NewWS2812(pin)}
}

func (l *statusLED) High() {
	_ = l.dev.WriteColors([]color.RGBA{{R: 0x00, G: 0x20, B: 0x08}})
}

func (l *statusLED) Low() {
	_ = l.dev.WriteColors([]color.RGBA{{}})
}
