//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"
)

// Button line wiring, in layout order: Enter, Up, Right, Left, Down,
// Fn1, Fn2, Fn3. Lines are active-low with internal pull-ups.
var buttonPins = [8]machine.Pin{
	machine.GP8,
	machine.GP9,
	machine.GP10,
	machine.GP11,
	machine.GP12,
	machine.GP4,
	machine.GP5,
	machine.GP6,
}

type tinyGoHAL struct {
	logger  *uartLogger
	led     LED
	buttons *tinyGoButtons
	t       *tinyGoTime
	cfg     ConfigLink
	links   []HIDLink
}

// New returns the firmware HAL implementation.
//
// Debug UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1. The configuration
// link shares the USB CDC port, so kontrollerctl works over the same cable
// that carries HID traffic.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	buttons := newTinyGoButtons()
	return &tinyGoHAL{
		logger:  &uartLogger{uart: uart},
		led:     newStatusLED(),
		buttons: buttons,
		t:       newTinyGoTime(),
		cfg:     &usbSerialLink{},
		links:   []HIDLink{newUSBLink(), newBLELink()},
	}
}

func (h *tinyGoHAL) Logger() Logger     { return h.logger }
func (h *tinyGoHAL) LED() LED           { return h.led }
func (h *tinyGoHAL) Buttons() Buttons   { return h.buttons }
func (h *tinyGoHAL) Time() Time         { return h.t }
func (h *tinyGoHAL) Config() ConfigLink { return h.cfg }
func (h *tinyGoHAL) Links() []HIDLink   { return h.links }

type tinyGoButtons struct{}

func newTinyGoButtons() *tinyGoButtons {
	for _, pin := range buttonPins {
		pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}
	return &tinyGoButtons{}
}

func (b *tinyGoButtons) Count() int { return len(buttonPins) }

func (b *tinyGoButtons) Level(line int) bool {
	if line < 0 || line >= len(buttonPins) {
		return false
	}
	// Pulled up, switch to ground: low means pressed.
	return !buttonPins[line].Get()
}

type tinyGoTime struct {
	ch  chan uint64
	seq uint64
}

func newTinyGoTime() *tinyGoTime {
	t := &tinyGoTime{ch: make(chan uint64, 16)}
	go func() {
		ticker := time.NewTicker(1 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			t.seq++
			select {
			case t.ch <- t.seq:
			default:
			}
		}
	}()
	return t
}

func (t *tinyGoTime) Ticks() <-chan uint64 { return t.ch }

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

// usbSerialLink exposes the USB CDC console as the configuration link.
type usbSerialLink struct{}

func (l *usbSerialLink) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			return n, err
		}
		p[n] = b
		n++
	}
	return n, nil
}

func (l *usbSerialLink) Write(p []byte) (int, error) {
	for i := 0; i < len(p); i++ {
		if err := machine.Serial.WriteByte(p[i]); err != nil {
			return i, err
		}
	}
	return len(p), nil
}
