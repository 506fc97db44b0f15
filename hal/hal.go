package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output abstraction for the status LED.
type LED interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// ErrLinkNotReady is returned by HIDLink.WriteReport while the link has no
// attached host (not enumerated, not connected).
var ErrLinkNotReady = errors.New("hal: link not ready")

// Buttons exposes the raw button lines of the keypad.
//
// Levels are normalized: true means the button is physically pressed,
// regardless of the electrical polarity of the line. No debouncing is
// performed at this layer.
type Buttons interface {
	Count() int
	Level(line int) bool
}

// HIDLink delivers 8-byte boot-keyboard input reports to one attached host.
//
// WriteReport must not block for longer than one transfer; when the link is
// down it returns ErrLinkNotReady and the report is discarded by the caller.
type HIDLink interface {
	Name() string
	Ready() bool
	WriteReport(report [8]byte) error
}

// ConfigLink is the byte stream carrying configuration frames.
//
// Read is non-blocking: it returns (0, nil) when no bytes are pending.
type ConfigLink interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Time provides a base tick stream.
//
// One tick corresponds to one button scan interval; higher-level timing
// (debounce windows, blink patterns) is derived from tick counts.
type Time interface {
	Ticks() <-chan uint64
}

// HAL is the only contact point between the controller runtime and the
// hardware (or the host simulator standing in for it).
type HAL interface {
	Logger() Logger
	LED() LED
	Buttons() Buttons
	Time() Time
	Config() ConfigLink
	Links() []HIDLink
}
