//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// HostConfig selects how the host HAL stands in for real hardware.
type HostConfig struct {
	// ConfigPort is a serial device to use as the configuration link
	// (e.g. a pty bridged to kontrollerctl). Empty means an in-memory
	// loopback link.
	ConfigPort string
	ConfigBaud int
}

type hostHAL struct {
	logger  *hostLogger
	led     *hostLED
	buttons *hostButtons
	t       *hostTime
	cfg     ConfigLink
	usb     *memLink
	ble     *memLink
}

// New returns a host HAL implementation with default configuration.
func New() HAL { return newHost(HostConfig{}) }

func newHost(cfg HostConfig) *hostHAL {
	logger := &hostLogger{w: os.Stdout}
	h := &hostHAL{
		logger:  logger,
		led:     &hostLED{logger: logger},
		buttons: newHostButtons(8),
		t:       newHostTime(),
		usb:     &memLink{name: "usb", ready: true},
		ble:     &memLink{name: "ble"},
	}
	h.cfg = newLoopbackLink()
	if cfg.ConfigPort != "" {
		link, err := OpenSerialConfig(cfg.ConfigPort, cfg.ConfigBaud)
		if err != nil {
			logger.WriteLineString(fmt.Sprintf("hal: config port %s: %v (using loopback)", cfg.ConfigPort, err))
		} else {
			h.cfg = link
		}
	}
	return h
}

func (h *hostHAL) Logger() Logger     { return h.logger }
func (h *hostHAL) LED() LED           { return h.led }
func (h *hostHAL) Buttons() Buttons   { return h.buttons }
func (h *hostHAL) Time() Time         { return h.t }
func (h *hostHAL) Config() ConfigLink { return h.cfg }
func (h *hostHAL) Links() []HIDLink   { return []HIDLink{h.usb, h.ble} }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostLED struct {
	mu     sync.Mutex
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = true
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = false
}

func (l *hostLED) lit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

type hostButtons struct {
	mu     sync.Mutex
	levels []bool
}

func newHostButtons(n int) *hostButtons {
	return &hostButtons{levels: make([]bool, n)}
}

func (b *hostButtons) Count() int { return len(b.levels) }

func (b *hostButtons) Level(line int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if line < 0 || line >= len(b.levels) {
		return false
	}
	return b.levels[line]
}

func (b *hostButtons) set(line int, pressed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if line < 0 || line >= len(b.levels) {
		return
	}
	b.levels[line] = pressed
}

type hostTime struct {
	ch  chan uint64
	seq uint64

	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 1024)}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

// step converts wall-clock time elapsed since the previous call into 1ms
// ticks, so the simulated scan cadence tracks real time even when the
// window loop runs at a lower rate.
func (t *hostTime) step(n uint64) {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		t.stepN(n)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	const tickDur = time.Millisecond
	ticks := uint64(t.acc / tickDur)
	if ticks == 0 {
		return
	}
	t.acc = t.acc % tickDur
	t.stepN(ticks)
}

func (t *hostTime) stepN(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}

// memLink is an in-memory HID link used by the simulator and tests.
type memLink struct {
	mu      sync.Mutex
	name    string
	ready   bool
	last    [8]byte
	written int
}

func (l *memLink) Name() string { return l.name }

func (l *memLink) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}

func (l *memLink) setReady(ready bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ready = ready
}

func (l *memLink) WriteReport(report [8]byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.ready {
		return ErrLinkNotReady
	}
	l.last = report
	l.written++
	return nil
}

func (l *memLink) lastReport() ([8]byte, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last, l.written
}

// loopbackLink is a duplex in-memory byte stream: the device side reads what
// the host side wrote and vice versa. Reads never block.
type loopbackLink struct {
	mu      sync.Mutex
	toDev   []byte
	fromDev []byte
}

func newLoopbackLink() *loopbackLink { return &loopbackLink{} }

func (l *loopbackLink) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.toDev) == 0 {
		return 0, nil
	}
	n := copy(p, l.toDev)
	l.toDev = l.toDev[n:]
	return n, nil
}

func (l *loopbackLink) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fromDev = append(l.fromDev, p...)
	return len(p), nil
}

// hostWrite injects bytes as if sent by the configuration host.
func (l *loopbackLink) hostWrite(p []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.toDev = append(l.toDev, p...)
}

// hostRead drains bytes the device wrote back (frame acknowledgments).
func (l *loopbackLink) hostRead() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.fromDev
	l.fromDev = nil
	return out
}
