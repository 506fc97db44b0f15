package kontroller

import (
	"testing"

	"github.com/openmoto-org/kontroller/hal"
	"github.com/openmoto-org/kontroller/kontroller/proto"
)

type fakeLogger struct{ lines []string }

func (l *fakeLogger) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *fakeLogger) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

type fakeLED struct{ on bool }

func (l *fakeLED) High() { l.on = true }
func (l *fakeLED) Low()  { l.on = false }

type fakeButtons struct{ levels [8]bool }

func (b *fakeButtons) Count() int           { return len(b.levels) }
func (b *fakeButtons) Level(line int) bool  { return b.levels[line] }
func (b *fakeButtons) press(line int)       { b.levels[line] = true }
func (b *fakeButtons) releaseLine(line int) { b.levels[line] = false }

type fakeTime struct{ ch chan uint64 }

func (t *fakeTime) Ticks() <-chan uint64 { return t.ch }

// fakeConfig is the device end of the configuration link. toDevice holds
// bytes the host has sent, fromDevice collects the status replies.
type fakeConfig struct {
	toDevice   []byte
	fromDevice []byte
}

func (c *fakeConfig) Read(p []byte) (int, error) {
	n := copy(p, c.toDevice)
	c.toDevice = c.toDevice[n:]
	return n, nil
}

func (c *fakeConfig) Write(p []byte) (int, error) {
	c.fromDevice = append(c.fromDevice, p...)
	return len(p), nil
}

type fakeHIDLink struct {
	name    string
	ready   bool
	reports [][8]byte
}

func (l *fakeHIDLink) Name() string { return l.name }
func (l *fakeHIDLink) Ready() bool  { return l.ready }

func (l *fakeHIDLink) WriteReport(r [8]byte) error {
	if !l.ready {
		return hal.ErrLinkNotReady
	}
	l.reports = append(l.reports, r)
	return nil
}

func (l *fakeHIDLink) last() [8]byte { return l.reports[len(l.reports)-1] }

type fakeHAL struct {
	logger  *fakeLogger
	led     *fakeLED
	buttons *fakeButtons
	time    *fakeTime
	config  *fakeConfig
	links   []hal.HIDLink
}

func newFakeHAL() (*fakeHAL, *fakeHIDLink, *fakeHIDLink) {
	usb := &fakeHIDLink{name: "usb", ready: true}
	ble := &fakeHIDLink{name: "ble"}
	return &fakeHAL{
		logger:  &fakeLogger{},
		led:     &fakeLED{},
		buttons: &fakeButtons{},
		time:    &fakeTime{ch: make(chan uint64)},
		config:  &fakeConfig{},
		links:   []hal.HIDLink{usb, ble},
	}, usb, ble
}

func (h *fakeHAL) Logger() hal.Logger     { return h.logger }
func (h *fakeHAL) LED() hal.LED           { return h.led }
func (h *fakeHAL) Buttons() hal.Buttons   { return h.buttons }
func (h *fakeHAL) Time() hal.Time         { return h.time }
func (h *fakeHAL) Config() hal.ConfigLink { return h.config }
func (h *fakeHAL) Links() []hal.HIDLink   { return h.links }

// stepN runs n ticks starting at *tick and leaves *tick past the last one.
func stepN(k *Kontroller, tick *uint64, n int) {
	for i := 0; i < n; i++ {
		k.Step(*tick)
		*tick++
	}
}

// settleTicks comfortably covers the default debounce window.
const settleTicks = 10

func TestPressAndReleaseReachTheLink(t *testing.T) {
	h, usb, _ := newFakeHAL()
	k := New(h, Options{})
	var tick uint64

	h.buttons.press(1) // Up line
	stepN(k, &tick, settleTicks)

	if len(usb.reports) == 0 {
		t.Fatal("expected a report after a debounced press")
	}
	want := [8]byte{0, 0, byte(proto.KeyUp)}
	if usb.last() != want {
		t.Fatalf("report = %v, want %v", usb.last(), want)
	}

	h.buttons.releaseLine(1)
	stepN(k, &tick, settleTicks)

	if usb.last() != ([8]byte{}) {
		t.Fatalf("expected empty report after release, got %v", usb.last())
	}
}

func TestBounceEmitsNothing(t *testing.T) {
	h, usb, _ := newFakeHAL()
	k := New(h, Options{})
	var tick uint64

	for i := 0; i < 8; i++ {
		h.buttons.levels[1] = i%2 == 1
		stepN(k, &tick, 1)
	}
	h.buttons.releaseLine(1)
	stepN(k, &tick, settleTicks)

	if len(usb.reports) != 0 {
		t.Fatalf("bounce should produce no reports, got %v", usb.reports)
	}
}

func installFrame(t *testing.T, m *proto.Keymap) []byte {
	t.Helper()
	payload, err := m.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return EncodeFrame(payload)
}

func TestConfigFrameInstallsKeymap(t *testing.T) {
	h, usb, _ := newFakeHAL()
	k := New(h, Options{})
	var tick uint64

	m := &proto.Keymap{Entries: []proto.Entry{
		{Button: proto.ButtonUp, KeyCode: proto.KeyA},
	}}
	h.config.toDevice = installFrame(t, m)
	stepN(k, &tick, 1)

	if string(h.config.fromDevice) != string([]byte{StatusOK}) {
		t.Fatalf("expected StatusOK reply, got %v", h.config.fromDevice)
	}

	h.buttons.press(1)
	stepN(k, &tick, settleTicks)
	want := [8]byte{0, 0, byte(proto.KeyA)}
	if usb.last() != want {
		t.Fatalf("report = %v, want %v", usb.last(), want)
	}
}

func TestMidPressInstallReleasesOriginalBinding(t *testing.T) {
	h, usb, _ := newFakeHAL()
	k := New(h, Options{})
	var tick uint64

	h.buttons.press(1)
	stepN(k, &tick, settleTicks)
	if usb.last() != ([8]byte{0, 0, byte(proto.KeyUp)}) {
		t.Fatalf("press report wrong: %v", usb.last())
	}

	// Swap the mapping while the button is held.
	m := &proto.Keymap{Entries: []proto.Entry{
		{Button: proto.ButtonUp, KeyCode: proto.KeyB},
	}}
	h.config.toDevice = installFrame(t, m)
	stepN(k, &tick, 1)

	h.buttons.releaseLine(1)
	stepN(k, &tick, settleTicks)

	// The release clears the code bound at press time, so nothing sticks.
	if usb.last() != ([8]byte{}) {
		t.Fatalf("expected empty report, got %v", usb.last())
	}
}

func TestMalformedFrameKeepsPriorKeymap(t *testing.T) {
	h, usb, _ := newFakeHAL()
	k := New(h, Options{})
	var tick uint64

	h.config.toDevice = EncodeFrame([]byte{0xFF, 0xFF, 0xFF})
	stepN(k, &tick, 1)

	if string(h.config.fromDevice) != string([]byte{StatusDecodeError}) {
		t.Fatalf("expected decode error reply, got %v", h.config.fromDevice)
	}

	// Pipeline keeps running on the prior mapping.
	h.buttons.press(1)
	stepN(k, &tick, settleTicks)
	if usb.last() != ([8]byte{0, 0, byte(proto.KeyUp)}) {
		t.Fatalf("prior keymap should survive, got %v", usb.last())
	}
}

func TestDuplicateButtonFrameIsRejected(t *testing.T) {
	h, _, _ := newFakeHAL()
	k := New(h, Options{})
	var tick uint64

	m := &proto.Keymap{Entries: []proto.Entry{
		{Button: proto.ButtonUp, KeyCode: proto.KeyA},
		{Button: proto.ButtonUp, KeyCode: proto.KeyB},
	}}
	h.config.toDevice = installFrame(t, m)
	stepN(k, &tick, 1)

	if string(h.config.fromDevice) != string([]byte{StatusDuplicateButton}) {
		t.Fatalf("expected duplicate button reply, got %v", h.config.fromDevice)
	}
}

func TestOversizedFrameIsRefused(t *testing.T) {
	h, _, _ := newFakeHAL()
	k := New(h, Options{})
	var tick uint64

	h.config.toDevice = []byte{FrameMagic, 0xFF, 0xFF}
	stepN(k, &tick, 1)

	if string(h.config.fromDevice) != string([]byte{StatusTooLarge}) {
		t.Fatalf("expected too-large reply, got %v", h.config.fromDevice)
	}
}

func TestSinkCatchesUpWhenLinkComesUp(t *testing.T) {
	h, _, ble := newFakeHAL()
	k := New(h, Options{})
	var tick uint64

	h.buttons.press(1)
	stepN(k, &tick, settleTicks)
	if len(ble.reports) != 0 {
		t.Fatal("ble link is down, nothing should be delivered")
	}

	ble.ready = true
	stepN(k, &tick, 1)

	if len(ble.reports) != 1 || ble.last() != ([8]byte{0, 0, byte(proto.KeyUp)}) {
		t.Fatalf("ble sink should converge to the held report, got %v", ble.reports)
	}
}

func TestBootConfigurationAppliesKeymapAndPollInterval(t *testing.T) {
	h, usb, _ := newFakeHAL()
	k := New(h, Options{Boot: &proto.Konfiguration{
		Keymap: &proto.Keymap{Entries: []proto.Entry{
			{Button: proto.ButtonEnter, KeyCode: proto.KeySpace},
		}},
		ButtonsPollIntervalMicros: 4000,
	}})
	var tick uint64

	if k.scanEvery != 4 {
		t.Fatalf("expected scanEvery=4, got %d", k.scanEvery)
	}

	h.buttons.press(0) // Enter line
	stepN(k, &tick, 4*settleTicks)

	want := [8]byte{0, 0, byte(proto.KeySpace)}
	if len(usb.reports) == 0 || usb.last() != want {
		t.Fatalf("expected %v, got %v", want, usb.reports)
	}

	// The boot keymap replaces the default wholesale.
	h.buttons.releaseLine(0)
	stepN(k, &tick, 4*settleTicks)
	h.buttons.press(1)
	stepN(k, &tick, 4*settleTicks)
	if usb.last() != ([8]byte{}) {
		t.Fatalf("unmapped line should stay inert, got %v", usb.last())
	}
}
