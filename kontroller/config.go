package kontroller

import (
	"encoding/binary"

	"github.com/openmoto-org/kontroller/hal"
	"github.com/openmoto-org/kontroller/kontroller/keymap"
	"github.com/openmoto-org/kontroller/kontroller/proto"
)

// Configuration frames on the wire: one magic byte, a little-endian u16
// payload length, then a kontroller.v1 Keymap message. The device answers
// every frame with a single status byte.
const (
	FrameMagic byte = 0xA7

	// MaxFramePayload bounds a frame so a corrupt length byte cannot make
	// the listener wait on megabytes that will never arrive.
	MaxFramePayload = 512
)

// Status bytes written back per frame.
const (
	StatusOK byte = iota
	StatusDecodeError
	StatusDuplicateButton
	StatusInvalidKeyCode
	StatusUnknownButton
	StatusTooLarge
)

type listenState uint8

const (
	stateMagic listenState = iota
	stateLength
	statePayload
)

// listener accumulates configuration frames from the config link, one byte
// stream chunk per tick, and installs decoded keymaps into the store. It
// never blocks: a partially received frame simply carries over to the next
// tick.
type listener struct {
	logger hal.Logger
	link   hal.ConfigLink
	store  *keymap.Store

	state  listenState
	header [2]byte
	got    int
	want   int
	buf    []byte

	installed uint32
	rejected  uint32
}

func newListener(logger hal.Logger, link hal.ConfigLink, store *keymap.Store) *listener {
	return &listener{
		logger: logger,
		link:   link,
		store:  store,
		buf:    make([]byte, 0, MaxFramePayload),
	}
}

// Step drains whatever bytes are pending on the link.
func (l *listener) Step() {
	var chunk [64]byte
	for {
		n, err := l.link.Read(chunk[:])
		if err != nil || n == 0 {
			return
		}
		for _, b := range chunk[:n] {
			l.feed(b)
		}
	}
}

func (l *listener) feed(b byte) {
	switch l.state {
	case stateMagic:
		// Bytes before the magic are line noise; resynchronize on it.
		if b == FrameMagic {
			l.state = stateLength
			l.got = 0
		}
	case stateLength:
		l.header[l.got] = b
		l.got++
		if l.got < 2 {
			return
		}
		l.want = int(binary.LittleEndian.Uint16(l.header[:]))
		if l.want > MaxFramePayload {
			l.reply(StatusTooLarge)
			l.state = stateMagic
			return
		}
		l.buf = l.buf[:0]
		if l.want == 0 {
			l.finish()
			return
		}
		l.state = statePayload
	case statePayload:
		l.buf = append(l.buf, b)
		if len(l.buf) == l.want {
			l.finish()
		}
	}
}

func (l *listener) finish() {
	l.state = stateMagic
	var m proto.Keymap
	if err := m.UnmarshalBinary(l.buf); err != nil {
		l.rejected++
		if l.logger != nil {
			l.logger.WriteLineString("config: " + err.Error())
		}
		l.reply(StatusDecodeError)
		return
	}
	if err := l.store.Install(&m); err != nil {
		l.rejected++
		if l.logger != nil {
			l.logger.WriteLineString("config: " + err.Error())
		}
		l.reply(installStatus(err))
		return
	}
	l.installed++
	if l.logger != nil {
		l.logger.WriteLineString("config: installed keymap")
	}
	l.reply(StatusOK)
}

func (l *listener) reply(status byte) {
	l.link.Write([]byte{status})
}

func installStatus(err error) byte {
	ce, ok := err.(*keymap.ConfigError)
	if !ok {
		return StatusDecodeError
	}
	switch ce.Code {
	case keymap.ErrCodeDuplicateButton:
		return StatusDuplicateButton
	case keymap.ErrCodeInvalidKeyCode:
		return StatusInvalidKeyCode
	case keymap.ErrCodeUnknownButton:
		return StatusUnknownButton
	default:
		return StatusDecodeError
	}
}

// EncodeFrame wraps a marshalled message in the wire framing. Shared with
// the host-side configuration tool.
func EncodeFrame(payload []byte) []byte {
	out := make([]byte, 0, 3+len(payload))
	out = append(out, FrameMagic)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(payload)))
	return append(out, payload...)
}
