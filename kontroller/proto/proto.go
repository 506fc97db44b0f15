// Package proto defines the kontroller.v1 configuration schema: the Keymap
// message installed over the configuration link, and the Konfiguration
// envelope the device boots from.
//
// Messages use the protobuf wire format, encoded and decoded directly with
// protowire. Unknown fields are skipped so newer hosts can talk to older
// firmware.
package proto

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Button identifies one physical control on the keypad.
type Button int32

const (
	ButtonUnspecified Button = iota
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonEnter
	ButtonFn1
	ButtonFn2
	ButtonFn3

	// NumButtons is the size of the Button universe including Unspecified.
	NumButtons = 9
)

// Known reports whether b names a physical button.
func (b Button) Known() bool { return b > ButtonUnspecified && b < NumButtons }

func (b Button) String() string {
	switch b {
	case ButtonUnspecified:
		return "unspecified"
	case ButtonUp:
		return "up"
	case ButtonDown:
		return "down"
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonEnter:
		return "enter"
	case ButtonFn1:
		return "fn1"
	case ButtonFn2:
		return "fn2"
	case ButtonFn3:
		return "fn3"
	default:
		return "unknown"
	}
}

// ParseButton resolves a button name as used by configuration tooling.
func ParseButton(name string) (Button, bool) {
	for b := ButtonUp; b < NumButtons; b++ {
		if b.String() == name {
			return b, true
		}
	}
	return ButtonUnspecified, false
}

// Entry maps one Button to the KeyCode it emits.
type Entry struct {
	Button  Button
	KeyCode KeyCode
}

// Keymap is an ordered list of Entry values. Lookup semantics ignore the
// order; it is preserved only so a keymap round-trips byte-identically.
type Keymap struct {
	Entries []Entry
}

// Konfiguration is the device configuration envelope.
type Konfiguration struct {
	Keymap                    *Keymap
	ButtonsPollIntervalMicros uint32
}

// Field numbers, fixed by the kontroller.v1 schema.
const (
	keymapFieldEntries = 1

	entryFieldButton  = 1
	entryFieldKeyCode = 2

	konfigurationFieldKeymap       = 1
	konfigurationFieldPollInterval = 2
)

// DecodeError reports unparsable message bytes. It is distinct from the
// semantic validation errors raised at keymap install time.
type DecodeError struct {
	Msg string
}

func (e *DecodeError) Error() string { return "proto: " + e.Msg }

func decodeErrorf(format string, args ...any) error {
	return &DecodeError{Msg: fmt.Sprintf(format, args...)}
}

// MarshalBinary encodes the keymap in kontroller.v1 wire format.
func (m *Keymap) MarshalBinary() ([]byte, error) {
	var b []byte
	for _, e := range m.Entries {
		b = protowire.AppendTag(b, keymapFieldEntries, protowire.BytesType)
		b = protowire.AppendBytes(b, appendEntry(nil, e))
	}
	return b, nil
}

func appendEntry(b []byte, e Entry) []byte {
	if e.Button != 0 {
		b = protowire.AppendTag(b, entryFieldButton, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(e.Button))
	}
	if e.KeyCode != 0 {
		b = protowire.AppendTag(b, entryFieldKeyCode, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(e.KeyCode))
	}
	return b
}

// UnmarshalBinary decodes a keymap, skipping unknown fields.
func (m *Keymap) UnmarshalBinary(data []byte) error {
	var entries []Entry
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return decodeErrorf("keymap: bad tag: %v", protowire.ParseError(n))
		}
		data = data[n:]

		if num == keymapFieldEntries && typ == protowire.BytesType {
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return decodeErrorf("keymap: bad entry: %v", protowire.ParseError(n))
			}
			data = data[n:]
			e, err := parseEntry(raw)
			if err != nil {
				return err
			}
			entries = append(entries, e)
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return decodeErrorf("keymap: field %d: %v", num, protowire.ParseError(n))
		}
		data = data[n:]
	}
	m.Entries = entries
	return nil
}

func parseEntry(data []byte) (Entry, error) {
	var e Entry
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Entry{}, decodeErrorf("entry: bad tag: %v", protowire.ParseError(n))
		}
		data = data[n:]

		if typ == protowire.VarintType && (num == entryFieldButton || num == entryFieldKeyCode) {
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return Entry{}, decodeErrorf("entry: field %d: %v", num, protowire.ParseError(n))
			}
			data = data[n:]
			if num == entryFieldButton {
				e.Button = Button(int32(v))
			} else {
				e.KeyCode = KeyCode(v)
			}
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return Entry{}, decodeErrorf("entry: field %d: %v", num, protowire.ParseError(n))
		}
		data = data[n:]
	}
	return e, nil
}

// MarshalBinary encodes the configuration envelope.
func (k *Konfiguration) MarshalBinary() ([]byte, error) {
	var b []byte
	if k.Keymap != nil {
		raw, err := k.Keymap.MarshalBinary()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, konfigurationFieldKeymap, protowire.BytesType)
		b = protowire.AppendBytes(b, raw)
	}
	if k.ButtonsPollIntervalMicros != 0 {
		b = protowire.AppendTag(b, konfigurationFieldPollInterval, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(k.ButtonsPollIntervalMicros))
	}
	return b, nil
}

// UnmarshalBinary decodes a configuration envelope, skipping unknown fields.
func (k *Konfiguration) UnmarshalBinary(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return decodeErrorf("konfiguration: bad tag: %v", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == konfigurationFieldKeymap && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return decodeErrorf("konfiguration: bad keymap: %v", protowire.ParseError(n))
			}
			data = data[n:]
			var m Keymap
			if err := m.UnmarshalBinary(raw); err != nil {
				return err
			}
			k.Keymap = &m
		case num == konfigurationFieldPollInterval && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return decodeErrorf("konfiguration: bad poll interval: %v", protowire.ParseError(n))
			}
			data = data[n:]
			k.ButtonsPollIntervalMicros = uint32(v)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return decodeErrorf("konfiguration: field %d: %v", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return nil
}
