// Package keymap owns the active button-to-keycode mapping.
//
// The store is the only state shared between the configuration listener
// (single writer) and the translation engine (single reader). Installs swap
// a complete snapshot through an atomic pointer, so a concurrent Resolve
// sees either the previous mapping or the next one, never a mix.
package keymap

import (
	"fmt"
	"sync/atomic"

	"github.com/openmoto-org/kontroller/kontroller/proto"
)

// ErrorCode classifies why a keymap was rejected.
type ErrorCode uint8

const (
	ErrCodeDuplicateButton ErrorCode = iota + 1
	ErrCodeInvalidKeyCode
	ErrCodeUnknownButton
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeDuplicateButton:
		return "duplicate_button"
	case ErrCodeInvalidKeyCode:
		return "invalid_key_code"
	case ErrCodeUnknownButton:
		return "unknown_button"
	default:
		return "unknown"
	}
}

// ConfigError rejects a whole keymap at install time. The previously
// installed mapping stays active.
type ConfigError struct {
	Code    ErrorCode
	Button  proto.Button
	KeyCode proto.KeyCode
}

func (e *ConfigError) Error() string {
	switch e.Code {
	case ErrCodeDuplicateButton:
		return fmt.Sprintf("keymap: duplicate button %s", e.Button)
	case ErrCodeInvalidKeyCode:
		return fmt.Sprintf("keymap: button %s: invalid key code %#x", e.Button, uint16(e.KeyCode))
	case ErrCodeUnknownButton:
		return fmt.Sprintf("keymap: unknown button %d", int32(e.Button))
	default:
		return "keymap: invalid"
	}
}

// table is one immutable mapping snapshot, indexed by Button.
type table [proto.NumButtons]proto.KeyCode

// Store holds the active keymap.
//
// The zero value is ready to use and maps every button to nothing.
type Store struct {
	cur atomic.Pointer[table]
}

// Install validates the keymap and atomically replaces the active mapping.
//
// A keymap naming the same button twice is rejected wholesale with
// ErrCodeDuplicateButton: silent last-wins would make a fat-fingered config
// change invisible until the key behaves strangely in the field. Key codes
// outside the HID usage range and unknown buttons are rejected the same way.
// On any error the prior mapping remains installed.
func (s *Store) Install(m *proto.Keymap) error {
	var next table
	var seen [proto.NumButtons]bool
	for _, e := range m.Entries {
		if !e.Button.Known() {
			return &ConfigError{Code: ErrCodeUnknownButton, Button: e.Button}
		}
		if seen[e.Button] {
			return &ConfigError{Code: ErrCodeDuplicateButton, Button: e.Button}
		}
		if !e.KeyCode.Valid() {
			return &ConfigError{Code: ErrCodeInvalidKeyCode, Button: e.Button, KeyCode: e.KeyCode}
		}
		seen[e.Button] = true
		next[e.Button] = e.KeyCode
	}
	s.cur.Store(&next)
	return nil
}

// Resolve returns the key code mapped to the button, or (KeyNone, false) if
// the button is unmapped. Unmapped buttons are deliberately inert, not an
// error. Resolve never blocks.
func (s *Store) Resolve(b proto.Button) (proto.KeyCode, bool) {
	t := s.cur.Load()
	if t == nil || !b.Known() {
		return proto.KeyNone, false
	}
	code := t[b]
	return code, code != proto.KeyNone
}
