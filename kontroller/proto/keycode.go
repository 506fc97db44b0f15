package proto

import "strconv"

// KeyCode is a HID keyboard-page usage ID (kontroller.hid.v1.KeyCode).
//
// The core treats it as opaque beyond range checks; the host decides what a
// code means. Named constants below cover the usages the configuration tool
// accepts by name.
type KeyCode uint16

const (
	// KeyNone is the unmapped/empty report slot. It is not installable.
	KeyNone KeyCode = 0x00

	// Installable usage range, matching the report descriptor the firmware
	// publishes (logical max 0xDD) plus the modifier band.
	minUsage    KeyCode = 0x04
	maxUsage    KeyCode = 0xDD
	minModifier KeyCode = 0xE0
	maxModifier KeyCode = 0xE7
)

const (
	KeyA KeyCode = 0x04 + iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	Key0
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
	KeySpace
)

const (
	KeyF1 KeyCode = 0x3A + iota
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

const (
	KeyRight KeyCode = 0x4F + iota
	KeyLeft
	KeyDown
	KeyUp
)

const (
	KeyLeftCtrl KeyCode = 0xE0 + iota
	KeyLeftShift
	KeyLeftAlt
	KeyLeftGUI
	KeyRightCtrl
	KeyRightShift
	KeyRightAlt
	KeyRightGUI
)

const (
	KeyMute       KeyCode = 0x7F
	KeyVolumeUp   KeyCode = 0x80
	KeyVolumeDown KeyCode = 0x81
)

// Valid reports whether the code may enter a keymap: a regular usage or a
// modifier, never KeyNone.
func (k KeyCode) Valid() bool {
	return (k >= minUsage && k <= maxUsage) || k.IsModifier()
}

// IsModifier reports whether the code lives in the modifier band
// (LeftCtrl..RightGUI), which packs into the report's modifier mask.
func (k KeyCode) IsModifier() bool {
	return k >= minModifier && k <= maxModifier
}

// ModifierBit returns the modifier mask bit for a modifier code, or 0.
func (k KeyCode) ModifierBit() uint8 {
	if !k.IsModifier() {
		return 0
	}
	return 1 << (k - minModifier)
}

var keyNames = map[string]KeyCode{
	"enter":     KeyEnter,
	"esc":       KeyEscape,
	"backspace": KeyBackspace,
	"tab":       KeyTab,
	"space":     KeySpace,
	"right":     KeyRight,
	"left":      KeyLeft,
	"down":      KeyDown,
	"up":        KeyUp,
	"ctrl":      KeyLeftCtrl,
	"shift":     KeyLeftShift,
	"alt":       KeyLeftAlt,
	"gui":       KeyLeftGUI,
	"mute":      KeyMute,
	"vol+":      KeyVolumeUp,
	"vol-":      KeyVolumeDown,
}

// ParseKeyCode resolves a key name, a single character, an fN function key,
// or a numeric literal ("0x52", "82").
func ParseKeyCode(s string) (KeyCode, bool) {
	if k, ok := keyNames[s]; ok {
		return k, true
	}
	if len(s) == 1 {
		switch c := s[0]; {
		case c >= 'a' && c <= 'z':
			return KeyA + KeyCode(c-'a'), true
		case c >= '1' && c <= '9':
			return Key1 + KeyCode(c-'1'), true
		case c == '0':
			return Key0, true
		}
	}
	if len(s) > 1 && s[0] == 'f' {
		if n, err := strconv.Atoi(s[1:]); err == nil && n >= 1 && n <= 12 {
			return KeyF1 + KeyCode(n-1), true
		}
	}
	if v, err := strconv.ParseUint(s, 0, 16); err == nil {
		return KeyCode(v), true
	}
	return KeyNone, false
}
