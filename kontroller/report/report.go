// Package report maintains the set of currently-held keys and packs it into
// boot-keyboard input reports.
package report

import "github.com/openmoto-org/kontroller/kontroller/proto"

// MaxKeys is the number of non-modifier key slots in a boot-keyboard
// report. The USB HID boot convention allows 6; the BLE descriptor the
// firmware publishes matches.
const MaxKeys = 6

// Report is one input-report snapshot: the modifier mask plus the held
// usages in press order. It is published by value; sinks never share a
// mutable report.
type Report struct {
	Modifiers uint8
	Keys      [MaxKeys]proto.KeyCode
}

// Pack lays the report out in boot-keyboard order: modifier byte, reserved
// byte, six usage bytes.
func (r Report) Pack() [8]byte {
	var b [8]byte
	b[0] = r.Modifiers
	for i, k := range r.Keys {
		b[2+i] = byte(k)
	}
	return b
}

// Empty reports whether nothing is held.
func (r Report) Empty() bool {
	return r == Report{}
}

func (r Report) holds(code proto.KeyCode) bool {
	for _, k := range r.Keys {
		if k == code {
			return true
		}
	}
	return false
}
