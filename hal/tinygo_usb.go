//go:build tinygo && baremetal

package hal

import (
	kbd "machine/usb/hid/keyboard"
)

// usbLink delivers reports through the TinyGo USB HID keyboard port.
//
// The port tracks its own held-key state, so the link diffs each report
// against the previous one and issues Down/Up calls per changed usage.
type usbLink struct {
	port *kbd.Keyboard
	prev [8]byte
}

func newUSBLink() *usbLink {
	return &usbLink{port: kbd.Port()}
}

func (l *usbLink) Name() string { return "usb" }

// Ready reports whether the device-side port exists. Host presence is not
// observable through the TinyGo HID layer; an unplugged cable surfaces as
// send errors instead.
func (l *usbLink) Ready() bool { return l.port != nil }

func (l *usbLink) WriteReport(report [8]byte) error {
	if l.port == nil {
		return ErrLinkNotReady
	}
	for _, usage := range l.prev[2:] {
		if usage != 0 && !reportHolds(report, usage) {
			if err := l.port.Up(usageKeycode(usage)); err != nil {
				return err
			}
		}
	}
	for _, usage := range report[2:] {
		if usage != 0 && !reportHolds(l.prev, usage) {
			if err := l.port.Down(usageKeycode(usage)); err != nil {
				return err
			}
		}
	}
	if diff := l.prev[0] ^ report[0]; diff != 0 {
		for bit := 0; bit < 8; bit++ {
			if diff&(1<<bit) == 0 {
				continue
			}
			kc := modifierKeycode(bit)
			var err error
			if report[0]&(1<<bit) != 0 {
				err = l.port.Down(kc)
			} else {
				err = l.port.Up(kc)
			}
			if err != nil {
				return err
			}
		}
	}
	l.prev = report
	return nil
}

func reportHolds(report [8]byte, usage byte) bool {
	for _, u := range report[2:] {
		if u == usage {
			return true
		}
	}
	return false
}

// usageKeycode converts a keyboard-page usage ID into the TinyGo keycode
// encoding (usage ORed into the 0xF000 key plane).
func usageKeycode(usage byte) kbd.Keycode {
	return kbd.Keycode(usage) | 0xF000
}

// modifierKeycode converts a modifier bit index (0 = LeftCtrl .. 7 =
// RightGUI) into the 0xE000 modifier plane.
func modifierKeycode(bit int) kbd.Keycode {
	return kbd.Keycode(1<<bit) | 0xE000
}
