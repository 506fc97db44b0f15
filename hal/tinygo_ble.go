//go:build tinygo && baremetal

package hal

import (
	"sync/atomic"

	"tinygo.org/x/bluetooth"
)

const bleDeviceName = "DMD CTL 8K"

// Boot keyboard report map published over HID-over-GATT: 8 modifier bits,
// one reserved byte, 5 LED output bits plus padding, 6 key usage slots.
var bleReportMap = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x06, // Usage (Keyboard)
	0xa1, 0x01, // Collection (Application)
	0x05, 0x07, //   Usage Page (Kbrd/Keypad)
	0x19, 0xe0, //   Usage Minimum (0xE0)
	0x29, 0xe7, //   Usage Maximum (0xE7)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x01, //   Logical Maximum (1)
	0x75, 0x01, //   Report Size (1)
	0x95, 0x08, //   Report Count (8)
	0x81, 0x02, //   Input (Data,Var,Abs)
	0x95, 0x01, //   Report Count (1)
	0x75, 0x08, //   Report Size (8)
	0x81, 0x01, //   Input (Const)
	0x95, 0x05, //   Report Count (5)
	0x75, 0x01, //   Report Size (1)
	0x05, 0x08, //   Usage Page (LEDs)
	0x19, 0x01, //   Usage Minimum (Num Lock)
	0x29, 0x05, //   Usage Maximum (Kana)
	0x91, 0x02, //   Output (Data,Var,Abs)
	0x95, 0x01, //   Report Count (1)
	0x75, 0x03, //   Report Size (3)
	0x91, 0x01, //   Output (Const)
	0x95, 0x06, //   Report Count (6)
	0x75, 0x08, //   Report Size (8)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0xdd, //   Logical Maximum (0xDD)
	0x05, 0x07, //   Usage Page (Kbrd/Keypad)
	0x19, 0x00, //   Usage Minimum (0)
	0x29, 0xdd, //   Usage Maximum (0xDD)
	0x81, 0x00, //   Input (Data,Array,Abs)
	0xc0, // End Collection
}

// bleLink is a HID-over-GATT keyboard: the HID service with the boot report
// map above, input reports notified through the report characteristic.
type bleLink struct {
	report    bluetooth.Characteristic
	connected atomic.Bool
	up        bool
}

func newBLELink() *bleLink {
	l := &bleLink{}

	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return l
	}

	adapter.SetConnectHandler(func(_ bluetooth.Device, connected bool) {
		l.connected.Store(connected)
	})

	err := adapter.AddService(&bluetooth.Service{
		UUID: bluetooth.ServiceUUIDHumanInterfaceDevice,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				UUID:  bluetooth.CharacteristicUUIDReportMap,
				Value: bleReportMap,
				Flags: bluetooth.CharacteristicReadPermission,
			},
			{
				Handle: &l.report,
				UUID:   bluetooth.CharacteristicUUIDReport,
				Value:  make([]byte, 8),
				Flags:  bluetooth.CharacteristicReadPermission | bluetooth.CharacteristicNotifyPermission,
			},
			{
				UUID:  bluetooth.CharacteristicUUIDHIDInformation,
				Value: []byte{0x11, 0x01, 0x00, 0x02}, // bcdHID 1.11, not localized, normally connectable
				Flags: bluetooth.CharacteristicReadPermission,
			},
			{
				UUID:  bluetooth.CharacteristicUUIDProtocolMode,
				Value: []byte{0x01}, // report protocol
				Flags: bluetooth.CharacteristicReadPermission | bluetooth.CharacteristicWriteWithoutResponsePermission,
			},
		},
	})
	if err != nil {
		return l
	}

	adv := adapter.DefaultAdvertisement()
	if err := adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    bleDeviceName,
		ServiceUUIDs: []bluetooth.UUID{bluetooth.ServiceUUIDHumanInterfaceDevice},
	}); err != nil {
		return l
	}
	if err := adv.Start(); err != nil {
		return l
	}

	l.up = true
	return l
}

func (l *bleLink) Name() string { return "ble" }

func (l *bleLink) Ready() bool { return l.up && l.connected.Load() }

func (l *bleLink) WriteReport(report [8]byte) error {
	if !l.Ready() {
		return ErrLinkNotReady
	}
	_, err := l.report.Write(report[:])
	return err
}
