//go:build !tinygo

package hal

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

const defaultConfigBaud = 115200

// serialConfigLink adapts a host serial port to the non-blocking ConfigLink
// contract by capping the read timeout at one millisecond.
type serialConfigLink struct {
	port serial.Port
}

// OpenSerialConfig opens a serial device as the configuration link.
func OpenSerialConfig(path string, baud int) (ConfigLink, error) {
	if baud <= 0 {
		baud = defaultConfigBaud
	}
	port, err := serial.Open(path, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open config port %q: %w", path, err)
	}
	if err := port.SetReadTimeout(time.Millisecond); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("config port %q read timeout: %w", path, err)
	}
	return &serialConfigLink{port: port}, nil
}

func (l *serialConfigLink) Read(p []byte) (int, error) {
	n, err := l.port.Read(p)
	if err != nil {
		return n, fmt.Errorf("config link read: %w", err)
	}
	return n, nil
}

func (l *serialConfigLink) Write(p []byte) (int, error) {
	n, err := l.port.Write(p)
	if err != nil {
		return n, fmt.Errorf("config link write: %w", err)
	}
	return n, nil
}
