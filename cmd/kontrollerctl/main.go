//go:build !tinygo

// kontrollerctl pushes a keymap to a connected keypad over its serial
// configuration link.
//
// Usage:
//
//	kontrollerctl -list
//	kontrollerctl -port /dev/ttyACM0 up=a down=b enter=space fn1=f5
//
// Each argument is button=key; keys accept usage names (a, space, enter),
// fN function keys, single characters, or raw usage IDs (0x04).
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.bug.st/serial"

	"github.com/openmoto-org/kontroller/kontroller"
	"github.com/openmoto-org/kontroller/kontroller/proto"
)

const (
	defaultBaud    = 115200
	defaultTimeout = 2 * time.Second
)

func main() {
	var (
		port    = flag.String("port", "", "Serial device of the keypad's configuration link.")
		baud    = flag.Int("baud", defaultBaud, "Baud rate of the configuration link.")
		timeout = flag.Duration("timeout", defaultTimeout, "How long to wait for the device's reply.")
		list    = flag.Bool("list", false, "List available serial ports and exit.")
		verbose = flag.Bool("v", false, "Enable debug logging.")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		log = log.Level(zerolog.InfoLevel)
	}

	if *list {
		listPorts(log)
		return
	}
	if *port == "" {
		log.Fatal().Msg("missing -port (try -list)")
	}
	if flag.NArg() == 0 {
		log.Fatal().Msg("no mappings given, expected button=key arguments")
	}

	m, err := parseKeymap(flag.Args())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid mapping")
	}
	for _, e := range m.Entries {
		log.Debug().Stringer("button", e.Button).Str("key", fmt.Sprintf("%#x", uint16(e.KeyCode))).Msg("entry")
	}

	if err := push(log, *port, *baud, *timeout, m); err != nil {
		log.Fatal().Err(err).Msg("configuration failed")
	}
	log.Info().Int("entries", len(m.Entries)).Msg("keymap installed")
}

func listPorts(log zerolog.Logger) {
	ports, err := serial.GetPortsList()
	if err != nil {
		log.Fatal().Err(err).Msg("enumerating serial ports")
	}
	if len(ports) == 0 {
		log.Info().Msg("no serial ports found")
		return
	}
	for _, p := range ports {
		fmt.Println(p)
	}
}

// parseKeymap turns button=key arguments into a Keymap, preserving the
// argument order. Duplicate buttons are caught here rather than leaving the
// device to reject the frame.
func parseKeymap(args []string) (*proto.Keymap, error) {
	m := &proto.Keymap{}
	seen := map[proto.Button]bool{}
	for _, arg := range args {
		name, key, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("%q: expected button=key", arg)
		}
		b, ok := proto.ParseButton(name)
		if !ok {
			return nil, fmt.Errorf("%q: unknown button %q", arg, name)
		}
		code, ok := proto.ParseKeyCode(key)
		if !ok {
			return nil, fmt.Errorf("%q: unknown key %q", arg, key)
		}
		if seen[b] {
			return nil, fmt.Errorf("%q: button %s mapped twice", arg, b)
		}
		seen[b] = true
		m.Entries = append(m.Entries, proto.Entry{Button: b, KeyCode: code})
	}
	return m, nil
}

func push(log zerolog.Logger, path string, baud int, timeout time.Duration, m *proto.Keymap) error {
	payload, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode keymap: %w", err)
	}
	frame := kontroller.EncodeFrame(payload)

	p, err := serial.Open(path, &serial.Mode{BaudRate: baud})
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer p.Close()
	if err := p.SetReadTimeout(timeout); err != nil {
		return fmt.Errorf("read timeout: %w", err)
	}

	log.Debug().Int("bytes", len(frame)).Msg("sending frame")
	if _, err := p.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	var reply [1]byte
	n, err := p.Read(reply[:])
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no reply from device within %s", timeout)
	}
	return statusError(reply[0])
}

func statusError(status byte) error {
	switch status {
	case kontroller.StatusOK:
		return nil
	case kontroller.StatusDecodeError:
		return fmt.Errorf("device rejected the frame: decode error")
	case kontroller.StatusDuplicateButton:
		return fmt.Errorf("device rejected the keymap: duplicate button")
	case kontroller.StatusInvalidKeyCode:
		return fmt.Errorf("device rejected the keymap: invalid key code")
	case kontroller.StatusUnknownButton:
		return fmt.Errorf("device rejected the keymap: unknown button")
	case kontroller.StatusTooLarge:
		return fmt.Errorf("device rejected the frame: payload too large")
	default:
		return fmt.Errorf("device returned unknown status %#x", status)
	}
}
