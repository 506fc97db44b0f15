//go:build !tinygo

package main

import (
	"testing"

	"github.com/openmoto-org/kontroller/kontroller"
	"github.com/openmoto-org/kontroller/kontroller/proto"
)

func TestParseKeymap(t *testing.T) {
	m, err := parseKeymap([]string{"up=a", "down=0x05", "enter=space", "fn1=f5"})
	if err != nil {
		t.Fatalf("parseKeymap: %v", err)
	}
	want := []proto.Entry{
		{Button: proto.ButtonUp, KeyCode: proto.KeyA},
		{Button: proto.ButtonDown, KeyCode: proto.KeyB},
		{Button: proto.ButtonEnter, KeyCode: proto.KeySpace},
		{Button: proto.ButtonFn1, KeyCode: proto.KeyF5},
	}
	if len(m.Entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(m.Entries), len(want))
	}
	for i, e := range want {
		if m.Entries[i] != e {
			t.Fatalf("entry %d = %+v, want %+v", i, m.Entries[i], e)
		}
	}
}

func TestParseKeymapRejects(t *testing.T) {
	cases := [][]string{
		{"up"},           // no '='
		{"sideways=a"},   // unknown button
		{"up=notakey"},   // unknown key
		{"up=a", "up=b"}, // duplicate button
	}
	for _, args := range cases {
		if _, err := parseKeymap(args); err == nil {
			t.Errorf("parseKeymap(%v) should fail", args)
		}
	}
}

func TestStatusError(t *testing.T) {
	if err := statusError(kontroller.StatusOK); err != nil {
		t.Fatalf("StatusOK should be nil, got %v", err)
	}
	for _, s := range []byte{
		kontroller.StatusDecodeError,
		kontroller.StatusDuplicateButton,
		kontroller.StatusInvalidKeyCode,
		kontroller.StatusUnknownButton,
		kontroller.StatusTooLarge,
		0x7F,
	} {
		if err := statusError(s); err == nil {
			t.Errorf("status %#x should be an error", s)
		}
	}
}
