//go:build !tinygo

package hal

import "testing"

func TestHostTimeSequencesTicks(t *testing.T) {
	ht := newHostTime()
	ht.stepN(3)

	for want := uint64(1); want <= 3; want++ {
		select {
		case got := <-ht.Ticks():
			if got != want {
				t.Fatalf("tick = %d, want %d", got, want)
			}
		default:
			t.Fatalf("tick %d missing", want)
		}
	}
	select {
	case got := <-ht.Ticks():
		t.Fatalf("unexpected extra tick %d", got)
	default:
	}
}

func TestLoopbackLinkRoundTrip(t *testing.T) {
	l := newLoopbackLink()

	var buf [8]byte
	if n, _ := l.Read(buf[:]); n != 0 {
		t.Fatalf("empty link read %d bytes", n)
	}

	l.hostWrite([]byte{0xA7, 0x02})
	n, err := l.Read(buf[:])
	if err != nil || n != 2 || buf[0] != 0xA7 || buf[1] != 0x02 {
		t.Fatalf("device read = (%d, %v, %v)", n, err, buf[:n])
	}

	if _, err := l.Write([]byte{0x00}); err != nil {
		t.Fatalf("device write: %v", err)
	}
	if got := l.hostRead(); len(got) != 1 || got[0] != 0x00 {
		t.Fatalf("host read = %v", got)
	}
}

func TestMemLinkDropsWhileDown(t *testing.T) {
	l := &memLink{name: "usb"}
	if err := l.WriteReport([8]byte{0, 0, 0x04}); err != ErrLinkNotReady {
		t.Fatalf("expected ErrLinkNotReady, got %v", err)
	}

	l.setReady(true)
	if err := l.WriteReport([8]byte{0, 0, 0x04}); err != nil {
		t.Fatalf("write while ready: %v", err)
	}
	last, written := l.lastReport()
	if written != 1 || last[2] != 0x04 {
		t.Fatalf("lastReport = (%v, %d)", last, written)
	}
}
