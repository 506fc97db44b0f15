package report

import (
	"testing"

	"github.com/openmoto-org/kontroller/kontroller/proto"
	"github.com/openmoto-org/kontroller/kontroller/queue"
	"github.com/openmoto-org/kontroller/kontroller/scan"
	"github.com/openmoto-org/kontroller/kontroller/translate"
)

func newTestComposer() (*Composer, *queue.Ring[translate.KeyEvent], *[]Report) {
	in := queue.NewRing[translate.KeyEvent](32)
	published := &[]Report{}
	c := New(nil, in, func(r Report) { *published = append(*published, r) })
	return c, in, published
}

func press(code proto.KeyCode) translate.KeyEvent {
	return translate.KeyEvent{KeyCode: code, Edge: scan.EdgePressed}
}

func release(code proto.KeyCode) translate.KeyEvent {
	return translate.KeyEvent{KeyCode: code, Edge: scan.EdgeReleased}
}

func TestPressAndReleasePublishSnapshots(t *testing.T) {
	c, in, published := newTestComposer()

	in.Push(press(proto.KeyA))
	in.Push(release(proto.KeyA))
	c.Step()

	got := *published
	if len(got) != 2 {
		t.Fatalf("expected two snapshots, got %d", len(got))
	}
	if got[0].Keys[0] != proto.KeyA {
		t.Fatalf("first snapshot should hold KeyA: %+v", got[0])
	}
	if !got[1].Empty() {
		t.Fatalf("second snapshot should be empty: %+v", got[1])
	}
}

func TestModifierPacksIntoMask(t *testing.T) {
	c, in, published := newTestComposer()

	in.Push(press(proto.KeyLeftShift))
	in.Push(press(proto.KeyA))
	c.Step()

	got := *published
	if len(got) != 2 {
		t.Fatalf("expected two snapshots, got %d", len(got))
	}
	last := got[1]
	if last.Modifiers != 0x02 {
		t.Fatalf("expected left shift mask 0x02, got %#x", last.Modifiers)
	}
	if last.Keys[0] != proto.KeyA {
		t.Fatalf("expected KeyA in first slot: %+v", last)
	}

	packed := last.Pack()
	want := [8]byte{0x02, 0x00, 0x04}
	if packed != want {
		t.Fatalf("Pack = %v, expected %v", packed, want)
	}
}

func TestSaturationDropsNewestKey(t *testing.T) {
	c, in, _ := newTestComposer()

	codes := []proto.KeyCode{proto.KeyA, proto.KeyB, proto.KeyC, proto.KeyD, proto.KeyE, proto.KeyF, proto.KeyG}
	for _, code := range codes {
		in.Push(press(code))
	}
	c.Step()

	cur := c.Current()
	for i := 0; i < MaxKeys; i++ {
		if cur.Keys[i] != codes[i] {
			t.Fatalf("slot %d: expected %#x, got %#x", i, uint16(codes[i]), uint16(cur.Keys[i]))
		}
	}
	if c.Saturations() != 1 {
		t.Fatalf("expected 1 saturation, got %d", c.Saturations())
	}

	// Releasing the dropped key is a no-op; releasing a held key frees
	// its slot and keeps press order.
	in.Push(release(proto.KeyG))
	in.Push(release(proto.KeyA))
	c.Step()

	cur = c.Current()
	if cur.Keys[0] != proto.KeyB || cur.Keys[MaxKeys-1] != proto.KeyNone {
		t.Fatalf("unexpected report after releases: %+v", cur)
	}
}

func TestReleaseOfUntrackedCodeIsNoop(t *testing.T) {
	c, in, published := newTestComposer()

	in.Push(release(proto.KeyZ))
	in.Push(release(proto.KeyRightAlt))
	c.Step()

	if len(*published) != 0 {
		t.Fatalf("expected no snapshots, got %+v", *published)
	}
}

func TestDuplicatePressDoesNotRepublish(t *testing.T) {
	c, in, published := newTestComposer()

	in.Push(press(proto.KeySpace))
	in.Push(press(proto.KeySpace))
	c.Step()

	if len(*published) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(*published))
	}
}

func TestPublicationOrderIsEventOrder(t *testing.T) {
	c, in, published := newTestComposer()

	in.Push(press(proto.KeyA))
	in.Push(press(proto.KeyB))
	in.Push(release(proto.KeyA))
	c.Step()

	got := *published
	if len(got) != 3 {
		t.Fatalf("expected three snapshots, got %d", len(got))
	}
	if !got[0].holds(proto.KeyA) || got[0].holds(proto.KeyB) {
		t.Fatalf("snapshot 0 wrong: %+v", got[0])
	}
	if !got[1].holds(proto.KeyA) || !got[1].holds(proto.KeyB) {
		t.Fatalf("snapshot 1 wrong: %+v", got[1])
	}
	if got[2].holds(proto.KeyA) || !got[2].holds(proto.KeyB) {
		t.Fatalf("snapshot 2 wrong: %+v", got[2])
	}
}
