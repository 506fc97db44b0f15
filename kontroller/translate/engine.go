// Package translate resolves debounced button transitions into HID key
// events through the keymap store.
package translate

import (
	"github.com/openmoto-org/kontroller/kontroller/keymap"
	"github.com/openmoto-org/kontroller/kontroller/proto"
	"github.com/openmoto-org/kontroller/kontroller/queue"
	"github.com/openmoto-org/kontroller/kontroller/scan"
)

// KeyEvent is a resolved press or release of one key code.
type KeyEvent struct {
	KeyCode proto.KeyCode
	Edge    scan.Edge
}

// Engine consumes transitions and emits key events.
//
// The key code for a press is resolved once, at press time, and remembered
// per button until the matching release. Swapping the keymap while a button
// is held therefore cannot change which key is down: the release reuses the
// code the press was bound to, so no key is ever left stuck in the report.
// The binding table is bounded by the button universe, so memory use is
// constant.
type Engine struct {
	store *keymap.Store
	held  [proto.NumButtons]proto.KeyCode
	in    *queue.Ring[scan.Transition]
	out   *queue.Ring[KeyEvent]
}

// New builds an engine reading transitions from in and emitting key events
// to out.
func New(store *keymap.Store, in *queue.Ring[scan.Transition], out *queue.Ring[KeyEvent]) *Engine {
	return &Engine{store: store, in: in, out: out}
}

// Step drains pending transitions in emission order.
func (e *Engine) Step() {
	for {
		tr, ok := e.in.Pop()
		if !ok {
			return
		}
		e.translate(tr)
	}
}

func (e *Engine) translate(tr scan.Transition) {
	if !tr.Button.Known() {
		return
	}
	switch tr.Edge {
	case scan.EdgePressed:
		code, ok := e.store.Resolve(tr.Button)
		if !ok {
			return // unmapped buttons are inert
		}
		e.held[tr.Button] = code
		e.out.Push(KeyEvent{KeyCode: code, Edge: scan.EdgePressed})
	case scan.EdgeReleased:
		code := e.held[tr.Button]
		if code == proto.KeyNone {
			return
		}
		e.held[tr.Button] = proto.KeyNone
		e.out.Push(KeyEvent{KeyCode: code, Edge: scan.EdgeReleased})
	}
}
