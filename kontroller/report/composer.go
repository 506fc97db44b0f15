package report

import (
	"github.com/openmoto-org/kontroller/hal"
	"github.com/openmoto-org/kontroller/kontroller/proto"
	"github.com/openmoto-org/kontroller/kontroller/queue"
	"github.com/openmoto-org/kontroller/kontroller/scan"
	"github.com/openmoto-org/kontroller/kontroller/translate"
)

// Composer folds key events into the held-key set and publishes a report
// snapshot whenever that set changes. Publication order is event order, so
// a consumer never observes a release before its press.
type Composer struct {
	logger  hal.Logger
	in      *queue.Ring[translate.KeyEvent]
	publish func(Report)

	cur       Report
	saturated uint32
}

// New builds a composer reading key events from in. publish is invoked with
// an immutable copy of the report after every change.
func New(logger hal.Logger, in *queue.Ring[translate.KeyEvent], publish func(Report)) *Composer {
	return &Composer{logger: logger, in: in, publish: publish}
}

// Step drains pending key events in order.
func (c *Composer) Step() {
	for {
		ev, ok := c.in.Pop()
		if !ok {
			return
		}
		if c.apply(ev) {
			c.publish(c.cur)
		}
	}
}

// Current returns the present report snapshot.
func (c *Composer) Current() Report { return c.cur }

// Saturations returns how many presses were dropped on a full report.
func (c *Composer) Saturations() uint32 { return c.saturated }

func (c *Composer) apply(ev translate.KeyEvent) (changed bool) {
	if ev.Edge == scan.EdgePressed {
		return c.press(ev.KeyCode)
	}
	return c.release(ev.KeyCode)
}

func (c *Composer) press(code proto.KeyCode) bool {
	if code.IsModifier() {
		bit := code.ModifierBit()
		if c.cur.Modifiers&bit != 0 {
			return false
		}
		c.cur.Modifiers |= bit
		return true
	}
	if c.cur.holds(code) {
		return false
	}
	for i := range c.cur.Keys {
		if c.cur.Keys[i] == proto.KeyNone {
			c.cur.Keys[i] = code
			return true
		}
	}
	// Report saturation: the earliest-pressed keys keep their slots, the
	// newest press is dropped. Non-fatal; the release for this key later
	// arrives as a harmless no-op.
	c.saturated++
	if c.logger != nil {
		c.logger.WriteLineString("report: full, dropping key press")
	}
	return false
}

func (c *Composer) release(code proto.KeyCode) bool {
	if code.IsModifier() {
		bit := code.ModifierBit()
		if c.cur.Modifiers&bit == 0 {
			return false
		}
		c.cur.Modifiers &^= bit
		return true
	}
	for i := range c.cur.Keys {
		if c.cur.Keys[i] != code {
			continue
		}
		// Shift the later presses down to keep press order contiguous.
		copy(c.cur.Keys[i:], c.cur.Keys[i+1:])
		c.cur.Keys[MaxKeys-1] = proto.KeyNone
		return true
	}
	return false
}
