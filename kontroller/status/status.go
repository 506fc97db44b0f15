// Package status drives the board LED from the controller's state. While no
// HID link is up the LED blinks steadily; once a link is up it stays dark
// and pulses briefly for every delivered report.
package status

import "github.com/openmoto-org/kontroller/hal"

const (
	// searchPeriodTicks is the half-period of the "no link" blink, in ticks.
	searchPeriodTicks = 250
	// pulseTicks is how long the per-report flash stays lit.
	pulseTicks = 30
)

// Blinker owns one LED.
type Blinker struct {
	led hal.LED

	linked    bool
	lit       bool
	phase     uint64
	pulseLeft uint32
}

// New builds a blinker over led. The LED starts dark.
func New(led hal.LED) *Blinker {
	led.Low()
	return &Blinker{led: led}
}

// SetLinked records whether at least one HID link is currently up.
func (b *Blinker) SetLinked(linked bool) {
	if b.linked == linked {
		return
	}
	b.linked = linked
	b.phase = 0
	b.pulseLeft = 0
	b.set(false)
}

// Pulse requests a short flash, typically after a report went out. While a
// pulse is in flight further requests extend it rather than queueing.
func (b *Blinker) Pulse() {
	if !b.linked {
		return
	}
	b.pulseLeft = pulseTicks
}

// Step advances the blink pattern by one tick.
func (b *Blinker) Step() {
	if !b.linked {
		b.phase++
		if b.phase >= searchPeriodTicks {
			b.phase = 0
			b.set(!b.lit)
		}
		return
	}
	if b.pulseLeft > 0 {
		b.set(true)
		b.pulseLeft--
		return
	}
	b.set(false)
}

func (b *Blinker) set(on bool) {
	if b.lit == on {
		return
	}
	b.lit = on
	if on {
		b.led.High()
	} else {
		b.led.Low()
	}
}
