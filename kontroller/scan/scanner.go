// Package scan samples the raw button lines once per tick and turns level
// changes into debounced press/release transitions.
package scan

import (
	"github.com/openmoto-org/kontroller/hal"
	"github.com/openmoto-org/kontroller/kontroller/proto"
	"github.com/openmoto-org/kontroller/kontroller/queue"
)

// Edge is the direction of a transition.
type Edge uint8

const (
	EdgeReleased Edge = iota
	EdgePressed
)

func (e Edge) String() string {
	if e == EdgePressed {
		return "pressed"
	}
	return "released"
}

// Transition is one accepted button edge, tagged with the tick it was
// accepted on. Transitions are emitted in strict scan order: a single pass
// over the lines per tick, sequential emission.
type Transition struct {
	Button proto.Button
	Edge   Edge
	Tick   uint64
}

// DefaultDebounceTicks is the debounce window in scan ticks. At the 1 ms
// scan cadence this is the settle time of the keypad's dome switches.
const DefaultDebounceTicks = 5

// Config holds the scanner constants fixed at integration time.
type Config struct {
	DebounceTicks uint32
}

func (c *Config) debounce() uint64 {
	if c.DebounceTicks == 0 {
		return DefaultDebounceTicks
	}
	return uint64(c.DebounceTicks)
}

// Per-line debounce state: either stable at a level, or watching a
// candidate level since some tick.
type lineState struct {
	stable     bool
	debouncing bool
	candidate  bool
	since      uint64
}

// Scanner owns the per-line state machines. One Step per tick.
type Scanner struct {
	buttons hal.Buttons
	layout  []proto.Button
	cfg     Config
	lines   []lineState
	out     *queue.Ring[Transition]
}

// New builds a scanner over the HAL button lines. layout maps line index to
// the Button identity it reports; lines mapped to ButtonUnspecified are
// ignored.
func New(buttons hal.Buttons, layout []proto.Button, cfg Config, out *queue.Ring[Transition]) *Scanner {
	n := buttons.Count()
	if len(layout) < n {
		n = len(layout)
	}
	return &Scanner{
		buttons: buttons,
		layout:  layout[:n],
		cfg:     cfg,
		lines:   make([]lineState, n),
		out:     out,
	}
}

// Step samples every line once and emits at most one transition per line.
//
// A level change from stable starts the debounce window; the change is
// accepted only if the candidate level is still observed once the window
// has elapsed. Any reversion inside the window resets to the original
// stable level without emitting, so a burst of contact bounce produces
// zero transitions.
func (s *Scanner) Step(tick uint64) {
	for i := range s.lines {
		b := s.layout[i]
		if !b.Known() {
			continue
		}
		level := s.buttons.Level(i)
		st := &s.lines[i]

		if !st.debouncing {
			if level != st.stable {
				st.debouncing = true
				st.candidate = level
				st.since = tick
			}
			continue
		}

		if level != st.candidate {
			st.debouncing = false
			continue
		}
		if tick-st.since < s.cfg.debounce() {
			continue
		}

		st.debouncing = false
		st.stable = st.candidate
		edge := EdgeReleased
		if st.stable {
			edge = EdgePressed
		}
		s.out.Push(Transition{Button: b, Edge: edge, Tick: tick})
	}
}
