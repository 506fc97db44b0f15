// Package kontroller wires the keypad pipeline together and drives it from
// the HAL tick stream.
//
// Everything runs on one cooperative loop. Each tick steps the stages in a
// fixed order, scanner through LED, so the stages share data through plain
// bounded rings with no locking between them. The only cross-goroutine
// state is the keymap store, which swaps snapshots atomically.
package kontroller

import (
	"context"

	"github.com/openmoto-org/kontroller/hal"
	"github.com/openmoto-org/kontroller/kontroller/keymap"
	"github.com/openmoto-org/kontroller/kontroller/proto"
	"github.com/openmoto-org/kontroller/kontroller/queue"
	"github.com/openmoto-org/kontroller/kontroller/report"
	"github.com/openmoto-org/kontroller/kontroller/scan"
	"github.com/openmoto-org/kontroller/kontroller/status"
	"github.com/openmoto-org/kontroller/kontroller/translate"
	"github.com/openmoto-org/kontroller/kontroller/transport"
)

// DefaultLayout maps button line index to button identity, in the order the
// lines are wired on the board.
var DefaultLayout = []proto.Button{
	proto.ButtonEnter,
	proto.ButtonUp,
	proto.ButtonRight,
	proto.ButtonLeft,
	proto.ButtonDown,
	proto.ButtonFn1,
	proto.ButtonFn2,
	proto.ButtonFn3,
}

// DefaultKeymap is the mapping installed at boot before any configuration
// arrives: arrow keys on the D-pad, Enter in the middle, F1..F3 on the
// function row.
func DefaultKeymap() *proto.Keymap {
	return &proto.Keymap{Entries: []proto.Entry{
		{Button: proto.ButtonEnter, KeyCode: proto.KeyEnter},
		{Button: proto.ButtonUp, KeyCode: proto.KeyUp},
		{Button: proto.ButtonRight, KeyCode: proto.KeyRight},
		{Button: proto.ButtonLeft, KeyCode: proto.KeyLeft},
		{Button: proto.ButtonDown, KeyCode: proto.KeyDown},
		{Button: proto.ButtonFn1, KeyCode: proto.KeyF1},
		{Button: proto.ButtonFn2, KeyCode: proto.KeyF2},
		{Button: proto.ButtonFn3, KeyCode: proto.KeyF3},
	}}
}

// queueDepth sizes the inter-stage rings. Eight lines can produce at most
// eight transitions per tick and the stages drain every tick, so this only
// has to absorb one tick of worst-case burst with room to spare.
const queueDepth = 32

// Options fixes the controller's integration-time constants.
type Options struct {
	// Layout maps line index to Button. Nil means DefaultLayout.
	Layout []proto.Button
	// Scan holds the debounce constants.
	Scan scan.Config
	// Boot is the configuration applied before the loop starts. A nil
	// keymap inside it (or a nil Boot) falls back to DefaultKeymap.
	Boot *proto.Konfiguration
}

// Kontroller is the assembled pipeline.
type Kontroller struct {
	h       hal.HAL
	store   *keymap.Store
	scanner *scan.Scanner
	engine  *translate.Engine
	comp    *report.Composer
	sinks   []*transport.Sink
	cfg     *listener
	blinker *status.Blinker

	// scanEvery stretches the scan cadence when the boot configuration
	// asks for a poll interval slower than the base tick.
	scanEvery uint64
}

// New assembles the pipeline on top of the HAL.
func New(h hal.HAL, opts Options) *Kontroller {
	layout := opts.Layout
	if layout == nil {
		layout = DefaultLayout
	}

	store := &keymap.Store{}
	transitions := queue.NewRing[scan.Transition](queueDepth)
	events := queue.NewRing[translate.KeyEvent](queueDepth)

	k := &Kontroller{
		h:         h,
		store:     store,
		scanner:   scan.New(h.Buttons(), layout, opts.Scan, transitions),
		engine:    translate.New(store, transitions, events),
		blinker:   status.New(h.LED()),
		cfg:       newListener(h.Logger(), h.Config(), store),
		scanEvery: 1,
	}
	for _, link := range h.Links() {
		k.sinks = append(k.sinks, transport.New(h.Logger(), link))
	}
	k.comp = report.New(h.Logger(), events, func(r report.Report) {
		for _, s := range k.sinks {
			s.Offer(r)
		}
		k.blinker.Pulse()
	})

	k.boot(opts.Boot)
	return k
}

// boot applies the build-time configuration. The default keymap keeps a
// fresh device usable before the first install ever arrives.
func (k *Kontroller) boot(konf *proto.Konfiguration) {
	m := DefaultKeymap()
	if konf != nil {
		if konf.Keymap != nil {
			m = konf.Keymap
		}
		if us := konf.ButtonsPollIntervalMicros; us > tickMicros {
			k.scanEvery = uint64(us / tickMicros)
		}
	}
	if err := k.store.Install(m); err != nil {
		k.h.Logger().WriteLineString("boot: " + err.Error())
	}
}

// tickMicros is the base tick period of hal.Time.
const tickMicros = 1000

// Store exposes the keymap store for direct installs, used by the host
// simulator's self test hooks.
func (k *Kontroller) Store() *keymap.Store { return k.store }

// Current returns the present report snapshot.
func (k *Kontroller) Current() report.Report { return k.comp.Current() }

// Step runs one tick of the pipeline.
func (k *Kontroller) Step(tick uint64) {
	if tick%k.scanEvery == 0 {
		k.scanner.Step(tick)
	}
	k.engine.Step()
	k.comp.Step()

	linked := false
	for _, s := range k.sinks {
		s.Step()
		if s.Ready() {
			linked = true
		}
	}
	k.cfg.Step()

	k.blinker.SetLinked(linked)
	k.blinker.Step()
}

// Run drives Step from the HAL tick stream until ctx is cancelled.
func (k *Kontroller) Run(ctx context.Context) error {
	ticks := k.h.Time().Ticks()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tick, ok := <-ticks:
			if !ok {
				return nil
			}
			k.Step(tick)
		}
	}
}
