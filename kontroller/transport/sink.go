// Package transport fans report snapshots out to the HID links.
//
// Each sink is fully decoupled from the others: a stalled or disconnected
// link never backpressures the composer or a sibling sink. A sink keeps
// only the newest snapshot (last-snapshot-wins), so it may skip
// intermediate reports under load but never delivers a stale one, and it
// converges to the latest state once its link comes up.
package transport

import (
	"github.com/openmoto-org/kontroller/hal"
	"github.com/openmoto-org/kontroller/kontroller/report"
)

// Sink pushes report snapshots to one HID link.
type Sink struct {
	logger hal.Logger
	link   hal.HIDLink

	pending report.Report
	dirty   bool
	up      bool

	delivered uint32
	skipped   uint32
}

// New builds a sink over one link.
func New(logger hal.Logger, link hal.HIDLink) *Sink {
	return &Sink{logger: logger, link: link}
}

// Name returns the link name.
func (s *Sink) Name() string { return s.link.Name() }

// Ready reports whether the underlying link is up.
func (s *Sink) Ready() bool { return s.link.Ready() }

// Offer replaces the sink's pending snapshot. Never blocks. When a newer
// snapshot arrives before the previous one was flushed, the older one is
// skipped and counted.
func (s *Sink) Offer(r report.Report) {
	if s.dirty {
		s.skipped++
	}
	s.pending = r
	s.dirty = true
}

// Step flushes the pending snapshot if the link is ready. Write failures
// keep the snapshot pending for the next step; an unready link is a
// non-event for the rest of the pipeline.
func (s *Sink) Step() {
	ready := s.link.Ready()
	if ready != s.up {
		s.up = ready
		if s.logger != nil {
			if ready {
				s.logger.WriteLineString("sink " + s.Name() + ": link up")
			} else {
				s.logger.WriteLineString("sink " + s.Name() + ": link down")
			}
		}
	}
	if !s.dirty || !ready {
		return
	}
	if err := s.link.WriteReport(s.pending.Pack()); err != nil {
		return
	}
	s.dirty = false
	s.delivered++
}

// Delivered returns how many reports reached the link.
func (s *Sink) Delivered() uint32 { return s.delivered }

// Skipped returns how many intermediate snapshots were superseded before
// delivery.
func (s *Sink) Skipped() uint32 { return s.skipped }
