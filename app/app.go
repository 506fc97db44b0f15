// Package app assembles the controller on top of a HAL and exposes it in
// the two shapes the runners need: a per-frame step function for the host
// simulator, and a blocking loop for the firmware build.
package app

import (
	"github.com/openmoto-org/kontroller/hal"
	"github.com/openmoto-org/kontroller/kontroller"
	"github.com/openmoto-org/kontroller/kontroller/proto"
)

// Config selects the boot-time configuration of the controller.
type Config struct {
	// Boot overrides the built-in default keymap and scan cadence.
	Boot *proto.Konfiguration
}

// New initializes the controller with the default config.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, Config{})
}

// NewWithConfig initializes the controller and returns the step function
// the host runners call once per frame. The step drains every tick the HAL
// clock has accumulated since the previous frame, so a slow frame catches
// up instead of stretching the debounce windows.
func NewWithConfig(h hal.HAL, cfg Config) func() error {
	k := kontroller.New(h, kontroller.Options{Boot: cfg.Boot})
	ticks := h.Time().Ticks()
	return func() error {
		for {
			select {
			case tick := <-ticks:
				k.Step(tick)
			default:
				return nil
			}
		}
	}
}

// Run starts the controller and blocks forever (TinyGo entrypoint).
func Run(h hal.HAL) {
	RunWithConfig(h, Config{})
}

// RunWithConfig starts the controller and blocks forever.
func RunWithConfig(h hal.HAL, cfg Config) {
	defer recoverToHAL(h)
	k := kontroller.New(h, kontroller.Options{Boot: cfg.Boot})
	for tick := range h.Time().Ticks() {
		k.Step(tick)
	}
}
