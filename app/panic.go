package app

import (
	"fmt"
	"time"

	"github.com/openmoto-org/kontroller/hal"
)

// recoverToHAL is the firmware's last-resort panic surface. With no display
// on the board, the report goes to the log link and the LED flashes a fast
// distress pattern so a dead device is distinguishable from an idle one.
func recoverToHAL(h hal.HAL) {
	v := recover()
	if v == nil {
		return
	}
	if l := h.Logger(); l != nil {
		l.WriteLineString(fmt.Sprintf("panic: %v", v))
	}
	led := h.LED()
	if led == nil {
		select {}
	}
	for {
		led.High()
		time.Sleep(50 * time.Millisecond)
		led.Low()
		time.Sleep(50 * time.Millisecond)
	}
}
