//go:build tinygo

package main

import (
	"github.com/openmoto-org/kontroller/app"
	"github.com/openmoto-org/kontroller/hal"
)

func main() {
	app.Run(hal.New())
}
