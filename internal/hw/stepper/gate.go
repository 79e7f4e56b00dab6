package stepper

import (
	"github.com/cjeanneret/DoorGo/internal/debug"
	"github.com/cjeanneret/DoorGo/internal/hw/gpio"
)

// Gate drives the driver's ENABLE line. DRV8825 ENABLE is active LOW:
// LOW = driver powered (holding torque), HIGH = driver disabled.
// The gate mirrors the asserted state so callers can query it without
// reading the pin back.
type Gate struct {
	gpio    gpio.Driver
	pin     int
	enabled bool
}

// NewGate configures the enable pin as output and disables the driver,
// which is the idle default at startup.
func NewGate(g gpio.Driver, pin int) *Gate {
	_ = g.SetupPin(pin)
	_ = g.WritePin(pin, gpio.High) // HIGH = disabled

	return &Gate{
		gpio: g,
		pin:  pin,
	}
}

// Enable powers the driver stage (ENABLE=LOW). The motor holds position.
func (g *Gate) Enable() error {
	if err := g.gpio.WritePin(g.pin, gpio.Low); err != nil {
		return err
	}
	if !g.enabled {
		debug.Verbose("Driver enabled (ENABLE pin %d LOW)", g.pin)
	}
	g.enabled = true
	return nil
}

// Disable cuts the driver stage (ENABLE=HIGH). The motor freewheels,
// no holding torque, no coil current.
func (g *Gate) Disable() error {
	if err := g.gpio.WritePin(g.pin, gpio.High); err != nil {
		return err
	}
	if g.enabled {
		debug.Verbose("Driver disabled (ENABLE pin %d HIGH)", g.pin)
	}
	g.enabled = false
	return nil
}

// Enabled reports the mirrored state of the enable line.
func (g *Gate) Enabled() bool {
	return g.enabled
}
