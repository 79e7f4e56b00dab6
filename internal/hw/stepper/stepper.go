package stepper

import (
	"github.com/cjeanneret/DoorGo/internal/hw/gpio"
)

// Config holds the hardware configuration for the stepper driver wiring.
type Config struct {
	StepPin int
	DirPin  int
}

// Pulser emits raw STEP/DIR signals for a DRV8825-style driver.
// It is deliberately timing-free: one call to Step produces exactly one
// step pulse, and the caller (the motion profile executor) decides when
// each pulse happens. This keeps the hardware layer non-blocking.
type Pulser struct {
	gpio gpio.Driver
	cfg  Config
	dir  int // last direction written: +1 forward, -1 backward, 0 not yet set
}

// NewPulser creates a pulser and configures the STEP and DIR pins as outputs.
func NewPulser(g gpio.Driver, cfg Config) *Pulser {
	_ = g.SetupPin(cfg.StepPin)
	_ = g.SetupPin(cfg.DirPin)

	return &Pulser{
		gpio: g,
		cfg:  cfg,
	}
}

// Step emits a single step pulse in the given direction (+1 or -1).
// The DIR pin is only rewritten when the direction changes.
func (p *Pulser) Step(dir int) error {
	if dir >= 0 {
		dir = 1
	} else {
		dir = -1
	}

	if dir != p.dir {
		level := gpio.High
		if dir < 0 {
			level = gpio.Low
		}
		if err := p.gpio.WritePin(p.cfg.DirPin, level); err != nil {
			return err
		}
		p.dir = dir
	}

	// DRV8825 needs >= 1.9us of STEP high; the GPIO call overhead on a
	// Raspberry Pi comfortably exceeds that, so no explicit delay.
	if err := p.gpio.WritePin(p.cfg.StepPin, gpio.High); err != nil {
		return err
	}
	return p.gpio.WritePin(p.cfg.StepPin, gpio.Low)
}
