package motion

import (
	"math"
	"time"

	"github.com/cjeanneret/DoorGo/internal/debug"
)

// StepSink receives one hardware step per emitted profile step.
// dir is +1 (forward) or -1 (backward). *stepper.Pulser satisfies this.
type StepSink interface {
	Step(dir int) error
}

// Config holds the motion limits for the executor.
type Config struct {
	MaxSpeed     float64 // steps per second
	Acceleration float64 // steps per second squared
}

// Executor converts an absolute step target into an incrementally advanced
// trapezoidal motion: accelerate at the configured rate, cruise at max
// speed, decelerate to stop exactly on the target. It never blocks; Run
// must be polled and emits at most one step per call when one is due.
//
// The step timing follows the constant-acceleration interval recurrence
// c_n = c_{n-1} - 2*c_{n-1}/(4n+1) (D. Austin, "Generate stepper-motor
// speed profiles in real time", 2005), which is what AccelStepper runs.
type Executor struct {
	sink StepSink
	now  func() time.Time

	current int64 // absolute position in steps
	target  int64

	maxSpeed float64
	accel    float64

	dir          int   // +1 or -1
	n            int64 // ramp step counter; negative while decelerating
	c0           time.Duration
	cn           time.Duration
	cmin         time.Duration
	stepInterval time.Duration // 0 = stopped
	lastStep     time.Time
	speed        float64 // signed, steps per second
}

// New creates an executor at position zero. now is the clock used for step
// scheduling; pass time.Now in production, a fake in tests.
func New(sink StepSink, cfg Config, now func() time.Time) *Executor {
	e := &Executor{
		sink: sink,
		now:  now,
		dir:  1,
	}
	e.SetMaxSpeed(cfg.MaxSpeed)
	e.SetAcceleration(cfg.Acceleration)
	return e
}

// SetMaxSpeed sets the cruise speed in steps per second.
func (e *Executor) SetMaxSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	e.maxSpeed = speed
	e.cmin = time.Duration(float64(time.Second) / speed)
	if e.stepInterval != 0 {
		e.computeNewSpeed()
	}
}

// SetAcceleration sets the acceleration in steps per second squared.
func (e *Executor) SetAcceleration(accel float64) {
	if accel <= 0 {
		return
	}
	if e.accel != 0 {
		// Rescale the ramp counter so an in-flight move keeps its shape.
		e.n = int64(float64(e.n) * (e.accel / accel))
	}
	// First interval: c0 = 0.676 * sqrt(2/a) (in seconds).
	e.c0 = time.Duration(0.676 * math.Sqrt(2.0/accel) * float64(time.Second))
	e.accel = accel
	if e.stepInterval != 0 {
		e.computeNewSpeed()
	}
}

// MoveTo sets a new absolute target and (re)plans the profile. Calling it
// mid-move redirects the motion: the executor decelerates and reverses if
// the new target lies behind the current direction of travel.
func (e *Executor) MoveTo(target int64) {
	if e.target == target {
		return
	}
	e.target = target
	debug.Move(target, e.current)
	e.computeNewSpeed()
}

// CurrentPosition returns the absolute position in steps.
func (e *Executor) CurrentPosition() int64 {
	return e.current
}

// DistanceToGo returns the signed remaining distance to the target.
func (e *Executor) DistanceToGo() int64 {
	return e.target - e.current
}

// Run advances the motion by at most one step if one is due. It returns
// true while the motion is still in progress. Poll it on every loop pass.
func (e *Executor) Run() bool {
	if e.runStep() {
		e.computeNewSpeed()
	}
	return e.speed != 0 || e.DistanceToGo() != 0
}

// runStep emits one step if the interval since the last step has elapsed.
func (e *Executor) runStep() bool {
	if e.stepInterval == 0 {
		return false
	}

	now := e.now()
	if now.Sub(e.lastStep) < e.stepInterval {
		return false
	}

	e.current += int64(e.dir)
	if e.sink != nil {
		if err := e.sink.Step(e.dir); err != nil {
			debug.Error(err)
		}
	}
	e.lastStep = now
	return true
}

func (e *Executor) computeNewSpeed() {
	distanceTo := e.DistanceToGo()
	stepsToStop := int64(e.speed * e.speed / (2.0 * e.accel))

	if distanceTo == 0 && stepsToStop <= 1 {
		// On target and essentially stopped.
		e.stepInterval = 0
		e.speed = 0
		e.n = 0
		return
	}

	if distanceTo > 0 {
		// Ahead of us; decelerate if we'd overshoot or are moving away.
		if e.n > 0 {
			if stepsToStop >= distanceTo || e.dir == -1 {
				e.n = -stepsToStop
			}
		} else if e.n < 0 {
			if stepsToStop < distanceTo && e.dir == 1 {
				e.n = -e.n
			}
		}
	} else if distanceTo < 0 {
		if e.n > 0 {
			if stepsToStop >= -distanceTo || e.dir == 1 {
				e.n = -stepsToStop
			}
		} else if e.n < 0 {
			if stepsToStop < -distanceTo && e.dir == -1 {
				e.n = -e.n
			}
		}
	}

	if e.n == 0 {
		// First step from stopped.
		e.cn = e.c0
		if distanceTo > 0 {
			e.dir = 1
		} else {
			e.dir = -1
		}
	} else {
		e.cn = e.cn - time.Duration(2*int64(e.cn)/(4*e.n+1))
		if e.cn < e.cmin {
			e.cn = e.cmin
		}
	}
	e.n++
	e.stepInterval = e.cn
	e.speed = float64(time.Second) / float64(e.cn)
	if e.dir == -1 {
		e.speed = -e.speed
	}
}
