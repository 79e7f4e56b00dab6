// Package sequencer implements the motion/timing state machine that
// coordinates the stepper move, the post-move dwell window, and the
// driver enable line, while staying responsive to commands arriving on
// the serial link.
package sequencer

import (
	"context"
	"fmt"
	"time"

	"github.com/cjeanneret/DoorGo/internal/command"
	"github.com/cjeanneret/DoorGo/internal/debug"
)

// State is the sequencer's run-time state. Exactly one is active at a time.
type State int

const (
	// Idle: no motion, driver disabled, a new forward command is accepted.
	Idle State = iota
	// Running: a forward move of StepCount steps is in progress, driver enabled.
	Running
	// Waiting: the forward move finished; the driver stays enabled (holding
	// torque) while the dwell timer counts down to auto-disable.
	Waiting
	// Rewinding: a rewind move of StepCount steps is in progress, driver enabled.
	Rewinding
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Running:
		return "RUNNING"
	case Waiting:
		return "WAITING"
	case Rewinding:
		return "REWINDING"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Mover is the motion profile executor capability: absolute-target,
// non-blocking, polled motion with a remaining-distance query.
type Mover interface {
	MoveTo(target int64)
	Run() bool
	DistanceToGo() int64
	CurrentPosition() int64
}

// Gate is the driver enable line capability (active-low at the pin level;
// this interface speaks in logical terms).
type Gate interface {
	Enable() error
	Disable() error
	Enabled() bool
}

// Reporter receives one human-readable status line per event.
type Reporter interface {
	Status(line string)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(line string)

func (f ReporterFunc) Status(line string) { f(line) }

// Config holds the sequencing parameters.
type Config struct {
	StepCount int64         // steps per forward/rewind move
	Dwell     time.Duration // hold time after a forward move before auto-disable
}

// Sequencer owns all mutable run-time state of the controller. It is not
// safe for concurrent use; drive it from a single goroutine via Run or Tick.
type Sequencer struct {
	cfg      Config
	commands command.Source
	mover    Mover
	gate     Gate
	report   Reporter
	now      func() time.Time

	state        State
	waitDeadline time.Time // meaningful only while state == Waiting
}

// New creates a sequencer in Idle with the driver assumed disabled.
// now may be nil (defaults to time.Now); reporter may be nil (statuses
// are dropped).
func New(cfg Config, commands command.Source, mover Mover, gate Gate, reporter Reporter, now func() time.Time) *Sequencer {
	if cfg.StepCount <= 0 {
		cfg.StepCount = 50
	}
	if cfg.Dwell <= 0 {
		cfg.Dwell = 5000 * time.Millisecond
	}
	if now == nil {
		now = time.Now
	}
	if reporter == nil {
		reporter = ReporterFunc(func(string) {})
	}
	return &Sequencer{
		cfg:      cfg,
		commands: commands,
		mover:    mover,
		gate:     gate,
		report:   reporter,
		now:      now,
		state:    Idle,
	}
}

// State returns the current state.
func (s *Sequencer) State() State {
	return s.state
}

// Banner emits the startup status lines advertising the two commands.
func (s *Sequencer) Banner() {
	s.report.Status("DRV8825 Motor Controller Ready")
	s.report.Status(fmt.Sprintf("Send '#on' to run %d steps forward, wait %s, then auto-disable",
		s.cfg.StepCount, s.cfg.Dwell))
	s.report.Status(fmt.Sprintf("Send '#off' to rewind %d steps and disable motor", s.cfg.StepCount))
}

// Tick performs one poll cycle: drain at most one command, advance the
// active motion, detect completion, check the dwell timer. The order is
// fixed so a command arriving in the same cycle as a motion-completion
// event always takes effect first.
func (s *Sequencer) Tick(now time.Time) {
	if token, ok := s.commands.Poll(); ok {
		s.apply(token)
	}

	if s.state == Running {
		s.mover.Run()
		if s.mover.DistanceToGo() == 0 {
			s.waitDeadline = now.Add(s.cfg.Dwell)
			s.setState(Waiting)
			s.report.Status(fmt.Sprintf("%d steps completed. Waiting %s before disable...",
				s.cfg.StepCount, s.cfg.Dwell))
		}
	}

	if s.state == Rewinding {
		s.mover.Run()
		if s.mover.DistanceToGo() == 0 {
			_ = s.gate.Disable()
			s.setState(Idle)
			s.report.Status("Rewind complete. Motor disabled.")
		}
	}

	if s.state == Waiting {
		if !now.Before(s.waitDeadline) {
			_ = s.gate.Disable()
			s.setState(Idle)
			s.report.Status("Wait complete. Motor OFF - Disabled")
		}
	}
}

// apply handles a single command token. Illegal commands are operator
// feedback, not faults: a rejection status is emitted and nothing changes.
func (s *Sequencer) apply(token string) {
	switch token {
	case command.TokenOn:
		if s.state != Idle {
			s.report.Status("Motor is already running, rewinding, or waiting to be disabled")
			return
		}
		s.report.Status(fmt.Sprintf("Motor ON - Running %d steps forward", s.cfg.StepCount))
		_ = s.gate.Enable()
		s.mover.MoveTo(s.mover.CurrentPosition() + s.cfg.StepCount)
		s.setState(Running)

	case command.TokenOff:
		if s.state == Rewinding {
			s.report.Status("Motor is already rewinding")
			return
		}
		// Rewind pre-empts a forward move or a dwell unconditionally.
		s.report.Status(fmt.Sprintf("Motor OFF - Rewinding %d steps", s.cfg.StepCount))
		_ = s.gate.Enable()
		s.mover.MoveTo(s.mover.CurrentPosition() - s.cfg.StepCount)
		s.setState(Rewinding)

	default:
		s.report.Status("Unknown command. Use '#on' or '#off'")
	}
}

func (s *Sequencer) setState(to State) {
	if s.state != to {
		debug.State(s.state.String(), to.String())
	}
	s.state = to
}

// Run polls Tick until ctx is cancelled. pollInterval throttles the loop;
// it must be no coarser than the fastest step interval (1ms at the default
// 1000 steps/s).
func (s *Sequencer) Run(ctx context.Context, pollInterval time.Duration) error {
	if pollInterval <= 0 {
		pollInterval = time.Millisecond
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Leave the driver de-energized on the way out.
			_ = s.gate.Disable()
			return ctx.Err()
		case <-ticker.C:
			s.Tick(s.now())
		}
	}
}
