package motion

import (
	"testing"
	"time"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

// countingSink records every emitted step.
type countingSink struct {
	forward  int
	backward int
}

func (s *countingSink) Step(dir int) error {
	if dir > 0 {
		s.forward++
	} else {
		s.backward++
	}
	return nil
}

func defaultExecutor() (*Executor, *countingSink, *fakeClock) {
	clk := newFakeClock()
	sink := &countingSink{}
	e := New(sink, Config{MaxSpeed: 1000, Acceleration: 500}, clk.now)
	return e, sink, clk
}

// runToCompletion polls Run with 1ms time increments until the motion
// stops, failing the test if it never does.
func runToCompletion(t *testing.T, e *Executor, clk *fakeClock) {
	t.Helper()
	for i := 0; i < 200000; i++ {
		if !e.Run() {
			return
		}
		clk.advance(time.Millisecond)
	}
	t.Fatalf("motion did not complete: pos=%d togo=%d", e.CurrentPosition(), e.DistanceToGo())
}

func TestExecutor_ReachesForwardTarget(t *testing.T) {
	e, sink, clk := defaultExecutor()

	e.MoveTo(50)
	runToCompletion(t, e, clk)

	if got := e.CurrentPosition(); got != 50 {
		t.Errorf("position = %d, want 50", got)
	}
	if got := e.DistanceToGo(); got != 0 {
		t.Errorf("distance to go = %d, want 0", got)
	}
	if sink.forward != 50 || sink.backward != 0 {
		t.Errorf("steps emitted = %d fwd / %d back, want 50/0", sink.forward, sink.backward)
	}
}

func TestExecutor_ReachesBackwardTarget(t *testing.T) {
	e, sink, clk := defaultExecutor()

	e.MoveTo(-50)
	runToCompletion(t, e, clk)

	if got := e.CurrentPosition(); got != -50 {
		t.Errorf("position = %d, want -50", got)
	}
	if sink.backward != 50 || sink.forward != 0 {
		t.Errorf("steps emitted = %d fwd / %d back, want 0/50", sink.forward, sink.backward)
	}
}

func TestExecutor_RoundTripReturnsToStart(t *testing.T) {
	e, _, clk := defaultExecutor()

	e.MoveTo(50)
	runToCompletion(t, e, clk)
	e.MoveTo(0)
	runToCompletion(t, e, clk)

	if got := e.CurrentPosition(); got != 0 {
		t.Errorf("position after round trip = %d, want 0", got)
	}
}

func TestExecutor_RedirectMidMove(t *testing.T) {
	e, _, clk := defaultExecutor()

	e.MoveTo(50)
	// Advance partway: emit some steps but leave the move incomplete.
	for i := 0; i < 100000 && e.CurrentPosition() < 10; i++ {
		e.Run()
		clk.advance(time.Millisecond)
	}
	if e.CurrentPosition() < 10 || e.DistanceToGo() == 0 {
		t.Fatalf("setup failed: pos=%d togo=%d", e.CurrentPosition(), e.DistanceToGo())
	}

	// Abandon remaining forward distance, rewind 50 from wherever we are.
	newTarget := e.CurrentPosition() - 50
	e.MoveTo(newTarget)
	runToCompletion(t, e, clk)

	if got := e.CurrentPosition(); got != newTarget {
		t.Errorf("position after redirect = %d, want %d", got, newTarget)
	}
}

func TestExecutor_IdleRunReturnsFalse(t *testing.T) {
	e, sink, clk := defaultExecutor()

	if e.Run() {
		t.Error("Run should return false with no target set")
	}
	clk.advance(time.Second)
	if e.Run() {
		t.Error("Run should stay false while idle")
	}
	if sink.forward+sink.backward != 0 {
		t.Errorf("idle executor emitted %d steps", sink.forward+sink.backward)
	}
}

func TestExecutor_MoveToSameTargetIsNoop(t *testing.T) {
	e, sink, clk := defaultExecutor()

	e.MoveTo(50)
	runToCompletion(t, e, clk)
	stepsBefore := sink.forward

	e.MoveTo(50)
	if e.Run() {
		t.Error("re-issuing the same target should not restart the motion")
	}
	if sink.forward != stepsBefore {
		t.Errorf("extra steps emitted after re-issuing target: %d", sink.forward-stepsBefore)
	}
}

func TestExecutor_RespectsMaxSpeedInterval(t *testing.T) {
	e, _, clk := defaultExecutor()

	e.MoveTo(5000)
	var intervals []time.Duration
	last := clk.t
	prevPos := e.CurrentPosition()
	for i := 0; i < 200000 && e.DistanceToGo() != 0; i++ {
		if e.Run() {
			if e.CurrentPosition() != prevPos {
				intervals = append(intervals, clk.t.Sub(last))
				last = clk.t
				prevPos = e.CurrentPosition()
			}
		}
		clk.advance(100 * time.Microsecond)
	}

	// At 1000 steps/s the interval floor is 1ms; nothing should go faster.
	for _, iv := range intervals[1:] {
		if iv < time.Millisecond {
			t.Fatalf("step interval %v below max-speed floor of 1ms", iv)
		}
	}
}
