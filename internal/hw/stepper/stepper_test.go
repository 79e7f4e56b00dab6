package stepper

import (
	"testing"

	"github.com/cjeanneret/DoorGo/internal/hw/gpio"
)

// recordingDriver records GPIO calls for verification.
type recordingDriver struct {
	calls []gpioCall
}

type gpioCall struct {
	op    string // "setup", "write"
	pin   int
	level gpio.Level
}

func (d *recordingDriver) SetupPin(pin int) error {
	d.calls = append(d.calls, gpioCall{op: "setup", pin: pin})
	return nil
}

func (d *recordingDriver) WritePin(pin int, level gpio.Level) error {
	d.calls = append(d.calls, gpioCall{op: "write", pin: pin, level: level})
	return nil
}

func (d *recordingDriver) Close() error {
	return nil
}

func (d *recordingDriver) writeCallsForPin(pin int) []gpioCall {
	var result []gpioCall
	for _, c := range d.calls {
		if c.op == "write" && c.pin == pin {
			result = append(result, c)
		}
	}
	return result
}

func TestPulser_StepForward(t *testing.T) {
	drv := &recordingDriver{}
	p := NewPulser(drv, Config{StepPin: 17, DirPin: 27})
	drv.calls = nil // reset after init

	if err := p.Step(1); err != nil {
		t.Fatalf("Step: %v", err)
	}

	dirWrites := drv.writeCallsForPin(27)
	if len(dirWrites) != 1 || dirWrites[0].level != gpio.High {
		t.Errorf("forward step should write dir pin HIGH once, got %v", dirWrites)
	}

	stepWrites := drv.writeCallsForPin(17)
	if len(stepWrites) != 2 {
		t.Fatalf("one step should produce 2 writes on step pin, got %d", len(stepWrites))
	}
	if stepWrites[0].level != gpio.High || stepWrites[1].level != gpio.Low {
		t.Errorf("step pulse should be HIGH then LOW, got %v", stepWrites)
	}
}

func TestPulser_StepBackward(t *testing.T) {
	drv := &recordingDriver{}
	p := NewPulser(drv, Config{StepPin: 17, DirPin: 27})
	drv.calls = nil

	if err := p.Step(-1); err != nil {
		t.Fatalf("Step: %v", err)
	}

	dirWrites := drv.writeCallsForPin(27)
	if len(dirWrites) != 1 || dirWrites[0].level != gpio.Low {
		t.Errorf("backward step should write dir pin LOW once, got %v", dirWrites)
	}
}

func TestPulser_DirWrittenOnlyOnChange(t *testing.T) {
	drv := &recordingDriver{}
	p := NewPulser(drv, Config{StepPin: 17, DirPin: 27})
	drv.calls = nil

	for i := 0; i < 5; i++ {
		if err := p.Step(1); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if err := p.Step(-1); err != nil {
		t.Fatalf("Step: %v", err)
	}

	dirWrites := drv.writeCallsForPin(27)
	// One write for the first forward step, one for the reversal.
	if len(dirWrites) != 2 {
		t.Errorf("expected 2 dir writes (initial + reversal), got %d", len(dirWrites))
	}

	stepWrites := drv.writeCallsForPin(17)
	if len(stepWrites) != 12 {
		t.Errorf("6 steps should produce 12 step pin writes, got %d", len(stepWrites))
	}
}

func TestGate_DisabledByDefault(t *testing.T) {
	drv := &recordingDriver{}
	g := NewGate(drv, 5)

	writes := drv.writeCallsForPin(5)
	if len(writes) != 1 || writes[0].level != gpio.High {
		t.Errorf("gate should initialize the enable pin HIGH (disabled), got %v", writes)
	}
	if g.Enabled() {
		t.Error("gate should report disabled after construction")
	}
}

func TestGate_EnableDisable(t *testing.T) {
	drv := &recordingDriver{}
	g := NewGate(drv, 5)
	drv.calls = nil

	if err := g.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	writes := drv.writeCallsForPin(5)
	if len(writes) != 1 || writes[0].level != gpio.Low {
		t.Errorf("Enable should write LOW to enable pin, got %v", writes)
	}
	if !g.Enabled() {
		t.Error("gate should report enabled after Enable")
	}

	drv.calls = nil
	if err := g.Disable(); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	writes = drv.writeCallsForPin(5)
	if len(writes) != 1 || writes[0].level != gpio.High {
		t.Errorf("Disable should write HIGH to enable pin, got %v", writes)
	}
	if g.Enabled() {
		t.Error("gate should report disabled after Disable")
	}
}

func TestGate_EnableIdempotent(t *testing.T) {
	drv := &recordingDriver{}
	g := NewGate(drv, 5)

	if err := g.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if err := g.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if !g.Enabled() {
		t.Error("gate should remain enabled")
	}
}
