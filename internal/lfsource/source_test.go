package lfsource

import (
	"math"
	"testing"
)

func ctxAt(secsPressed float64) *AutomationContext {
	return &AutomationContext{
		Properties:       &Properties{PitchHz: 440, Velocity: 1, SecsSincePressed: secsPressed},
		PitchBend:        1,
		RenderWindowSecs: 0.01,
	}
}

func TestValueIsConstant(t *testing.T) {
	c := NewCreator(nil, 44100)
	a := c.Create(Val(42))
	if got := a.Eval(ctxAt(0)); got != 42 {
		t.Errorf("got %v, want 42", got)
	}
}

func TestWaveformPitchUnit(t *testing.T) {
	c := NewCreator(nil, 44100)
	a := c.Create(UnitSource(WaveformPitch))
	ctx := ctxAt(0)
	ctx.PitchBend = 2
	if got := a.Eval(ctx); got != 880 {
		t.Errorf("got %v, want 880", got)
	}
}

func TestWavelengthUnitIsReciprocal(t *testing.T) {
	c := NewCreator(nil, 44100)
	a := c.Create(UnitSource(Wavelength))
	ctx := ctxAt(0)
	if got := a.Eval(ctx); math.Abs(got-1.0/440) > 1e-12 {
		t.Errorf("got %v, want %v", got, 1.0/440)
	}
}

func TestAddAndMul(t *testing.T) {
	c := NewCreator(nil, 44100)
	add := c.Create(AddOf(Val(2), Val(3)))
	mul := c.Create(MulOf(Val(2), Val(3)))
	if got := add.Eval(ctxAt(0)); got != 5 {
		t.Errorf("Add got %v, want 5", got)
	}
	if got := mul.Eval(ctxAt(0)); got != 6 {
		t.Errorf("Mul got %v, want 6", got)
	}
}

func TestTimeRampEndpointsAndLinearity(t *testing.T) {
	c := NewCreator(nil, 44100)
	a := c.Create(TimeOf(Val(1), Val(3), Val(10), Val(20)))
	if got := a.Eval(ctxAt(0)); got != 10 {
		t.Errorf("before start: got %v, want 10", got)
	}
	if got := a.Eval(ctxAt(1)); got != 10 {
		t.Errorf("at start: got %v, want 10", got)
	}
	if got := a.Eval(ctxAt(2)); got != 15 {
		t.Errorf("midpoint: got %v, want 15", got)
	}
	if got := a.Eval(ctxAt(3)); got != 20 {
		t.Errorf("at end: got %v, want 20", got)
	}
	if got := a.Eval(ctxAt(4)); got != 20 {
		t.Errorf("after end: got %v, want 20", got)
	}
}

func TestTimeRampDegenerateStartAfterEnd(t *testing.T) {
	c := NewCreator(nil, 44100)
	a := c.Create(TimeOf(Val(5), Val(2), Val(10), Val(20)))
	if got := a.Eval(ctxAt(1)); got != 10 {
		t.Errorf("t<=start<=end-reversed: got %v, want 10 (from)", got)
	}
	if got := a.Eval(ctxAt(5)); got != 20 {
		t.Errorf("t>=start>=end-reversed: got %v, want 20 (to)", got)
	}
}

func TestPropertyVelocityScalesBetweenFromAndTo(t *testing.T) {
	c := NewCreator(nil, 44100)
	a := c.Create(PropertyOf(Velocity, Val(0), Val(100)))
	ctx := ctxAt(0)
	ctx.Properties.Velocity = 0.5
	if got := a.Eval(ctx); got != 50 {
		t.Errorf("got %v, want 50", got)
	}
}

func TestControlReadsContextController(t *testing.T) {
	c := NewCreator(nil, 44100)
	a := c.Create(ControlOf(ControllerModulation, Val(0), Val(1)))
	ctx := ctxAt(0)
	ctx.Controller = func(ctrl Controller) float64 {
		if ctrl == ControllerModulation {
			return 0.25
		}
		return 0
	}
	if got := a.Eval(ctx); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("got %v, want 0.25", got)
	}
}

func TestOscillatorPhaseAdvancesThenEvaluates(t *testing.T) {
	c := NewCreator(nil, 44100)
	a := c.Create(OscillatorOf(Sin, 0, Val(1), Val(0), Val(1)))
	ctx := &AutomationContext{
		Properties:       &Properties{PitchHz: 440},
		PitchBend:        1,
		RenderWindowSecs: 0.25, // quarter-second blocks -> quarter-cycle phase steps at 1Hz
	}
	// phase starts at 0 -> sin(0) == 0
	if got := a.Eval(ctx); math.Abs(got) > 1e-9 {
		t.Errorf("first eval got %v, want 0", got)
	}
	// phase is now 0.25 -> sin(2*pi*0.25) == 1
	if got := a.Eval(ctx); math.Abs(got-1) > 1e-9 {
		t.Errorf("second eval got %v, want 1", got)
	}
}
