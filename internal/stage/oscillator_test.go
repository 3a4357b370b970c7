package stage

import (
	"math"
	"testing"

	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/lfsource"
)

func newCtx(sampleRate float64) *lfsource.AutomationContext {
	return &lfsource.AutomationContext{
		Properties:       &lfsource.Properties{PitchHz: 440, Velocity: 1},
		PitchBend:        1,
		RenderWindowSecs: 1.0 / sampleRate,
	}
}

func TestPureSineOscillatorMatchesClosedForm(t *testing.T) {
	const sampleRate = 44100.0
	const freq = 440.0
	creator := lfsource.NewCreator(nil, sampleRate)

	osc := Oscillator{
		Kind:      lfsource.Sin,
		Frequency: lfsource.Val(freq),
		Out:       OutSpec{OutBuffer: buffer.AudioOutLeft(), OutLevel: lfsource.Val(1)},
	}
	s := osc.Compile(creator)

	pool := buffer.NewPool()
	const n = 512
	ctx := newCtx(sampleRate)

	// The stage advances its phase once per sample internally (from
	// creator.SampleRate), so driving it one sample per call exercises
	// the same per-sample increment a full-block call would use.
	for i := 0; i < n; i++ {
		single := pool.Prepare(1, true)
		s(single, ctx)
		got := single.At(buffer.AudioOutLeft())[0]
		want := float32(math.Sin(2 * math.Pi * freq * float64(i) / sampleRate))
		if math.Abs(float64(got-want)) > 1e-6 {
			t.Fatalf("sample %d: got %v want %v", i, got, want)
		}
	}
}

func TestSilentWaveformProducesZeroOutput(t *testing.T) {
	creator := lfsource.NewCreator(nil, 44100)
	osc := Oscillator{
		Kind:      lfsource.Sin,
		Frequency: lfsource.Val(440),
		Out:       OutSpec{OutBuffer: buffer.AudioOutLeft(), OutLevel: lfsource.Val(0)},
	}
	s := osc.Compile(creator)
	pool := buffer.NewPool()
	payload := pool.Prepare(256, true)
	ctx := newCtx(44100)
	activity := s(payload, ctx)
	if activity != buffer.Idle {
		t.Errorf("activity = %v, want Idle for zero-level oscillator", activity)
	}
	for i, v := range payload.At(buffer.AudioOutLeft()) {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
}
