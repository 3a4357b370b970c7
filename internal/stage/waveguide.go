package stage

import (
	"math"

	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/lfsource"
)

// Reflectance selects how a Waveguide's delay line reflects energy at
// its far end. This implementation treats Positive as a closed-tube
// simulation (no phase inversion on reflection, fundamental at
// c/2L) and Negative as an open-tube/string simulation (phase-inverting
// reflection); the choice is applied consistently everywhere a Waveguide
// stage is compiled.
type Reflectance int

const (
	ReflectancePositive Reflectance = iota
	ReflectanceNegative
)

// Waveguide is the audio-rate Waveguide stage: a Karplus-Strong-style
// delay line whose length tracks Frequency, with a one-pole low-pass
// loss filter and feedback gain in its feedback path.
type Waveguide struct {
	InBuffer       buffer.Index
	Frequency      *lfsource.LfSource
	Cutoff         *lfsource.LfSource
	Feedback       *lfsource.LfSource
	Reflectance    Reflectance
	BufferSizeSecs float64 // maximum line length, fixed at compile time
	Out            OutSpec
}

func (w Waveguide) Compile(creator *lfsource.Creator) Stage {
	frequency := creator.Create(w.Frequency)
	cutoff := creator.Create(w.Cutoff)
	feedback := creator.Create(w.Feedback)
	out := w.Out.compile(creator)
	in := w.InBuffer
	sampleRate := creator.SampleRate
	samplePeriod := 1.0 / sampleRate

	capacity := int(w.BufferSizeSecs*sampleRate) + 1
	if capacity < 2 {
		capacity = 2
	}
	line := make([]float32, capacity)
	writeIdx := 0
	var lpState float32
	negate := w.Reflectance == ReflectanceNegative

	return func(payload buffer.Payload, ctx *lfsource.AutomationContext) buffer.StageActivity {
		freqHz := ctx.Read(frequency)
		length := int(math.Round(sampleRate / math.Max(freqHz, 1)))
		if length < 1 {
			length = 1
		}
		if length > capacity-1 {
			length = capacity - 1
		}
		c := ctx.Read(cutoff)
		alpha := float32(1 - math.Exp(-2*math.Pi*c*samplePeriod))
		if alpha > 1 {
			alpha = 1
		} else if alpha < 0 {
			alpha = 0
		}
		fb := float32(ctx.Read(feedback))

		src := payload.At(in)
		dst := payload.At(out.buf)
		level := levelFn(ctx, out.level)
		activity := buffer.Idle

		for i, x := range src {
			readIdx := writeIdx - length
			if readIdx < 0 {
				readIdx += capacity
			}
			delayed := line[readIdx]
			lpState = lpState + alpha*(delayed-lpState)
			processed := lpState * fb
			if negate {
				processed = -processed
			}
			line[writeIdx] = x + processed
			writeIdx++
			if writeIdx >= capacity {
				writeIdx = 0
			}

			v := level(i) * processed
			dst[i] += v
			if v != 0 {
				activity = buffer.Max(activity, outActivity(out.buf))
			}
		}
		return activity
	}
}
