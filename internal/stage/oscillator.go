package stage

import (
	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/lfsource"
)

// ModulationKind selects how an Oscillator stage's phase is perturbed by
// an auxiliary buffer, matching the two FM-style wiring idioms the
// source format supports.
type ModulationKind int

const (
	// NoModulation runs the oscillator unperturbed.
	NoModulation ModulationKind = iota
	// ByFrequency adds the modulator buffer's value (scaled to Hz) to the
	// phase increment every sample, i.e. true frequency modulation.
	ByFrequency
	// ByPhase adds the modulator buffer's value directly to the phase
	// read, i.e. phase modulation.
	ByPhase
)

// Oscillator is the audio-rate Oscillator stage: a free-running phase
// accumulator sampled through one of the fixed waveform shapes, with an
// optional audio-rate frequency-/phase-modulation input.
type Oscillator struct {
	Kind       lfsource.OscillatorKind
	Phase      float64
	Frequency  *lfsource.LfSource
	InBuffer   buffer.Index // modulator buffer; ignored when Modulation == NoModulation
	Modulation ModulationKind
	Out        OutSpec
}

func (o Oscillator) Compile(creator *lfsource.Creator) Stage {
	frequency := creator.Create(o.Frequency)
	out := o.Out.compile(creator)
	waveFn := o.Kind.waveFn()
	phase := o.Phase
	samplePeriod := 1.0 / creator.SampleRate
	modBuffer := o.InBuffer
	modulation := o.Modulation

	return func(payload buffer.Payload, ctx *lfsource.AutomationContext) buffer.StageActivity {
		freqHz := float32(ctx.Read(frequency))
		level := levelFn(ctx, out.level)
		dst := payload.At(out.buf)

		var mod []float32
		if modulation != NoModulation {
			mod = payload.At(modBuffer)
		}

		activity := buffer.Idle
		for i := range dst {
			var sample float64
			switch modulation {
			case ByPhase:
				sample = waveFn(wrapPhase01(phase + float64(mod[i])))
				phase = wrapPhase01(phase + float64(freqHz)*samplePeriod)
			case ByFrequency:
				sample = waveFn(phase)
				phase = wrapPhase01(phase + (float64(freqHz)+float64(mod[i]))*samplePeriod)
			default:
				sample = waveFn(phase)
				phase = wrapPhase01(phase + float64(freqHz)*samplePeriod)
			}
			v := level(i) * float32(sample)
			dst[i] += v
			if v != 0 {
				activity = buffer.Max(activity, outActivity(out.buf))
			}
		}
		return activity
	}
}

func outActivity(idx buffer.Index) buffer.StageActivity {
	if idx.IsAudioOut() {
		return buffer.External
	}
	return buffer.Internal
}

func wrapPhase01(p float64) float64 {
	p -= float64(int64(p))
	if p < 0 {
		p += 1
	}
	return p
}
