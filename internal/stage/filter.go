package stage

import (
	"math"

	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/lfsource"
)

// FilterKind enumerates the fixed filter shapes a Filter stage can
// compile to.
type FilterKind int

const (
	LowPass FilterKind = iota
	HighPass
	LowPass2
	HighPass2
	Clip
	Pow3
)

// Filter is the audio-rate Filter stage. Cutoff and Resonance/Limit are
// LfSource expressions evaluated once per control block; the filter's
// own history (one-pole state or biquad history) advances per sample.
type Filter struct {
	Kind      FilterKind
	InBuffer  buffer.Index
	Cutoff    *lfsource.LfSource
	Resonance *lfsource.LfSource // quality factor, LowPass2/HighPass2 only
	Limit     *lfsource.LfSource // Clip only
	Out       OutSpec
}

func (f Filter) Compile(creator *lfsource.Creator) Stage {
	out := f.Out.compile(creator)
	in := f.InBuffer
	samplePeriod := 1.0 / creator.SampleRate

	switch f.Kind {
	case LowPass, HighPass:
		return compileOnePole(creator, f, in, out, samplePeriod)
	case LowPass2, HighPass2:
		return compileBiquad(creator, f, in, out, samplePeriod)
	case Clip:
		return compileClip(creator, f, in, out)
	default: // Pow3
		return compilePow3(in, out)
	}
}

func compileOnePole(creator *lfsource.Creator, f Filter, in buffer.Index, out compiledOut, samplePeriod float64) Stage {
	cutoff := creator.Create(f.Cutoff)
	var y float32
	highPass := f.Kind == HighPass
	return func(payload buffer.Payload, ctx *lfsource.AutomationContext) buffer.StageActivity {
		c := ctx.Read(cutoff)
		alpha := float32(1 - math.Exp(-2*math.Pi*c*samplePeriod))
		if alpha > 1 {
			alpha = 1
		} else if alpha < 0 {
			alpha = 0
		}
		src := payload.At(in)
		dst := payload.At(out.buf)
		level := levelFn(ctx, out.level)
		activity := buffer.Idle
		for i, x := range src {
			y = y + alpha*(x-y)
			sample := y
			if highPass {
				sample = x - y
			}
			v := level(i) * sample
			dst[i] += v
			if v != 0 {
				activity = buffer.Max(activity, outActivity(out.buf))
			}
		}
		return activity
	}
}

// biquadState holds a direct-form-I biquad's history, captured by value
// in the returned closure.
type biquadState struct{ x1, x2, y1, y2 float64 }

func compileBiquad(creator *lfsource.Creator, f Filter, in buffer.Index, out compiledOut, samplePeriod float64) Stage {
	cutoff := creator.Create(f.Cutoff)
	resonance := creator.Create(f.Resonance)
	state := biquadState{}
	highPass := f.Kind == HighPass2
	sampleRate := creator.SampleRate

	return func(payload buffer.Payload, ctx *lfsource.AutomationContext) buffer.StageActivity {
		c := ctx.Read(cutoff)
		q := ctx.Read(resonance)
		if q <= 0 {
			q = 0.5
		}
		b0, b1, b2, a1, a2 := rbjCoefficients(c, q, sampleRate, highPass)

		src := payload.At(in)
		dst := payload.At(out.buf)
		level := levelFn(ctx, out.level)
		activity := buffer.Idle
		for i, xf := range src {
			x := float64(xf)
			y := b0*x + b1*state.x1 + b2*state.x2 - a1*state.y1 - a2*state.y2
			state.x2, state.x1 = state.x1, x
			state.y2, state.y1 = state.y1, y
			v := level(i) * float32(y)
			dst[i] += v
			if v != 0 {
				activity = buffer.Max(activity, outActivity(out.buf))
			}
		}
		return activity
	}
}

// rbjCoefficients computes a standard RBJ biquad (Robert Bristow-Johnson
// cookbook) low-pass/high-pass section from cutoff (Hz), quality factor
// q, and sampleRate (Hz).
func rbjCoefficients(cutoff, q, sampleRate float64, highPass bool) (b0, b1, b2, a1, a2 float64) {
	if cutoff <= 0 {
		cutoff = 1
	}
	if cutoff > sampleRate/2 {
		cutoff = sampleRate / 2
	}
	w0 := 2 * math.Pi * cutoff / sampleRate
	cosw0, sinw0 := math.Cos(w0), math.Sin(w0)
	alpha := sinw0 / (2 * q)

	var b0r, b1r, b2r float64
	if highPass {
		b0r = (1 + cosw0) / 2
		b1r = -(1 + cosw0)
		b2r = (1 + cosw0) / 2
	} else {
		b0r = (1 - cosw0) / 2
		b1r = 1 - cosw0
		b2r = (1 - cosw0) / 2
	}
	a0 := 1 + alpha
	a1r := -2 * cosw0
	a2r := 1 - alpha

	return b0r / a0, b1r / a0, b2r / a0, a1r / a0, a2r / a0
}

func compileClip(creator *lfsource.Creator, f Filter, in buffer.Index, out compiledOut) Stage {
	limit := creator.Create(f.Limit)
	return func(payload buffer.Payload, ctx *lfsource.AutomationContext) buffer.StageActivity {
		l := float32(ctx.Read(limit))
		src := payload.At(in)
		dst := payload.At(out.buf)
		level := levelFn(ctx, out.level)
		activity := buffer.Idle
		for i, x := range src {
			if x > l {
				x = l
			} else if x < -l {
				x = -l
			}
			v := level(i) * x
			dst[i] += v
			if v != 0 {
				activity = buffer.Max(activity, outActivity(out.buf))
			}
		}
		return activity
	}
}

func compilePow3(in buffer.Index, out compiledOut) Stage {
	return func(payload buffer.Payload, ctx *lfsource.AutomationContext) buffer.StageActivity {
		src := payload.At(in)
		dst := payload.At(out.buf)
		level := levelFn(ctx, out.level)
		activity := buffer.Idle
		for i, x := range src {
			v := level(i) * (x * x * x)
			dst[i] += v
			if v != 0 {
				activity = buffer.Max(activity, outActivity(out.buf))
			}
		}
		return activity
	}
}
