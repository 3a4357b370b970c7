package stage

import (
	"math"

	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/lfsource"
)

// Envelope is the audio-rate Envelope stage: it tracks amplitude in
// [0, 1] from elapsed key-down/key-up time (and, while a voice is being
// forcibly retired, from elapsed time since the steal), and writes the
// mono input scaled by that amplitude into two independently-leveled
// output buffers for stereo panning. Attack/release/decay/fadeout are
// LfSource expressions re-evaluated once per control block, consistent
// with every other stage parameter; amplitude itself therefore also
// updates at control-block granularity rather than per sample, which is
// smooth enough at typical block sizes and keeps the stage allocation
// and branch-free in its per-sample loop.
type Envelope struct {
	InBuffer    buffer.Index
	AttackTime  *lfsource.LfSource
	ReleaseTime *lfsource.LfSource
	DecayRate   *lfsource.LfSource
	Fadeout     *lfsource.LfSource
	OutLeft     OutSpec
	OutRight    OutSpec
}

// EnvelopeSilenceThreshold is the amplitude below which a voice is
// considered fully faded. Exported so the engine can gate voice
// retirement on Properties.CurrAmplitude directly rather than on
// combined StageActivity, since a free-running Oscillator stage
// upstream of the envelope keeps reporting non-idle activity on its own
// scratch buffer for as long as the voice exists, independent of the
// envelope's amplitude.
const EnvelopeSilenceThreshold = 1e-4

func (e Envelope) Compile(creator *lfsource.Creator) Stage {
	attackTime := creator.Create(e.AttackTime)
	releaseTime := creator.Create(e.ReleaseTime)
	decayRate := creator.Create(e.DecayRate)
	fadeout := creator.Create(e.Fadeout)
	outL := e.OutLeft.compile(creator)
	outR := e.OutRight.compile(creator)
	in := e.InBuffer

	var lastAmplitude float32
	fadeoutStartAmp := float32(-1) // negative = not currently fading out
	var everReleased bool

	return func(payload buffer.Payload, ctx *lfsource.AutomationContext) buffer.StageActivity {
		at := ctx.Read(attackTime)
		rt := ctx.Read(releaseTime)
		dr := ctx.Read(decayRate)
		ft := ctx.Read(fadeout)

		var amplitude float32
		if ctx.Properties.SecsSinceStolen != nil {
			if fadeoutStartAmp < 0 {
				fadeoutStartAmp = lastAmplitude
			}
			fraction := *ctx.Properties.SecsSinceStolen / ft
			if fraction > 1 {
				fraction = 1
			} else if fraction < 0 {
				fraction = 0
			}
			amplitude = fadeoutStartAmp * (1 - float32(fraction))
		} else {
			fadeoutStartAmp = -1
			amplitude = float32(heldOrReleased(at, dr, rt, ctx.Properties.SecsSincePressed, ctx.Properties.SecsSinceReleased))
			if ctx.Properties.SecsSinceReleased != nil {
				everReleased = true
			}
		}
		lastAmplitude = amplitude
		ctx.Properties.CurrAmplitude = float64(amplitude)

		src := payload.At(in)
		left := payload.At(outL.buf)
		right := payload.At(outR.buf)
		levelL := levelFn(ctx, outL.level)
		levelR := levelFn(ctx, outR.level)
		for i, x := range src {
			v := amplitude * x
			left[i] += levelL(i) * v
			right[i] += levelR(i) * v
		}

		if amplitude > EnvelopeSilenceThreshold {
			return buffer.Internal
		}
		if everReleased || ctx.Properties.SecsSinceStolen != nil {
			return buffer.Idle
		}
		return buffer.Internal
	}
}

// heldOrReleased evaluates the same attack-ramp/decay/release shape as
// package envelope's named Curve, but against per-block LfSource values
// instead of a fixed Spec, since the Envelope stage's own parameters can
// themselves vary with velocity, MIDI controllers, and so on.
func heldOrReleased(attackTime, decayRate, releaseTime, secsSincePressed float64, secsSinceReleased *float64) float64 {
	held := heldValue(attackTime, decayRate, secsSincePressed)
	if secsSinceReleased == nil {
		return held
	}
	if releaseTime <= 0 {
		return 0
	}
	fraction := *secsSinceReleased / releaseTime
	if fraction >= 1 {
		return 0
	}
	return held * (1 - fraction)
}

func heldValue(attackTime, decayRate, t float64) float64 {
	if attackTime > 0 && t < attackTime {
		return t / attackTime
	}
	held := t - attackTime
	if held < 0 {
		held = 0
	}
	return math.Exp(-decayRate * held)
}
